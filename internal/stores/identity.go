package stores

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/systmms/secretcfg/internal/config"
	"github.com/systmms/secretcfg/pkg/secretconfig"
)

// STSClientAPI defines the STS operations used for identity checks.
type STSClientAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Identity describes the AWS principal the store client runs as.
type Identity struct {
	Account string
	ARN     string
}

// IdentityChecker looks up the caller identity.
type IdentityChecker struct {
	client STSClientAPI
}

// NewIdentityChecker returns a checker using client, or a real STS client built from
// cfg when client is nil.
func NewIdentityChecker(ctx context.Context, cfg config.StoreConfig, client STSClientAPI) (*IdentityChecker, error) {
	if client != nil {
		return &IdentityChecker{client: client}, nil
	}
	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var opts []func(*sts.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		opts = append(opts, func(o *sts.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	return &IdentityChecker{client: sts.NewFromConfig(awsCfg, opts...)}, nil
}

// CallerIdentity returns the account and ARN of the current credentials.
func (c *IdentityChecker) CallerIdentity(ctx context.Context) (Identity, error) {
	out, err := c.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Identity{}, fmt.Errorf("failed to get caller identity: %w", err)
	}
	return Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
	}, nil
}

// CheckOwner reports whether the caller's account owns ref. A mismatch is not fatal:
// cross-account reads work when the secret's resource policy allows them.
func (c *IdentityChecker) CheckOwner(ctx context.Context, ref secretconfig.StoreReference) (bool, Identity, error) {
	id, err := c.CallerIdentity(ctx)
	if err != nil {
		return false, Identity{}, err
	}
	return id.Account == ref.Owner, id, nil
}
