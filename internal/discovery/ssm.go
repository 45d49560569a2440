package discovery

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// SSMClientAPI defines the SSM operations used for discovery.
type SSMClientAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSMDiscoverer reads the value of a (usually SecureString) SSM parameter.
type SSMDiscoverer struct {
	client    SSMClientAPI
	parameter string
}

// NewSSMDiscoverer returns a discoverer for parameter.
func NewSSMDiscoverer(client SSMClientAPI, parameter string) *SSMDiscoverer {
	return &SSMDiscoverer{client: client, parameter: parameter}
}

// NewSSMClient builds an SSM client from an AWS config, honouring a custom endpoint.
func NewSSMClient(cfg aws.Config, endpoint string) *ssm.Client {
	var opts []func(*ssm.Options)
	if endpoint != "" {
		opts = append(opts, func(o *ssm.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	return ssm.NewFromConfig(cfg, opts...)
}

func (d *SSMDiscoverer) Name() string {
	return "SSM parameter " + d.parameter
}

func (d *SSMDiscoverer) Discover(ctx context.Context) (string, bool, error) {
	out, err := d.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(d.parameter),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if out.Parameter == nil {
		return "", false, nil
	}
	value := aws.ToString(out.Parameter.Value)
	return value, value != "", nil
}
