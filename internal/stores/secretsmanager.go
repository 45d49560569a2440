// Package stores adapts remote secret stores to secretconfig.StoreClient.
package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"

	"github.com/systmms/secretcfg/internal/config"
	"github.com/systmms/secretcfg/pkg/secretconfig"
)

// Fetch outcome labels reported to a FetchObserver.
const (
	OutcomeSuccess      = "success"
	OutcomeNotFound     = "not_found"
	OutcomeAccessDenied = "access_denied"
	OutcomeError        = "error"
)

// SecretsManagerClientAPI defines the Secrets Manager operations used by the adapter.
// This allows for mocking in tests
type SecretsManagerClientAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// FetchObserver receives the outcome and latency of every fetch.
type FetchObserver interface {
	ObserveStoreFetch(outcome string, d time.Duration)
}

// SecretsManager is the AWS Secrets Manager implementation of secretconfig.StoreClient.
type SecretsManager struct {
	client   SecretsManagerClientAPI
	observer FetchObserver
}

// Option configures a SecretsManager.
type Option func(*SecretsManager)

// WithSecretsManagerClient sets a custom Secrets Manager client (for testing)
func WithSecretsManagerClient(client SecretsManagerClientAPI) Option {
	return func(s *SecretsManager) {
		s.client = client
	}
}

// WithObserver reports fetch latency and outcome to o.
func WithObserver(o FetchObserver) Option {
	return func(s *SecretsManager) {
		s.observer = o
	}
}

// NewSecretsManager builds the adapter. Without an injected client it loads the default
// AWS configuration, honouring the optional endpoint and static credentials in cfg.
func NewSecretsManager(ctx context.Context, cfg config.StoreConfig, opts ...Option) (*SecretsManager, error) {
	s := &SecretsManager{}
	for _, opt := range opts {
		opt(s)
	}
	if s.client != nil {
		return s, nil
	}

	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var clientOpts []func(*secretsmanager.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	s.client = secretsmanager.NewFromConfig(awsCfg, clientOpts...)
	return s, nil
}

// LoadAWSConfig loads the shared AWS configuration for the store section.
func LoadAWSConfig(ctx context.Context, cfg config.StoreConfig) (aws.Config, error) {
	var configOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		configOpts = append(configOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOpts = append(configOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

// Get fetches the secret string for ref. The request is sent to the region named in
// the reference.
func (s *SecretsManager) Get(ctx context.Context, ref secretconfig.StoreReference) ([]byte, error) {
	start := time.Now()
	value, err := s.get(ctx, ref)
	if s.observer != nil {
		s.observer.ObserveStoreFetch(outcome(err), time.Since(start))
	}
	return value, err
}

func (s *SecretsManager) get(ctx context.Context, ref secretconfig.StoreReference) ([]byte, error) {
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(ref.String()),
	}

	result, err := s.client.GetSecretValue(ctx, input, func(o *secretsmanager.Options) {
		o.Region = ref.Location
	})
	if err != nil {
		return nil, handleError(err, secretconfig.MaskReference(ref))
	}

	switch {
	case result.SecretString != nil:
		return []byte(aws.ToString(result.SecretString)), nil
	case result.SecretBinary != nil:
		return result.SecretBinary, nil
	default:
		return nil, fmt.Errorf("secret %s has no value", secretconfig.MaskReference(ref))
	}
}

func handleError(err error, key string) error {
	if isNotFoundError(err) {
		return &secretconfig.NotFoundError{Key: key, Err: err}
	}

	if isAuthError(err) {
		return &secretconfig.AccessDeniedError{
			Key:     key,
			Message: errorCode(err),
			Err:     err,
		}
	}

	return fmt.Errorf("AWS Secrets Manager error: %w", err)
}

func isNotFoundError(err error) bool {
	var resourceNotFound *types.ResourceNotFoundException
	return errors.As(err, &resourceNotFound)
}

func isAuthError(err error) bool {
	var decryption *types.DecryptionFailure
	if errors.As(err, &decryption) {
		return true
	}
	switch errorCode(err) {
	case "AccessDeniedException", "AccessDenied", "UnrecognizedClientException",
		"InvalidSignatureException", "ExpiredTokenException", "UnauthorizedOperation":
		return true
	}
	return false
}

func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var notFound *secretconfig.NotFoundError
	if errors.As(err, &notFound) {
		return OutcomeNotFound
	}
	var denied *secretconfig.AccessDeniedError
	if errors.As(err, &denied) {
		return OutcomeAccessDenied
	}
	return OutcomeError
}
