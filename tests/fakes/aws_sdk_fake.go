package fakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// FakeSecretsManagerClient is a mock implementation of stores.SecretsManagerClientAPI
type FakeSecretsManagerClient struct {
	mu sync.Mutex

	// Secrets maps secret ids to their data
	Secrets map[string]*SecretData
	// Errors maps secret ids to errors to return
	Errors map[string]error
	// GetSecretValueFunc allows custom behavior for GetSecretValue
	GetSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error)

	calls   []string
	regions []string
}

// SecretData holds the data for a mock secret
type SecretData struct {
	SecretString *string
	SecretBinary []byte
	VersionId    *string
}

// NewFakeSecretsManagerClient creates a new mock Secrets Manager client
func NewFakeSecretsManagerClient() *FakeSecretsManagerClient {
	return &FakeSecretsManagerClient{
		Secrets: make(map[string]*SecretData),
		Errors:  make(map[string]error),
	}
}

// AddSecretString adds a string secret to the mock client
func (f *FakeSecretsManagerClient) AddSecretString(id, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Secrets[id] = &SecretData{SecretString: aws.String(value), VersionId: aws.String("v1")}
}

// AddSecretBinary adds a binary secret to the mock client
func (f *FakeSecretsManagerClient) AddSecretBinary(id string, value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Secrets[id] = &SecretData{SecretBinary: value, VersionId: aws.String("v1")}
}

// AddError configures the mock to return an error for a specific secret
func (f *FakeSecretsManagerClient) AddError(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[id] = err
}

// Calls returns the secret ids requested so far.
func (f *FakeSecretsManagerClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Regions returns the region each request was routed to after applying per-call options.
func (f *FakeSecretsManagerClient) Regions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.regions...)
}

// GetSecretValue mocks the GetSecretValue operation
func (f *FakeSecretsManagerClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	var opts secretsmanager.Options
	for _, fn := range optFns {
		fn(&opts)
	}

	secretID := aws.ToString(params.SecretId)

	f.mu.Lock()
	f.calls = append(f.calls, secretID)
	f.regions = append(f.regions, opts.Region)
	custom := f.GetSecretValueFunc
	err, hasErr := f.Errors[secretID]
	data, exists := f.Secrets[secretID]
	f.mu.Unlock()

	if custom != nil {
		return custom(ctx, params)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if hasErr {
		return nil, err
	}
	if !exists {
		return nil, &types.ResourceNotFoundException{
			Message: aws.String(fmt.Sprintf("Secrets Manager can't find the specified secret: %s", secretID)),
		}
	}

	return &secretsmanager.GetSecretValueOutput{
		ARN:          params.SecretId,
		SecretString: data.SecretString,
		SecretBinary: data.SecretBinary,
		VersionId:    data.VersionId,
	}, nil
}

// FakeSSMClient is a mock implementation of discovery.SSMClientAPI
type FakeSSMClient struct {
	mu sync.Mutex

	// Parameters maps parameter names to their values
	Parameters map[string]string
	// Errors maps parameter names to errors to return
	Errors map[string]error

	decrypted []bool
}

// NewFakeSSMClient creates a new mock SSM client
func NewFakeSSMClient() *FakeSSMClient {
	return &FakeSSMClient{
		Parameters: make(map[string]string),
		Errors:     make(map[string]error),
	}
}

// AddParameter adds a parameter to the mock client
func (f *FakeSSMClient) AddParameter(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Parameters[name] = value
}

// AddError configures the mock to return an error for a specific parameter
func (f *FakeSSMClient) AddError(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[name] = err
}

// CallCount returns how many GetParameter calls were made.
func (f *FakeSSMClient) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.decrypted)
}

// Decrypted reports whether every call asked for decryption.
func (f *FakeSSMClient) Decrypted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.decrypted {
		if !d {
			return false
		}
	}
	return true
}

// GetParameter mocks the GetParameter operation
func (f *FakeSSMClient) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	name := aws.ToString(params.Name)

	f.mu.Lock()
	f.decrypted = append(f.decrypted, aws.ToBool(params.WithDecryption))
	err, hasErr := f.Errors[name]
	value, exists := f.Parameters[name]
	f.mu.Unlock()

	if hasErr {
		return nil, err
	}
	if !exists {
		return nil, &ssmtypes.ParameterNotFound{
			Message: aws.String(fmt.Sprintf("Parameter %s not found", name)),
		}
	}

	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{
			Name:    params.Name,
			Type:    ssmtypes.ParameterTypeSecureString,
			Value:   aws.String(value),
			Version: 1,
		},
	}, nil
}

// FakeSTSClient is a mock implementation of stores.STSClientAPI
type FakeSTSClient struct {
	Account string
	ARN     string
	Err     error
}

// GetCallerIdentity mocks the GetCallerIdentity operation
func (f *FakeSTSClient) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &sts.GetCallerIdentityOutput{
		Account: aws.String(f.Account),
		Arn:     aws.String(f.ARN),
		UserId:  aws.String("AIDAFAKE"),
	}, nil
}
