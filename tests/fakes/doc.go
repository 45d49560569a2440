// Package fakes provides test doubles for the AWS SDK clients used by secretcfg.
//
// Fakes are manually implemented (not generated) to provide precise control
// over test behavior.
//
// Usage:
//
//	fake := fakes.NewFakeSecretsManagerClient()
//	fake.AddSecretString("arn:aws:secretsmanager:us-east-1:123456789012:secret:app", `{"tenant":"acme"}`)
//	store, _ := stores.NewSecretsManager(ctx, config.StoreConfig{}, stores.WithSecretsManagerClient(fake))
package fakes
