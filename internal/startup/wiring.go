package startup

import (
	"context"
	"sync"

	"github.com/systmms/secretcfg/internal/config"
	"github.com/systmms/secretcfg/internal/discovery"
	"github.com/systmms/secretcfg/internal/stores"
	"github.com/systmms/secretcfg/pkg/secretconfig"
)

// LazyStore returns a StoreClient that builds the Secrets Manager client on first use,
// so inline and legacy configurations never load AWS configuration. A failed build is
// retried on the next call.
func LazyStore(cfg config.StoreConfig, opts ...stores.Option) secretconfig.StoreClient {
	var (
		mu     sync.Mutex
		client *stores.SecretsManager
	)
	return secretconfig.StoreClientFunc(func(ctx context.Context, ref secretconfig.StoreReference) ([]byte, error) {
		mu.Lock()
		if client == nil {
			if err := ctx.Err(); err != nil {
				mu.Unlock()
				return nil, err
			}
			c, err := stores.NewSecretsManager(ctx, cfg, opts...)
			if err != nil {
				mu.Unlock()
				return nil, err
			}
			client = c
		}
		sm := client
		mu.Unlock()
		return sm.Get(ctx, ref)
	})
}

// Discoverers builds the discoverers named in the configuration, SSM first.
func Discoverers(ctx context.Context, def *config.Definition, ssmClient discovery.SSMClientAPI) ([]discovery.Discoverer, error) {
	if def == nil {
		return nil, nil
	}

	var out []discovery.Discoverer
	if def.Discovery.SSMParameter != "" {
		if ssmClient == nil {
			awsCfg, err := stores.LoadAWSConfig(ctx, def.Store)
			if err != nil {
				return nil, err
			}
			ssmClient = discovery.NewSSMClient(awsCfg, def.Store.Endpoint)
		}
		out = append(out, discovery.NewSSMDiscoverer(ssmClient, def.Discovery.SSMParameter))
	}
	if def.Discovery.KeyringService != "" {
		out = append(out, discovery.NewKeyringDiscoverer(def.Discovery.KeyringService, def.Discovery.Account()))
	}
	return out, nil
}
