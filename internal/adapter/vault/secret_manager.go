package vault

import (
	"context"
	"fmt"

	"github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// SecretManager reads provider credentials from a KV v2 mount.
type SecretManager struct {
	client *api.Client
	mount  string
	log    *zap.Logger
}

func NewSecretManager(address, token, mount string, log *zap.Logger) (*SecretManager, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	client.SetToken(token)
	if mount == "" {
		mount = "secret"
	}

	return &SecretManager{client: client, mount: mount, log: log}, nil
}

// Secrets returns the string fields stored at path. Non-string values are skipped.
func (sm *SecretManager) Secrets(ctx context.Context, path string) (map[string]string, error) {
	secret, err := sm.client.KVv2(sm.mount).Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("vault: read %s/%s: %w", sm.mount, path, err)
	}

	out := make(map[string]string, len(secret.Data))
	for k, v := range secret.Data {
		s, ok := v.(string)
		if !ok {
			sm.log.Warn("vault: ignoring non-string secret field", zap.String("field", k))
			continue
		}
		out[k] = s
	}
	return out, nil
}
