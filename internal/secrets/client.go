// Package secrets fetches the engine-server's startup secrets — the JWT
// signing key and the Postgres/Redis credentials — from HashiCorp Vault,
// adapted from the teacher's internal/vault/client.go connection and
// cache-fallback pattern. Unlike the teacher's per-user exchange API key
// store, this client holds exactly one fixed secret set for the process.
package secrets

import (
	"context"
	"fmt"
	"sync"

	vaultapi "github.com/hashicorp/vault/api"

	"blockengine/config"
)

// Credentials is the fixed secret set the engine-server needs at startup.
type Credentials struct {
	JWTSecret     string `json:"jwt_secret"`
	PostgresDSN   string `json:"postgres_dsn"`
	RedisPassword string `json:"redis_password"`
}

// Client fetches Credentials from Vault, falling back to a cached or
// caller-supplied value when Vault is disabled.
type Client struct {
	client       *vaultapi.Client
	cfg          config.VaultConfig
	mu           sync.RWMutex
	cached       *Credentials
	cacheEnabled bool
}

// NewClient builds a Client. When cfg.Enabled is false the client never
// contacts Vault and Fetch always returns the cached/fallback value set
// via Seed.
func NewClient(cfg config.VaultConfig) (*Client, error) {
	c := &Client{cfg: cfg, cacheEnabled: true}
	if !cfg.Enabled {
		return c, nil
	}

	vcfg := vaultapi.DefaultConfig()
	vcfg.Address = cfg.Address
	if cfg.TLSEnabled {
		tlsConfig := &vaultapi.TLSConfig{CACert: cfg.CACert}
		if err := vcfg.ConfigureTLS(tlsConfig); err != nil {
			return nil, fmt.Errorf("configure vault tls: %w", err)
		}
	}

	client, err := vaultapi.NewClient(vcfg)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(cfg.Token)
	c.client = client
	return c, nil
}

// Seed pre-populates the cache, used when Vault is disabled and the
// credentials instead come from config/env.
func (c *Client) Seed(creds Credentials) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = &creds
}

// Fetch returns the credential set, reading from Vault's KV engine on
// first call and serving the cache afterward.
func (c *Client) Fetch(ctx context.Context) (*Credentials, error) {
	c.mu.RLock()
	if c.cached != nil {
		defer c.mu.RUnlock()
		return c.cached, nil
	}
	c.mu.RUnlock()

	if !c.cfg.Enabled || c.client == nil {
		return nil, fmt.Errorf("secrets: vault disabled and no cached credentials seeded")
	}

	secret, err := c.client.KVv2(c.cfg.MountPath).Get(ctx, c.cfg.SecretPath)
	if err != nil {
		return nil, fmt.Errorf("fetch secret from vault: %w", err)
	}

	creds := Credentials{
		JWTSecret:     getString(secret.Data, "jwt_secret"),
		PostgresDSN:   getString(secret.Data, "postgres_dsn"),
		RedisPassword: getString(secret.Data, "redis_password"),
	}

	c.mu.Lock()
	c.cached = &creds
	c.mu.Unlock()

	return &creds, nil
}

// ClearCache drops the cached credential set, forcing the next Fetch to
// hit Vault again.
func (c *Client) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = nil
}

// Health reports whether the configured Vault is reachable and unsealed.
// It is a no-op success when Vault is disabled.
func (c *Client) Health(ctx context.Context) error {
	if !c.cfg.Enabled || c.client == nil {
		return nil
	}
	health, err := c.client.Sys().Health()
	if err != nil {
		return fmt.Errorf("vault health check: %w", err)
	}
	if health.Sealed {
		return fmt.Errorf("vault is sealed")
	}
	return nil
}

func getString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
