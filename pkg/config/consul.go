package config

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/hashicorp/consul/api"
)

// ConsulLoader reads the provider section from Consul KV so the API key and
// endpoint can be rotated without touching the deployment.
type ConsulLoader struct {
	client   *api.Client
	kvPrefix string
}

// NewConsulLoader creates a new Consul KV loader.
func NewConsulLoader(cfg *ConsulConfig) (*ConsulLoader, error) {
	if err := NewValidator().ValidateConsul(cfg); err != nil {
		return nil, fmt.Errorf("invalid consul config: %w", err)
	}

	config := api.DefaultConfig()
	config.Address = cfg.Address
	config.Scheme = cfg.Scheme
	config.Token = cfg.Token
	config.Datacenter = cfg.Datacenter
	if cfg.Timeout > 0 {
		config.HttpClient.Timeout = cfg.Timeout
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &ConsulLoader{
		client:   client,
		kvPrefix: cfg.KVPrefix,
	}, nil
}

// ProviderKey is the KV key holding the provider overlay.
func (l *ConsulLoader) ProviderKey() string {
	return path.Join(l.kvPrefix, "provider")
}

// LoadProvider returns the provider overlay stored at <kv_prefix>/provider,
// or nil when the key does not exist.
func (l *ConsulLoader) LoadProvider(ctx context.Context) (*ProviderConfig, error) {
	pair, _, err := l.client.KV().Get(l.ProviderKey(), (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", l.ProviderKey(), err)
	}
	if pair == nil {
		return nil, nil
	}

	var overlay ProviderConfig
	if err := json.Unmarshal(pair.Value, &overlay); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", l.ProviderKey(), err)
	}
	return &overlay, nil
}

// ApplyProviderOverlay copies the non-empty fields of overlay into cfg.
func ApplyProviderOverlay(cfg *ProviderConfig, overlay *ProviderConfig) {
	if overlay == nil {
		return
	}
	if overlay.BaseURL != "" {
		cfg.BaseURL = overlay.BaseURL
	}
	if overlay.Language != "" {
		cfg.Language = overlay.Language
	}
	if overlay.APIKey != "" {
		cfg.APIKey = overlay.APIKey
	}
}

// Load reads the file/env configuration and, when consul.enabled is set,
// merges the provider overlay from Consul KV on top of it.
func Load(ctx context.Context, loader *FileLoader) (*Config, error) {
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if !cfg.Consul.Enabled {
		return cfg, nil
	}

	kv, err := NewConsulLoader(&cfg.Consul)
	if err != nil {
		return nil, err
	}
	overlay, err := kv.LoadProvider(ctx)
	if err != nil {
		return nil, err
	}
	ApplyProviderOverlay(&cfg.Provider, overlay)

	if err := loader.validator.ValidateProvider(&cfg.Provider); err != nil {
		return nil, fmt.Errorf("invalid provider overlay: %w", err)
	}
	return cfg, nil
}
