package config

import (
	"fmt"
	"time"
)

// Defaults applied to the client view when the merged config leaves the
// corresponding field unset.
const (
	DefaultDebounceWindow = 3 * time.Second
	DefaultSyncInterval   = time.Minute
	DefaultRequestTimeout = 10 * time.Second
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// HashKey is the HMAC key used by the client for payload integrity checks.
	HashKey string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the HTTP endpoint address of the remote store.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
	// Token is the bearer token attached to every request.
	Token string
}

// ClientDB contains local replica connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite file path of the local replica.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often the maintenance resync runs.
	SyncInterval time.Duration
	// DebounceWindow defines how long local edits are coalesced.
	DebounceWindow time.Duration
	// SilentConcurrentAdds turns off conflict reports for same-id adds.
	SilentConcurrentAdds bool
}

// ClientDocument names the synchronized document and its working copy.
type ClientDocument struct {
	ID          string
	WorkingCopy string
	LogFile     string
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Adapter contains client transport addresses and timeouts.
	Adapter ClientAdapter
	// Storage contains client storage settings.
	Storage ClientStorage
	// Workers contains background job settings.
	Workers ClientWorkers
	// Document contains the synchronized document settings.
	Document ClientDocument
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	clientCfg := &ClientConfig{
		App: ClientApp{
			HashKey: cfg.App.HashKey,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			Token:          cfg.Adapter.Token,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Workers: ClientWorkers{
			SyncInterval:         cfg.Workers.SyncInterval,
			DebounceWindow:       cfg.Workers.DebounceWindow,
			SilentConcurrentAdds: cfg.Workers.SilentConcurrentAdds,
		},
		Document: ClientDocument{
			ID:          cfg.Client.DocumentID,
			WorkingCopy: cfg.Client.WorkingCopy,
			LogFile:     cfg.Client.LogFile,
		},
	}

	if clientCfg.Adapter.RequestTimeout == 0 {
		clientCfg.Adapter.RequestTimeout = DefaultRequestTimeout
	}
	if clientCfg.Workers.SyncInterval == 0 {
		clientCfg.Workers.SyncInterval = DefaultSyncInterval
	}
	if clientCfg.Workers.DebounceWindow == 0 {
		clientCfg.Workers.DebounceWindow = DefaultDebounceWindow
	}

	return clientCfg
}
