// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// go-task-keeper server and client. It aggregates all sub-configurations and
// is populated by merging values from environment variables, command-line
// flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as signing keys, token
	// parameters, and the application version.
	App App `envPrefix:"APP_"`

	// Storage holds configuration for the relational database that backs
	// the remote document store (server) or the local replica (client).
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network address and timeout settings for the HTTP server.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the settings the client uses to reach the remote store.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds timing settings for the client reconciliation loop.
	Workers Workers `envPrefix:"WORKERS_"`

	// Client holds the document the client synchronizes and the working
	// copy file it mirrors it into.
	Client Client `envPrefix:"CLIENT_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups the configuration for all storage backends used by the
// application.
type Storage struct {
	// DB holds the relational database connection settings.
	DB DB `envPrefix:"DB_"`
}

// App holds application-level configuration values that control security,
// token lifecycle, and versioning.
type App struct {
	// TokenSignKey is the secret key used to sign and verify JWT tokens.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim validated on every authenticated request.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration specifies how long an issued JWT token remains valid
	// (e.g. "1h", "30m").
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// HashKey is the HMAC key used for request integrity checking
	// (the Hash header on write batches).
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// Version is the semantic version string of the running application.
	// Exposed via the /api/version/ endpoint.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the TCP address on which the HTTP server listens,
	// in "host:port" format (e.g. "0.0.0.0:8080").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request before the server cancels it (e.g. "30s", "1m").
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// DB holds connection settings for the relational database backend.
type DB struct {
	// DSN is the Data Source Name used to open the database connection.
	// A "postgres://" DSN selects PostgreSQL, anything else is treated as
	// a SQLite file path.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Adapter holds the outbound transport settings of the client.
type Adapter struct {
	// HTTPAddress is the base address of the remote store
	// (e.g. "localhost:8080").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single outbound request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// Token is the bearer token presented to the remote store. It is issued
	// by the surrounding authentication system.
	// Env: ADAPTER_TOKEN
	Token string `env:"TOKEN"`
}

// Workers holds timing settings of the client reconciliation loop.
type Workers struct {
	// SyncInterval is the period of the maintenance resync tick.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// DebounceWindow is how long local edits are coalesced before a push.
	// Env: WORKERS_DEBOUNCE_WINDOW
	DebounceWindow time.Duration `env:"DEBOUNCE_WINDOW"`

	// SilentConcurrentAdds merges a task added on both sides with the same id
	// without reporting its field differences as conflicts.
	// Env: WORKERS_SILENT_CONCURRENT_ADDS
	SilentConcurrentAdds bool `env:"SILENT_CONCURRENT_ADDS"`
}

// Client holds the document-level settings of the client.
type Client struct {
	// DocumentID is the remote document this client keeps in sync.
	// Env: CLIENT_DOCUMENT_ID
	DocumentID string `env:"DOCUMENT_ID"`

	// WorkingCopy is the JSON file the document is mirrored into. Saving
	// the file counts as a local edit.
	// Env: CLIENT_WORKING_COPY
	WorkingCopy string `env:"WORKING_COPY"`

	// LogFile is the rotating log file of the client. Empty means stdout.
	// Env: CLIENT_LOG_FILE
	LogFile string `env:"LOG_FILE"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (last source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
