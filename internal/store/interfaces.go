package store

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/go-task-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// NodeRepository is the server-side path/value store backing the remote
// document store.
type NodeRepository interface {
	// Get returns the JSON value stored under path or [ErrNotFound].
	Get(ctx context.Context, path string) (json.RawMessage, error)

	// Apply writes values and advances every clock path in increments by one,
	// atomically. It returns the new value of each advanced clock.
	Apply(ctx context.Context, values []models.PathValue, increments []string) (map[string]int64, error)
}

// LocalReplica is the durable key-value cache of the client. It holds the
// last synced content and the sync state of every entity across restarts.
type LocalReplica interface {
	// Get returns the value stored under key or [ErrReplicaKeyNotFound].
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
}
