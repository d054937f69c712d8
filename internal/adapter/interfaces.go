// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the client's view of the remote document store.
//
// The primary abstraction is [RemoteStore], which decouples the sync session
// from the underlying protocol. The package ships an HTTP implementation
// ([NewHTTPRemoteStore]) that reads and writes over REST and receives change
// notifications over a websocket.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrForbidden] for 403, [ErrNotFound] for 404).
package adapter

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/go-task-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_store_mock.go -package=mock

// RemoteStore is the authoritative path/value store shared by all clients.
type RemoteStore interface {
	// SetToken stores the bearer token attached to all subsequent requests.
	SetToken(token string)

	// Token returns the bearer token currently held by the adapter.
	Token() string

	// Get reads the value stored under path. Returns [ErrNotFound] (wrapped)
	// when nothing is stored there yet.
	Get(ctx context.Context, path string) (json.RawMessage, error)

	// Set writes a batch of values atomically. The transport integrity hash
	// is computed automatically. The response carries the clocks the write
	// advanced. Returns [ErrForbidden] (wrapped) when the store rejects the
	// write.
	Set(ctx context.Context, req models.SetRequest) (models.SetResponse, error)

	// Subscribe calls callback with the current value of path and then on
	// every change, until ctx is done or the subscription is closed. A lost
	// connection is re-established with rate-limited backoff.
	Subscribe(ctx context.Context, path string, callback func(models.Change)) (Subscription, error)
}

// Subscription is a live change feed returned by [RemoteStore.Subscribe].
type Subscription interface {
	// Close stops the feed. No callback runs after Close returns.
	Close()
}
