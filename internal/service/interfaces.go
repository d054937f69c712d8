package service

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/go-task-keeper/models"
)

// NodeService is the server side of the remote document store.
type NodeService interface {
	// Get returns the value stored under path.
	Get(ctx context.Context, path string) (json.RawMessage, error)

	// Set applies a write batch on behalf of the user in ctx. Every touched
	// document gets its clock advanced and its last writer recorded, and the
	// user's clock is advanced, all in one transaction. Subscribers are
	// notified after commit.
	Set(ctx context.Context, req models.SetRequest) (models.SetResponse, error)

	// Subscribe returns the current value of path and a feed of later
	// changes. cancel must be called to release the feed.
	Subscribe(ctx context.Context, path string) (initial models.Change, updates <-chan models.Change, cancel func(), err error)
}

type AuthService interface {
	CreateToken(ctx context.Context, userID string) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetAppInfo(ctx context.Context) models.VersionInfo
}

// Broker fans committed changes out to subscribers of their path.
type Broker interface {
	Subscribe(path string) (<-chan models.Change, func())
	Publish(change models.Change)
}

// NodeServiceWrapper defines middleware composition for NodeService.
// Implementations wrap an existing NodeService to add behavior such as
// logging or validating.
type NodeServiceWrapper interface {
	Wrap(NodeService) NodeService // returns a decorated NodeService applying additional behavior
}
