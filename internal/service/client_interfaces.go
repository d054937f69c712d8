package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-task-keeper/models"
)

// ClientSyncService keeps one document of the local replica in sync with the
// remote store. Local edits are pushed after a debounce window; remote
// changes are adopted or three-way merged when the document clock advances.
//
// All sync state is owned by a single session goroutine. The methods below
// only hand work to it.
type ClientSyncService interface {
	// Open loads the document's content and sync state from the local
	// replica, subscribes to the document clock and starts the session.
	// Offline edits left dirty by a previous run are scheduled for push.
	Open(ctx context.Context, docID string) error

	// EditItems records a local edit of the task forest. The entity becomes
	// dirty and the debounce window restarts.
	EditItems(items models.Forest) error

	// EditMemo records a local edit of the memo.
	EditMemo(memo string) error

	// Document returns a copy of the current local content.
	Document() models.Document

	// Flush pushes every dirty entity now, without waiting for the debounce
	// window. Returns the joined push errors.
	Flush(ctx context.Context) error

	// Resync reads the current document clock and reconciles both entities
	// as if a change notification had arrived, then pushes what is still
	// dirty. Used for manual retries and by the maintenance job.
	Resync(ctx context.Context) error

	// Updates delivers adopted remote content, merge conflicts and push
	// failures of the open session. Each Open starts a new channel; it is
	// closed by Close and Logout. Nil while no session is open.
	Updates() <-chan models.SessionUpdate

	// Close cancels pending debounce timers and the subscription and
	// discards in-flight results. Persisted state is kept.
	Close()

	// Logout closes the session and wipes the sync state and the local
	// replica.
	Logout(ctx context.Context) error
}

// ClientSyncJob defines the contract for a background worker that
// periodically resyncs the open document.
type ClientSyncJob interface {
	// Start launches the background goroutine. It resyncs every interval,
	// defaulting to 5 minutes if interval is zero or negative. Any previously
	// running job is stopped before the new one begins.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the background goroutine to exit and blocks until it has
	// fully terminated.
	Stop()
}
