package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrNotFound is returned when no node is stored under the requested path.
	ErrNotFound = errors.New("path is not found")

	// ErrReplicaKeyNotFound is returned when the local replica has no value
	// under the requested key.
	ErrReplicaKeyNotFound = errors.New("replica key is not found")

	// ErrInvalidClock is returned when a clock path holds something that is
	// not an integer.
	ErrInvalidClock = errors.New("clock value is not an integer")
)

// Low-level database operation errors. Repository methods wrap these when a
// SQL-level operation fails before any domain logic can be applied.
var (
	ErrBuildingSQLQuery     = errors.New("error building sql query")
	ErrExecutingQuery       = errors.New("error executing sql query")
	ErrBeginningTransaction = errors.New("failed to begin transaction")
	ErrCommitingTransaction = errors.New("failed to commit transaction")
	ErrExecutingStatement   = errors.New("failed to executing statement")
	ErrScanningRow          = errors.New("failed to scan row")
)
