package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrVersionIsNotSpecified   = errors.New("app version is not specified")

	ErrNoUserID          = errors.New("no user ID in request context")
	ErrForeignNamespace  = errors.New("write to another user's namespace")
	ErrServerManagedPath = errors.New("path is managed by the server")
	ErrUnknownNamespace  = errors.New("path is outside of any writable namespace")
)

// Client-side errors.
var (
	ErrSessionClosed       = errors.New("sync session is closed")
	ErrDocumentIDRequired  = errors.New("document id is required")
	ErrRemoteWriteRejected = errors.New("remote store rejected the write")
	ErrRemoteFetchFailed   = errors.New("remote fetch failed")
	ErrPushFailed          = errors.New("push failed")
)
