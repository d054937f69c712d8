package adapter

import "errors"

// Transport errors returned by [RemoteStore]. Every HTTP failure wraps one of
// them, followed by the response body.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("write rejected by remote store")
	ErrNotFound            = errors.New("path not found")
	ErrBadGateway          = errors.New("remote store unreachable")
	ErrInternalServerError = errors.New("internal server error")

	ErrInvalidAddress = errors.New("invalid remote store address")
	ErrEmptyPath      = errors.New("empty path")
)
