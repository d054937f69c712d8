package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyNodeID     = errors.New("node id is required")
	ErrDuplicateNodeID = errors.New("duplicate node id")
	ErrMissingTrash    = errors.New("trash node is missing")
	ErrNestedTrash     = errors.New("trash node must be at the top level")
	ErrUnreachableNode = errors.New("node is not reachable from a root")
	ErrMemoTooLong     = errors.New("memo exceeds the size limit")
	ErrInvalidMemo     = errors.New("memo is not valid UTF-8")
	ErrEmptyBatch      = errors.New("write batch cannot be empty")
	ErrInvalidPath     = errors.New("invalid store path")
	ErrInvalidValue    = errors.New("invalid value for path")
)
