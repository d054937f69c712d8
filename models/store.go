package models

import "encoding/json"

// PathValue is a single write of a remote store batch.
type PathValue struct {
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

// SetRequest is a batch write to the remote store. Writer is the opaque tag
// of the session that produced the write; Hash is the HMAC of the JSON
// encoded Values used for transport integrity.
type SetRequest struct {
	Values []PathValue `json:"values"`
	Writer string      `json:"writer"`
	Hash   string      `json:"hash"`
}

// SetResponse acknowledges a batch write. Clocks maps every clock path the
// write advanced to its new value.
type SetResponse struct {
	Clocks map[string]int64 `json:"clocks"`
}

// Clock returns the acknowledged value of the given clock path.
func (r SetResponse) Clock(path string) (int64, bool) {
	v, ok := r.Clocks[path]
	return v, ok
}

// Change is pushed to subscribers of a path, first with the current value
// and then on every write.
type Change struct {
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}
