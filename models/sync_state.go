package models

// PersistedState is the serialisable form of an entity's sync state. It lets
// a client restart without losing track of unsynced edits.
type PersistedState[T any] struct {
	Dirty          bool   `json:"dirty"`
	BaseSnapshot   *T     `json:"baseSnapshot,omitempty"`
	BaseHash       string `json:"baseHash,omitempty"`
	LastServerHash string `json:"lastServerHash,omitempty"`
}
