package models

import "strings"

// Entity names one independently synchronized part of a document.
type Entity string

const (
	EntityItems Entity = "items"
	EntityMemo  Entity = "memo"
)

// Document is the full content of a synchronized document. It is also the
// format of the client's working copy file.
type Document struct {
	Items Forest `json:"items"`
	Memo  string `json:"memo"`
}

// Leaf names of the document paths in the remote store.
const (
	LeafItems      = "items"
	LeafMemo       = "memo"
	LeafClock      = "clock"
	LeafLastWriter = "lastWriter"
)

const (
	documentsRoot = "documents"
	usersRoot     = "users"
)

// DocumentPath returns the remote path of a document leaf, for example
// "documents/{docID}/items".
func DocumentPath(docID, leaf string) string {
	return documentsRoot + "/" + docID + "/" + leaf
}

// UserClockPath returns the remote path of a user's logical clock.
func UserClockPath(userID string) string {
	return usersRoot + "/" + userID + "/" + LeafClock
}

// ParseDocumentPath splits "documents/{docID}/{leaf}" into its parts.
func ParseDocumentPath(path string) (docID, leaf string, ok bool) {
	parts := strings.Split(path, "/")
	if len(parts) != 3 || parts[0] != documentsRoot || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// ParseUserPath returns the user id of a path under "users/{userID}/".
func ParseUserPath(path string) (userID string, ok bool) {
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] != usersRoot || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// SessionUpdate is published by a client session whenever remote content was
// adopted or merged into the local replica, or a push of Entity failed.
type SessionUpdate struct {
	Entity    Entity           `json:"entity"`
	Document  Document         `json:"document"`
	Conflicts []ConflictDetail `json:"conflicts,omitempty"`
	Err       error            `json:"-"`
}
