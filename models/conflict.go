package models

// Resolution names how a concurrent change of one field was settled.
type Resolution string

const (
	// ResolutionServerWins marks a field both sides changed to different
	// values; the server's value was kept.
	ResolutionServerWins Resolution = "server-wins"
	// ResolutionMerged marks non-overlapping changes combined into one.
	ResolutionMerged Resolution = "merged"
)

// Field names reported in [ConflictDetail.Field].
const (
	FieldValue      = "value"
	FieldDone       = "done"
	FieldCollapsed  = "collapsed"
	FieldFile       = "file"
	FieldTimerStart = "timerStart"
	FieldTimerTotal = "timerTotal"
	FieldMemo       = "memo"
)

// MemoItemID is the item id reported for conflicts inside the memo text.
const MemoItemID NodeID = "memo"

// ConflictDetail describes one field both sides changed to different values.
// Produced fresh by each merge and never persisted.
type ConflictDetail struct {
	ItemID      NodeID     `json:"itemId"`
	Field       string     `json:"field"`
	LocalValue  any        `json:"localValue"`
	ServerValue any        `json:"serverValue"`
	Resolution  Resolution `json:"resolution"`
}

// MergeResult is the outcome of a three-way forest merge.
type MergeResult struct {
	Merged          Forest           `json:"merged"`
	HasConflicts    bool             `json:"hasConflicts"`
	ConflictDetails []ConflictDetail `json:"conflictDetails,omitempty"`
}
