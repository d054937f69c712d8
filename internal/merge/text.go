package merge

import (
	"github.com/MKhiriev/go-task-keeper/models"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffCleanupThreshold is the diff count above which diffs are cleaned up
// before patches are made from them.
const diffCleanupThreshold = 2

// Text merges a plain text entity such as the memo. The local changes
// against base are turned into patches and applied onto the server text.
// Hunks that no longer apply are dropped, leaving the server text in place,
// and reported as one conflict.
func (e *Engine) Text(base, local, server string) (string, []models.ConflictDetail) {
	switch {
	case local == server, local == base:
		return server, nil
	case server == base:
		return local, nil
	}

	dmp := diffmatchpatch.New()

	diffs := dmp.DiffMain(base, local, true)
	if len(diffs) > diffCleanupThreshold {
		diffs = dmp.DiffCleanupSemantic(diffs)
		diffs = dmp.DiffCleanupEfficiency(diffs)
	}

	patches := dmp.PatchMake(base, diffs)
	merged, applied := dmp.PatchApply(patches, server)

	failed := 0
	for _, ok := range applied {
		if !ok {
			failed++
		}
	}
	if failed == 0 {
		return merged, nil
	}

	e.logger.Warn().Str("func", "*Engine.Text").
		Int("failed", failed).
		Int("patches", len(applied)).
		Msg("memo patches failed to apply, server text kept for them")

	return merged, []models.ConflictDetail{{
		ItemID:      models.MemoItemID,
		Field:       models.FieldMemo,
		LocalValue:  local,
		ServerValue: server,
		Resolution:  models.ResolutionServerWins,
	}}
}
