package syncstate

import (
	"testing"

	"github.com/MKhiriev/go-task-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forest(value string) models.Forest {
	return models.Forest{
		{ID: "1", NodeContent: models.NodeContent{Value: value}},
		{ID: models.TrashID},
	}
}

func TestState_InitiallyEmpty(t *testing.T) {
	s := NewForest()

	assert.False(t, s.Dirty())
	_, ok := s.BaseSnapshot()
	assert.False(t, ok)
	assert.Empty(t, s.BaseHash())
	assert.Empty(t, s.LastServerHash())
}

// TestState_MarkDirtyIsIdempotent verifies that repeated edits leave the
// agreed base untouched.
func TestState_MarkDirtyIsIdempotent(t *testing.T) {
	s := NewForest()
	s.SetBaseFromServer(forest("Task"), "h1")

	s.MarkDirty()
	base1, _ := s.BaseSnapshot()
	hash1 := s.BaseHash()

	s.MarkDirty()
	base2, ok := s.BaseSnapshot()

	require.True(t, ok)
	assert.True(t, s.Dirty())
	assert.Equal(t, base1, base2)
	assert.Equal(t, hash1, s.BaseHash())
	assert.Equal(t, "h1", s.BaseHash())
}

func TestState_SetBaseFromServer(t *testing.T) {
	s := NewForest()
	s.MarkDirty()

	s.SetBaseFromServer(forest("Task"), "h1")

	assert.False(t, s.Dirty())
	assert.Equal(t, "h1", s.BaseHash())
	assert.Equal(t, "h1", s.LastServerHash())
	base, ok := s.BaseSnapshot()
	require.True(t, ok)
	assert.Equal(t, forest("Task"), base)
}

func TestState_ClearDirtyKeepsLastServerHash(t *testing.T) {
	s := NewForest()
	s.SetBaseFromServer(forest("Task"), "h1")
	s.MarkDirty()

	s.ClearDirty()

	assert.False(t, s.Dirty())
	_, ok := s.BaseSnapshot()
	assert.False(t, ok)
	assert.Empty(t, s.BaseHash())
	assert.Equal(t, "h1", s.LastServerHash())
}

func TestState_SetServerHashOnlyTouchesLastServerHash(t *testing.T) {
	s := NewForest()
	s.SetBaseFromServer(forest("Task"), "h1")
	s.MarkDirty()

	s.SetServerHash("h2")

	assert.True(t, s.Dirty())
	assert.Equal(t, "h1", s.BaseHash())
	assert.Equal(t, "h2", s.LastServerHash())
}

func TestState_SnapshotsAreCopied(t *testing.T) {
	s := NewForest()
	f := forest("Task")
	s.SetBaseFromServer(f, "h1")

	f[0].Value = "mutated by caller"
	base, _ := s.BaseSnapshot()
	assert.Equal(t, "Task", base[0].Value)

	base[0].Value = "mutated copy"
	again, _ := s.BaseSnapshot()
	assert.Equal(t, "Task", again[0].Value)
}

func TestState_PersistRestore(t *testing.T) {
	s := NewForest()
	s.SetBaseFromServer(forest("Task"), "h1")
	s.MarkDirty()
	s.SetServerHash("h2")

	restored := NewForest()
	restored.Restore(s.Persist())

	assert.True(t, restored.Dirty())
	assert.Equal(t, "h1", restored.BaseHash())
	assert.Equal(t, "h2", restored.LastServerHash())
	base, ok := restored.BaseSnapshot()
	require.True(t, ok)
	assert.Equal(t, forest("Task"), base)

	empty := NewText()
	empty.Restore(models.PersistedState[string]{})
	_, ok = empty.BaseSnapshot()
	assert.False(t, ok)
}

func TestTracker_ResetAll(t *testing.T) {
	tr := NewTracker()
	tr.Items.SetBaseFromServer(forest("Task"), "h1")
	tr.Items.MarkDirty()
	tr.Memo.SetBaseFromServer("memo", "m1")

	tr.ResetAll()

	for _, s := range []interface {
		Dirty() bool
		BaseHash() string
		LastServerHash() string
	}{tr.Items, tr.Memo} {
		assert.False(t, s.Dirty())
		assert.Empty(t, s.BaseHash())
		assert.Empty(t, s.LastServerHash())
	}
	_, ok := tr.Items.BaseSnapshot()
	assert.False(t, ok)
	_, ok = tr.Memo.BaseSnapshot()
	assert.False(t, ok)
}
