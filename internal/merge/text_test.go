package merge

import (
	"testing"

	"github.com/MKhiriev/go-task-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_TrivialCases(t *testing.T) {
	e := newEngine()

	got, conflicts := e.Text("base", "base", "server")
	assert.Equal(t, "server", got)
	assert.Empty(t, conflicts)

	got, conflicts = e.Text("base", "local", "base")
	assert.Equal(t, "local", got)
	assert.Empty(t, conflicts)

	got, conflicts = e.Text("base", "same", "same")
	assert.Equal(t, "same", got)
	assert.Empty(t, conflicts)
}

func TestText_DisjointEditsMerge(t *testing.T) {
	base := "Buy milk.\nCall mom.\nWrite report.\n"
	local := "Buy oat milk.\nCall mom.\nWrite report.\n"
	server := "Buy milk.\nCall mom.\nWrite the quarterly report.\n"

	got, conflicts := newEngine().Text(base, local, server)

	assert.Empty(t, conflicts)
	assert.Equal(t, "Buy oat milk.\nCall mom.\nWrite the quarterly report.\n", got)
}

// TestText_UnapplicablePatchIsReported edits a memo locally that the server
// meanwhile cleared.
func TestText_UnapplicablePatchIsReported(t *testing.T) {
	base := "alpha beta gamma"
	local := "alpha BETA gamma"
	server := ""

	got, conflicts := newEngine().Text(base, local, server)

	require.Len(t, conflicts, 1)
	assert.Equal(t, models.MemoItemID, conflicts[0].ItemID)
	assert.Equal(t, models.FieldMemo, conflicts[0].Field)
	assert.Equal(t, models.ResolutionServerWins, conflicts[0].Resolution)
	assert.Equal(t, server, got)
}
