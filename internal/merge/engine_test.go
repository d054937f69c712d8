package merge

import (
	"testing"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/tree"
	"github.com/MKhiriev/go-task-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func n(id, value string, children ...models.TreeNode) models.TreeNode {
	return models.TreeNode{ID: models.NodeID(id), NodeContent: models.NodeContent{Value: value}, Children: children}
}

func trash(children ...models.TreeNode) models.TreeNode {
	return models.TreeNode{ID: models.TrashID, Children: children}
}

func baseForest() models.Forest {
	return models.Forest{
		n("1", "Groceries", n("2", "Milk"), n("3", "Bread")),
		n("4", "Work"),
		trash(),
	}
}

func newEngine() *Engine {
	return NewEngine(logger.Nop())
}

func mustFind(t *testing.T, f models.Forest, id models.NodeID) models.TreeNode {
	t.Helper()
	node, ok := tree.Find(f, id)
	require.True(t, ok, "node %s not found", id)
	return node
}

// ── degenerate inputs ─────────────────────────────────────────────────────────

func TestForests_NoBaseReturnsServer(t *testing.T) {
	local := models.Forest{n("1", "local"), trash()}
	server := models.Forest{n("1", "server"), trash()}

	for name, base := range map[string]models.Forest{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			res := newEngine().Forests(base, local, server)
			assert.Equal(t, server, res.Merged)
			assert.False(t, res.HasConflicts)
			assert.Empty(t, res.ConflictDetails)
		})
	}
}

func TestForests_NoOp(t *testing.T) {
	res := newEngine().Forests(baseForest(), baseForest(), baseForest())

	assert.True(t, tree.Equal(baseForest(), res.Merged))
	assert.False(t, res.HasConflicts)
}

func TestForests_OneSideOnly(t *testing.T) {
	changed := models.Forest{
		n("5", "New first"),
		n("1", "Groceries!", n("3", "Bread")),
		n("4", "Work", n("2", "Milk")),
		trash(),
	}

	t.Run("local", func(t *testing.T) {
		res := newEngine().Forests(baseForest(), changed, baseForest())
		assert.True(t, tree.Equal(changed, res.Merged), "got %+v", res.Merged)
		assert.False(t, res.HasConflicts)
	})

	t.Run("server", func(t *testing.T) {
		res := newEngine().Forests(baseForest(), baseForest(), changed)
		assert.True(t, tree.Equal(changed, res.Merged), "got %+v", res.Merged)
		assert.False(t, res.HasConflicts)
	})
}

// ── field merge ───────────────────────────────────────────────────────────────

func TestForests_DisjointNodesMergeSilently(t *testing.T) {
	local := baseForest()
	local[0].Children[0].Value = "Oat milk"
	server := baseForest()
	server[1].Value = "Office"

	res := newEngine().Forests(baseForest(), local, server)

	assert.False(t, res.HasConflicts)
	assert.Equal(t, "Oat milk", mustFind(t, res.Merged, "2").Value)
	assert.Equal(t, "Office", mustFind(t, res.Merged, "4").Value)
}

func TestForests_FieldConflictServerWins(t *testing.T) {
	base := models.Forest{n("x", "Original"), trash()}
	local := models.Forest{n("x", "Local edit"), trash()}
	server := models.Forest{n("x", "Server edit"), trash()}

	res := newEngine().Forests(base, local, server)

	require.True(t, res.HasConflicts)
	require.Len(t, res.ConflictDetails, 1)
	d := res.ConflictDetails[0]
	assert.Equal(t, models.NodeID("x"), d.ItemID)
	assert.Equal(t, models.FieldValue, d.Field)
	assert.Equal(t, "Local edit", d.LocalValue)
	assert.Equal(t, "Server edit", d.ServerValue)
	assert.Equal(t, models.ResolutionServerWins, d.Resolution)
	assert.Equal(t, "Server edit", mustFind(t, res.Merged, "x").Value)
}

func TestForests_SameChangeBothSidesIsNotAConflict(t *testing.T) {
	base := models.Forest{n("x", "Original"), trash()}
	both := models.Forest{n("x", "Same"), trash()}

	res := newEngine().Forests(base, both, both)

	assert.False(t, res.HasConflicts)
	assert.Equal(t, "Same", mustFind(t, res.Merged, "x").Value)
}

// TestForests_DisjointFieldsOfOneNode renames a task locally while the server
// completes it.
func TestForests_DisjointFieldsOfOneNode(t *testing.T) {
	base := models.Forest{n("1", "Task"), trash()}
	local := models.Forest{n("1", "Task renamed"), trash()}
	server := models.Forest{{ID: "1", NodeContent: models.NodeContent{Value: "Task", Done: true}}, trash()}

	res := newEngine().Forests(base, local, server)

	assert.False(t, res.HasConflicts)
	got := mustFind(t, res.Merged, "1")
	assert.Equal(t, "Task renamed", got.Value)
	assert.True(t, got.Done)
}

func TestForests_EveryTrackedFieldConflicts(t *testing.T) {
	base := models.Forest{{ID: "x"}, trash()}
	local := models.Forest{{ID: "x", NodeContent: models.NodeContent{
		Value: "l", Done: true, Collapsed: true, File: "l.txt", TimerStart: 1, TimerTotal: 1,
	}}, trash()}
	server := models.Forest{{ID: "x", NodeContent: models.NodeContent{
		Value: "s", Done: false, Collapsed: false, File: "s.txt", TimerStart: 2, TimerTotal: 2,
	}}, trash()}
	// done/collapsed: server kept base, so local wins silently
	res := newEngine().Forests(base, local, server)

	fields := make([]string, 0, len(res.ConflictDetails))
	for _, d := range res.ConflictDetails {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{models.FieldValue, models.FieldFile, models.FieldTimerStart, models.FieldTimerTotal}, fields)

	got := mustFind(t, res.Merged, "x")
	assert.Equal(t, "s", got.Value)
	assert.True(t, got.Done)
	assert.True(t, got.Collapsed)
	assert.Equal(t, int64(2), got.TimerTotal)
}

// ── presence cases ────────────────────────────────────────────────────────────

func TestForests_DeleteVersusModify(t *testing.T) {
	base := models.Forest{n("y", "Keep me"), n("z", "Other"), trash()}
	deleted := models.Forest{n("z", "Other"), trash()}
	modified := models.Forest{n("y", "Modified"), n("z", "Other"), trash()}

	t.Run("local delete, server edit", func(t *testing.T) {
		res := newEngine().Forests(base, deleted, modified)
		assert.Equal(t, "Modified", mustFind(t, res.Merged, "y").Value)
		assert.False(t, res.HasConflicts)
	})

	t.Run("server delete, local edit", func(t *testing.T) {
		res := newEngine().Forests(base, modified, deleted)
		assert.Equal(t, "Modified", mustFind(t, res.Merged, "y").Value)
	})

	t.Run("delete of unchanged node wins", func(t *testing.T) {
		res := newEngine().Forests(base, deleted, base)
		_, ok := tree.Find(res.Merged, "y")
		assert.False(t, ok)

		res = newEngine().Forests(base, base, deleted)
		_, ok = tree.Find(res.Merged, "y")
		assert.False(t, ok)
	})

	t.Run("deleted on both sides", func(t *testing.T) {
		res := newEngine().Forests(base, deleted, deleted)
		_, ok := tree.Find(res.Merged, "y")
		assert.False(t, ok)
	})
}

func TestForests_AddedOnEachSide(t *testing.T) {
	local := append(baseForest(), n("L", "local new"))
	server := append(baseForest(), n("S", "server new"))

	res := newEngine().Forests(baseForest(), local, server)

	assert.False(t, res.HasConflicts)
	mustFind(t, res.Merged, "L")
	mustFind(t, res.Merged, "S")
	assert.Equal(t, 7, tree.Size(res.Merged))
}

func TestForests_AddedOnBothSidesWithSameID(t *testing.T) {
	local := append(baseForest(), models.TreeNode{ID: "new", NodeContent: models.NodeContent{Value: "local", Done: true}})
	server := append(baseForest(), n("new", "server"))

	t.Run("differences reported", func(t *testing.T) {
		res := newEngine().Forests(baseForest(), local, server)

		require.True(t, res.HasConflicts)
		assert.Len(t, res.ConflictDetails, 2)
		got := mustFind(t, res.Merged, "new")
		assert.Equal(t, "server", got.Value)
		assert.False(t, got.Done)
	})

	t.Run("silent", func(t *testing.T) {
		res := NewEngine(logger.Nop(), WithSilentConcurrentAdds()).Forests(baseForest(), local, server)

		assert.False(t, res.HasConflicts)
		assert.Equal(t, "server", mustFind(t, res.Merged, "new").Value)
	})

	t.Run("identical adds", func(t *testing.T) {
		res := newEngine().Forests(baseForest(), server, server)
		assert.False(t, res.HasConflicts)
	})
}

// ── structure ─────────────────────────────────────────────────────────────────

func TestForests_PositionMerge(t *testing.T) {
	// base: 1[2,3], 4, trash
	movedLocally := models.Forest{n("1", "Groceries", n("3", "Bread")), n("4", "Work", n("2", "Milk")), trash()}
	movedOnServer := models.Forest{n("1", "Groceries", n("2", "Milk")), n("4", "Work"), trash(n("3", "Bread"))}

	t.Run("only local moved", func(t *testing.T) {
		res := newEngine().Forests(baseForest(), movedLocally, baseForest())
		assert.Equal(t, models.NodeID("2"), mustFind(t, res.Merged, "4").Children[0].ID)
	})

	t.Run("both moved, server wins", func(t *testing.T) {
		local := models.Forest{n("1", "Groceries", n("2", "Milk")), n("4", "Work", n("3", "Bread")), trash()}
		res := newEngine().Forests(baseForest(), local, movedOnServer)

		assert.Empty(t, mustFind(t, res.Merged, "4").Children)
		tr := mustFind(t, res.Merged, models.TrashID)
		require.Len(t, tr.Children, 1)
		assert.Equal(t, models.NodeID("3"), tr.Children[0].ID)
		assert.False(t, res.HasConflicts, "moves are not content conflicts")
	})

	t.Run("independent moves of different nodes", func(t *testing.T) {
		local := models.Forest{n("1", "Groceries", n("3", "Bread"), n("2", "Milk")), n("4", "Work"), trash()}
		server := models.Forest{n("4", "Work"), n("1", "Groceries", n("2", "Milk"), n("3", "Bread")), trash()}
		res := newEngine().Forests(baseForest(), local, server)

		want := models.Forest{n("4", "Work"), n("1", "Groceries", n("3", "Bread"), n("2", "Milk")), trash()}
		assert.True(t, tree.Equal(want, res.Merged), "got %+v", res.Merged)
		assert.Equal(t, 5, tree.Size(res.Merged))
		assert.False(t, res.HasConflicts)
	})
}

func TestForests_RestoredChildOfDeletedParentIsNotLost(t *testing.T) {
	// local deletes the whole "1" subtree, server edits child "2"
	local := models.Forest{n("4", "Work"), trash()}
	server := baseForest()
	server[0].Children[0].Value = "Oat milk"

	res := newEngine().Forests(baseForest(), local, server)

	assert.Equal(t, "Oat milk", mustFind(t, res.Merged, "2").Value)
	_, ok := tree.Find(res.Merged, "1")
	assert.False(t, ok)
}

func TestForests_TrashSurvives(t *testing.T) {
	noTrash := models.Forest{n("1", "Groceries", n("2", "Milk"), n("3", "Bread")), n("4", "Work")}

	tests := []struct {
		name                string
		base, local, server models.Forest
	}{
		{name: "only in base", base: baseForest(), local: noTrash, server: noTrash},
		{name: "deleted locally", base: baseForest(), local: noTrash, server: baseForest()},
		{name: "deleted on server", base: baseForest(), local: baseForest(), server: noTrash},
		{name: "only in local", base: noTrash, local: baseForest(), server: noTrash},
		{name: "only on server", base: noTrash, local: noTrash, server: baseForest()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newEngine().Forests(tt.base, tt.local, tt.server)
			mustFind(t, res.Merged, models.TrashID)
		})
	}
}

func TestForests_InputsAreNotMutated(t *testing.T) {
	base, local, server := baseForest(), baseForest(), baseForest()
	local[0].Value = "changed"

	res := newEngine().Forests(base, local, server)
	res.Merged[0].Children[0].Value = "mutated"

	assert.Equal(t, "Milk", server[0].Children[0].Value)
	assert.Equal(t, "Milk", local[0].Children[0].Value)
}
