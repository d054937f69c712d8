// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package merge

import (
	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/tree"
	"github.com/MKhiriev/go-task-keeper/models"
)

// Engine runs three-way merges. It is stateless apart from its options and
// safe for concurrent use.
type Engine struct {
	silentConcurrentAdds bool
	logger               *logger.Logger
}

// Option configures an [Engine].
type Option func(*Engine)

// WithSilentConcurrentAdds makes a node added on both sides with the same id
// merge with the local copy standing in for the missing base. Field changes
// are then taken from the server without being reported. By default such
// differences are reported as conflicts.
func WithSilentConcurrentAdds() Option {
	return func(e *Engine) {
		e.silentConcurrentAdds = true
	}
}

// NewEngine returns a merge engine.
func NewEngine(logger *logger.Logger, opts ...Option) *Engine {
	e := &Engine{logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Forests merges local and server against base.
//
// With no base (nil or empty, e.g. a first sync) the server copy is returned
// as is. Otherwise every id from the three inputs is classified by where it
// is present and resolved field by field; positions are merged separately
// from content. The reserved trash node is kept whenever any input has it.
func (e *Engine) Forests(base, local, server models.Forest) models.MergeResult {
	if len(base) == 0 {
		return models.MergeResult{Merged: tree.Clone(server)}
	}

	baseFlat, localFlat, serverFlat := tree.Flatten(base), tree.Flatten(local), tree.Flatten(server)
	baseByID, localByID, serverByID := index(baseFlat), index(localFlat), index(serverFlat)

	conflicts := &conflictLog{}
	merged := make([]models.FlattenedNode, 0, len(serverFlat)+len(localFlat))

	for _, id := range union(serverFlat, localFlat, baseFlat) {
		b, inBase := baseByID[id]
		l, inLocal := localByID[id]
		s, inServer := serverByID[id]

		switch {
		case inBase && !inLocal && !inServer:
			// deleted on both sides
			if id == models.TrashID {
				merged = append(merged, b)
			}

		case inBase && !inLocal && inServer:
			// deleted locally: a concurrent server edit restores the node
			if s.NodeContent != b.NodeContent || id == models.TrashID {
				merged = append(merged, s)
			}

		case inBase && inLocal && !inServer:
			// deleted on the server: a concurrent local edit restores the node
			if l.NodeContent != b.NodeContent || id == models.TrashID {
				merged = append(merged, l)
			}

		case !inBase && inLocal && !inServer:
			merged = append(merged, l)

		case !inBase && !inLocal && inServer:
			merged = append(merged, s)

		case !inBase && inLocal && inServer:
			node := s
			if e.silentConcurrentAdds {
				node.NodeContent = mergeContent(conflicts, id, l.NodeContent, l.NodeContent, s.NodeContent, true)
			} else {
				node.NodeContent = mergeContent(conflicts, id, models.NodeContent{}, l.NodeContent, s.NodeContent, false)
			}
			merged = append(merged, node)

		case inBase && inLocal && inServer:
			node := mergePosition(b, l, s)
			node.NodeContent = mergeContent(conflicts, id, b.NodeContent, l.NodeContent, s.NodeContent, true)
			merged = append(merged, node)

		default:
			e.logger.Error().Str("func", "*Engine.Forests").
				Str("id", id.String()).
				Msg("id from the union is missing from every input, skipping")
		}
	}

	// Build groups the result by parent and orders every group by index,
	// keeping union order (server first) for equal indexes.
	return models.MergeResult{
		Merged:          tree.Build(merged),
		HasConflicts:    len(conflicts.details) > 0,
		ConflictDetails: conflicts.details,
	}
}

// mergePosition takes the position of whichever side moved the node. When
// both moved it the server wins; when neither did the base position is kept.
func mergePosition(b, l, s models.FlattenedNode) models.FlattenedNode {
	localMoved := l.ParentID != b.ParentID || l.Index != b.Index
	serverMoved := s.ParentID != b.ParentID || s.Index != b.Index

	switch {
	case serverMoved:
		return s
	case localMoved:
		return l
	default:
		return b
	}
}

func index(nodes []models.FlattenedNode) map[models.NodeID]models.FlattenedNode {
	out := make(map[models.NodeID]models.FlattenedNode, len(nodes))
	for _, n := range nodes {
		if _, dup := out[n.ID]; !dup {
			out[n.ID] = n
		}
	}
	return out
}

// union lists every id once, in the order of the first list that has it.
func union(lists ...[]models.FlattenedNode) []models.NodeID {
	seen := make(map[models.NodeID]struct{})
	var ids []models.NodeID
	for _, list := range lists {
		for _, n := range list {
			if _, ok := seen[n.ID]; ok {
				continue
			}
			seen[n.ID] = struct{}{}
			ids = append(ids, n.ID)
		}
	}
	return ids
}
