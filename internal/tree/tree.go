// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tree converts a task forest into an address-stable flat list and
// back. Every component that reasons about positions (merging, validation,
// hashing) works on the flat form and re-nests only the final result.
package tree

import (
	"slices"

	"github.com/MKhiriev/go-task-keeper/models"
)

// Flatten walks the forest depth-first in pre-order. Each node records the id
// of its immediate parent (empty for roots), its depth and its position among
// siblings.
func Flatten(forest models.Forest) []models.FlattenedNode {
	out := make([]models.FlattenedNode, 0, Size(forest))
	var walk func(nodes []models.TreeNode, parentID models.NodeID, depth int)
	walk = func(nodes []models.TreeNode, parentID models.NodeID, depth int) {
		for i, n := range nodes {
			out = append(out, models.FlattenedNode{
				ID:          n.ID,
				ParentID:    parentID,
				Depth:       depth,
				Index:       i,
				NodeContent: n.NodeContent,
			})
			walk(n.Children, n.ID, depth+1)
		}
	}
	walk(forest, "", 0)

	return out
}

// Build reconstructs a forest from flattened nodes. Nodes are grouped by
// parent id and ordered by index; equal indexes keep their input order.
//
// Recovery rules:
//   - a node whose parent is not in the list is attached at the root level;
//   - nodes caught in a parent cycle are attached at the root level, starting
//     with the first of them in input order;
//   - a repeated id keeps its first occurrence.
//
// Depth is ignored; it is implied by the rebuilt nesting.
func Build(nodes []models.FlattenedNode) models.Forest {
	present := make(map[models.NodeID]struct{}, len(nodes))
	unique := make([]models.FlattenedNode, 0, len(nodes))
	for _, n := range nodes {
		if _, dup := present[n.ID]; dup {
			continue
		}
		present[n.ID] = struct{}{}
		unique = append(unique, n)
	}

	groups := make(map[models.NodeID][]models.FlattenedNode)
	for _, n := range unique {
		parent := n.ParentID
		if _, ok := present[parent]; !ok || parent == n.ID {
			parent = ""
		}
		groups[parent] = append(groups[parent], n)
	}
	for _, g := range groups {
		slices.SortStableFunc(g, func(a, b models.FlattenedNode) int {
			return a.Index - b.Index
		})
	}

	visited := make(map[models.NodeID]struct{}, len(unique))
	var build func(n models.FlattenedNode) models.TreeNode
	build = func(n models.FlattenedNode) models.TreeNode {
		visited[n.ID] = struct{}{}
		node := models.TreeNode{ID: n.ID, NodeContent: n.NodeContent}
		for _, c := range groups[n.ID] {
			if _, seen := visited[c.ID]; seen {
				continue
			}
			node.Children = append(node.Children, build(c))
		}
		return node
	}

	forest := make(models.Forest, 0, len(groups[""]))
	for _, n := range groups[""] {
		forest = append(forest, build(n))
	}

	for _, n := range unique {
		if _, seen := visited[n.ID]; !seen {
			forest = append(forest, build(n))
		}
	}

	return forest
}

// Size returns the number of nodes in the forest.
func Size(forest models.Forest) int {
	total := 0
	for _, n := range forest {
		total += 1 + Size(n.Children)
	}
	return total
}

// Clone returns a deep copy of the forest. Mutating the copy never affects
// the original's child slices.
func Clone(forest models.Forest) models.Forest {
	if forest == nil {
		return nil
	}
	out := make(models.Forest, len(forest))
	for i, n := range forest {
		out[i] = models.TreeNode{
			ID:          n.ID,
			NodeContent: n.NodeContent,
			Children:    Clone(n.Children),
		}
	}
	return out
}

// Equal reports whether two forests hold the same nodes with the same
// content in the same positions. A nil and an empty children list are equal.
func Equal(a, b models.Forest) bool {
	return slices.Equal(Flatten(a), Flatten(b))
}

// Find returns the node with the given id.
func Find(forest models.Forest, id models.NodeID) (models.TreeNode, bool) {
	for _, n := range forest {
		if n.ID == id {
			return n, true
		}
		if found, ok := Find(n.Children, id); ok {
			return found, true
		}
	}
	return models.TreeNode{}, false
}

// EnsureTrash appends the reserved trash container at the top level when the
// forest has no trash node anywhere.
func EnsureTrash(forest models.Forest) models.Forest {
	if _, ok := Find(forest, models.TrashID); ok {
		return forest
	}
	return append(slices.Clip(forest), models.TreeNode{ID: models.TrashID})
}
