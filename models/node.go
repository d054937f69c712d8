// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// TrashID is the id of the reserved top-level container that holds
// soft-deleted subtrees. Every valid forest has exactly one such node.
const TrashID NodeID = "trash"

// NodeID is the stable identifier of a task node. Ids are unique across the
// whole forest, not only among siblings.
//
// Older documents carry numeric ids, so decoding accepts both JSON strings
// and JSON integers. An integer is kept in its decimal text form, which makes
// 1 and "1" the same id. Fractional and exponent forms such as 1.0 or 1e3 are
// rejected.
type NodeID string

// UnmarshalJSON implements [json.Unmarshaler].
func (id *NodeID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = NodeID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("node id must be a string or a number: %w", err)
	}
	v, err := n.Int64()
	if err != nil {
		return fmt.Errorf("numeric node id must be an integer, got %s", n)
	}
	*id = NodeID(strconv.FormatInt(v, 10))
	return nil
}

// String implements [fmt.Stringer].
func (id NodeID) String() string {
	return string(id)
}

// NodeContent holds the tracked scalar attributes of a node. These are the
// fields the merge engine compares one by one.
type NodeContent struct {
	// Value is the display text of the task.
	Value string `json:"value"`

	// Done is the completion flag.
	Done bool `json:"done,omitempty"`

	// Collapsed hides the children of the node in editors.
	Collapsed bool `json:"collapsed,omitempty"`

	// File is the name of an attached file. The attachment itself is
	// transferred elsewhere.
	File string `json:"file,omitempty"`

	// TimerStart is the unix time in milliseconds a running timer was
	// started at, zero when the timer is stopped.
	TimerStart int64 `json:"timerStart,omitempty"`

	// TimerTotal is the accumulated timer duration in milliseconds.
	TimerTotal int64 `json:"timerTotal,omitempty"`
}

// TreeNode is a node of the task forest. Children are owned by their parent
// and ordered.
type TreeNode struct {
	ID NodeID `json:"id"`
	NodeContent
	Children []TreeNode `json:"children,omitempty"`
}

// Forest is the ordered list of root nodes of a document.
type Forest []TreeNode

// FlattenedNode is a [TreeNode] projected onto its position: the id of its
// parent (empty for roots), its depth and its index among siblings.
// Flattened lists are produced from a Forest and discarded after use.
type FlattenedNode struct {
	ID       NodeID `json:"id"`
	ParentID NodeID `json:"parentId,omitempty"`
	Depth    int    `json:"depth"`
	Index    int    `json:"index"`
	NodeContent
}

// IsRoot reports whether the node sits at the top level.
func (n FlattenedNode) IsRoot() bool {
	return n.ParentID == ""
}
