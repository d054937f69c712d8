// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/MKhiriev/go-task-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func validForest() models.Forest {
	return models.Forest{
		{ID: "1", NodeContent: models.NodeContent{Value: "Task"}, Children: []models.TreeNode{
			{ID: "2", NodeContent: models.NodeContent{Value: "Sub"}},
		}},
		{ID: models.TrashID},
	}
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

func TestValidate_Dispatch(t *testing.T) {
	v := NewDocumentValidator()
	ctx := context.Background()
	f := validForest()

	assert.NoError(t, v.Validate(ctx, f))
	assert.NoError(t, v.Validate(ctx, &f))
	assert.NoError(t, v.Validate(ctx, "memo"))
	assert.NoError(t, v.Validate(ctx, models.Document{Items: f, Memo: "m"}))
	assert.NoError(t, v.Validate(ctx, &models.Document{Items: f}))
	assert.ErrorIs(t, v.Validate(ctx, 42), ErrUnsupportedType)
}

// ---------------------------------------------------------------------------
// Forest
// ---------------------------------------------------------------------------

func TestValidate_Forest(t *testing.T) {
	tests := []struct {
		name    string
		forest  models.Forest
		wantErr error
	}{
		{name: "valid", forest: validForest()},
		{
			name:    "empty id",
			forest:  models.Forest{{ID: ""}, {ID: models.TrashID}},
			wantErr: ErrEmptyNodeID,
		},
		{
			name: "duplicate id across levels",
			forest: models.Forest{
				{ID: "1", Children: []models.TreeNode{{ID: "1"}}},
				{ID: models.TrashID},
			},
			wantErr: ErrDuplicateNodeID,
		},
		{
			name:    "missing trash",
			forest:  models.Forest{{ID: "1"}},
			wantErr: ErrMissingTrash,
		},
		{
			name:    "two trash nodes",
			forest:  models.Forest{{ID: models.TrashID}, {ID: models.TrashID}},
			wantErr: ErrDuplicateNodeID,
		},
		{
			name:    "nested trash",
			forest:  models.Forest{{ID: "1", Children: []models.TreeNode{{ID: models.TrashID}}}},
			wantErr: ErrNestedTrash,
		},
		{
			name:    "empty forest",
			forest:  models.Forest{},
			wantErr: ErrMissingTrash,
		},
	}

	v := NewDocumentValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tt.forest)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_Flat(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []models.FlattenedNode
		wantErr error
	}{
		{name: "valid", nodes: []models.FlattenedNode{{ID: "a"}, {ID: "b", ParentID: "a"}}},
		{name: "dangling parent", nodes: []models.FlattenedNode{{ID: "a"}, {ID: "b", ParentID: "gone"}}, wantErr: ErrUnreachableNode},
		{name: "cycle", nodes: []models.FlattenedNode{{ID: "x", ParentID: "y"}, {ID: "y", ParentID: "x"}}, wantErr: ErrUnreachableNode},
		{name: "self parent", nodes: []models.FlattenedNode{{ID: "s", ParentID: "s"}}, wantErr: ErrUnreachableNode},
		{name: "duplicate", nodes: []models.FlattenedNode{{ID: "a"}, {ID: "a"}}, wantErr: ErrDuplicateNodeID},
	}

	v := NewDocumentValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tt.nodes)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// Document / memo
// ---------------------------------------------------------------------------

func TestValidate_DocumentFields(t *testing.T) {
	v := NewDocumentValidator()
	doc := models.Document{Items: models.Forest{{ID: "1"}}, Memo: "ok"}

	assert.ErrorIs(t, v.Validate(context.Background(), doc), ErrMissingTrash)
	assert.NoError(t, v.Validate(context.Background(), doc, FieldMemo))
	assert.ErrorIs(t, v.Validate(context.Background(), doc, "title"), ErrUnknownField)
}

func TestValidate_Memo(t *testing.T) {
	v := NewDocumentValidator()

	assert.NoError(t, v.Validate(context.Background(), ""))
	assert.ErrorIs(t, v.Validate(context.Background(), strings.Repeat("a", MaxMemoBytes+1)), ErrMemoTooLong)
	assert.ErrorIs(t, v.Validate(context.Background(), string([]byte{0xff, 0xfe})), ErrInvalidMemo)
}

// ---------------------------------------------------------------------------
// Write batch
// ---------------------------------------------------------------------------

func TestValidate_SetRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     models.SetRequest
		wantErr error
	}{
		{
			name: "valid items and memo",
			req: models.SetRequest{Values: []models.PathValue{
				{Path: "documents/d1/items", Value: raw(t, validForest())},
				{Path: "documents/d1/memo", Value: raw(t, "memo")},
			}},
		},
		{name: "empty", req: models.SetRequest{}, wantErr: ErrEmptyBatch},
		{
			name:    "bad path",
			req:     models.SetRequest{Values: []models.PathValue{{Path: "documents//items", Value: raw(t, 1)}}},
			wantErr: ErrInvalidPath,
		},
		{
			name:    "not json",
			req:     models.SetRequest{Values: []models.PathValue{{Path: "documents/d1/memo", Value: json.RawMessage("{")}}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "children not an array",
			req:     models.SetRequest{Values: []models.PathValue{{Path: "documents/d1/items", Value: json.RawMessage(`[{"id":"a","children":{}}]`)}}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "invalid forest",
			req:     models.SetRequest{Values: []models.PathValue{{Path: "documents/d1/items", Value: raw(t, models.Forest{{ID: "a"}})}}},
			wantErr: ErrMissingTrash,
		},
		{
			name:    "memo not a string",
			req:     models.SetRequest{Values: []models.PathValue{{Path: "documents/d1/memo", Value: raw(t, 5)}}},
			wantErr: ErrInvalidValue,
		},
	}

	v := NewDocumentValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), &tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
