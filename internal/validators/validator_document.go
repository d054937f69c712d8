package validators

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/MKhiriev/go-task-keeper/internal/tree"
	"github.com/MKhiriev/go-task-keeper/models"
)

const (
	FieldItems = "items"
	FieldMemo  = "memo"
)

// MaxMemoBytes bounds the size of the free-text memo.
const MaxMemoBytes = 1 << 20

// DocumentValidator rejects structurally invalid documents before they are
// pushed to, or accepted by, the remote store.
type DocumentValidator struct {
}

func NewDocumentValidator() Validator {
	return &DocumentValidator{}
}

// Validate accepts a forest (nested or flattened), a document, a memo
// string or a write batch. For a document, fields restricts validation to
// "items" and/or "memo".
func (v *DocumentValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Forest:
		return v.validateForest(value)
	case *models.Forest:
		return v.validateForest(*value)

	case []models.FlattenedNode:
		return v.validateFlat(value)

	case string:
		return v.validateMemo(value)

	case models.Document:
		return v.validateDocument(ctx, value, fields...)
	case *models.Document:
		return v.validateDocument(ctx, *value, fields...)

	case models.SetRequest:
		return v.validateSetRequest(ctx, value)
	case *models.SetRequest:
		return v.validateSetRequest(ctx, *value)

	default:
		return ErrUnsupportedType
	}
}

func (v *DocumentValidator) validateDocument(_ context.Context, doc models.Document, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldItems, FieldMemo}
	}

	for _, field := range fields {
		switch field {
		case FieldItems:
			if err := v.validateForest(doc.Items); err != nil {
				return err
			}
		case FieldMemo:
			if err := v.validateMemo(doc.Memo); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
	}

	return nil
}

func (v *DocumentValidator) validateForest(forest models.Forest) error {
	trashCount := 0
	for _, root := range forest {
		if root.ID == models.TrashID {
			trashCount++
		}
	}
	if trashCount > 1 {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, models.TrashID)
	}

	if err := v.validateFlat(tree.Flatten(forest)); err != nil {
		return err
	}

	if trashCount == 0 {
		if _, ok := tree.Find(forest, models.TrashID); ok {
			return ErrNestedTrash
		}
		return ErrMissingTrash
	}

	return nil
}

// validateFlat checks id uniqueness and that every parent chain ends at a
// root. Dangling parents and cycles are both unreachable.
func (v *DocumentValidator) validateFlat(nodes []models.FlattenedNode) error {
	parents := make(map[models.NodeID]models.NodeID, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return ErrEmptyNodeID
		}
		if _, dup := parents[n.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
		}
		parents[n.ID] = n.ParentID
	}

	reachable := make(map[models.NodeID]bool, len(nodes))
	for _, n := range nodes {
		seen := make(map[models.NodeID]struct{})
		id := n.ID
		for {
			if reachable[id] {
				break
			}
			parent := parents[id]
			if parent == "" {
				break
			}
			if _, exists := parents[parent]; !exists {
				return fmt.Errorf("%w: %s", ErrUnreachableNode, n.ID)
			}
			if _, loop := seen[id]; loop {
				return fmt.Errorf("%w: %s", ErrUnreachableNode, n.ID)
			}
			seen[id] = struct{}{}
			id = parent
		}
		reachable[n.ID] = true
	}

	return nil
}

func (v *DocumentValidator) validateMemo(memo string) error {
	if len(memo) > MaxMemoBytes {
		return ErrMemoTooLong
	}
	if !utf8.ValidString(memo) {
		return ErrInvalidMemo
	}
	return nil
}

// validateSetRequest checks a write batch received by the remote store. Item
// and memo values must decode into a valid forest and memo.
func (v *DocumentValidator) validateSetRequest(_ context.Context, req models.SetRequest) error {
	if len(req.Values) == 0 {
		return ErrEmptyBatch
	}

	for _, pv := range req.Values {
		if pv.Path == "" || strings.HasPrefix(pv.Path, "/") || strings.HasSuffix(pv.Path, "/") || strings.Contains(pv.Path, "//") {
			return fmt.Errorf("%w: %q", ErrInvalidPath, pv.Path)
		}
		if !json.Valid(pv.Value) {
			return fmt.Errorf("%w: %s", ErrInvalidValue, pv.Path)
		}

		_, leaf, ok := models.ParseDocumentPath(pv.Path)
		if !ok {
			continue
		}

		switch leaf {
		case models.LeafItems:
			var forest models.Forest
			if err := json.Unmarshal(pv.Value, &forest); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidValue, pv.Path, err)
			}
			if err := v.validateForest(forest); err != nil {
				return err
			}
		case models.LeafMemo:
			var memo string
			if err := json.Unmarshal(pv.Value, &memo); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidValue, pv.Path, err)
			}
			if err := v.validateMemo(memo); err != nil {
				return err
			}
		}
	}

	return nil
}
