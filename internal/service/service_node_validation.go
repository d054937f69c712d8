package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-task-keeper/internal/validators"
	"github.com/MKhiriev/go-task-keeper/models"
)

// NodeValidationService rejects malformed write batches before they reach
// storage. A forest or memo that fails validation would poison every client
// that adopts it.
type NodeValidationService struct {
	inner     NodeService
	validator validators.Validator
}

func NewNodeValidationService() NodeServiceWrapper {
	return &NodeValidationService{
		validator: validators.NewDocumentValidator(),
	}
}

func (v *NodeValidationService) Wrap(inner NodeService) NodeService {
	v.inner = inner
	return v
}

func (v *NodeValidationService) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return v.inner.Get(ctx, path)
}

func (v *NodeValidationService) Set(ctx context.Context, req models.SetRequest) (models.SetResponse, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.SetResponse{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	return v.inner.Set(ctx, req)
}

func (v *NodeValidationService) Subscribe(ctx context.Context, path string) (models.Change, <-chan models.Change, func(), error) {
	return v.inner.Subscribe(ctx, path)
}
