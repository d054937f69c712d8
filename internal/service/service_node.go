// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/store"
	"github.com/MKhiriev/go-task-keeper/internal/utils"
	"github.com/MKhiriev/go-task-keeper/models"
)

// nodeService is the concrete implementation of NodeService. Storage is
// last-write-wins per path; conflict resolution happens on the clients.
type nodeService struct {
	repository store.NodeRepository
	broker     Broker

	logger *logger.Logger
}

func NewNodeService(repository store.NodeRepository, broker Broker, logger *logger.Logger) NodeService {
	return &nodeService{
		repository: repository,
		broker:     broker,
		logger:     logger,
	}
}

func (s *nodeService) Get(ctx context.Context, path string) (json.RawMessage, error) {
	value, err := s.repository.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return value, nil
}

// Set authorizes every path of the batch, then writes it together with the
// server-managed clock and last writer paths.
//
// Returns:
//   - ErrNoUserID if ctx carries no authenticated user.
//   - ErrForeignNamespace, ErrServerManagedPath or ErrUnknownNamespace if a
//     path may not be written by this user.
//   - A wrapped storage error if the transaction fails.
func (s *nodeService) Set(ctx context.Context, req models.SetRequest) (models.SetResponse, error) {
	log := logger.FromContext(ctx)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return models.SetResponse{}, ErrNoUserID
	}

	writer := req.Writer
	if writer == "" {
		writer = utils.GetWriterTagFromContext(ctx)
	}

	values := make([]models.PathValue, 0, len(req.Values)+1)
	var documents []string
	seen := make(map[string]struct{})
	for _, pv := range req.Values {
		if err := authorizeWrite(userID, pv.Path); err != nil {
			log.Warn().Err(err).Str("func", "nodeService.Set").Str("user_id", userID).Str("path", pv.Path).Msg("write rejected")
			return models.SetResponse{}, fmt.Errorf("%w: %s", err, pv.Path)
		}
		values = append(values, pv)

		if docID, _, ok := models.ParseDocumentPath(pv.Path); ok {
			if _, dup := seen[docID]; !dup {
				seen[docID] = struct{}{}
				documents = append(documents, docID)
			}
		}
	}

	increments := make([]string, 0, len(documents)+1)
	for _, docID := range documents {
		increments = append(increments, models.DocumentPath(docID, models.LeafClock))
		if writer != "" {
			tag, err := json.Marshal(writer)
			if err != nil {
				return models.SetResponse{}, fmt.Errorf("%w: writer tag: %w", ErrInvalidDataProvided, err)
			}
			values = append(values, models.PathValue{Path: models.DocumentPath(docID, models.LeafLastWriter), Value: tag})
		}
	}
	if len(documents) > 0 {
		increments = append(increments, models.UserClockPath(userID))
	}

	clocks, err := s.repository.Apply(ctx, values, increments)
	if err != nil {
		log.Err(err).Str("func", "nodeService.Set").Str("user_id", userID).Msg("write batch failed")
		return models.SetResponse{}, fmt.Errorf("apply write batch: %w", err)
	}

	// content first, clocks last: a clock subscriber that reacts by reading
	// must see the new content
	for _, pv := range values {
		s.broker.Publish(models.Change{Path: pv.Path, Value: pv.Value})
	}
	for _, path := range increments {
		s.broker.Publish(models.Change{Path: path, Value: json.RawMessage(strconv.FormatInt(clocks[path], 10))})
	}

	log.Debug().Str("func", "nodeService.Set").
		Str("user_id", userID).
		Str("writer", writer).
		Int("values", len(req.Values)).
		Msg("write batch applied")

	return models.SetResponse{Clocks: clocks}, nil
}

// Subscribe registers with the broker before reading the current value so
// no change committed in between is missed.
func (s *nodeService) Subscribe(ctx context.Context, path string) (models.Change, <-chan models.Change, func(), error) {
	updates, cancel := s.broker.Subscribe(path)

	value, err := s.repository.Get(ctx, path)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		cancel()
		return models.Change{}, nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	return models.Change{Path: path, Value: value}, updates, cancel, nil
}

// authorizeWrite allows writes to document content and to the writer's own
// user namespace. Clocks and last writer tags are server-managed.
func authorizeWrite(userID, path string) error {
	if _, leaf, ok := models.ParseDocumentPath(path); ok {
		if leaf == models.LeafClock || leaf == models.LeafLastWriter {
			return ErrServerManagedPath
		}
		return nil
	}

	if owner, ok := models.ParseUserPath(path); ok {
		if owner != userID {
			return ErrForeignNamespace
		}
		if path == models.UserClockPath(owner) {
			return ErrServerManagedPath
		}
		return nil
	}

	return ErrUnknownNamespace
}
