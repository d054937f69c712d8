package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/models"
)

const nodesTable = "nodes"

type nodeRepository struct {
	*DB
	logger *logger.Logger
}

func NewNodeRepository(db *DB, logger *logger.Logger) NodeRepository {
	return &nodeRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *nodeRepository) Get(ctx context.Context, path string) (json.RawMessage, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Select("value").
		From(nodesTable).
		Where("path = ?", path).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var value string
	err = r.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		log.Err(err).Str("func", "nodeRepository.Get").Str("path", path).Msg("failed to read node")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return json.RawMessage(value), nil
}

func (r *nodeRepository) Apply(ctx context.Context, values []models.PathValue, increments []string) (map[string]int64, error) {
	log := logger.FromContext(ctx)
	now := time.Now().UTC()
	clocks := make(map[string]int64, len(increments))

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		for _, pv := range values {
			query, args, err := r.builder.
				Insert(nodesTable).
				Columns("path", "value", "updated_at").
				Values(pv.Path, string(pv.Value), now).
				Suffix("ON CONFLICT (path) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
				ToSql()
			if err != nil {
				return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
			}

			if _, err = tx.ExecContext(ctx, query, args...); err != nil {
				log.Err(err).Str("func", "nodeRepository.Apply").Str("path", pv.Path).Msg("failed to upsert node")
				return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
			}
		}

		for _, path := range increments {
			query, args, err := r.builder.
				Insert(nodesTable).
				Columns("path", "value", "updated_at").
				Values(path, "1", now).
				Suffix("ON CONFLICT (path) DO UPDATE SET value = CAST(CAST(nodes.value AS BIGINT) + 1 AS TEXT), updated_at = excluded.updated_at RETURNING value").
				ToSql()
			if err != nil {
				return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
			}

			var raw string
			if err = tx.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
				log.Err(err).Str("func", "nodeRepository.Apply").Str("path", path).Msg("failed to advance clock")
				return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
			}

			clock, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalidClock, path, err)
			}
			clocks[path] = clock
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return clocks, nil
}
