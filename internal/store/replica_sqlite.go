// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
)

const replicaTable = "replica"

type localReplica struct {
	*DB
	logger *logger.Logger
}

func NewLocalReplica(db *DB, logger *logger.Logger) LocalReplica {
	return &localReplica{
		DB:     db,
		logger: logger,
	}
}

func (r *localReplica) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := r.builder.
		Select("value").
		From(replicaTable).
		Where("key = ?", key).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var value []byte
	err = r.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrReplicaKeyNotFound, key)
	}
	if err != nil {
		r.logger.Err(err).Str("func", "localReplica.Get").Str("key", key).Msg("failed to read replica value")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return value, nil
}

func (r *localReplica) Put(ctx context.Context, key string, value []byte) error {
	query, args, err := r.builder.
		Insert(replicaTable).
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).Str("func", "localReplica.Put").Str("key", key).Msg("failed to write replica value")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *localReplica) Clear(ctx context.Context) error {
	query, args, err := r.builder.Delete(replicaTable).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).Str("func", "localReplica.Clear").Msg("failed to clear replica")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
