package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-task-keeper/internal/store"
	"github.com/MKhiriev/go-task-keeper/internal/syncstate"
	"github.com/MKhiriev/go-task-keeper/models"
)

// syncEntity is what the session loop needs from an entity regardless of
// its content type. Every method must run on the loop goroutine.
type syncEntity interface {
	kind() models.Entity
	load(ctx context.Context) error
	flush(ctx context.Context) error
	reconcile(ctx context.Context, raw json.RawMessage, found bool) error
	dirty() bool
	armDebounce()
	stopDebounce()
}

// entity is one independently synchronized part of a document: its local
// content, its sync state and its debounce timer.
type entity[T any] struct {
	s     *session
	name  models.Entity
	state *syncstate.State[T]
	local T

	empty func() T
	clone func(T) T
	hash  func(T) string
	merge func(base T, hasBase bool, local, server T) (T, []models.ConflictDetail)

	timer *time.Timer
	gen   uint64
}

func (e *entity[T]) kind() models.Entity { return e.name }

func (e *entity[T]) dirty() bool { return e.state.Dirty() }

func (e *entity[T]) remotePath() string {
	return models.DocumentPath(e.s.docID, string(e.name))
}

func (e *entity[T]) contentKey() string { return e.s.key(string(e.name)) }

func (e *entity[T]) stateKey() string { return e.s.key("state", string(e.name)) }

func (e *entity[T]) load(ctx context.Context) error {
	raw, err := e.s.replica.Get(ctx, e.contentKey())
	switch {
	case errors.Is(err, store.ErrReplicaKeyNotFound):
		e.local = e.empty()
	case err != nil:
		return fmt.Errorf("load %s: %w", e.name, err)
	default:
		var v T
		if err = json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("decode %s: %w", e.name, err)
		}
		e.local = v
	}

	raw, err = e.s.replica.Get(ctx, e.stateKey())
	switch {
	case errors.Is(err, store.ErrReplicaKeyNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("load %s sync state: %w", e.name, err)
	}

	var persisted models.PersistedState[T]
	if err = json.Unmarshal(raw, &persisted); err != nil {
		return fmt.Errorf("decode %s sync state: %w", e.name, err)
	}
	e.state.Restore(persisted)

	return nil
}

// persist writes content and sync state to the replica. It outlives the
// session context so a close never leaves the two out of step.
func (e *entity[T]) persist(ctx context.Context) {
	log := e.s.logger
	ctx = context.WithoutCancel(ctx)

	content, err := json.Marshal(e.local)
	if err == nil {
		err = e.s.replica.Put(ctx, e.contentKey(), content)
	}
	if err != nil {
		log.Err(err).Str("func", "entity.persist").Str("entity", string(e.name)).Msg("failed to write content to replica")
	}

	state, err := json.Marshal(e.state.Persist())
	if err == nil {
		err = e.s.replica.Put(ctx, e.stateKey(), state)
	}
	if err != nil {
		log.Err(err).Str("func", "entity.persist").Str("entity", string(e.name)).Msg("failed to write sync state to replica")
	}
}

// edit records a local change. An edit that leaves the content unchanged is
// ignored.
func (e *entity[T]) edit(ctx context.Context, v T) {
	if e.hash(v) == e.hash(e.local) {
		return
	}

	e.local = v
	e.state.MarkDirty()
	e.s.publishSnapshot()
	e.persist(ctx)
	e.armDebounce()
}

// armDebounce (re)starts the debounce window. Only the flush of the latest
// window runs; stale timer fires are recognised by their generation.
func (e *entity[T]) armDebounce() {
	e.stopDebounce()

	e.gen++
	gen := e.gen
	e.timer = time.AfterFunc(e.s.debounce, func() {
		_ = e.s.post(context.Background(), func(ctx context.Context) {
			if gen != e.gen {
				return
			}
			if err := e.flush(ctx); err != nil && ctx.Err() == nil {
				e.s.logger.Warn().Err(err).Str("func", "entity.armDebounce").Str("entity", string(e.name)).Msg("push failed, entity stays dirty")
				e.s.emit(models.SessionUpdate{Entity: e.name, Err: err})
			}
		})
	})
}

func (e *entity[T]) stopDebounce() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *entity[T]) flush(ctx context.Context) error {
	if !e.state.Dirty() {
		return nil
	}
	return e.push(ctx, e.local)
}

// push validates content and writes it to the remote store. On success the
// pushed content becomes the agreed base. On any failure the entity stays
// dirty.
func (e *entity[T]) push(ctx context.Context, content T) error {
	if err := e.s.validator.Validate(ctx, content); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDataProvided, e.name, err)
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrPushFailed, e.name, err)
	}

	resp, err := e.s.remote.Set(ctx, models.SetRequest{
		Values: []models.PathValue{{Path: e.remotePath(), Value: raw}},
		Writer: e.s.writerTag,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPushFailed, e.name, mapAdapterError(err))
	}
	if ctx.Err() != nil {
		// session closed while the write was in flight
		return ctx.Err()
	}

	e.s.recordAck(resp)
	e.state.SetBaseFromServer(content, e.hash(content))
	e.persist(ctx)

	e.s.logger.Debug().Str("func", "entity.push").Str("entity", string(e.name)).Msg("local content pushed")
	return nil
}

// reconcile decides what to do with freshly fetched remote content: adopt
// it, push local content over it, accept a convergence, or merge.
func (e *entity[T]) reconcile(ctx context.Context, raw json.RawMessage, found bool) error {
	if !found {
		if e.state.Dirty() {
			return e.push(ctx, e.local)
		}
		return nil
	}

	var remote T
	if err := json.Unmarshal(raw, &remote); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrRemoteFetchFailed, e.name, err)
	}
	remoteHash := e.hash(remote)

	if !e.state.Dirty() {
		if remoteHash == e.state.LastServerHash() && remoteHash == e.hash(e.local) {
			return nil
		}

		e.local = e.clone(remote)
		e.state.SetBaseFromServer(remote, remoteHash)
		e.s.publishSnapshot()
		e.persist(ctx)
		e.s.emit(models.SessionUpdate{Entity: e.name})
		return nil
	}

	switch {
	case remoteHash == e.state.BaseHash():
		// server has not moved since our last agreement
		return e.push(ctx, e.local)

	case remoteHash == e.hash(e.local):
		e.state.SetBaseFromServer(remote, remoteHash)
		e.persist(ctx)
		return nil
	}

	base, hasBase := e.state.BaseSnapshot()
	merged, conflicts := e.merge(base, hasBase, e.local, remote)

	e.local = merged
	e.s.publishSnapshot()
	e.persist(ctx)
	e.s.emit(models.SessionUpdate{Entity: e.name, Conflicts: conflicts})

	e.s.logger.Info().Str("func", "entity.reconcile").
		Str("entity", string(e.name)).
		Int("conflicts", len(conflicts)).
		Msg("local and remote changes merged")

	if mergedHash := e.hash(merged); mergedHash == remoteHash {
		e.state.SetBaseFromServer(merged, mergedHash)
		e.persist(ctx)
		return nil
	}

	return e.push(ctx, merged)
}
