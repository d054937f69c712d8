// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package syncstate tracks, per synchronized entity, whether the local copy
// holds edits the remote store has not acknowledged yet, and which snapshot
// both sides last agreed on.
//
// The state is owned by a single session goroutine and holds no locks.
package syncstate

import (
	"github.com/MKhiriev/go-task-keeper/internal/tree"
	"github.com/MKhiriev/go-task-keeper/models"
)

// State is the dirty/clean state machine of one entity.
//
// baseHash is the hash of the last agreed snapshot and tells whether the
// server moved since that agreement; lastServerHash is the hash the server
// most recently acknowledged and is used to recognise echoes of our own
// writes.
type State[T any] struct {
	dirty          bool
	baseSnapshot   *T
	baseHash       string
	lastServerHash string

	clone func(T) T
}

// New returns an empty, clean state. clone deep-copies snapshots on the way
// in and out so callers never share memory with the stored base.
func New[T any](clone func(T) T) *State[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &State[T]{clone: clone}
}

// NewForest returns a state for the task forest.
func NewForest() *State[models.Forest] {
	return New(tree.Clone)
}

// NewText returns a state for a plain text entity such as the memo.
func NewText() *State[string] {
	return New[string](nil)
}

// MarkDirty records a local edit. The base is left untouched because it is
// still the last agreed state needed for a later three-way merge.
func (s *State[T]) MarkDirty() {
	if s.dirty {
		return
	}
	s.dirty = true
}

// ClearDirty marks the entity clean and forgets the base. lastServerHash is
// kept.
func (s *State[T]) ClearDirty() {
	s.dirty = false
	s.baseSnapshot = nil
	s.baseHash = ""
}

// SetBaseFromServer records snapshot as the state both sides agree on and
// marks the entity clean.
func (s *State[T]) SetBaseFromServer(snapshot T, hash string) {
	cp := s.clone(snapshot)
	s.baseSnapshot = &cp
	s.baseHash = hash
	s.lastServerHash = hash
	s.dirty = false
}

// SetServerHash records the hash most recently acknowledged by the server.
func (s *State[T]) SetServerHash(hash string) {
	s.lastServerHash = hash
}

// Reset returns the state to its initial empty form.
func (s *State[T]) Reset() {
	s.dirty = false
	s.baseSnapshot = nil
	s.baseHash = ""
	s.lastServerHash = ""
}

func (s *State[T]) Dirty() bool {
	return s.dirty
}

// BaseSnapshot returns a copy of the agreed snapshot, ok is false when no
// agreement has been recorded yet.
func (s *State[T]) BaseSnapshot() (snapshot T, ok bool) {
	if s.baseSnapshot == nil {
		return snapshot, false
	}
	return s.clone(*s.baseSnapshot), true
}

func (s *State[T]) BaseHash() string {
	return s.baseHash
}

func (s *State[T]) LastServerHash() string {
	return s.lastServerHash
}

// Persist exports the state for the local replica.
func (s *State[T]) Persist() models.PersistedState[T] {
	p := models.PersistedState[T]{
		Dirty:          s.dirty,
		BaseHash:       s.baseHash,
		LastServerHash: s.lastServerHash,
	}
	if s.baseSnapshot != nil {
		cp := s.clone(*s.baseSnapshot)
		p.BaseSnapshot = &cp
	}
	return p
}

// Restore replaces the state with a previously persisted one.
func (s *State[T]) Restore(p models.PersistedState[T]) {
	s.dirty = p.Dirty
	s.baseHash = p.BaseHash
	s.lastServerHash = p.LastServerHash
	s.baseSnapshot = nil
	if p.BaseSnapshot != nil {
		cp := s.clone(*p.BaseSnapshot)
		s.baseSnapshot = &cp
	}
}

// Tracker groups the states of every synchronized entity of a document.
type Tracker struct {
	Items *State[models.Forest]
	Memo  *State[string]
}

// NewTracker returns a tracker with all entities clean and empty.
func NewTracker() *Tracker {
	return &Tracker{
		Items: NewForest(),
		Memo:  NewText(),
	}
}

// ResetAll returns every tracked entity to its initial empty state. Used on
// logout and account deletion.
func (t *Tracker) ResetAll() {
	t.Items.Reset()
	t.Memo.Reset()
}
