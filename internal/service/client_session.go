package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-task-keeper/internal/adapter"
	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/store"
	"github.com/MKhiriev/go-task-keeper/internal/tree"
	"github.com/MKhiriev/go-task-keeper/internal/validators"
	"github.com/MKhiriev/go-task-keeper/models"
)

const (
	sessionEventBuffer  = 64
	sessionUpdateBuffer = 16
)

// session is one open document. Every field below the channels is owned by
// the run goroutine; other goroutines reach it only through post.
type session struct {
	docID     string
	replica   store.LocalReplica
	remote    adapter.RemoteStore
	validator validators.Validator
	debounce  time.Duration
	writerTag string
	logger    *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	events chan func(ctx context.Context)
	wake   chan struct{}
	sub    adapter.Subscription

	// highest clock announced by the subscription
	pending atomic.Int64

	updates chan models.SessionUpdate

	mu       sync.RWMutex
	snapshot models.Document

	items    *entity[models.Forest]
	memo     *entity[string]
	entities []syncEntity

	lastSeen int64
	// every clock up to echoClock was produced by our own acknowledged writes
	echoClock int64
}

func (s *session) key(parts ...string) string {
	return "doc/" + s.docID + "/" + strings.Join(parts, "/")
}

func (s *session) clockPath() string {
	return models.DocumentPath(s.docID, models.LeafClock)
}

// load restores content, sync state and the last seen clock from the
// replica. Runs before the loop starts.
func (s *session) load(ctx context.Context) error {
	for _, e := range s.entities {
		if err := e.load(ctx); err != nil {
			return err
		}
	}
	s.items.local = tree.EnsureTrash(s.items.local)

	raw, err := s.replica.Get(ctx, s.key(models.LeafClock))
	switch {
	case errors.Is(err, store.ErrReplicaKeyNotFound):
	case err != nil:
		return fmt.Errorf("load clock: %w", err)
	default:
		clock, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("decode clock: %w", err)
		}
		s.lastSeen = clock
		s.echoClock = clock
	}

	s.publishSnapshot()
	return nil
}

func (s *session) run() {
	defer close(s.done)

	for {
		select {
		case <-s.ctx.Done():
			return
		case fn := <-s.events:
			fn(s.ctx)
		case <-s.wake:
			if err := s.handleClock(s.ctx, s.pending.Load()); err != nil && s.ctx.Err() == nil {
				s.logger.Warn().Err(err).Str("func", "session.run").Str("doc", s.docID).Msg("failed to handle clock change")
			}
		}
	}
}

// post hands fn to the loop.
func (s *session) post(ctx context.Context, fn func(ctx context.Context)) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	select {
	case s.events <- fn:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call runs fn on the loop and waits for its result.
func (s *session) call(ctx context.Context, fn func(ctx context.Context) error) error {
	res := make(chan error, 1)
	if err := s.post(ctx, func(lctx context.Context) { res <- fn(lctx) }); err != nil {
		return err
	}

	select {
	case err := <-res:
		return err
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// onChange is the subscription callback. It only records the announced clock
// and wakes the loop, so bursts of notifications coalesce into one fetch.
func (s *session) onChange(change models.Change) {
	var clock int64
	if len(change.Value) > 0 {
		if err := json.Unmarshal(change.Value, &clock); err != nil {
			s.logger.Warn().Err(err).Str("func", "session.onChange").Str("path", change.Path).Msg("clock value is not an integer")
			return
		}
	}

	for {
		cur := s.pending.Load()
		if clock <= cur || s.pending.CompareAndSwap(cur, clock) {
			break
		}
	}

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// recordAck extends the run of clocks known to be our own echoes when the
// acknowledged clock directly follows it.
func (s *session) recordAck(resp models.SetResponse) {
	clock, ok := resp.Clock(s.clockPath())
	if !ok {
		return
	}
	if clock == max(s.lastSeen, s.echoClock)+1 {
		s.echoClock = clock
	}
}

func (s *session) handleClock(ctx context.Context, clock int64) error {
	if clock <= s.lastSeen {
		return nil
	}

	if clock <= s.echoClock {
		s.logger.Debug().Str("func", "session.handleClock").Int64("clock", clock).Msg("own write echoed")
		s.setLastSeen(ctx, clock)
		return nil
	}

	if clock == s.lastSeen+1 && s.ownLastWrite(ctx) {
		s.setLastSeen(ctx, clock)
		return nil
	}

	return s.reconcile(ctx, clock)
}

// ownLastWrite tells whether this session wrote the document last. Any
// failure answers false so the caller falls back to a fetch.
func (s *session) ownLastWrite(ctx context.Context) bool {
	raw, err := s.remote.Get(ctx, models.DocumentPath(s.docID, models.LeafLastWriter))
	if err != nil {
		return false
	}

	var tag string
	if err = json.Unmarshal(raw, &tag); err != nil {
		return false
	}
	return tag == s.writerTag
}

// reconcile fetches both entities and reconciles each with its local copy.
// A failed fetch leaves the last seen clock untouched so the next
// notification or resync retries it.
func (s *session) reconcile(ctx context.Context, clock int64) error {
	type fetched struct {
		raw   json.RawMessage
		found bool
	}

	results := make([]fetched, len(s.entities))
	for i, e := range s.entities {
		raw, err := s.remote.Get(ctx, models.DocumentPath(s.docID, string(e.kind())))
		switch {
		case errors.Is(err, adapter.ErrNotFound):
		case err != nil:
			return fmt.Errorf("%w: %s: %w", ErrRemoteFetchFailed, e.kind(), mapAdapterError(err))
		default:
			results[i] = fetched{raw: raw, found: len(raw) > 0 && string(raw) != "null"}
		}
	}

	s.setLastSeen(ctx, clock)

	var errs []error
	for i, e := range s.entities {
		if err := e.reconcile(ctx, results[i].raw, results[i].found); err != nil {
			s.emit(models.SessionUpdate{Entity: e.kind(), Err: err})
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *session) setLastSeen(ctx context.Context, clock int64) {
	if clock <= s.lastSeen {
		return
	}
	s.lastSeen = clock

	if err := s.replica.Put(context.WithoutCancel(ctx), s.key(models.LeafClock), []byte(strconv.FormatInt(clock, 10))); err != nil {
		s.logger.Err(err).Str("func", "session.setLastSeen").Msg("failed to write clock to replica")
	}
}

// resync reconciles against the current remote clock even when it was
// already seen, then pushes whatever is still dirty.
func (s *session) resync(ctx context.Context) error {
	var clock int64
	raw, err := s.remote.Get(ctx, s.clockPath())
	switch {
	case errors.Is(err, adapter.ErrNotFound):
	case err != nil:
		return fmt.Errorf("%w: clock: %w", ErrRemoteFetchFailed, mapAdapterError(err))
	default:
		if len(raw) > 0 && string(raw) != "null" {
			if err = json.Unmarshal(raw, &clock); err != nil {
				return fmt.Errorf("%w: clock: %w", ErrRemoteFetchFailed, err)
			}
		}
	}

	if err = s.reconcile(ctx, clock); err != nil {
		return err
	}
	return s.flush(ctx)
}

func (s *session) flush(ctx context.Context) error {
	var errs []error
	for _, e := range s.entities {
		if err := e.flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *session) publishSnapshot() {
	doc := models.Document{Items: tree.Clone(s.items.local), Memo: s.memo.local}

	s.mu.Lock()
	s.snapshot = doc
	s.mu.Unlock()
}

func (s *session) document() models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.Document{Items: tree.Clone(s.snapshot.Items), Memo: s.snapshot.Memo}
}

// emit delivers an update without blocking the loop. When the reader falls
// behind the oldest update is dropped.
func (s *session) emit(u models.SessionUpdate) {
	u.Document = s.document()

	for {
		select {
		case s.updates <- u:
			return
		default:
		}

		select {
		case <-s.updates:
		default:
		}
	}
}

// close stops the loop and every timer. Results still in flight are
// discarded; persisted state stays as it is.
func (s *session) close() {
	s.cancel()
	if s.sub != nil {
		s.sub.Close()
	}
	<-s.done

	for _, e := range s.entities {
		e.stopDebounce()
	}
	close(s.updates)
}
