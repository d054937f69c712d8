package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-task-keeper/internal/adapter"
	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/merge"
	"github.com/MKhiriev/go-task-keeper/internal/store"
	"github.com/MKhiriev/go-task-keeper/internal/syncstate"
	"github.com/MKhiriev/go-task-keeper/internal/tree"
	"github.com/MKhiriev/go-task-keeper/internal/utils"
	"github.com/MKhiriev/go-task-keeper/internal/validators"
	"github.com/MKhiriev/go-task-keeper/models"
)

// DefaultDebounceWindow is used when ClientSyncOptions.DebounceWindow is not
// positive.
const DefaultDebounceWindow = 3 * time.Second

// ClientSyncOptions tunes a ClientSyncService.
type ClientSyncOptions struct {
	// DebounceWindow is how long an entity must stay unedited before it is
	// pushed.
	DebounceWindow time.Duration
	// WriterTag identifies this client's writes in the remote store.
	WriterTag string
}

type clientSyncService struct {
	replica   store.LocalReplica
	remote    adapter.RemoteStore
	validator validators.Validator
	merger    *merge.Engine
	opts      ClientSyncOptions
	tracker   *syncstate.Tracker

	mu      sync.Mutex
	session *session

	logger *logger.Logger
}

func NewClientSyncService(storages *store.ClientStorages, remote adapter.RemoteStore, merger *merge.Engine, opts ClientSyncOptions, logger *logger.Logger) ClientSyncService {
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = DefaultDebounceWindow
	}
	if opts.WriterTag == "" {
		opts.WriterTag = utils.NewUUIDGenerator().Generate()
	}

	return &clientSyncService{
		replica:   storages.Replica,
		remote:    remote,
		validator: validators.NewDocumentValidator(),
		merger:    merger,
		opts:      opts,
		tracker:   syncstate.NewTracker(),
		logger:    logger,
	}
}

func (c *clientSyncService) Open(ctx context.Context, docID string) error {
	log := c.logger.GetChildLogger()
	log.Debug().Str("func", "*clientSyncService.Open").Str("doc", docID).Msg("opening session")

	if docID == "" {
		return ErrDocumentIDRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		c.session.close()
		c.session = nil
	}
	c.tracker.ResetAll()

	s := c.newSession(docID)
	if err := s.load(ctx); err != nil {
		s.cancel()
		return fmt.Errorf("error opening document %q: %w", docID, err)
	}

	for _, e := range s.entities {
		if e.dirty() {
			log.Info().Str("func", "*clientSyncService.Open").Str("entity", string(e.kind())).Msg("offline edits scheduled for push")
			e.armDebounce()
		}
	}

	lastSeen := s.lastSeen
	go s.run()

	sub, err := c.remote.Subscribe(s.ctx, s.clockPath(), s.onChange)
	if err != nil {
		s.close()
		return fmt.Errorf("error subscribing to document %q: %w", docID, mapAdapterError(err))
	}
	s.sub = sub
	c.session = s

	log.Info().Str("func", "*clientSyncService.Open").Str("doc", docID).Int64("clock", lastSeen).Msg("session opened")
	return nil
}

func (c *clientSyncService) newSession(docID string) *session {
	ctx, cancel := context.WithCancel(context.Background())

	s := &session{
		docID:     docID,
		replica:   c.replica,
		remote:    c.remote,
		validator: c.validator,
		debounce:  c.opts.DebounceWindow,
		writerTag: c.opts.WriterTag,
		logger:    c.logger,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		events:    make(chan func(ctx context.Context), sessionEventBuffer),
		wake:      make(chan struct{}, 1),
		updates:   make(chan models.SessionUpdate, sessionUpdateBuffer),
	}

	s.items = &entity[models.Forest]{
		s:     s,
		name:  models.EntityItems,
		state: c.tracker.Items,
		empty: func() models.Forest { return tree.EnsureTrash(nil) },
		clone: tree.Clone,
		hash:  utils.ForestHash,
		merge: func(base models.Forest, hasBase bool, local, server models.Forest) (models.Forest, []models.ConflictDetail) {
			if !hasBase {
				return tree.Clone(server), nil
			}
			res := c.merger.Forests(base, local, server)
			return res.Merged, res.ConflictDetails
		},
	}
	s.memo = &entity[string]{
		s:     s,
		name:  models.EntityMemo,
		state: c.tracker.Memo,
		empty: func() string { return "" },
		clone: func(v string) string { return v },
		hash:  utils.TextHash,
		merge: func(base string, hasBase bool, local, server string) (string, []models.ConflictDetail) {
			if !hasBase {
				return server, nil
			}
			return c.merger.Text(base, local, server)
		},
	}
	s.entities = []syncEntity{s.items, s.memo}

	return s
}

func (c *clientSyncService) current() *session {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.session
}

func (c *clientSyncService) EditItems(items models.Forest) error {
	s := c.current()
	if s == nil {
		return ErrSessionClosed
	}

	items = tree.Clone(items)
	return s.post(context.Background(), func(ctx context.Context) {
		s.items.edit(ctx, items)
	})
}

func (c *clientSyncService) EditMemo(memo string) error {
	s := c.current()
	if s == nil {
		return ErrSessionClosed
	}

	return s.post(context.Background(), func(ctx context.Context) {
		s.memo.edit(ctx, memo)
	})
}

func (c *clientSyncService) Document() models.Document {
	s := c.current()
	if s == nil {
		return models.Document{}
	}
	return s.document()
}

func (c *clientSyncService) Flush(ctx context.Context) error {
	s := c.current()
	if s == nil {
		return ErrSessionClosed
	}
	return s.call(ctx, s.flush)
}

func (c *clientSyncService) Resync(ctx context.Context) error {
	s := c.current()
	if s == nil {
		return ErrSessionClosed
	}
	return s.call(ctx, s.resync)
}

func (c *clientSyncService) Updates() <-chan models.SessionUpdate {
	s := c.current()
	if s == nil {
		return nil
	}
	return s.updates
}

func (c *clientSyncService) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return
	}
	c.session.close()
	c.session = nil

	c.logger.Info().Str("func", "*clientSyncService.Close").Msg("session closed")
}

func (c *clientSyncService) Logout(ctx context.Context) error {
	c.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.tracker.ResetAll()
	if err := c.replica.Clear(ctx); err != nil {
		return fmt.Errorf("error clearing local replica: %w", err)
	}

	c.logger.Info().Str("func", "*clientSyncService.Logout").Msg("sync state and local replica wiped")
	return nil
}
