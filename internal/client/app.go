package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MKhiriev/go-task-keeper/internal/config"
	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/service"
	"github.com/MKhiriev/go-task-keeper/internal/workers"
	"github.com/MKhiriev/go-task-keeper/models"
)

// flushTimeout bounds the final push of pending edits on exit.
const flushTimeout = 5 * time.Second

type App struct {
	services    *service.ClientServices
	workingCopy *WorkingCopy
	cfg         config.ClientConfig

	logger *logger.Logger
}

func NewApp(services *service.ClientServices, cfg config.ClientConfig, logger *logger.Logger) (*App, error) {
	if cfg.Document.ID == "" {
		return nil, service.ErrDocumentIDRequired
	}

	return &App{
		services:    services,
		workingCopy: NewWorkingCopy(cfg.Document.WorkingCopy, logger),
		cfg:         cfg,
		logger:      logger,
	}, nil
}

// Run syncs the configured document until the process receives a stop
// signal.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	syncSvc := a.services.SyncService

	if err := syncSvc.Open(ctx, a.cfg.Document.ID); err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer syncSvc.Close()

	if err := a.seedWorkingCopy(); err != nil {
		return err
	}

	a.services.SyncJob.Start(ctx, a.cfg.Workers.SyncInterval)
	defer a.services.SyncJob.Stop()

	err := workers.New(a.logger).
		Add("working-copy", workers.Func(func(ctx context.Context) error {
			return a.workingCopy.Watch(ctx, a.applyLocalEdit)
		})).
		Add("session-updates", workers.Func(a.forwardUpdates)).
		Run(ctx)

	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if flushErr := syncSvc.Flush(flushCtx); flushErr != nil {
		a.logger.Warn().Err(flushErr).Str("func", "*App.run").Msg("pending edits stay in the local replica")
	}

	return err
}

// seedWorkingCopy creates the working copy from the replica, or takes edits
// made to it while the client was not running.
func (a *App) seedWorkingCopy() error {
	doc, err := a.workingCopy.Read()
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err = a.workingCopy.Write(a.services.SyncService.Document()); err != nil {
			return fmt.Errorf("create working copy: %w", err)
		}
		return nil
	case err != nil:
		a.logger.Warn().Err(err).Str("func", "*App.seedWorkingCopy").Msg("working copy left as is until it parses")
		return nil
	}

	a.applyLocalEdit(doc)
	return nil
}

func (a *App) applyLocalEdit(doc models.Document) {
	log := a.logger

	if err := a.services.SyncService.EditItems(doc.Items); err != nil {
		log.Err(err).Str("func", "*App.applyLocalEdit").Msg("items edit dropped")
	}
	if err := a.services.SyncService.EditMemo(doc.Memo); err != nil {
		log.Err(err).Str("func", "*App.applyLocalEdit").Msg("memo edit dropped")
	}
	log.Debug().Str("func", "*App.applyLocalEdit").Msg("working copy edit recorded")
}

// forwardUpdates writes adopted and merged content back to the working copy
// and logs conflicts and push failures.
func (a *App) forwardUpdates(ctx context.Context) error {
	updates := a.services.SyncService.Updates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			a.handleUpdate(u)
		}
	}
}

func (a *App) handleUpdate(u models.SessionUpdate) {
	log := a.logger

	if u.Err != nil {
		log.Warn().Err(u.Err).Str("func", "*App.handleUpdate").Str("entity", string(u.Entity)).Msg("push failed, will retry")
		return
	}

	for _, c := range u.Conflicts {
		log.Warn().Str("func", "*App.handleUpdate").
			Str("entity", string(u.Entity)).
			Str("item_id", c.ItemID.String()).
			Str("field", c.Field).
			Any("local", c.LocalValue).
			Any("server", c.ServerValue).
			Str("resolution", string(c.Resolution)).
			Msg("conflict resolved")
	}

	if err := a.workingCopy.Write(u.Document); err != nil {
		log.Err(err).Str("func", "*App.handleUpdate").Msg("failed to write working copy")
		return
	}
	log.Info().Str("func", "*App.handleUpdate").Str("entity", string(u.Entity)).Msg("working copy updated")
}
