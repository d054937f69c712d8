// Package workers runs the long-lived goroutines of a process as one group.
// The first worker that fails stops all the others.
package workers

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-task-keeper/internal/logger"
)

type namedWorker struct {
	name   string
	worker Worker
}

type Workers struct {
	workers []namedWorker

	logger *logger.Logger
}

func New(logger *logger.Logger) *Workers {
	return &Workers{logger: logger}
}

// Add registers a worker under name. Names only label log entries and
// errors.
func (w *Workers) Add(name string, worker Worker) *Workers {
	w.workers = append(w.workers, namedWorker{name: name, worker: worker})
	return w
}

// Run starts every worker and waits for all of them. A worker error cancels
// the context of the others; cancellation itself is not an error.
func (w *Workers) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	for _, nw := range w.workers {
		g.Go(func() error {
			w.logger.Info().Str("func", "*Workers.Run").Str("worker", nw.name).Msg("worker started")

			err := nw.worker.Run(gCtx)
			if err != nil && !isCancellation(err) {
				w.logger.Err(err).Str("func", "*Workers.Run").Str("worker", nw.name).Msg("worker failed")
				return fmt.Errorf("worker %s: %w", nw.name, err)
			}

			w.logger.Info().Str("func", "*Workers.Run").Str("worker", nw.name).Msg("worker stopped")
			return nil
		})
	}

	return g.Wait()
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
