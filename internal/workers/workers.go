package workers

import (
	"context"

	"github.com/MKhiriev/go-chat-tui/internal/logger"
	"golang.org/x/sync/errgroup"
)

type Workers struct {
	workers []Worker
}

// New groups ws so they can be run together.
func New(ws ...Worker) *Workers {
	return &Workers{workers: ws}
}

// Run starts every worker in its own goroutine and waits for all of them.
// The first worker to return an error cancels the others; that error is
// returned. Failures are logged with the logger attached to ctx.
func (w *Workers) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	g, gctx := errgroup.WithContext(ctx)
	for i, worker := range w.workers {
		g.Go(func() error {
			err := worker.Run(gctx)
			if err != nil {
				log.Error().Err(err).Int("worker", i).Msg("worker stopped with error")
			}
			return err
		})
	}
	return g.Wait()
}
