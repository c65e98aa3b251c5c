// Package jobs detaches scrape runs from the HTTP handlers that start
// them. A handler submits a job and returns immediately; the job owns
// its lifecycle from then on and reports only through the progress
// store.
package jobs

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rentalwatch/enjoytravel-scraper/internal/progress"
)

type Runner struct {
	store  progress.Store
	logger *slog.Logger
	wg     sync.WaitGroup
}

func NewRunner(store progress.Store, logger *slog.Logger) *Runner {
	return &Runner{
		store:  store,
		logger: logger.With("component", "jobs"),
	}
}

// Submit starts fn as a background job. The job gets a fresh context:
// its lifetime is not tied to the request that submitted it, and there
// is no cancellation once started. A panicking job is recovered into a
// terminal error state so pollers are never left on a stale progress
// value.
func (r *Runner) Submit(sessionID string, fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx := context.Background()

		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("job panicked", "session", sessionID, "panic", rec)
				r.store.Set(ctx, sessionID, progress.Run{
					Status:  progress.StatusError,
					Message: "Error: internal failure",
				})
			}
		}()

		r.logger.Info("job started", "session", sessionID)
		fn(ctx)
		r.logger.Info("job finished", "session", sessionID)
	}()
}

// Wait blocks until every submitted job has finished. Used by the CLI
// and by tests; the server lets in-flight jobs die with the process.
func (r *Runner) Wait() {
	r.wg.Wait()
}
