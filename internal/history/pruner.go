// Package history keeps the run history table bounded.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// batchSize bounds the rows removed per RunOnce so a large backlog never
// holds the single SQLite connection for long.
const batchSize = 500

// RunPruner is the storage side of the pruner. Implemented by storage.Store.
type RunPruner interface {
	PruneRuns(cutoff time.Time, limit int) (int64, error)
}

// Pruner deletes chain runs older than the retention window.
type Pruner struct {
	store     RunPruner
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewPruner creates a Pruner. If interval is <= 0, it defaults to one hour.
// A retention <= 0 disables pruning; Run then returns immediately.
func NewPruner(store RunPruner, retention, interval time.Duration) *Pruner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Pruner{
		store:     store,
		retention: retention,
		interval:  interval,
		now:       time.Now,
		logger:    slog.Default(),
	}
}

// Run prunes once at start and then every interval until ctx is cancelled.
func (p *Pruner) Run(ctx context.Context) {
	if p.retention <= 0 {
		p.logger.Debug("run history pruning disabled")
		return
	}
	for {
		if ctx.Err() != nil {
			return
		}

		more, err := p.RunOnce(ctx)
		if err != nil {
			p.logger.Error("pruning run history failed", "error", err)
		}
		if more {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.interval):
		}
	}
}

// RunOnce removes one batch of expired runs. It returns true when the batch
// was full, meaning more expired runs may remain.
func (p *Pruner) RunOnce(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	cutoff := p.now().Add(-p.retention)
	n, err := p.store.PruneRuns(cutoff, batchSize)
	if err != nil {
		return false, fmt.Errorf("pruning runs before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	if n > 0 {
		p.logger.Info("pruned run history", "removed", n, "cutoff", cutoff.Format(time.RFC3339))
	}
	return n >= batchSize, nil
}
