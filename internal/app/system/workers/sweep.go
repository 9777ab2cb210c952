// internal/app/system/workers/sweep.go
package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/questionhub/internal/app/assign"
	"github.com/dalemusser/questionhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// SweepRunner runs one reconciliation sweep.
type SweepRunner interface {
	RunSweep(ctx context.Context) (assign.SweepReport, error)
}

// SweepScheduler is a background worker that runs the reconciliation sweep
// on a fixed interval.
type SweepScheduler struct {
	sweeper    SweepRunner
	log        *zap.Logger
	interval   time.Duration
	runOnStart bool
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewSweepScheduler creates a sweep worker.
//
// Parameters:
//   - sweeper: performs the sweep
//   - logger: zap logger for logging
//   - interval: time between sweeps (e.g., 1 minute)
//   - runOnStart: run one sweep immediately instead of waiting a full interval
func NewSweepScheduler(sweeper SweepRunner, logger *zap.Logger, interval time.Duration, runOnStart bool) *SweepScheduler {
	return &SweepScheduler{
		sweeper:    sweeper,
		log:        logger,
		interval:   interval,
		runOnStart: runOnStart,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *SweepScheduler) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("sweep worker started",
		zap.Duration("interval", w.interval),
		zap.Bool("run_on_start", w.runOnStart))
}

// Stop signals the worker to stop and waits for an in-flight sweep to finish.
// Calls after the first are no-ops.
func (w *SweepScheduler) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("sweep worker stopped")
	})
}

func (w *SweepScheduler) run() {
	defer w.wg.Done()

	if w.runOnStart {
		w.tick()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *SweepScheduler) tick() {
	ctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Sweep(), w.log, "scheduled sweep")
	defer cancel()

	// stop aborts the in-flight sweep
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	_, err := w.sweeper.RunSweep(ctx)
	switch {
	case err == nil:
	case errors.Is(err, assign.ErrSweepInProgress):
		w.log.Info("previous sweep still running; skipping tick")
	default:
		w.log.Error("scheduled sweep failed", zap.Error(err))
	}
}
