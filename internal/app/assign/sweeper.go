package assign

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dalemusser/questionhub/internal/app/system/timeouts"
	"github.com/dalemusser/questionhub/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrSweepInProgress is returned by RunSweep when another sweep is running.
var ErrSweepInProgress = errors.New("sweep already in progress")

// SweepReport summarizes one sweep.
type SweepReport struct {
	RunID       string        `json:"run_id"`
	Unassigned  int           `json:"unassigned"`
	Responders  int           `json:"responders"`
	Assigned    int           `json:"assigned"`
	Conflicts   int           `json:"conflicts"`
	NoCandidate int           `json:"no_candidate"`
	Failed      int           `json:"failed"`
	Aborted     bool          `json:"aborted"`
	Took        time.Duration `json:"took_ns"`
}

// Sweeper assigns every unassigned question round-robin over the responder
// pool. Only one sweep runs at a time per Sweeper.
type Sweeper struct {
	committer
	dir     Directory
	workers int
	running atomic.Bool
}

// NewSweeper creates a reconciliation sweeper.
func NewSweeper(store WorkStore, dir Directory, notifier Notifier, logger *zap.Logger, opts ...Option) *Sweeper {
	cfg := buildConfig(opts)
	return &Sweeper{
		committer: committer{
			store:    store,
			notifier: notifier,
			now:      cfg.now,
			metrics:  cfg.metrics,
			log:      logger,
		},
		dir:     dir,
		workers: cfg.workers,
	}
}

// Running reports whether a sweep is in progress.
func (s *Sweeper) Running() bool {
	return s.running.Load()
}

// RunSweep performs one reconciliation pass.
//
// Questions are visited in store order. The round-robin cursor starts at 0
// for every sweep and advances once per unassigned question whether or not
// its write succeeds. Write conflicts and per-question write errors are
// counted and the sweep continues; an unavailable store stops the sweep and
// the remaining questions wait for the next one.
func (s *Sweeper) RunSweep(ctx context.Context) (SweepReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.metrics.SweepSkipped()
		return SweepReport{}, ErrSweepInProgress
	}
	defer s.running.Store(false)

	start := time.Now()
	report := SweepReport{RunID: uuid.NewString()}
	log := s.log.With(zap.String("sweep_id", report.RunID))
	log.Info("starting question assignment sweep")

	err := s.sweep(ctx, log, &report)
	report.Took = time.Since(start)
	s.metrics.SweepCompleted(report.Took, report.Assigned)

	if err != nil {
		report.Aborted = true
		log.Error("sweep ended early", zap.Error(err), zap.Int("assigned", report.Assigned))
		return report, err
	}
	log.Info("sweep completed",
		zap.Int("unassigned", report.Unassigned),
		zap.Int("assigned", report.Assigned),
		zap.Int("conflicts", report.Conflicts),
		zap.Int("no_candidate", report.NoCandidate),
		zap.Int("failed", report.Failed),
		zap.Duration("took", report.Took))
	return report, nil
}

func (s *Sweeper) sweep(ctx context.Context, log *zap.Logger, report *SweepReport) error {
	qctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), log, "list questions")
	pending, err := s.store.Unassigned(qctx)
	cancel()
	if err != nil {
		return fmt.Errorf("list questions: %w", err)
	}
	report.Unassigned = len(pending)

	users, err := listResponders(ctx, s.dir, log)
	if err != nil {
		return err
	}
	report.Responders = len(users)

	if len(users) == 0 {
		log.Warn("no available users to assign questions to", zap.Int("unassigned", len(pending)))
		return nil
	}
	if len(pending) == 0 {
		log.Info("no unassigned questions found")
		return nil
	}

	var (
		rr RoundRobin
		mu sync.Mutex
	)
	tally := func(fn func()) {
		mu.Lock()
		fn()
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, q := range pending {
		if gctx.Err() != nil {
			break
		}
		assignee, ok := rr.Next(users, ExclusionsFor(q))
		if !ok {
			log.Warn("no eligible user for question", zap.String("question_id", q.ID))
			s.metrics.Assignment(PathSweep, string(OutcomeNoCandidate))
			tally(func() { report.NoCandidate++ })
			continue
		}

		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			outcome, err := s.commit(ctx, PathSweep, q, assignee)
			if err != nil {
				tally(func() { report.Failed++ })
				// A write that ran out of its own time budget fails alone;
				// an unreachable store ends the batch.
				if errors.Is(err, models.ErrStoreUnavailable) {
					return err
				}
				return nil
			}
			tally(func() {
				switch outcome {
				case OutcomeAssigned:
					report.Assigned++
				case OutcomeConflict:
					report.Conflicts++
				}
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
