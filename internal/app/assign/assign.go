package assign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/questionhub/internal/app/notify"
	"github.com/dalemusser/questionhub/internal/app/system/metrics"
	"github.com/dalemusser/questionhub/internal/app/system/timeouts"
	"github.com/dalemusser/questionhub/internal/domain/models"
	"go.uber.org/zap"
)

// WorkStore is the part of the question store the core reads and writes.
type WorkStore interface {
	// Unassigned returns the questions nobody owns, in a stable order and
	// without repeated IDs.
	Unassigned(ctx context.Context) ([]models.Question, error)
	// UpdateAssignment sets assignee and updatedAt on question id, but only if
	// the stored assignee still equals expected ("" matches missing, null, and
	// empty) and assignee is not in declinedBy. It returns
	// models.ErrWriteConflict when that condition fails and models.ErrNotFound
	// when the question is gone.
	UpdateAssignment(ctx context.Context, id, expected, assignee string, at time.Time) error
}

// Directory lists responders.
type Directory interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// Notifier sends one notification; it never fails the caller.
type Notifier interface {
	Send(ctx context.Context, userID string, kind notify.Kind, p notify.Payload) notify.Result
}

// Outcome is the result of one assignment attempt.
type Outcome string

const (
	OutcomeAssigned        Outcome = "assigned"
	OutcomeAlreadyAssigned Outcome = "already_assigned"
	OutcomeNoCandidate     Outcome = "no_candidate"
	OutcomeConflict        Outcome = "conflict"
	OutcomeNotFound        Outcome = "not_found"
	OutcomeError           Outcome = "error"
)

// Activation paths, used in logs and metrics.
const (
	PathCreated  = "created"
	PathDeclined = "declined"
	PathSweep    = "sweep"
)

type config struct {
	rnd     RandomSource
	now     func() time.Time
	metrics metrics.Recorder
	workers int
}

// Option configures an Assigner or Sweeper.
type Option func(*config)

// WithRandom sets the randomness used to pick reactive assignees.
func WithRandom(src RandomSource) Option {
	return func(c *config) { c.rnd = src }
}

// WithClock sets the time source for updatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(rec metrics.Recorder) Option {
	return func(c *config) { c.metrics = rec }
}

// WithSweepWorkers sets how many sweep writes run in parallel (minimum 1).
func WithSweepWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

func buildConfig(opts []Option) config {
	c := config{
		rnd:     globalSource{},
		now:     func() time.Time { return time.Now().UTC() },
		metrics: metrics.Nop{},
		workers: 1,
	}
	for _, o := range opts {
		o(&c)
	}
	if c.workers < 1 {
		c.workers = 1
	}
	return c
}

// committer performs the conditional write and the follow-up notification
// shared by both activation paths.
type committer struct {
	store    WorkStore
	notifier Notifier
	now      func() time.Time
	metrics  metrics.Recorder
	log      *zap.Logger
}

// commit writes assignee to q if q is still in the state the decision was
// based on, then notifies the new assignee. A lost race or a vanished
// question is not an error; only store failures are returned.
func (c *committer) commit(ctx context.Context, path string, q models.Question, assignee string) (Outcome, error) {
	log := c.log.With(
		zap.String("question_id", q.ID),
		zap.String("assignee", assignee),
		zap.String("path", path),
	)

	wctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), c.log, "update assignment")
	err := c.store.UpdateAssignment(wctx, q.ID, q.Assignee, assignee, c.now())
	cancel()

	switch {
	case errors.Is(err, models.ErrWriteConflict):
		log.Info("assignment skipped: question changed since it was read")
		c.metrics.Assignment(path, string(OutcomeConflict))
		return OutcomeConflict, nil
	case errors.Is(err, models.ErrNotFound):
		log.Warn("assignment skipped: question not found")
		c.metrics.Assignment(path, string(OutcomeNotFound))
		return OutcomeNotFound, nil
	case err != nil:
		log.Error("assignment write failed", zap.Error(err))
		c.metrics.Assignment(path, string(OutcomeError))
		return OutcomeError, fmt.Errorf("assign question %s: %w", q.ID, err)
	}

	log.Info("question assigned")
	c.metrics.Assignment(path, string(OutcomeAssigned))

	q.Assignee = assignee
	c.notifier.Send(ctx, assignee, notify.KindAssigned, notify.PayloadFor(q, ""))
	return OutcomeAssigned, nil
}

func listResponders(ctx context.Context, dir Directory, log *zap.Logger) ([]string, error) {
	lctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), log, "list responders")
	defer cancel()
	users, err := dir.ListUserIDs(lctx)
	if err != nil {
		return nil, fmt.Errorf("list responders: %w", err)
	}
	return users, nil
}
