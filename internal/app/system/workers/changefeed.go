// internal/app/system/workers/changefeed.go
package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	questionstore "github.com/dalemusser/questionhub/internal/app/store/questions"
	"github.com/dalemusser/questionhub/internal/app/system/metrics"
	"github.com/dalemusser/questionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// EventSource streams question changes, resuming after token when non-nil.
type EventSource interface {
	Watch(ctx context.Context, resumeAfter bson.Raw, fn questionstore.ChangeFunc) error
}

// EventHandler handles a single question event. An error wrapping
// models.ErrStoreUnavailable or a context deadline means the event must be
// seen again; any other error is final for that event.
type EventHandler interface {
	Handle(ctx context.Context, ev models.QuestionEvent) error
}

const (
	defaultMinBackoff = time.Second
	defaultMaxBackoff = 30 * time.Second
)

// ChangeFeed consumes the questions change stream and feeds every event to
// the assigner.
//
// Delivery is at least once. The resume token only moves past an event after
// the handler accepted it or failed it permanently, so an event that hit an
// unreachable store is redelivered when the stream reopens while one that can
// never succeed is dropped and counted instead of blocking the stream.
type ChangeFeed struct {
	source  EventSource
	handler EventHandler
	log     *zap.Logger
	metrics metrics.Recorder

	minBackoff time.Duration
	maxBackoff time.Duration

	mu    sync.Mutex
	token bson.Raw

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewChangeFeed creates a change feed consumer.
func NewChangeFeed(source EventSource, handler EventHandler, logger *zap.Logger) *ChangeFeed {
	return &ChangeFeed{
		source:     source,
		handler:    handler,
		log:        logger,
		metrics:    metrics.Nop{},
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
	}
}

// SetBackoff overrides the reconnect delays. Used by tests.
func (w *ChangeFeed) SetBackoff(initial, limit time.Duration) {
	w.minBackoff = initial
	w.maxBackoff = limit
}

// SetMetrics sets where dropped events are counted. Call before Start.
func (w *ChangeFeed) SetMetrics(rec metrics.Recorder) {
	if rec != nil {
		w.metrics = rec
	}
}

// Start begins consuming in the background.
func (w *ChangeFeed) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.wg.Add(1)
	go w.run(ctx)
	w.log.Info("change feed worker started")
}

// Stop cancels the stream and waits for the current event to finish.
func (w *ChangeFeed) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.log.Info("change feed worker stopped")
}

// ResumeToken returns the token of the last event the handler accepted.
func (w *ChangeFeed) ResumeToken() bson.Raw {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.token
}

func (w *ChangeFeed) run(ctx context.Context) {
	defer w.wg.Done()

	delay := w.minBackoff
	for {
		progressed := false
		err := w.source.Watch(ctx, w.ResumeToken(), func(ctx context.Context, ev *models.QuestionEvent, token bson.Raw) error {
			if ev != nil {
				if err := w.handler.Handle(ctx, *ev); err != nil {
					if retryable(ctx, err) {
						w.log.Warn("event not processed; will be redelivered",
							zap.String("question_id", ev.After.ID),
							zap.String("kind", string(ev.Kind)),
							zap.Error(err))
						return err
					}
					w.log.Error("event dropped",
						zap.String("question_id", ev.After.ID),
						zap.String("kind", string(ev.Kind)),
						zap.Error(err))
					w.metrics.EventDropped(string(ev.Kind))
				}
			}
			w.mu.Lock()
			w.token = token
			w.mu.Unlock()
			progressed = true
			return nil
		})

		if ctx.Err() != nil {
			return
		}
		if progressed {
			delay = w.minBackoff
		}
		if err == nil {
			err = errors.New("change stream closed")
		}
		w.log.Warn("change stream interrupted; reconnecting",
			zap.Error(err),
			zap.Duration("backoff", delay))

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = min(delay*2, w.maxBackoff)
	}
}

func retryable(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, models.ErrStoreUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}
