package assign

import (
	"context"
	"fmt"

	"github.com/dalemusser/questionhub/internal/app/notify"
	"github.com/dalemusser/questionhub/internal/domain/models"
	"go.uber.org/zap"
)

// Assigner handles change-feed events for individual questions.
type Assigner struct {
	committer
	dir Directory
	rnd RandomSource
}

// NewAssigner creates the reactive assigner.
func NewAssigner(store WorkStore, dir Directory, notifier Notifier, logger *zap.Logger, opts ...Option) *Assigner {
	cfg := buildConfig(opts)
	return &Assigner{
		committer: committer{
			store:    store,
			notifier: notifier,
			now:      cfg.now,
			metrics:  cfg.metrics,
			log:      logger,
		},
		dir: dir,
		rnd: cfg.rnd,
	}
}

// Handle dispatches one change-feed event. A returned error means the store
// could not be reached and the event should be redelivered.
func (a *Assigner) Handle(ctx context.Context, ev models.QuestionEvent) error {
	switch ev.Kind {
	case models.EventCreated:
		_, err := a.HandleCreated(ctx, ev.After)
		return err
	case models.EventUpdated:
		if ev.Before == nil {
			a.log.Warn("update event without prior snapshot; ignoring",
				zap.String("question_id", ev.After.ID))
			return nil
		}
		return a.HandleUpdated(ctx, *ev.Before, ev.After)
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

// HandleCreated assigns a newly created question to a random responder other
// than the questioner. Redelivery of the same creation is a no-op once the
// question has an assignee.
func (a *Assigner) HandleCreated(ctx context.Context, q models.Question) (Outcome, error) {
	if !q.Unassigned() {
		a.log.Debug("question already has an assignee",
			zap.String("question_id", q.ID),
			zap.String("assignee", q.Assignee))
		a.metrics.Assignment(PathCreated, string(OutcomeAlreadyAssigned))
		return OutcomeAlreadyAssigned, nil
	}
	return a.assignRandom(ctx, PathCreated, q)
}

// HandleUpdated reacts to a question mutation. A decline triggers
// reassignment and nothing else; otherwise answers appended since before are
// routed to the other party.
func (a *Assigner) HandleUpdated(ctx context.Context, before, after models.Question) error {
	if Declined(before, after) {
		a.log.Info("question declined; reassigning",
			zap.String("question_id", after.ID),
			zap.String("previous_assignee", before.Assignee),
			zap.Int("declined_count", len(after.DeclinedBy)))
		_, err := a.assignRandom(ctx, PathDeclined, after)
		return err
	}

	for _, ans := range NewAnswers(before, after) {
		a.routeAnswer(ctx, after, ans)
	}
	return nil
}

// Declined reports whether the change from before to after is a responder
// giving the question back: the assignee was cleared and declinedBy grew.
func Declined(before, after models.Question) bool {
	return before.Assignee != "" &&
		after.Assignee == "" &&
		len(after.DeclinedBy) > len(before.DeclinedBy)
}

// NewAnswers returns the answers appended between before and after, in order.
func NewAnswers(before, after models.Question) []models.Answer {
	if len(after.Answers) <= len(before.Answers) {
		return nil
	}
	return after.Answers[len(before.Answers):]
}

func (a *Assigner) assignRandom(ctx context.Context, path string, q models.Question) (Outcome, error) {
	users, err := listResponders(ctx, a.dir, a.log)
	if err != nil {
		a.metrics.Assignment(path, string(OutcomeError))
		return OutcomeError, err
	}

	ex := ExclusionsFor(q)
	assignee, ok := PickRandom(a.rnd, users, ex)
	if !ok {
		a.log.Warn("no available users to assign question",
			zap.String("question_id", q.ID),
			zap.String("path", path),
			zap.Int("pool", len(users)),
			zap.Int("excluded", len(ex)))
		a.metrics.Assignment(path, string(OutcomeNoCandidate))
		return OutcomeNoCandidate, nil
	}
	return a.commit(ctx, path, q, assignee)
}

func (a *Assigner) routeAnswer(ctx context.Context, q models.Question, ans models.Answer) {
	var (
		recipient string
		kind      notify.Kind
		role      string
	)
	switch ans.Sender {
	case models.SenderAnswerer:
		recipient, kind, role = q.Questioner, notify.KindAnswerAdded, "questioner"
	case models.SenderQuestioner:
		recipient, kind, role = q.Assignee, notify.KindExtraQuestionAdded, "assignee"
	default:
		a.log.Debug("ignoring answer with unknown sender",
			zap.String("question_id", q.ID),
			zap.String("sender", string(ans.Sender)))
		return
	}

	if recipient == "" {
		a.log.Info("no "+role+" to notify",
			zap.String("question_id", q.ID),
			zap.String("kind", string(kind)))
		return
	}
	a.notifier.Send(ctx, recipient, kind, notify.PayloadFor(q, ans.Content))
}
