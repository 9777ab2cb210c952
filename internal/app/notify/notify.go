// Package notify formats push notifications and hands them to a transport.
//
// Delivery is best-effort. Send never returns an error: a missing token is a
// skip and a transport failure is reported in the Result and logged, so a
// failed notification can never undo an assignment.
package notify

import (
	"context"
	"errors"

	"github.com/dalemusser/questionhub/internal/app/system/metrics"
	"github.com/dalemusser/questionhub/internal/app/system/timeouts"
	"github.com/dalemusser/questionhub/internal/domain/models"
	"go.uber.org/zap"
)

// Kind selects the notification text and is echoed to the client as "type".
type Kind string

const (
	KindAssigned           Kind = "question_assigned"
	KindAnswerAdded        Kind = "answer_added"
	KindExtraQuestionAdded Kind = "extra_question_added"
)

// Status is the outcome of one Send.
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// ReasonNoToken is the skip reason for users without a registered token.
const ReasonNoToken = "no_token"

// Result reports what happened to one notification.
type Result struct {
	Status Status
	Reason string
}

func (r Result) String() string {
	if r.Reason == "" {
		return string(r.Status)
	}
	return string(r.Status) + "(" + r.Reason + ")"
}

// Payload carries the question fields a notification is built from.
// Content is the answer text for answer/follow-up kinds and empty otherwise.
type Payload struct {
	QuestionID string
	Title      string
	Content    string
}

// PayloadFor builds a Payload from a question and optional answer content.
func PayloadFor(q models.Question, content string) Payload {
	return Payload{QuestionID: q.ID, Title: q.DisplayTitle(), Content: content}
}

// Message is what a Transport delivers to one device.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Transport delivers a message to a device token.
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

// TokenLookup resolves a user's device token. It returns models.ErrNotFound
// when the user does not exist, and "" when the user has no token.
type TokenLookup interface {
	Token(ctx context.Context, userID string) (string, error)
}

// Notifier sends notifications to users.
type Notifier struct {
	tokens    TokenLookup
	transport Transport
	metrics   metrics.Recorder
	log       *zap.Logger
}

// New creates a Notifier. A nil recorder disables metrics.
func New(tokens TokenLookup, transport Transport, rec metrics.Recorder, logger *zap.Logger) *Notifier {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Notifier{tokens: tokens, transport: transport, metrics: rec, log: logger}
}

// Send notifies userID about kind. It never blocks past timeouts.Short() per
// store/transport call and never returns an error.
func (n *Notifier) Send(ctx context.Context, userID string, kind Kind, p Payload) Result {
	res := n.send(ctx, userID, kind, p)
	n.metrics.Notification(string(kind), string(res.Status))
	return res
}

func (n *Notifier) send(ctx context.Context, userID string, kind Kind, p Payload) Result {
	log := n.log.With(
		zap.String("user_id", userID),
		zap.String("question_id", p.QuestionID),
		zap.String("kind", string(kind)),
	)

	lookupCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), n.log, "token lookup")
	token, err := n.tokens.Token(lookupCtx, userID)
	cancel()
	switch {
	case errors.Is(err, models.ErrNotFound):
		log.Warn("notification skipped: user not found")
		return Result{Status: StatusSkipped, Reason: ReasonNoToken}
	case err != nil:
		log.Error("notification failed: token lookup", zap.Error(err))
		return Result{Status: StatusFailed, Reason: err.Error()}
	case token == "":
		log.Warn("notification skipped: user has no device token registered")
		return Result{Status: StatusSkipped, Reason: ReasonNoToken}
	}

	title, body := Compose(kind, p)
	msg := Message{
		Token: token,
		Title: title,
		Body:  body,
		Data: map[string]string{
			"questionId": p.QuestionID,
			"type":       string(kind),
		},
	}

	sendCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), n.log, "push delivery")
	defer cancel()
	if err := n.transport.Deliver(sendCtx, msg); err != nil {
		log.Error("notification delivery failed", zap.Error(err))
		return Result{Status: StatusFailed, Reason: err.Error()}
	}
	log.Info("notification delivered")
	return Result{Status: StatusDelivered}
}
