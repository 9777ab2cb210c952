// internal/domain/models/question.go
package models

import (
	"strings"
	"time"
)

// DefaultQuestionTitle is shown in notifications when a question has no title.
const DefaultQuestionTitle = "Untitled Question"

// Sender identifies who appended an entry to a question's answer thread.
type Sender string

const (
	// SenderQuestioner marks a follow-up written by the person who asked.
	SenderQuestioner Sender = "questioner"
	// SenderAnswerer marks a reply written by the assigned responder.
	SenderAnswerer Sender = "answerer"
)

// Answer is one entry in a question's append-only thread.
type Answer struct {
	Sender    Sender    `bson:"sender" json:"sender"`
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
}

// Question is a work item waiting for (or owned by) a responder.
//
// NOTE:
//   - Assignee may be stored as a missing field, null, or "". All three decode
//     to "" and mean the question is unassigned.
//   - DeclinedBy only grows. A present Assignee is never a member of it.
//   - Answers is append-only; this service never writes it.
type Question struct {
	ID         string   `bson:"_id" json:"id"`
	Title      string   `bson:"title,omitempty" json:"title,omitempty"`
	Content    string   `bson:"content,omitempty" json:"content,omitempty"`
	Questioner string   `bson:"questioner,omitempty" json:"questioner,omitempty"`
	Assignee   string   `bson:"assignee,omitempty" json:"assignee,omitempty"`
	DeclinedBy []string `bson:"declinedBy,omitempty" json:"declinedBy,omitempty"`
	Answers    []Answer `bson:"answers,omitempty" json:"answers,omitempty"`

	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Unassigned reports whether nobody currently owns the question.
func (q Question) Unassigned() bool {
	return q.Assignee == ""
}

// PendingOnly returns the unassigned questions in all, dropping repeated IDs
// and keeping the first occurrence's position.
func PendingOnly(all []Question) []Question {
	seen := make(map[string]struct{}, len(all))
	out := make([]Question, 0, len(all))
	for _, q := range all {
		if !q.Unassigned() {
			continue
		}
		if _, dup := seen[q.ID]; dup {
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
	}
	return out
}

// DisplayTitle returns the title, falling back to DefaultQuestionTitle.
func (q Question) DisplayTitle() string {
	if t := strings.TrimSpace(q.Title); t != "" {
		return t
	}
	return DefaultQuestionTitle
}

// HasDeclined reports whether userID is in DeclinedBy.
func (q Question) HasDeclined(userID string) bool {
	for _, id := range q.DeclinedBy {
		if id == userID {
			return true
		}
	}
	return false
}
