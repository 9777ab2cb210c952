package assign_test

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/questionhub/internal/app/notify"
	"github.com/dalemusser/questionhub/internal/domain/models"
)

// memStore is an in-memory WorkStore with the same conditional-write rules as
// the Mongo store.
type memStore struct {
	mu        sync.Mutex
	items     []models.Question
	writes    []write
	failWrite map[string]error
	listErr   error
	listHook  func()
}

type write struct {
	ID       string
	Assignee string
}

func newMemStore(items ...models.Question) *memStore {
	return &memStore{items: items, failWrite: map[string]error{}}
}

func (m *memStore) Unassigned(context.Context) ([]models.Question, error) {
	if m.listHook != nil {
		m.listHook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return models.PendingOnly(m.items), nil
}

func (m *memStore) UpdateAssignment(_ context.Context, id, expected, assignee string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failWrite[id]; err != nil {
		return err
	}
	for i := range m.items {
		q := &m.items[i]
		if q.ID != id {
			continue
		}
		if q.Assignee != expected || q.HasDeclined(assignee) {
			return models.ErrWriteConflict
		}
		q.Assignee = assignee
		q.UpdatedAt = at
		m.writes = append(m.writes, write{ID: id, Assignee: assignee})
		return nil
	}
	return models.ErrNotFound
}

func (m *memStore) get(id string) models.Question {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.items {
		if q.ID == id {
			return q
		}
	}
	return models.Question{}
}

func (m *memStore) writeLog() []write {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]write(nil), m.writes...)
}

type staticDirectory struct {
	users []string
	err   error
}

func (d staticDirectory) ListUserIDs(context.Context) ([]string, error) {
	return d.users, d.err
}

type sent struct {
	UserID  string
	Kind    notify.Kind
	Payload notify.Payload
}

type recordingNotifier struct {
	mu     sync.Mutex
	sent   []sent
	result notify.Result
}

func (r *recordingNotifier) Send(_ context.Context, userID string, kind notify.Kind, p notify.Payload) notify.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{UserID: userID, Kind: kind, Payload: p})
	if r.result.Status == "" {
		return notify.Result{Status: notify.StatusDelivered}
	}
	return r.result
}

func (r *recordingNotifier) all() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sent(nil), r.sent...)
}

// fixedSource always returns the same index (clamped to n-1).
type fixedSource int

func (f fixedSource) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}
