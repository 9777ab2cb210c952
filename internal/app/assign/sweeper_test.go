package assign_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/questionhub/internal/app/assign"
	"github.com/dalemusser/questionhub/internal/app/notify"
	"github.com/dalemusser/questionhub/internal/domain/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func unassignedItems(n int) []models.Question {
	out := make([]models.Question, n)
	for i := range out {
		out[i] = models.Question{ID: fmt.Sprintf("item%d", i+1), Questioner: "asker"}
	}
	return out
}

func TestRunSweep_RoundRobinCoverage(t *testing.T) {
	store := newMemStore(unassignedItems(5)...)
	n := &recordingNotifier{}
	s := assign.NewSweeper(store, staticDirectory{users: []string{"user0", "user1"}}, n, zap.NewNop())

	report, err := s.RunSweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, report.Assigned)
	require.NotEmpty(t, report.RunID)

	require.Equal(t, []write{
		{"item1", "user0"},
		{"item2", "user1"},
		{"item3", "user0"},
		{"item4", "user1"},
		{"item5", "user0"},
	}, store.writeLog())
	require.Len(t, n.all(), 5)
	for _, s := range n.all() {
		require.Equal(t, notify.KindAssigned, s.Kind)
	}
}

func TestRunSweep_ParallelKeepsRotation(t *testing.T) {
	store := newMemStore(unassignedItems(6)...)
	s := assign.NewSweeper(store, staticDirectory{users: []string{"a", "b", "c"}}, &recordingNotifier{}, zap.NewNop(),
		assign.WithSweepWorkers(4))

	report, err := s.RunSweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 6, report.Assigned)

	want := map[string]string{"item1": "a", "item2": "b", "item3": "c", "item4": "a", "item5": "b", "item6": "c"}
	for id, user := range want {
		require.Equal(t, user, store.get(id).Assignee, id)
	}
}

func TestRunSweep_SkipsAssignedAndDuplicates(t *testing.T) {
	items := []models.Question{
		{ID: "a", Assignee: "someone"},
		{ID: "b"},
		{ID: "b"},
		{ID: "c"},
	}
	store := newMemStore(items...)
	s := assign.NewSweeper(store, staticDirectory{users: []string{"u0", "u1"}}, &recordingNotifier{}, zap.NewNop())

	report, err := s.RunSweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.Unassigned)
	require.Equal(t, []write{{"b", "u0"}, {"c", "u1"}}, store.writeLog())
	require.Equal(t, "someone", store.get("a").Assignee)
}

func TestRunSweep_ExcludesQuestionerAndDecliners(t *testing.T) {
	items := []models.Question{
		{ID: "q1", Questioner: "u0"},
		{ID: "q2", Questioner: "x", DeclinedBy: []string{"u0", "u1"}},
	}
	store := newMemStore(items...)
	s := assign.NewSweeper(store, staticDirectory{users: []string{"u0", "u1", "u2"}}, &recordingNotifier{}, zap.NewNop())

	_, err := s.RunSweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", store.get("q1").Assignee) // cursor 0 -> u0 excluded -> u1
	require.Equal(t, "u2", store.get("q2").Assignee) // cursor 1 -> u1 excluded -> u2
}

func TestRunSweep_NoUsers(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := newMemStore(unassignedItems(3)...)
	n := &recordingNotifier{}
	s := assign.NewSweeper(store, staticDirectory{}, n, zap.New(core))

	report, err := s.RunSweep(context.Background())
	require.NoError(t, err)
	require.Zero(t, report.Assigned)
	require.Empty(t, store.writeLog())
	require.Empty(t, n.all())
	require.Equal(t, 1, logs.FilterMessage("no available users to assign questions to").Len())
}

func TestRunSweep_NothingToDo(t *testing.T) {
	store := newMemStore(models.Question{ID: "a", Assignee: "u0"})
	s := assign.NewSweeper(store, staticDirectory{users: []string{"u0"}}, &recordingNotifier{}, zap.NewNop())

	report, err := s.RunSweep(context.Background())
	require.NoError(t, err)
	require.Zero(t, report.Unassigned)
	require.Empty(t, store.writeLog())
}

func TestRunSweep_WriteFailureContinuesAndAdvancesCursor(t *testing.T) {
	store := newMemStore(unassignedItems(3)...)
	store.failWrite["item2"] = errors.New("document too large")
	n := &recordingNotifier{}
	s := assign.NewSweeper(store, staticDirectory{users: []string{"user0", "user1"}}, n, zap.NewNop())

	report, err := s.RunSweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.Assigned)
	require.Equal(t, 1, report.Failed)
	require.Equal(t, []write{{"item1", "user0"}, {"item3", "user0"}}, store.writeLog())
	require.Len(t, n.all(), 2)
}

func TestRunSweep_SlowWriteFailsAloneAndSweepContinues(t *testing.T) {
	store := newMemStore(unassignedItems(3)...)
	store.failWrite["item1"] = fmt.Errorf("update assignment: %w", context.DeadlineExceeded)
	s := assign.NewSweeper(store, staticDirectory{users: []string{"user0", "user1"}}, &recordingNotifier{}, zap.NewNop())

	report, err := s.RunSweep(context.Background())
	require.NoError(t, err)
	require.False(t, report.Aborted)
	require.Equal(t, 1, report.Failed)
	require.Equal(t, 2, report.Assigned)
	require.Equal(t, []write{{"item2", "user1"}, {"item3", "user0"}}, store.writeLog())
}

func TestRunSweep_StoreUnavailableStopsBatch(t *testing.T) {
	store := newMemStore(unassignedItems(4)...)
	store.failWrite["item2"] = fmt.Errorf("%w: connection refused", models.ErrStoreUnavailable)
	s := assign.NewSweeper(store, staticDirectory{users: []string{"user0"}}, &recordingNotifier{}, zap.NewNop())

	report, err := s.RunSweep(context.Background())
	require.ErrorIs(t, err, models.ErrStoreUnavailable)
	require.True(t, report.Aborted)
	require.Equal(t, []write{{"item1", "user0"}}, store.writeLog())
}

func TestRunSweep_ListFailure(t *testing.T) {
	store := newMemStore()
	store.listErr = models.ErrStoreUnavailable
	s := assign.NewSweeper(store, staticDirectory{users: []string{"u"}}, &recordingNotifier{}, zap.NewNop())

	report, err := s.RunSweep(context.Background())
	require.ErrorIs(t, err, models.ErrStoreUnavailable)
	require.True(t, report.Aborted)
}

func TestRunSweep_SingleFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	store := newMemStore(unassignedItems(1)...)
	var once sync.Once
	store.listHook = func() {
		once.Do(func() {
			close(entered)
			<-release
		})
	}
	s := assign.NewSweeper(store, staticDirectory{users: []string{"u"}}, &recordingNotifier{}, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := s.RunSweep(context.Background())
		done <- err
	}()
	<-entered
	require.True(t, s.Running())

	_, err := s.RunSweep(context.Background())
	require.ErrorIs(t, err, assign.ErrSweepInProgress)

	close(release)
	require.NoError(t, <-done)
	require.False(t, s.Running())

	// the guard is released once the first sweep finishes
	_, err = s.RunSweep(context.Background())
	require.NoError(t, err)
}

func TestConcurrentRace_ExactlyOneWriterWins(t *testing.T) {
	for i := 0; i < 50; i++ {
		q := models.Question{ID: "q1", Questioner: "asker"}
		store := newMemStore(q)
		n := &recordingNotifier{}
		dir := staticDirectory{users: []string{"r1", "r2"}}

		a := assign.NewAssigner(store, dir, n, zap.NewNop(), assign.WithRandom(fixedSource(1)))
		s := assign.NewSweeper(store, dir, n, zap.NewNop())

		start := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, _ = a.HandleCreated(context.Background(), q)
		}()
		go func() {
			defer wg.Done()
			<-start
			_, _ = s.RunSweep(context.Background())
		}()
		close(start)
		wg.Wait()

		writes := store.writeLog()
		require.Len(t, writes, 1)
		notes := n.all()
		require.Len(t, notes, 1)
		require.Equal(t, writes[0].Assignee, notes[0].UserID)
		require.Equal(t, writes[0].Assignee, store.get("q1").Assignee)
	}
}

func TestRunSweep_UsesClock(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	store := newMemStore(unassignedItems(1)...)
	s := assign.NewSweeper(store, staticDirectory{users: []string{"u"}}, &recordingNotifier{}, zap.NewNop(),
		assign.WithClock(func() time.Time { return at }))

	_, err := s.RunSweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, at, store.get("item1").UpdatedAt)
}
