package metrics_test

import (
	"testing"
	"time"

	"github.com/dalemusser/questionhub/internal/app/system/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_CountsByLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := metrics.NewPrometheus(reg, "test")
	require.NoError(t, err)

	p.Assignment("sweep", "assigned")
	p.Assignment("sweep", "assigned")
	p.Assignment("created", "no_candidate")
	p.Notification("question_assigned", "skipped")
	p.SweepCompleted(50*time.Millisecond, 3)
	p.SweepSkipped()
	p.EventDropped("created")

	count, err := testutil.GatherAndCount(reg, "test_assign_attempts_total")
	require.NoError(t, err)
	require.Equal(t, 2, count) // two label sets

	families, err := reg.Gather()
	require.NoError(t, err)
	byName := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				byName[mf.GetName()] += c.GetValue()
			}
		}
	}
	require.Equal(t, 3.0, byName["test_assign_attempts_total"])
	require.Equal(t, 3.0, byName["test_sweep_assigned_total"])
	require.Equal(t, 1.0, byName["test_sweep_skipped_total"])
	require.Equal(t, 1.0, byName["test_notify_sent_total"])
	require.Equal(t, 1.0, byName["test_changefeed_dropped_total"])
}

func TestNewPrometheus_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewPrometheus(reg, "dup")
	require.NoError(t, err)

	_, err = metrics.NewPrometheus(reg, "dup")
	require.Error(t, err)
}
