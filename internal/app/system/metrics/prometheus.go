package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements Recorder with Prometheus collectors.
type Prometheus struct {
	assignments   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	sweepDuration prometheus.Histogram
	sweepAssigned prometheus.Counter
	sweepSkipped  prometheus.Counter
	eventsDropped *prometheus.CounterVec
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus builds the collectors and registers them on reg
// (prometheus.DefaultRegisterer when nil). Namespace defaults to "questionhub".
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "questionhub"
	}

	p := &Prometheus{
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assign",
			Name:      "attempts_total",
			Help:      "Assignment attempts by activation path and outcome.",
		}, []string{"path", "outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "sent_total",
			Help:      "Notifications by kind and delivery status (delivered, skipped, failed).",
		}, []string{"kind", "status"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Wall time of completed reconciliation sweeps.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms .. ~20s
		}),
		sweepAssigned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "assigned_total",
			Help:      "Questions assigned by reconciliation sweeps.",
		}),
		sweepSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "skipped_total",
			Help:      "Sweep triggers dropped because a sweep was already running.",
		}),
		eventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "changefeed",
			Name:      "dropped_total",
			Help:      "Change events abandoned after a permanent handling error, by event kind.",
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{p.assignments, p.notifications, p.sweepDuration, p.sweepAssigned, p.sweepSkipped, p.eventsDropped} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) Assignment(path, outcome string) {
	p.assignments.WithLabelValues(path, outcome).Inc()
}

func (p *Prometheus) Notification(kind, status string) {
	p.notifications.WithLabelValues(kind, status).Inc()
}

func (p *Prometheus) SweepCompleted(took time.Duration, assigned int) {
	p.sweepDuration.Observe(took.Seconds())
	p.sweepAssigned.Add(float64(assigned))
}

func (p *Prometheus) SweepSkipped() {
	p.sweepSkipped.Inc()
}

func (p *Prometheus) EventDropped(kind string) {
	p.eventsDropped.WithLabelValues(kind).Inc()
}
