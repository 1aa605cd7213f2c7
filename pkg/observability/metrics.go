package observability

import (
	"context"
	"fmt"

	"github.com/aretw0/scripter/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "scripter"

// Metrics holds the Prometheus collectors fed by lifecycle hooks.
type Metrics struct {
	runs           *prometheus.CounterVec
	runDuration    prometheus.Histogram
	active         prometheus.Gauge
	cancellations  prometheus.Counter
	handles        *prometheus.CounterVec
	handleDuration *prometheus.HistogramVec
	frames         prometheus.Counter
	nodes          *prometheus.CounterVec
	staleSkips     prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished script runs by final status.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of script runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_active",
			Help:      "Script runs in progress.",
		}),
		cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cancellations_total",
			Help:      "Runs whose cancellation controller was tripped.",
		}),
		handles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handles_settled_total",
			Help:      "Settled timers, animations and traversals by outcome.",
		}, []string{"kind", "outcome"}),
		handleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handle_duration_seconds",
			Help:      "Time from creation to settlement of a handle.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"kind"}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "animation_frames_total",
			Help:      "Frames delivered to animations.",
		}),
		nodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traversal_nodes_total",
			Help:      "Nodes handed to find predicates and visit callbacks.",
		}, []string{"mode"}),
		staleSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_node_skips_total",
			Help:      "Nodes skipped because the host removed them during a traversal.",
		}),
	}

	collectors := []prometheus.Collector{
		m.runs, m.runDuration, m.active, m.cancellations,
		m.handles, m.handleDuration, m.frames, m.nodes, m.staleSkips,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(_ context.Context, _ *domain.RunEvent) {
			m.active.Inc()
		},
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) {
			m.active.Dec()
			m.runs.WithLabelValues(string(e.Status)).Inc()
			m.runDuration.Observe(e.Elapsed.Seconds())
		},
		OnCancel: func(_ context.Context, _ *domain.RunEvent) {
			m.cancellations.Inc()
		},
		OnTimerSettle: func(_ context.Context, e *domain.HandleEvent) {
			m.handle("timer", e.Outcome, e.Elapsed.Seconds())
		},
		OnAnimationFrame: func(_ context.Context, _ *domain.FrameEvent) {
			m.frames.Inc()
		},
		OnAnimationEnd: func(_ context.Context, e *domain.HandleEvent) {
			m.handle("animation", e.Outcome, e.Elapsed.Seconds())
		},
		OnTraversalEnd: func(_ context.Context, e *domain.TraversalEvent) {
			m.handle(string(e.Mode), e.Outcome, e.Elapsed.Seconds())
			m.nodes.WithLabelValues(string(e.Mode)).Add(float64(e.Visited))
			m.staleSkips.Add(float64(e.Skipped))
		},
	}
}

func (m *Metrics) handle(kind string, outcome domain.Outcome, seconds float64) {
	m.handles.WithLabelValues(kind, string(outcome)).Inc()
	m.handleDuration.WithLabelValues(kind).Observe(seconds)
}
