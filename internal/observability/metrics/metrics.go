package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fortune"

// RPCMetrics records JSON-RPC client activity.
type RPCMetrics struct {
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	throttles *prometheus.CounterVec
}

// CrackMetrics records dispatcher outcomes.
type CrackMetrics struct {
	outcomes *prometheus.CounterVec
	duration prometheus.Histogram
}

// GestureMetrics records gesture session activity.
type GestureMetrics struct {
	transitions *prometheus.CounterVec
	triggers    prometheus.Counter
	frames      prometheus.Counter
}

var (
	rpcOnce     sync.Once
	rpcRegistry *RPCMetrics

	crackOnce     sync.Once
	crackRegistry *CrackMetrics

	gestureOnce     sync.Once
	gestureRegistry *GestureMetrics
)

// RPC returns the lazily-initialised JSON-RPC client metrics.
func RPC() *RPCMetrics {
	rpcOnce.Do(func() {
		rpcRegistry = &RPCMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total ledger JSON-RPC requests segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "rpc",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for ledger JSON-RPC requests.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
			throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rpc",
				Name:      "throttle_waits_total",
				Help:      "Requests that waited on the client-side rate limiter.",
			}, []string{"method"}),
		}
		prometheus.MustRegister(
			rpcRegistry.requests,
			rpcRegistry.latency,
			rpcRegistry.throttles,
		)
	})
	return rpcRegistry
}

// Observe records one finished request. outcome is a stable string such as
// "success", "rpc_error" or "transport_error".
func (m *RPCMetrics) Observe(method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.latency.WithLabelValues(method).Observe(d.Seconds())
}

// RecordThrottle counts a request delayed by the rate limiter.
func (m *RPCMetrics) RecordThrottle(method string) {
	if m == nil {
		return
	}
	m.throttles.WithLabelValues(method).Inc()
}

// RequestsVec exposes the request counter for tests.
func (m *RPCMetrics) RequestsVec() *prometheus.CounterVec { return m.requests }

// Crack returns the lazily-initialised dispatcher metrics.
func Crack() *CrackMetrics {
	crackOnce.Do(func() {
		crackRegistry = &CrackMetrics{
			outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "crack",
				Name:      "attempts_total",
				Help:      "Crack invocations segmented by outcome.",
			}, []string{"outcome"}),
			duration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "crack",
				Name:      "duration_seconds",
				Help:      "Time from trigger to resolved fortune or failure.",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			}),
		}
		prometheus.MustRegister(crackRegistry.outcomes, crackRegistry.duration)
	})
	return crackRegistry
}

// Observe records one crack that ran to completion or failure.
func (m *CrackMetrics) Observe(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
}

// RecordIgnored counts an invocation dropped by the single-flight gate.
func (m *CrackMetrics) RecordIgnored() {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues("ignored").Inc()
}

// OutcomesVec exposes the outcome counter for tests.
func (m *CrackMetrics) OutcomesVec() *prometheus.CounterVec { return m.outcomes }

// Gesture returns the lazily-initialised gesture engine metrics.
func Gesture() *GestureMetrics {
	gestureOnce.Do(func() {
		gestureRegistry = &GestureMetrics{
			transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gesture",
				Name:      "state_transitions_total",
				Help:      "Gesture session state transitions by destination state.",
			}, []string{"state"}),
			triggers: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gesture",
				Name:      "triggers_total",
				Help:      "Trigger events emitted by the hand distance detector.",
			}),
			frames: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gesture",
				Name:      "frames_processed_total",
				Help:      "Frames that completed inference.",
			}),
		}
		prometheus.MustRegister(
			gestureRegistry.transitions,
			gestureRegistry.triggers,
			gestureRegistry.frames,
		)
	})
	return gestureRegistry
}

// RecordTransition counts entry into state.
func (m *GestureMetrics) RecordTransition(state string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(state).Inc()
}

// RecordTrigger counts one emitted trigger.
func (m *GestureMetrics) RecordTrigger() {
	if m == nil {
		return
	}
	m.triggers.Inc()
}

// RecordFrame counts one processed frame.
func (m *GestureMetrics) RecordFrame() {
	if m == nil {
		return
	}
	m.frames.Inc()
}

// TriggersCounter exposes the trigger counter for tests.
func (m *GestureMetrics) TriggersCounter() prometheus.Counter { return m.triggers }
