package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AI call kinds.
const (
	KindRoutine = "routine"
	KindChat    = "chat"
)

// AI call outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

type Manager struct {
	// counters
	CounterRequests      *prometheus.CounterVec
	CounterAICalls       *prometheus.CounterVec
	CounterRoutines      *prometheus.CounterVec
	CounterCompletedSets prometheus.Counter
	CounterChatMessages  prometheus.Counter
	CounterSessions      prometheus.Counter

	// histograms
	HistAICallDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("flowfit", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("flowfit", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterAICalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ai_calls",
			Help:      "The total number of Gemini calls by kind and outcome",
		}, []string{"kind", "outcome"}),
		CounterRoutines: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "routines_generated",
			Help:      "The total number of routine generations by outcome",
		}, []string{"outcome"}),
		CounterCompletedSets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "completed_sets",
			Help:      "The total number of sets marked complete",
		}),
		CounterChatMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "chat_messages",
			Help:      "The total number of user messages sent to the coach",
		}),
		CounterSessions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_created",
			Help:      "The total number of sessions created",
		}),
		HistAICallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ai_call_duration_seconds",
			Help:      "Duration of Gemini round trips",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"kind"}),
	}
}
