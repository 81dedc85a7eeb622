package resilience

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

const (
	metricsNamespace = "invoice_insights"
	metricsSubsystem = "breaker"
)

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "state",
		Help:      "Breaker state (0=closed, 0.5=half-open, 1=open)",
	}, []string{"breaker"})

	breakerEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "events_total",
		Help:      "Breaker events by kind (request, failure, fallback)",
	}, []string{"breaker", "event"})

	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "state_changes_total",
		Help:      "Breaker state transitions",
	}, []string{"breaker", "from", "to"})

	anonymousBreakers uint64
)

func nextBreakerName(base string) string {
	if base != "" {
		return base
	}
	return "breaker-" + strconv.FormatUint(atomic.AddUint64(&anonymousBreakers, 1), 10)
}

func stateGaugeValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 0.5
	case gobreaker.StateOpen:
		return 1
	}
	return -1
}

func recordBreakerState(name string, state gobreaker.State) {
	breakerState.WithLabelValues(name).Set(stateGaugeValue(state))
}

func recordBreakerStateChange(name string, from, to gobreaker.State) {
	breakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
	recordBreakerState(name, to)
}

func recordBreakerRequest(name string)  { breakerEvents.WithLabelValues(name, "request").Inc() }
func recordBreakerFailure(name string)  { breakerEvents.WithLabelValues(name, "failure").Inc() }
func recordBreakerFallback(name string) { breakerEvents.WithLabelValues(name, "fallback").Inc() }
