// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(activationsIssued, activationCompletions, activationCollisions, activationResend)
}

var (
	activationsIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activations_issued_total",
			Help: "Activations issued, by kind (pending/preactivated).",
		},
		[]string{"kind"},
	)

	activationCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activation_completions_total",
			Help: "Activation redemption attempts by result (success/failure).",
		},
		[]string{"result"},
	)

	activationCollisions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "activation_code_collisions_total",
			Help: "Generated codes discarded because an activation already held them.",
		},
	)

	activationResend = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activation_resend_total",
			Help: "Re-send requests by outcome.",
		},
		[]string{"outcome"},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// -------- Activation helpers --------

func IncActivationIssued(kind string) {
	activationsIssued.WithLabelValues(norm(kind)).Inc()
}

func IncActivationCompletion(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	activationCompletions.WithLabelValues(result).Inc()
}

func IncCodeCollision() { activationCollisions.Inc() }

func IncResend(outcome string) {
	activationResend.WithLabelValues(norm(outcome)).Inc()
}
