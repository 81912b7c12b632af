package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// CardMetrics records card-number allocation and approval-workflow activity.
type CardMetrics struct {
	allocations      *prometheus.CounterVec
	allocationProbes prometheus.Counter
	transitions      *prometheus.CounterVec
	materializations *prometheus.CounterVec
}

// NewCardMetrics registers the card workflow metrics on the provided registerer.
func NewCardMetrics(reg prometheus.Registerer) *CardMetrics {
	if reg == nil {
		return &CardMetrics{}
	}
	allocations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "card_number_allocations_total",
		Help: "Card number allocations by outcome (base or suffixed).",
	}, []string{"outcome"})
	allocationProbes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "card_number_collision_probes_total",
		Help: "Uniqueness probes issued while allocating card numbers.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "card_application_transitions_total",
		Help: "Card application status transitions by target status.",
	}, []string{"status"})
	materializations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "student_materializations_total",
		Help: "Student rows materialized from approved applications, by result.",
	}, []string{"result"})
	reg.MustRegister(allocations, allocationProbes, transitions, materializations)
	return &CardMetrics{
		allocations:      allocations,
		allocationProbes: allocationProbes,
		transitions:      transitions,
		materializations: materializations,
	}
}

// IncAllocation records a completed allocation. outcome is "base" when the
// unsuffixed number was free, "suffixed" otherwise.
func (c *CardMetrics) IncAllocation(outcome string) {
	if c == nil || c.allocations == nil {
		return
	}
	c.allocations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncAllocationProbe counts one uniqueness check round trip.
func (c *CardMetrics) IncAllocationProbe() {
	if c == nil || c.allocationProbes == nil {
		return
	}
	c.allocationProbes.Inc()
}

// IncTransition records a status transition to the given status.
func (c *CardMetrics) IncTransition(status string) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncMaterialization records a materialization attempt result:
// "created", "existing", or "failed".
func (c *CardMetrics) IncMaterialization(result string) {
	if c == nil || c.materializations == nil {
		return
	}
	c.materializations.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
