package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCardMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCardMetrics(reg)

	m.IncAllocation("base")
	m.IncAllocation("suffixed")
	m.IncAllocation("suffixed")
	m.IncAllocationProbe()
	m.IncTransition("Approved")
	m.IncMaterialization("created")

	if got := testutil.ToFloat64(m.allocations.WithLabelValues("suffixed")); got != 2 {
		t.Fatalf("expected 2 suffixed allocations, got %v", got)
	}
	if got := testutil.ToFloat64(m.allocationProbes); got != 1 {
		t.Fatalf("expected 1 probe, got %v", got)
	}
	if got := testutil.ToFloat64(m.transitions.WithLabelValues("approved")); got != 1 {
		t.Fatalf("expected normalized approved transition, got %v", got)
	}
	if got := testutil.ToFloat64(m.materializations.WithLabelValues("created")); got != 1 {
		t.Fatalf("expected 1 materialization, got %v", got)
	}
}

func TestCardMetricsNilSafe(t *testing.T) {
	var m *CardMetrics
	m.IncAllocation("base")
	m.IncAllocationProbe()
	m.IncTransition("rejected")
	m.IncMaterialization("failed")

	empty := NewCardMetrics(nil)
	empty.IncAllocation("base")
}
