package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestPulseCollectorRecordsSubpulses(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewPulseCollector(reg)
	if err != nil {
		t.Fatalf("NewPulseCollector: %v", err)
	}

	collector.ObserveSubpulse(30)
	collector.ObserveSubpulse(5)
	collector.ObservePulse(35, 12*time.Millisecond)
	collector.SetSimClock(time.Unix(7258118400, 0))

	if got := testutil.ToFloat64(collector.SubpulsesTotal); got != 2 {
		t.Fatalf("sim_subpulses_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.PulsesTotal); got != 1 {
		t.Fatalf("sim_pulses_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.SimClock); got != 7258118400 {
		t.Fatalf("sim_clock_seconds = %v, want 7258118400", got)
	}
	if count := histogramSampleCount(t, reg, "sim_subpulse_sim_seconds"); count != 2 {
		t.Fatalf("sim_subpulse_sim_seconds sample_count = %d, want 2", count)
	}
}

func TestPulseCollectorLabelsInterrupts(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewPulseCollector(reg)
	if err != nil {
		t.Fatalf("NewPulseCollector: %v", err)
	}

	collector.RecordInterrupt("fleet-arrived")
	collector.RecordInterrupt("fleet-arrived")
	collector.RecordInterrupt("")

	if got := testutil.ToFloat64(collector.InterruptsTotal.WithLabelValues("fleet-arrived")); got != 2 {
		t.Fatalf("sim_interrupts_total{code=fleet-arrived} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.InterruptsTotal.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("sim_interrupts_total{code=unknown} = %v, want 1", got)
	}
}

func TestPulseCollectorHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewPulseCollector(reg)
	if err != nil {
		t.Fatalf("NewPulseCollector: %v", err)
	}
	collector.ObserveSubpulse(5)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "sim_subpulses_total") {
		t.Fatal("metrics output missing sim_subpulses_total")
	}
}

func TestPulseCollectorToleratesDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPulseCollector(reg); err != nil {
		t.Fatalf("first NewPulseCollector: %v", err)
	}
	if _, err := NewPulseCollector(reg); err != nil {
		t.Fatalf("second NewPulseCollector: %v", err)
	}
}

func histogramSampleCount(t *testing.T, g prometheus.Gatherer, name string) uint64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name || mf.GetType() != dto.MetricType_HISTOGRAM {
			continue
		}
		var count uint64
		for _, m := range mf.GetMetric() {
			count += m.GetHistogram().GetSampleCount()
		}
		return count
	}
	t.Fatalf("histogram %s not found", name)
	return 0
}
