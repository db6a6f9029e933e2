package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PulseCollector exposes Prometheus metrics for the time-advancement
// scheduler. It implements timectrl.MetricsRecorder.
type PulseCollector struct {
	gatherer prometheus.Gatherer

	PulsesTotal     prometheus.Counter
	SubpulsesTotal  prometheus.Counter
	SubpulseSeconds prometheus.Histogram
	PulseDuration   prometheus.Histogram
	InterruptsTotal *prometheus.CounterVec
	SimClock        prometheus.Gauge
}

// NewPulseCollector registers scheduler metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewPulseCollector(reg prometheus.Registerer) (*PulseCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	pulses, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_pulses_total",
		Help: "Cumulative number of completed Advance calls.",
	}), "sim_pulses_total")
	if err != nil {
		return nil, err
	}

	subpulses, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_subpulses_total",
		Help: "Cumulative number of executed subpulses.",
	}), "sim_subpulses_total")
	if err != nil {
		return nil, err
	}

	subpulseSeconds, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_subpulse_sim_seconds",
		Help:    "Simulated seconds covered by each subpulse.",
		Buckets: []float64{1, 5, 30, 60, 300, 3600, 21600, 86400, 432000},
	}), "sim_subpulse_sim_seconds")
	if err != nil {
		return nil, err
	}

	pulseDuration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_pulse_duration_seconds",
		Help:    "Wall-clock duration of Advance calls.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}), "sim_pulse_duration_seconds")
	if err != nil {
		return nil, err
	}

	interrupts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_interrupts_total",
		Help: "Cumulative number of pulse interrupts, labeled by reason code.",
	}, []string{"code"})
	interrupts, err = registerCounterVec(reg, interrupts, "sim_interrupts_total")
	if err != nil {
		return nil, err
	}

	clock, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_clock_seconds",
		Help: "Current simulation time as a Unix timestamp.",
	}), "sim_clock_seconds")
	if err != nil {
		return nil, err
	}

	return &PulseCollector{
		gatherer:        gatherer,
		PulsesTotal:     pulses,
		SubpulsesTotal:  subpulses,
		SubpulseSeconds: subpulseSeconds,
		PulseDuration:   pulseDuration,
		InterruptsTotal: interrupts,
		SimClock:        clock,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *PulseCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler returns an HTTP handler serving the collector's metrics.
func (c *PulseCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// ObserveSubpulse implements timectrl.MetricsRecorder.
func (c *PulseCollector) ObserveSubpulse(simSeconds int64) {
	if c == nil {
		return
	}
	c.SubpulsesTotal.Inc()
	c.SubpulseSeconds.Observe(float64(simSeconds))
}

// ObservePulse implements timectrl.MetricsRecorder.
func (c *PulseCollector) ObservePulse(advancedSeconds int64, wall time.Duration) {
	if c == nil {
		return
	}
	c.PulsesTotal.Inc()
	c.PulseDuration.Observe(wall.Seconds())
}

// RecordInterrupt implements timectrl.MetricsRecorder.
func (c *PulseCollector) RecordInterrupt(code string) {
	if c == nil {
		return
	}
	if code == "" {
		code = "unknown"
	}
	c.InterruptsTotal.WithLabelValues(code).Inc()
}

// SetSimClock implements timectrl.MetricsRecorder.
func (c *PulseCollector) SetSimClock(t time.Time) {
	if c == nil {
		return
	}
	c.SimClock.Set(float64(t.Unix()))
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
