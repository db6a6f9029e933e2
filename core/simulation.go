package core

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/novaworks/stellarsim/internal/logging"
	"github.com/novaworks/stellarsim/kb"
	"github.com/novaworks/stellarsim/timectrl"
)

// ErrNotReady is returned when Advance is called before OnReady.
var ErrNotReady = errors.New("simulation not initialised; call OnReady first")

// SimulationOption customises a Simulation.
type SimulationOption func(*Simulation)

// WithMetricsRecorder attaches a telemetry sink for the scheduler.
func WithMetricsRecorder(rec timectrl.MetricsRecorder) SimulationOption {
	return func(s *Simulation) { s.metrics = rec }
}

// WithTracer attaches an OpenTelemetry tracer; each Advance call becomes a
// span.
func WithTracer(tracer trace.Tracer) SimulationOption {
	return func(s *Simulation) { s.tracer = tracer }
}

// WithMinimumStep sets the scheduler's minimum timestep in seconds.
func WithMinimumStep(seconds int64) SimulationOption {
	return func(s *Simulation) { s.minStep = seconds }
}

// Simulation is one game instance: the knowledge base holding the region set,
// the game clock, and the pulse scheduler. Initialisation is two-phase:
// NewSimulation wires state, OnReady builds the immutable processor pipeline
// and the scheduler. Callers must serialize Advance calls.
type Simulation struct {
	KB *kb.KnowledgeBase

	clock     *timectrl.GameClock
	pipeline  *timectrl.Pipeline
	scheduler *timectrl.Scheduler

	log     logging.Logger
	metrics timectrl.MetricsRecorder
	tracer  trace.Tracer
	minStep int64

	ready bool
}

// NewSimulation constructs a simulation positioned at start.
func NewSimulation(store *kb.KnowledgeBase, start time.Time, log logging.Logger, opts ...SimulationOption) *Simulation {
	if log == nil {
		log = logging.Noop()
	}
	s := &Simulation{
		KB:      store,
		clock:   timectrl.NewGameClock(start),
		log:     log,
		minStep: timectrl.DefaultMinimumStep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnReady builds the processor pipeline and the scheduler. It must be called
// exactly once, after construction (and after any saved-game restore), before
// the first Advance.
func (s *Simulation) OnReady() error {
	if s.ready {
		return errors.New("simulation already initialised")
	}

	s.pipeline = timectrl.NewPipeline(
		NewOrbitProcessor(s.log),
		NewMovementProcessor(s.log),
		NewEconomyProcessor(s.log),
	)
	s.scheduler = timectrl.NewScheduler(
		s.clock,
		s.pipeline,
		s.KB,
		timectrl.WithMinimumStep(s.minStep),
		timectrl.WithLogger(s.log),
		timectrl.WithMetricsRecorder(s.metrics),
	)
	s.ready = true

	s.log.Info(context.Background(), "simulation ready",
		logging.Any("pipeline", s.pipeline.Names()),
		logging.Any("min_step_seconds", s.scheduler.MinimumStep()),
	)
	return nil
}

// Advance moves simulation time forward by up to requestedSeconds, delegating
// to the scheduler. See timectrl.Scheduler.Advance for the full contract.
func (s *Simulation) Advance(ctx context.Context, requestedSeconds int64, progress timectrl.ProgressFunc) (int64, error) {
	if !s.ready {
		return 0, ErrNotReady
	}

	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, "simulation.Advance",
			trace.WithAttributes(attribute.Int64("sim.requested_seconds", requestedSeconds)),
		)
		defer span.End()

		advanced, err := s.scheduler.Advance(ctx, requestedSeconds, progress)
		span.SetAttributes(attribute.Int64("sim.advanced_seconds", advanced))
		if reason, ok := s.scheduler.InterruptReason(); ok {
			span.SetAttributes(attribute.String("sim.interrupt", reason.Code))
		}
		return advanced, err
	}

	return s.scheduler.Advance(ctx, requestedSeconds, progress)
}

// Clock returns the simulation's game clock.
func (s *Simulation) Clock() *timectrl.GameClock { return s.clock }

// InterruptReason returns the interrupt left by the last pulse, if any.
func (s *Simulation) InterruptReason() (timectrl.InterruptReason, bool) {
	if !s.ready {
		return timectrl.InterruptReason{}, false
	}
	return s.scheduler.InterruptReason()
}
