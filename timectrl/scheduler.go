package timectrl

import (
	"context"
	"errors"
	"time"

	"github.com/novaworks/stellarsim/internal/logging"
)

// DefaultMinimumStep is the fallback minimum timestep in seconds. Every
// requested duration is quantized to a multiple of the configured step.
const DefaultMinimumStep int64 = 5

// ProgressFunc receives the pulse completion fraction in [0,1] at each
// subpulse boundary. The final value is not guaranteed to reach 1.0 when a
// pulse ends early on interrupt or cancellation.
type ProgressFunc func(fraction float64)

// MetricsRecorder receives scheduler telemetry. Implementations must be cheap;
// they are called on the pulse hot path.
type MetricsRecorder interface {
	ObserveSubpulse(simSeconds int64)
	ObservePulse(advancedSeconds int64, wall time.Duration)
	RecordInterrupt(code string)
	SetSimClock(t time.Time)
}

// SchedulerOption customises a Scheduler.
type SchedulerOption func(*Scheduler)

// WithMinimumStep sets the minimum timestep in seconds. Non-positive values
// fall back to DefaultMinimumStep.
func WithMinimumStep(seconds int64) SchedulerOption {
	return func(s *Scheduler) {
		if seconds > 0 {
			s.minStep = seconds
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(log logging.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetricsRecorder attaches a telemetry sink.
func WithMetricsRecorder(rec MetricsRecorder) SchedulerOption {
	return func(s *Scheduler) { s.metrics = rec }
}

// Scheduler advances the game clock by running the processor pipeline over
// the active regions once per subpulse. It is the only component exposed to
// external callers; callers must serialize Advance calls against a single
// scheduler.
type Scheduler struct {
	clock     *GameClock
	limit     *SubpulseLimit
	interrupt *Interrupt
	pipeline  *Pipeline
	regions   RegionSource
	minStep   int64
	log       logging.Logger
	metrics   MetricsRecorder
}

// NewScheduler constructs a scheduler owning fresh SubpulseLimit and
// Interrupt registers. The registers live for the scheduler's lifetime, so a
// checkpoint requested during the final subpulse of one Advance call still
// bounds the first subpulse of the next.
func NewScheduler(clock *GameClock, pipeline *Pipeline, regions RegionSource, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		clock:     clock,
		limit:     NewSubpulseLimit(),
		interrupt: NewInterrupt(),
		pipeline:  pipeline,
		regions:   regions,
		minStep:   DefaultMinimumStep,
		log:       logging.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clock returns the scheduler's game clock.
func (s *Scheduler) Clock() *GameClock { return s.clock }

// MinimumStep returns the configured minimum timestep in seconds.
func (s *Scheduler) MinimumStep() int64 { return s.minStep }

// InterruptReason returns the interrupt left by the last Advance call, if
// any. The slot is cleared at the top of the next Advance.
func (s *Scheduler) InterruptReason() (InterruptReason, bool) {
	return s.interrupt.Reason()
}

// Advance moves simulation time forward by up to requestedSeconds.
//
// The request is quantized down to a multiple of the minimum timestep, or
// forced up to exactly one step when quantization yields zero, so a request
// is never silently a no-op. The loop then runs subpulses until the request
// is exhausted, an interrupt is raised, or ctx is cancelled. Each iteration
// checks ctx, sizes the subpulse from the SubpulseLimit register and the
// remaining request, resets the register, advances the clock, runs the full
// pipeline over a fresh region snapshot, and reports progress.
//
// The returned count is the total seconds actually committed; it is less than
// the quantized request only when an interrupt or cancellation stopped the
// loop early. Cancellation is cooperative: it is honored only at subpulse
// boundaries, never mid-pipeline, and surfaces as the context's error. A
// processor failure surfaces as a *ProcessorFault. An interrupt is not an
// error; the caller should inspect InterruptReason before advancing again.
func (s *Scheduler) Advance(ctx context.Context, requestedSeconds int64, progress ProgressFunc) (int64, error) {
	start := time.Now()

	s.interrupt.clear()

	requested := s.quantize(requestedSeconds)
	remaining := requested

	var advanced int64
	index := 0

	for !s.interrupt.IsSet() && remaining > 0 {
		if err := ctx.Err(); err != nil {
			s.log.Warn(ctx, "pulse cancelled",
				logging.Int("subpulse", index),
				logging.Any("advanced_seconds", advanced),
			)
			return advanced, err
		}

		sub := remaining
		if limit := s.limit.Current(); limit < sub {
			sub = limit
		}
		// Processors running in this subpulse re-derive the next checkpoint
		// from scratch; the value they set is read at the next boundary.
		s.limit.Reset()

		s.clock.advance(sub)

		sp := &Subpulse{
			Clock:     s.clock,
			Limit:     s.limit,
			Interrupt: s.interrupt,
			Index:     index,
		}
		if err := s.pipeline.RunAll(sp, s.regions.ActiveRegions(), sub); err != nil {
			var fault *ProcessorFault
			if errors.As(err, &fault) {
				s.log.Error(ctx, "processor fault",
					logging.String("processor", fault.Processor),
					logging.Int("subpulse", fault.Subpulse),
					logging.String("error", fault.Err.Error()),
				)
			}
			return advanced, err
		}

		remaining -= sub
		advanced += sub
		index++

		if s.metrics != nil {
			s.metrics.ObserveSubpulse(sub)
			s.metrics.SetSimClock(s.clock.Now())
		}
		if progress != nil {
			progress(float64(advanced) / float64(requested))
		}
	}

	if reason, ok := s.interrupt.Reason(); ok {
		if s.metrics != nil {
			s.metrics.RecordInterrupt(reason.Code)
		}
		s.log.Info(ctx, "pulse interrupted",
			logging.String("code", reason.Code),
			logging.String("region", reason.RegionID),
			logging.String("entity", reason.EntityID),
			logging.Any("advanced_seconds", advanced),
		)
	}
	if s.metrics != nil {
		s.metrics.ObservePulse(advanced, time.Since(start))
	}

	return advanced, nil
}

// quantize rounds the request down to a multiple of the minimum timestep and
// forces zero or negative results up to exactly one step.
func (s *Scheduler) quantize(requested int64) int64 {
	q := requested
	if q > 0 {
		q = (q / s.minStep) * s.minStep
	}
	if q <= 0 {
		q = s.minStep
	}
	return q
}
