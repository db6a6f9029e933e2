package main

import (
	"context"
	"errors"
	"time"

	"github.com/novaworks/stellarsim/core"
	"github.com/novaworks/stellarsim/internal/logging"
	"github.com/novaworks/stellarsim/timectrl"
)

// runLoop drives the simulation pulse by pulse until the context is
// cancelled or the configured pulse count is reached. Interrupts are not
// errors: the loop logs the reason and keeps pulsing, since re-advancing is
// how play continues after an event is handled.
func runLoop(ctx context.Context, sim *core.Simulation, cfg Config, log logging.Logger) error {
	for pulse := 0; cfg.Pulses == 0 || pulse < cfg.Pulses; pulse++ {
		if err := ctx.Err(); err != nil {
			log.Info(ctx, "run loop cancelled")
			return nil
		}

		pulseCtx, pulseLog := logging.WithPulseLogger(ctx, log)

		advanced, err := sim.Advance(pulseCtx, cfg.PulseSeconds, func(fraction float64) {
			pulseLog.Debug(pulseCtx, "pulse progress", logging.Any("fraction", fraction))
		})
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			pulseLog.Info(pulseCtx, "pulse cancelled",
				logging.Any("advanced_seconds", advanced))
			return nil
		}
		if err != nil {
			var fault *timectrl.ProcessorFault
			if errors.As(err, &fault) {
				pulseLog.Error(pulseCtx, "processor fault",
					logging.String("processor", fault.Processor),
					logging.Int("subpulse", fault.Subpulse),
					logging.String("error", fault.Err.Error()),
				)
			}
			return err
		}

		if reason, ok := sim.InterruptReason(); ok {
			pulseLog.Info(pulseCtx, "pulse interrupted",
				logging.String("code", reason.Code),
				logging.String("region", reason.RegionID),
				logging.String("entity", reason.EntityID),
				logging.String("message", reason.Message),
				logging.String("sim_time", reason.SimTime.Format(time.RFC3339)),
			)
		}

		pulseLog.Info(pulseCtx, "pulse complete",
			logging.Any("advanced_seconds", advanced),
			logging.String("sim_time", sim.Clock().Now().Format(time.RFC3339)),
		)
	}
	return nil
}
