package core

import (
	"fmt"
	"math"

	"github.com/novaworks/stellarsim/internal/logging"
	"github.com/novaworks/stellarsim/model"
	"github.com/novaworks/stellarsim/timectrl"
)

// MovementProcessor moves fleets along their waypoint lists at rated speed.
// When a fleet's next arrival lies beyond the current subpulse, the processor
// requests a SubpulseLimit equal to the time-to-arrival so the next subpulse
// ends exactly on the event. Completing the final waypoint raises an
// Interrupt: an idle fleet needs new orders before more time passes usefully.
type MovementProcessor struct {
	log logging.Logger
}

// NewMovementProcessor constructs the processor.
func NewMovementProcessor(log logging.Logger) *MovementProcessor {
	if log == nil {
		log = logging.Noop()
	}
	return &MovementProcessor{log: log}
}

// Name implements timectrl.Processor.
func (p *MovementProcessor) Name() string { return "movement" }

// ProcessSubpulse implements timectrl.Processor.
func (p *MovementProcessor) ProcessSubpulse(sp *timectrl.Subpulse, regions []timectrl.Region, seconds int64) error {
	for _, r := range regions {
		sys, ok := r.(*model.StarSystem)
		if !ok {
			return fmt.Errorf("region %q: unexpected type %T", r.RegionID(), r)
		}

		for _, fleet := range sys.Fleets {
			p.moveFleet(sp, sys, fleet, seconds)
		}
	}
	return nil
}

func (p *MovementProcessor) moveFleet(sp *timectrl.Subpulse, sys *model.StarSystem, fleet *model.Fleet, seconds int64) {
	if fleet.SpeedKmPerSec <= 0 {
		return
	}

	budgetKm := fleet.SpeedKmPerSec * float64(seconds)

	for budgetKm > 0 {
		dest, ok := fleet.Destination()
		if !ok {
			return
		}

		distKm := fleet.Position.DistanceTo(dest)
		if distKm > budgetKm {
			// Advance along the leg and stop for this subpulse.
			dir := dest.Sub(fleet.Position).Scale(1 / distKm)
			fleet.Position = fleet.Position.Add(dir.Scale(budgetKm))
			break
		}

		budgetKm -= distKm
		fleet.Position = dest
		fleet.PopWaypoint()

		if _, more := fleet.Destination(); !more {
			sp.Interrupt.Raise(timectrl.InterruptReason{
				Code:     "fleet-arrived",
				RegionID: sys.ID,
				EntityID: fleet.ID,
				Message:  fmt.Sprintf("fleet %s reached its final waypoint", fleet.Name),
				SimTime:  sp.Clock.Now(),
			})
			return
		}
	}

	if dest, ok := fleet.Destination(); ok {
		eta := etaSeconds(fleet.Position.DistanceTo(dest), fleet.SpeedKmPerSec)
		sp.Limit.Request(eta)
	}
}

// etaSeconds returns the whole seconds needed to cover dist at speed, rounded
// up and never below one second.
func etaSeconds(distKm, speedKmPerSec float64) int64 {
	eta := int64(math.Ceil(distKm / speedKmPerSec))
	if eta < 1 {
		eta = 1
	}
	return eta
}
