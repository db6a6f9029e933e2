package core

import (
	"fmt"
	"math"

	"github.com/novaworks/stellarsim/internal/logging"
	"github.com/novaworks/stellarsim/model"
	"github.com/novaworks/stellarsim/timectrl"
)

// EconomyProcessor advances colony mining and construction by the subpulse's
// elapsed seconds. Construction is strictly sequential: only the queue head
// receives production. A finished item raises an Interrupt, and the soonest
// upcoming completion across all colonies is requested as the next
// SubpulseLimit so the completion lands on a subpulse boundary.
type EconomyProcessor struct {
	log logging.Logger
}

// NewEconomyProcessor constructs the processor.
func NewEconomyProcessor(log logging.Logger) *EconomyProcessor {
	if log == nil {
		log = logging.Noop()
	}
	return &EconomyProcessor{log: log}
}

// Name implements timectrl.Processor.
func (p *EconomyProcessor) Name() string { return "economy" }

// ProcessSubpulse implements timectrl.Processor.
func (p *EconomyProcessor) ProcessSubpulse(sp *timectrl.Subpulse, regions []timectrl.Region, seconds int64) error {
	for _, r := range regions {
		sys, ok := r.(*model.StarSystem)
		if !ok {
			return fmt.Errorf("region %q: unexpected type %T", r.RegionID(), r)
		}

		for _, colony := range sys.Colonies {
			p.mine(colony, seconds)
			p.build(sp, sys, colony, seconds)
		}
	}
	return nil
}

func (p *EconomyProcessor) mine(colony *model.Colony, seconds int64) {
	if len(colony.MiningRatePerSec) == 0 {
		return
	}
	if colony.Stockpile == nil {
		colony.Stockpile = make(map[string]float64, len(colony.MiningRatePerSec))
	}
	for kind, rate := range colony.MiningRatePerSec {
		colony.Stockpile[kind] += rate * float64(seconds)
	}
}

func (p *EconomyProcessor) build(sp *timectrl.Subpulse, sys *model.StarSystem, colony *model.Colony, seconds int64) {
	if colony.ProductionPerSec <= 0 {
		return
	}

	points := colony.ProductionPerSec * float64(seconds)

	for points > 0 && len(colony.Queue) > 0 {
		item := colony.Queue[0]
		if item.RemainingPoints > points {
			item.RemainingPoints -= points
			break
		}

		points -= item.RemainingPoints
		item.RemainingPoints = 0
		colony.Queue = colony.Queue[1:]

		sp.Interrupt.Raise(timectrl.InterruptReason{
			Code:     "construction-complete",
			RegionID: sys.ID,
			EntityID: colony.ID,
			Message:  fmt.Sprintf("colony %s finished building %s", colony.Name, item.Name),
			SimTime:  sp.Clock.Now(),
		})
	}

	if len(colony.Queue) > 0 {
		eta := int64(math.Ceil(colony.Queue[0].RemainingPoints / colony.ProductionPerSec))
		if eta < 1 {
			eta = 1
		}
		sp.Limit.Request(eta)
	}
}
