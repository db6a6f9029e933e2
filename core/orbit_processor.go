package core

import (
	"fmt"

	"github.com/novaworks/stellarsim/internal/logging"
	"github.com/novaworks/stellarsim/model"
	"github.com/novaworks/stellarsim/timectrl"
)

// OrbitProcessor advances every body's position to the subpulse's end time.
// It runs first in the pipeline so that movement and economy observe orbital
// state already updated for the subpulse. It never shortens subpulses.
type OrbitProcessor struct {
	log logging.Logger

	// models caches the chosen MotionModel per body; SGP4 initialisation
	// parses TLEs and should happen once. Body IDs are only unique within a
	// system, so the key includes the system ID.
	models map[modelKey]MotionModel
}

type modelKey struct {
	systemID string
	bodyID   string
}

// NewOrbitProcessor constructs the processor.
func NewOrbitProcessor(log logging.Logger) *OrbitProcessor {
	if log == nil {
		log = logging.Noop()
	}
	return &OrbitProcessor{
		log:    log,
		models: make(map[modelKey]MotionModel),
	}
}

// Name implements timectrl.Processor.
func (p *OrbitProcessor) Name() string { return "orbit" }

// ProcessSubpulse implements timectrl.Processor. Bodies within a system are
// ordered parent-first, so a child always reads its parent's position as
// already propagated for this subpulse.
func (p *OrbitProcessor) ProcessSubpulse(sp *timectrl.Subpulse, regions []timectrl.Region, seconds int64) error {
	now := sp.Clock.Now()

	for _, r := range regions {
		sys, ok := r.(*model.StarSystem)
		if !ok {
			return fmt.Errorf("region %q: unexpected type %T", r.RegionID(), r)
		}

		for _, b := range sys.Bodies {
			var parentPos model.Vec3
			if b.Orbit.ParentID != "" {
				parent := sys.Body(b.Orbit.ParentID)
				if parent == nil {
					return fmt.Errorf("system %q: body %q orbits unknown parent %q",
						sys.ID, b.ID, b.Orbit.ParentID)
				}
				parentPos = parent.Position
			}
			p.modelFor(sys, b).UpdatePosition(now, b, parentPos)
		}
	}
	return nil
}

func (p *OrbitProcessor) modelFor(sys *model.StarSystem, b *model.Body) MotionModel {
	key := modelKey{systemID: sys.ID, bodyID: b.ID}
	if m, ok := p.models[key]; ok {
		return m
	}
	m := NewMotionModel(b)
	p.models[key] = m
	return m
}
