// core/scenario_loader.go
package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/novaworks/stellarsim/kb"
	"github.com/novaworks/stellarsim/model"
)

// ScenarioSummary is a small summary of what was loaded from JSON. It's
// mainly useful for logging or debugging from main().
type ScenarioSummary struct {
	SystemIDs []string
	Bodies    int
	Fleets    int
	Colonies  int
}

// internal JSON shapes – keep them unexported so we're free to evolve them.
type scenarioJSON struct {
	Systems []systemJSON `json:"systems"`
}

type systemJSON struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Active   *bool        `json:"active"` // optional; defaults to true
	Bodies   []bodyJSON   `json:"bodies"`
	Fleets   []fleetJSON  `json:"fleets"`
	Colonies []colonyJSON `json:"colonies"`
}

type bodyJSON struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	MotionSource string  `json:"motion_source"` // "static" | "keplerian" | "tle"
	ParentID     string  `json:"parent_id"`
	RadiusKm     float64 `json:"radius_km"`
	PeriodSec    int64   `json:"period_seconds"`
	PhaseRad     float64 `json:"phase_rad"`
	TLELine1     string  `json:"tle_line1"`
	TLELine2     string  `json:"tle_line2"`
	Position     vecJSON `json:"position"`
}

type fleetJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Position  vecJSON   `json:"position"`
	SpeedKmPS float64   `json:"speed_km_per_sec"`
	Waypoints []vecJSON `json:"waypoints"`
}

type colonyJSON struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	BodyID           string             `json:"body_id"`
	Population       float64            `json:"population"`
	MiningRatePerSec map[string]float64 `json:"mining_rate_per_sec"`
	ProductionPerSec float64            `json:"production_per_sec"`
	Queue            []queueItemJSON    `json:"queue"`
}

type queueItemJSON struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Points float64 `json:"points"`
}

type vecJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LoadScenario reads a JSON scenario from r, populates the KnowledgeBase with
// star systems, and returns a summary of what was loaded.
//
// Structural problems (bad JSON, a body orbiting a parent declared after it)
// fail the whole load; everything else relies on KB invariants the same way
// direct AddSystem calls do.
func LoadScenario(store *kb.KnowledgeBase, r io.Reader) (*ScenarioSummary, error) {
	if store == nil {
		return nil, fmt.Errorf("LoadScenario: kb is nil")
	}

	var payload scenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}

	summary := &ScenarioSummary{
		SystemIDs: make([]string, 0, len(payload.Systems)),
	}

	for _, sj := range payload.Systems {
		sys := &model.StarSystem{
			ID:     sj.ID,
			Name:   sj.Name,
			Active: sj.Active == nil || *sj.Active,
		}

		seen := make(map[string]bool, len(sj.Bodies))
		for _, bj := range sj.Bodies {
			if bj.ParentID != "" && !seen[bj.ParentID] {
				return nil, fmt.Errorf("LoadScenario: system %q: body %q declared before its parent %q",
					sj.ID, bj.ID, bj.ParentID)
			}
			seen[bj.ID] = true

			sys.Bodies = append(sys.Bodies, &model.Body{
				ID:           bj.ID,
				Name:         bj.Name,
				Type:         bj.Type,
				MotionSource: motionSourceFromString(bj.MotionSource),
				Orbit: model.OrbitalElements{
					ParentID:      bj.ParentID,
					RadiusKm:      bj.RadiusKm,
					PeriodSeconds: bj.PeriodSec,
					PhaseRad:      bj.PhaseRad,
				},
				TLELine1: bj.TLELine1,
				TLELine2: bj.TLELine2,
				Position: model.Vec3{X: bj.Position.X, Y: bj.Position.Y, Z: bj.Position.Z},
			})
		}

		for _, fj := range sj.Fleets {
			fleet := &model.Fleet{
				ID:            fj.ID,
				Name:          fj.Name,
				Position:      model.Vec3{X: fj.Position.X, Y: fj.Position.Y, Z: fj.Position.Z},
				SpeedKmPerSec: fj.SpeedKmPS,
			}
			for _, wp := range fj.Waypoints {
				fleet.Waypoints = append(fleet.Waypoints, model.Vec3{X: wp.X, Y: wp.Y, Z: wp.Z})
			}
			sys.Fleets = append(sys.Fleets, fleet)
		}

		for _, cj := range sj.Colonies {
			colony := &model.Colony{
				ID:               cj.ID,
				Name:             cj.Name,
				BodyID:           cj.BodyID,
				Population:       cj.Population,
				MiningRatePerSec: cj.MiningRatePerSec,
				ProductionPerSec: cj.ProductionPerSec,
			}
			for _, qj := range cj.Queue {
				colony.Queue = append(colony.Queue, &model.ConstructionItem{
					ID:              qj.ID,
					Name:            qj.Name,
					RemainingPoints: qj.Points,
				})
			}
			sys.Colonies = append(sys.Colonies, colony)
		}

		if err := store.AddSystem(sys); err != nil {
			return nil, fmt.Errorf("LoadScenario: %w", err)
		}

		summary.SystemIDs = append(summary.SystemIDs, sys.ID)
		summary.Bodies += len(sys.Bodies)
		summary.Fleets += len(sys.Fleets)
		summary.Colonies += len(sys.Colonies)
	}

	return summary, nil
}

func motionSourceFromString(s string) model.MotionSource {
	switch s {
	case "keplerian":
		return model.MotionSourceKeplerian
	case "tle":
		return model.MotionSourceTLE
	default:
		return model.MotionSourceStatic
	}
}
