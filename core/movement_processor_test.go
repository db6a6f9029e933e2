package core

import (
	"testing"
	"time"

	"github.com/novaworks/stellarsim/model"
	"github.com/novaworks/stellarsim/timectrl"
)

func newSubpulse() *timectrl.Subpulse {
	return &timectrl.Subpulse{
		Clock:     timectrl.NewGameClock(time.Date(2200, time.January, 1, 0, 0, 0, 0, time.UTC)),
		Limit:     timectrl.NewSubpulseLimit(),
		Interrupt: timectrl.NewInterrupt(),
	}
}

func fleetSystem(fleet *model.Fleet) *model.StarSystem {
	return &model.StarSystem{ID: "sol", Name: "Sol", Active: true, Fleets: []*model.Fleet{fleet}}
}

func TestMovementAdvancesAlongLeg(t *testing.T) {
	fleet := &model.Fleet{
		ID:            "fleet-1",
		Name:          "Survey One",
		SpeedKmPerSec: 1,
		Waypoints:     []model.Vec3{{X: 100}},
	}
	sys := fleetSystem(fleet)
	sp := newSubpulse()

	p := NewMovementProcessor(nil)
	if err := p.ProcessSubpulse(sp, []timectrl.Region{sys}, 30); err != nil {
		t.Fatalf("ProcessSubpulse: %v", err)
	}

	if fleet.Position.X != 30 {
		t.Fatalf("position = %v, want x=30", fleet.Position)
	}
	if sp.Interrupt.IsSet() {
		t.Fatal("no arrival yet; interrupt should not be set")
	}
	// 70 km to go at 1 km/s: the next checkpoint lands on the arrival.
	if got := sp.Limit.Current(); got != 70 {
		t.Fatalf("limit = %d, want 70", got)
	}
}

func TestMovementArrivalRaisesInterrupt(t *testing.T) {
	fleet := &model.Fleet{
		ID:            "fleet-1",
		Name:          "Survey One",
		SpeedKmPerSec: 2,
		Waypoints:     []model.Vec3{{X: 100}},
	}
	sys := fleetSystem(fleet)
	sp := newSubpulse()

	p := NewMovementProcessor(nil)
	if err := p.ProcessSubpulse(sp, []timectrl.Region{sys}, 50); err != nil {
		t.Fatalf("ProcessSubpulse: %v", err)
	}

	if fleet.Position.X != 100 {
		t.Fatalf("position = %v, want x=100", fleet.Position)
	}
	if len(fleet.Waypoints) != 0 {
		t.Fatalf("waypoints = %v, want empty", fleet.Waypoints)
	}
	reason, ok := sp.Interrupt.Reason()
	if !ok {
		t.Fatal("expected fleet-arrived interrupt")
	}
	if reason.Code != "fleet-arrived" || reason.EntityID != "fleet-1" || reason.RegionID != "sol" {
		t.Fatalf("reason = %+v", reason)
	}
}

func TestMovementCrossesWaypointMidSubpulse(t *testing.T) {
	fleet := &model.Fleet{
		ID:            "fleet-1",
		SpeedKmPerSec: 1,
		Waypoints:     []model.Vec3{{X: 10}, {X: 10, Y: 40}},
	}
	sys := fleetSystem(fleet)
	sp := newSubpulse()

	p := NewMovementProcessor(nil)
	if err := p.ProcessSubpulse(sp, []timectrl.Region{sys}, 25); err != nil {
		t.Fatalf("ProcessSubpulse: %v", err)
	}

	// 10 km on the first leg, 15 km up the second.
	want := model.Vec3{X: 10, Y: 15}
	if fleet.Position != want {
		t.Fatalf("position = %v, want %v", fleet.Position, want)
	}
	if sp.Interrupt.IsSet() {
		t.Fatal("intermediate waypoint must not interrupt")
	}
	if got := sp.Limit.Current(); got != 25 {
		t.Fatalf("limit = %d, want 25 (remaining 25 km at 1 km/s)", got)
	}
}

func TestMovementIgnoresImmobileFleets(t *testing.T) {
	fleet := &model.Fleet{ID: "hulk", Waypoints: []model.Vec3{{X: 100}}}
	sys := fleetSystem(fleet)
	sp := newSubpulse()

	p := NewMovementProcessor(nil)
	if err := p.ProcessSubpulse(sp, []timectrl.Region{sys}, 60); err != nil {
		t.Fatalf("ProcessSubpulse: %v", err)
	}
	if fleet.Position.X != 0 {
		t.Fatalf("immobile fleet moved to %v", fleet.Position)
	}
	if got := sp.Limit.Current(); got != timectrl.Unbounded {
		t.Fatalf("limit = %d, want Unbounded", got)
	}
}
