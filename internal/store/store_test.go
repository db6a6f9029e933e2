package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/novaworks/stellarsim/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sim.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveLoadRoundTripsClockExactly(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	clock := time.Date(2204, time.March, 17, 6, 42, 13, 0, time.UTC)
	systems := []*model.StarSystem{
		{
			ID: "sol", Name: "Sol", Active: true,
			Bodies: []*model.Body{{
				ID: "earth", Name: "Earth", Type: "PLANET",
				MotionSource: model.MotionSourceKeplerian,
				Orbit:        model.OrbitalElements{ParentID: "sun", RadiusKm: 149597870, PeriodSeconds: 31558150},
				Position:     model.Vec3{X: 149597870},
			}},
			Fleets: []*model.Fleet{{
				ID: "fleet-1", Name: "Survey One", SpeedKmPerSec: 30,
				Position:  model.Vec3{X: 12, Y: -7},
				Waypoints: []model.Vec3{{X: 1000}},
			}},
			Colonies: []*model.Colony{{
				ID: "earth-colony", Name: "Earth", BodyID: "earth",
				Population:       500000000,
				Stockpile:        map[string]float64{"duranium": 123.5},
				ProductionPerSec: 1.5,
				Queue:            []*model.ConstructionItem{{ID: "yard-1", Name: "Orbital Yard", RemainingPoints: 4200}},
			}},
		},
		{ID: "barnard", Name: "Barnard's Star"},
	}

	id, err := s.Save(ctx, clock, systems)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	gotClock, gotSystems, err := s.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !gotClock.Equal(clock) {
		t.Fatalf("clock = %v, want %v (exact round-trip)", gotClock, clock)
	}
	if len(gotSystems) != 2 {
		t.Fatalf("loaded %d systems, want 2", len(gotSystems))
	}

	var sol *model.StarSystem
	for _, sys := range gotSystems {
		if sys.ID == "sol" {
			sol = sys
		}
	}
	if sol == nil {
		t.Fatal("sol missing from snapshot")
	}
	if sol.Fleets[0].Position.X != 12 || len(sol.Fleets[0].Waypoints) != 1 {
		t.Fatalf("fleet = %+v", sol.Fleets[0])
	}
	if got := sol.Colonies[0].Queue[0].RemainingPoints; got != 4200 {
		t.Fatalf("queue points = %f, want 4200", got)
	}
	if got := sol.Colonies[0].Stockpile["duranium"]; got != 123.5 {
		t.Fatalf("stockpile = %f, want 123.5", got)
	}
}

func TestLatestSnapshotID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.LatestSnapshotID(ctx); !errors.Is(err, ErrNoSnapshots) {
		t.Fatalf("err = %v, want ErrNoSnapshots", err)
	}

	first, err := s.Save(ctx, time.Unix(1000, 0), nil)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := s.Save(ctx, time.Unix(2000, 0), nil)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	latest, err := s.LatestSnapshotID(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshotID: %v", err)
	}
	if latest != second {
		t.Fatalf("latest = %s, want %s (not %s)", latest, second, first)
	}
}

func TestLoadUnknownSnapshot(t *testing.T) {
	s := openTestStore(t)
	if _, _, err := s.Load(context.Background(), "nope"); !errors.Is(err, ErrNoSnapshots) {
		t.Fatalf("err = %v, want ErrNoSnapshots", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  ", nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}
