package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/novaworks/stellarsim/core"
	"github.com/novaworks/stellarsim/internal/logging"
	"github.com/novaworks/stellarsim/internal/store"
	"github.com/novaworks/stellarsim/kb"
	"github.com/novaworks/stellarsim/model"
)

func TestLoadWorldResumeRestoresClock(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(filepath.Join(t.TempDir(), "sim.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	saved := time.Date(2207, time.June, 3, 12, 0, 0, 0, time.UTC)
	if _, err := db.Save(ctx, saved, []*model.StarSystem{
		{ID: "sol", Name: "Sol", Active: true},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cfg := DefaultConfig()
	cfg.ResumeLatest = true

	state := kb.NewKnowledgeBase()
	clock, resumed, err := loadWorld(ctx, cfg, db, state, logging.Noop())
	if err != nil {
		t.Fatalf("loadWorld: %v", err)
	}
	if !resumed {
		t.Fatal("expected resumed=true")
	}
	if !clock.Equal(saved) {
		t.Fatalf("clock = %v, want %v", clock, saved)
	}
	if state.System("sol") == nil {
		t.Fatal("sol missing after resume")
	}

	// The restore lands between construction and OnReady, replacing the
	// new-game start entirely.
	start, err := cfg.startTime()
	if err != nil {
		t.Fatalf("startTime: %v", err)
	}
	sim := core.NewSimulation(state, start, logging.Noop())
	sim.Clock().Restore(clock)
	if err := sim.OnReady(); err != nil {
		t.Fatalf("OnReady: %v", err)
	}
	if got := sim.Clock().Now(); !got.Equal(saved) {
		t.Fatalf("sim clock = %v, want restored %v", got, saved)
	}
}

func TestLoadWorldResumeWithoutSnapshotsFails(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "sim.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	cfg := DefaultConfig()
	cfg.ResumeLatest = true

	if _, _, err := loadWorld(context.Background(), cfg, db, kb.NewKnowledgeBase(), logging.Noop()); err == nil {
		t.Fatal("expected error resuming from an empty store")
	}
}
