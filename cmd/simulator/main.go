package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/novaworks/stellarsim/core"
	"github.com/novaworks/stellarsim/internal/logging"
	"github.com/novaworks/stellarsim/internal/observability"
	"github.com/novaworks/stellarsim/internal/store"
	"github.com/novaworks/stellarsim/kb"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		overrides  Config
	)

	cmd := &cobra.Command{
		Use:           "simulator",
		Short:         "Pulse-based space strategy simulation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd, &cfg, overrides)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.Flags().StringVar(&overrides.ScenarioPath, "scenario", "", "JSON scenario to load for a new game")
	cmd.Flags().StringVar(&overrides.DatabasePath, "db", "", "SQLite snapshot database path")
	cmd.Flags().StringVar(&overrides.StartTime, "start-time", "", "game clock start for a new game (RFC 3339)")
	cmd.Flags().Int64Var(&overrides.PulseSeconds, "pulse-seconds", 0, "simulation seconds requested per pulse")
	cmd.Flags().Int64Var(&overrides.MinimumStepSeconds, "min-step", 0, "smallest subpulse in seconds")
	cmd.Flags().IntVar(&overrides.Pulses, "pulses", 0, "number of pulses to run (0 = until cancelled)")
	cmd.Flags().StringVar(&overrides.MetricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on")
	cmd.Flags().BoolVar(&overrides.ResumeLatest, "resume", false, "resume from the most recent snapshot")

	return cmd
}

// applyFlagOverrides copies explicitly-set flag values over the file config,
// so flags beat the file and the file beats the defaults.
func applyFlagOverrides(cmd *cobra.Command, cfg *Config, o Config) {
	if cmd.Flags().Changed("scenario") {
		cfg.ScenarioPath = o.ScenarioPath
	}
	if cmd.Flags().Changed("db") {
		cfg.DatabasePath = o.DatabasePath
	}
	if cmd.Flags().Changed("start-time") {
		cfg.StartTime = o.StartTime
	}
	if cmd.Flags().Changed("pulse-seconds") {
		cfg.PulseSeconds = o.PulseSeconds
	}
	if cmd.Flags().Changed("min-step") {
		cfg.MinimumStepSeconds = o.MinimumStepSeconds
	}
	if cmd.Flags().Changed("pulses") {
		cfg.Pulses = o.Pulses
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.MetricsAddr = o.MetricsAddr
	}
	if cmd.Flags().Changed("resume") {
		cfg.ResumeLatest = o.ResumeLatest
	}
}

func run(ctx context.Context, cfg Config) error {
	log := logging.NewFromEnv()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	db, err := store.Open(cfg.DatabasePath, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	state := kb.NewKnowledgeBase()
	restoredClock, resumed, err := loadWorld(ctx, cfg, db, state, log)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	collector, err := observability.NewPulseCollector(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, collector, log)
	}

	start, err := cfg.startTime()
	if err != nil {
		return err
	}
	sim := core.NewSimulation(state, start, log,
		core.WithMinimumStep(cfg.MinimumStepSeconds),
		core.WithMetricsRecorder(collector),
		core.WithTracer(otel.Tracer("stellarsim")),
	)
	// Restores happen between construction and OnReady.
	if resumed {
		sim.Clock().Restore(restoredClock)
	}
	if err := sim.OnReady(); err != nil {
		return err
	}

	if err := runLoop(ctx, sim, cfg, log); err != nil {
		return err
	}

	id, err := db.Save(context.Background(), sim.Clock().Now(), state.ListSystems())
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	log.Info(ctx, "simulation stopped",
		logging.String("snapshot_id", id),
		logging.String("sim_time", sim.Clock().Now().Format(time.RFC3339)),
	)
	return nil
}

// loadWorld populates the knowledge base from the latest snapshot or a
// scenario file. When resuming it returns the persisted game clock, to be
// handed to GameClock.Restore before OnReady.
func loadWorld(ctx context.Context, cfg Config, db *store.Store, state *kb.KnowledgeBase, log logging.Logger) (time.Time, bool, error) {
	if cfg.ResumeLatest {
		id, err := db.LatestSnapshotID(ctx)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("resume: %w", err)
		}
		clock, systems, err := db.Load(ctx, id)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("resume: %w", err)
		}
		for _, sys := range systems {
			if err := state.AddSystem(sys); err != nil {
				return time.Time{}, false, err
			}
		}
		log.Info(ctx, "resumed from snapshot",
			logging.String("snapshot_id", id),
			logging.Int("systems", len(systems)),
			logging.String("sim_time", clock.Format(time.RFC3339)),
		)
		return clock, true, nil
	}

	f, err := os.Open(cfg.ScenarioPath)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	summary, err := core.LoadScenario(state, f)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("load scenario: %w", err)
	}
	log.Info(ctx, "scenario loaded",
		logging.String("path", cfg.ScenarioPath),
		logging.Int("systems", len(summary.SystemIDs)),
		logging.Int("bodies", summary.Bodies),
		logging.Int("fleets", summary.Fleets),
		logging.Int("colonies", summary.Colonies),
	)
	return time.Time{}, false, nil
}

func serveMetrics(ctx context.Context, addr string, collector *observability.PulseCollector, log logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "serving metrics", logging.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(ctx, "metrics server failed", logging.String("error", err.Error()))
	}
}
