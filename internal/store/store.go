// Package store persists simulation snapshots: the game clock plus the full
// state of every star system. The clock is stored as whole Unix seconds so a
// save/load cycle round-trips the timestamp exactly.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/xid"
	_ "modernc.org/sqlite"

	"github.com/novaworks/stellarsim/internal/logging"
	"github.com/novaworks/stellarsim/model"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// ErrNoSnapshots is returned when a load is attempted against an empty store.
var ErrNoSnapshots = errors.New("store: no snapshots")

// Store is a SQLite-backed snapshot repository.
type Store struct {
	db  *sql.DB
	log logging.Logger
}

// Open opens (creating if necessary) the database at path and applies
// migrations.
func Open(path string, log logging.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store: path is required")
	}
	if log == nil {
		log = logging.Noop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")
	_, _ = db.Exec("PRAGMA foreign_keys = ON")

	s := &Store{db: db, log: log}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes a snapshot of the clock and all systems and returns its ID.
func (s *Store) Save(ctx context.Context, clock time.Time, systems []*model.StarSystem) (string, error) {
	id := xid.New().String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots(id, saved_at, clock_unix) VALUES(?,?,?)`,
		id, time.Now().UTC().Format(time.RFC3339Nano), clock.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("store: insert snapshot: %w", err)
	}

	for _, sys := range systems {
		state, err := json.Marshal(sys)
		if err != nil {
			return "", fmt.Errorf("store: marshal system %q: %w", sys.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO snapshot_systems(snapshot_id, system_id, state) VALUES(?,?,?)`,
			id, sys.ID, string(state),
		)
		if err != nil {
			return "", fmt.Errorf("store: insert system %q: %w", sys.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	s.log.Info(ctx, "snapshot saved",
		logging.String("snapshot_id", id),
		logging.Int("systems", len(systems)),
	)
	return id, nil
}

// Load reads the snapshot with the given ID, returning the persisted clock
// and systems.
func (s *Store) Load(ctx context.Context, id string) (time.Time, []*model.StarSystem, error) {
	var clockUnix int64
	err := s.db.QueryRowContext(ctx,
		`SELECT clock_unix FROM snapshots WHERE id = ?`, id,
	).Scan(&clockUnix)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil, fmt.Errorf("store: snapshot %q: %w", id, ErrNoSnapshots)
	}
	if err != nil {
		return time.Time{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT state FROM snapshot_systems WHERE snapshot_id = ? ORDER BY system_id`, id,
	)
	if err != nil {
		return time.Time{}, nil, err
	}
	defer rows.Close()

	var systems []*model.StarSystem
	for rows.Next() {
		var state string
		if err := rows.Scan(&state); err != nil {
			return time.Time{}, nil, err
		}
		var sys model.StarSystem
		if err := json.Unmarshal([]byte(state), &sys); err != nil {
			return time.Time{}, nil, fmt.Errorf("store: unmarshal system: %w", err)
		}
		systems = append(systems, &sys)
	}
	if err := rows.Err(); err != nil {
		return time.Time{}, nil, err
	}

	return time.Unix(clockUnix, 0).UTC(), systems, nil
}

// LatestSnapshotID returns the most recently saved snapshot's ID.
func (s *Store) LatestSnapshotID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM snapshots ORDER BY saved_at DESC, id DESC LIMIT 1`,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoSnapshots
	}
	return id, err
}
