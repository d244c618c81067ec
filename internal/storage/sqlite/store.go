// Package sqlite provides a SQLite-backed storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"emergence/internal/monitor"
	sqlitemigrate "emergence/internal/platform/storage/sqlitemigrate"
	"emergence/internal/storage"
	"emergence/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists states and monitor history in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// SaveState writes blob under key, replacing any previous value.
func (s *Store) SaveState(ctx context.Context, key string, blob []byte) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("state key is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO states (key, blob, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET blob = excluded.blob, saved_at = excluded.saved_at`,
		key, blob, toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save state %s: %w", key, err)
	}
	return nil
}

// LoadState returns the blob saved under key.
func (s *Store) LoadState(ctx context.Context, key string) ([]byte, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var blob []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT blob FROM states WHERE key = ?`, strings.TrimSpace(key)).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("load state %s: %w", key, err)
	}
	return blob, nil
}

// ListStates returns saved states, newest first.
func (s *Store) ListStates(ctx context.Context) ([]storage.StateInfo, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT key, length(blob), saved_at FROM states ORDER BY saved_at DESC, key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	defer rows.Close()

	var out []storage.StateInfo
	for rows.Next() {
		var info storage.StateInfo
		var savedAt int64
		if err := rows.Scan(&info.Key, &info.Bytes, &savedAt); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		info.SavedAt = fromMillis(savedAt)
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate states: %w", err)
	}
	return out, nil
}

// DeleteState removes the blob saved under key.
func (s *Store) DeleteState(ctx context.Context, key string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM states WHERE key = ?`, strings.TrimSpace(key))
	if err != nil {
		return fmt.Errorf("delete state %s: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AppendAnomaly records one anomaly for run.
func (s *Store) AppendAnomaly(ctx context.Context, run string, a monitor.Anomaly) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	affected, err := json.Marshal(a.AffectedParticles)
	if err != nil {
		return fmt.Errorf("encode affected particles: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO anomalies (run, tick, type, description, severity, delta, threshold, affected)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run, int64(a.Tick), string(a.Type), a.Description, a.Severity, a.Delta, a.Threshold, string(affected),
	)
	if err != nil {
		return fmt.Errorf("append anomaly: %w", err)
	}
	return nil
}

// ListAnomalies returns the anomalies of run in insertion order. A positive
// limit keeps only the most recent entries.
func (s *Store) ListAnomalies(ctx context.Context, run string, limit int) ([]monitor.Anomaly, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT tick, type, description, severity, delta, threshold, affected FROM (
		   SELECT seq, tick, type, description, severity, delta, threshold, affected
		     FROM anomalies WHERE run = ? ORDER BY seq DESC LIMIT ?
		 ) ORDER BY seq ASC`,
		run, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list anomalies: %w", err)
	}
	defer rows.Close()

	var out []monitor.Anomaly
	for rows.Next() {
		var a monitor.Anomaly
		var tick int64
		var kind, affected string
		if err := rows.Scan(&tick, &kind, &a.Description, &a.Severity, &a.Delta, &a.Threshold, &affected); err != nil {
			return nil, fmt.Errorf("scan anomaly: %w", err)
		}
		a.Tick = uint64(tick)
		a.Type = monitor.AnomalyType(kind)
		if err := json.Unmarshal([]byte(affected), &a.AffectedParticles); err != nil {
			return nil, fmt.Errorf("decode affected particles: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate anomalies: %w", err)
	}
	return out, nil
}

// AppendInflation records one completed inflation for run. Re-appending the
// same event ID replaces the earlier row.
func (s *Store) AppendInflation(ctx context.Context, run string, ev monitor.InflationEvent) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT OR REPLACE INTO inflations (
		   run, id, tick, end_tick, particles_before, particles_after,
		   factor, energy_increase, complexity_increase, trigger_reason
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run, int64(ev.ID), int64(ev.Tick), int64(ev.EndTick), ev.ParticlesBefore, ev.ParticlesAfter,
		ev.InflationFactor, ev.EnergyIncrease, ev.ComplexityIncrease, ev.Trigger,
	)
	if err != nil {
		return fmt.Errorf("append inflation: %w", err)
	}
	return nil
}

// ListInflations returns the inflations of run ordered by ID.
func (s *Store) ListInflations(ctx context.Context, run string) ([]monitor.InflationEvent, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, tick, end_tick, particles_before, particles_after,
		        factor, energy_increase, complexity_increase, trigger_reason
		   FROM inflations WHERE run = ? ORDER BY id ASC`,
		run,
	)
	if err != nil {
		return nil, fmt.Errorf("list inflations: %w", err)
	}
	defer rows.Close()

	var out []monitor.InflationEvent
	for rows.Next() {
		var ev monitor.InflationEvent
		var id, tick, endTick int64
		if err := rows.Scan(&id, &tick, &endTick, &ev.ParticlesBefore, &ev.ParticlesAfter,
			&ev.InflationFactor, &ev.EnergyIncrease, &ev.ComplexityIncrease, &ev.Trigger); err != nil {
			return nil, fmt.Errorf("scan inflation: %w", err)
		}
		ev.ID, ev.Tick, ev.EndTick = uint64(id), uint64(tick), uint64(endTick)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inflations: %w", err)
	}
	return out, nil
}
