// Package storage defines persistence contracts for simulation state and
// monitor history.
package storage

import (
	"context"
	"errors"
	"time"

	"emergence/internal/monitor"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// StateInfo describes one saved state blob without its payload.
type StateInfo struct {
	Key     string
	Bytes   int
	SavedAt time.Time
}

// StateStore persists serialized universe states under caller-chosen keys.
type StateStore interface {
	SaveState(ctx context.Context, key string, blob []byte) error
	LoadState(ctx context.Context, key string) ([]byte, error)
	ListStates(ctx context.Context) ([]StateInfo, error)
	DeleteState(ctx context.Context, key string) error
}

// HistoryStore appends monitor output for a named run.
type HistoryStore interface {
	AppendAnomaly(ctx context.Context, run string, a monitor.Anomaly) error
	AppendInflation(ctx context.Context, run string, ev monitor.InflationEvent) error
	ListAnomalies(ctx context.Context, run string, limit int) ([]monitor.Anomaly, error)
	ListInflations(ctx context.Context, run string) ([]monitor.InflationEvent, error)
}

// Store is the full persistence surface.
type Store interface {
	StateStore
	HistoryStore
	Close() error
}
