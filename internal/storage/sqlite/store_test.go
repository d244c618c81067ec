package sqlite

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"emergence/internal/monitor"
	"emergence/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "emergence.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(" "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "twice.db")
	for i := 0; i < 2; i++ {
		store, err := Open(path)
		if err != nil {
			t.Fatalf("open pass %d: %v", i, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close pass %d: %v", i, err)
		}
	}
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.SaveState(ctx, "seed-1", []byte(`{"version":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SaveState(ctx, "seed-1", []byte(`{"version":1,"tick":9}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := store.LoadState(ctx, "seed-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(got, []byte(`{"version":1,"tick":9}`)) {
		t.Fatalf("blob = %s", got)
	}

	infos, err := store.ListStates(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != "seed-1" || infos[0].Bytes != len(got) {
		t.Fatalf("infos = %+v", infos)
	}
}

func TestLoadStateMissing(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.LoadState(context.Background(), "nope")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("load missing = %v, want %v", err, storage.ErrNotFound)
	}
	if err := store.DeleteState(context.Background(), "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete missing = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestSaveStateRequiresKey(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if err := store.SaveState(context.Background(), "", []byte("x")); err == nil {
		t.Fatal("expected empty key error")
	}
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.SaveState(ctx, "k", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("save with cancelled ctx = %v", err)
	}
}

func TestAnomalyHistory(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		a := monitor.Anomaly{
			Type:              monitor.AnomalyClusterFormation,
			Tick:              uint64(30 * i),
			Description:       "clusters",
			AffectedParticles: []uint64{uint64(i), uint64(i + 10)},
			Severity:          0.25 * float64(i),
			Delta:             3,
			Threshold:         3,
		}
		if err := store.AppendAnomaly(ctx, "run-a", a); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if err := store.AppendAnomaly(ctx, "run-b", monitor.Anomaly{Type: monitor.AnomalyOrderTransition}); err != nil {
		t.Fatalf("append other run: %v", err)
	}

	all, err := store.ListAnomalies(ctx, "run-a", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 || all[0].Tick != 30 || all[3].Tick != 120 {
		t.Fatalf("anomalies = %+v", all)
	}
	if len(all[2].AffectedParticles) != 2 || all[2].AffectedParticles[1] != 13 {
		t.Fatalf("affected = %v", all[2].AffectedParticles)
	}

	recent, err := store.ListAnomalies(ctx, "run-a", 2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Tick != 90 || recent[1].Tick != 120 {
		t.Fatalf("recent = %+v", recent)
	}
}

func TestInflationHistory(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	ev := monitor.InflationEvent{
		ID: 2, Tick: 300, EndTick: 480,
		ParticlesBefore: 40, ParticlesAfter: 95,
		InflationFactor: 2.5, EnergyIncrease: 12.5, ComplexityIncrease: 3,
		Trigger: "energy",
	}
	if err := store.AppendInflation(ctx, "run-a", ev); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.AppendInflation(ctx, "run-a", ev); err != nil {
		t.Fatalf("re-append: %v", err)
	}
	if err := store.AppendInflation(ctx, "run-a", monitor.InflationEvent{ID: 1, Trigger: "knowledge"}); err != nil {
		t.Fatalf("append first: %v", err)
	}

	got, err := store.ListInflations(ctx, "run-a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1] != ev {
		t.Fatalf("inflations = %+v", got)
	}
}
