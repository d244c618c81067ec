package sqlitemigrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func count(t *testing.T, db *sql.DB, query string) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query).Scan(&n); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return n
}

func TestApplyRecordsEachFileOnce(t *testing.T) {
	t.Parallel()

	db := openMemory(t)
	fsys := fstest.MapFS{
		"001_items.sql": &fstest.MapFile{Data: []byte("-- +migrate Up\nCREATE TABLE items(id INTEGER PRIMARY KEY);\n-- +migrate Down\nDROP TABLE items;")},
		"002_tags.sql":  &fstest.MapFile{Data: []byte("CREATE TABLE tags(name TEXT);")},
		"README.md":     &fstest.MapFile{Data: []byte("ignored")},
	}
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := Apply(ctx, db, fsys); err != nil {
			t.Fatalf("apply pass %d: %v", i, err)
		}
	}
	if n := count(t, db, "SELECT COUNT(*) FROM schema_migrations"); n != 2 {
		t.Fatalf("recorded %d migrations, want 2", n)
	}
	if n := count(t, db, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('items', 'tags')"); n != 2 {
		t.Fatalf("found %d tables, want 2", n)
	}
}

func TestApplyRejectsBrokenSQL(t *testing.T) {
	t.Parallel()

	db := openMemory(t)
	fsys := fstest.MapFS{"001_bad.sql": &fstest.MapFile{Data: []byte("CREATE TABLEX nope;")}}
	if err := Apply(context.Background(), db, fsys); err == nil {
		t.Fatal("expected an error for invalid SQL")
	}
	if n := count(t, db, "SELECT COUNT(*) FROM schema_migrations"); n != 0 {
		t.Fatalf("failed migration was recorded")
	}
}

func TestUpSection(t *testing.T) {
	t.Parallel()

	got := UpSection("-- +migrate Up\nSELECT 1;\n-- +migrate Down\nSELECT 2;")
	if got != "\nSELECT 1;\n" {
		t.Fatalf("up section = %q", got)
	}
	if UpSection("SELECT 3;") != "SELECT 3;" {
		t.Fatal("unmarked content must be returned whole")
	}
}
