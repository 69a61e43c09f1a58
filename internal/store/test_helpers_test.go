package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a file-backed SQLite store with the record table.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), Options{Driver: DriverSQLite, DSN: path})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() failed: %v", err)
	}
	return s
}

// seed inserts records and returns their ids in order.
func seed(t *testing.T, s *Store, recs ...Record) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(recs))
	for _, rec := range recs {
		id, err := s.Insert(context.Background(), rec)
		if err != nil {
			t.Fatalf("Insert() failed: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}
