package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(context.Background(), Options{Driver: DriverSQLite, DSN: path})
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
	assert.Equal(t, DriverSQLite, s.Driver())
	assert.Equal(t, DefaultTable(), s.Table())
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "postgres", DSN: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: DriverSQLite, DSN: "/nonexistent/dir/test.db"})
	assert.Error(t, err)
}

func TestOpen_RejectsUnsafeIdentifiers(t *testing.T) {
	table := DefaultTable()
	table.Content = "inhalt; DROP TABLE dokumente"

	_, err := Open(context.Background(), Options{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
		Table:  table,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid identifier")
}

func TestTableValidate(t *testing.T) {
	assert.NoError(t, DefaultTable().Validate())

	bad := DefaultTable()
	bad.Name = "1table"
	assert.Error(t, bad.Validate())

	bad = DefaultTable()
	bad.Flag = ""
	assert.Error(t, bad.Validate())
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	s := createTestStore(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.EnsureSchema(context.Background()))
	}

	var name string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='dokumente'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "dokumente", name)
}

func TestEnsureSchema_CustomTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	table := Table{Name: "documents", ID: "id", Label: "title", Content: "body", Flag: "encoded"}

	s, err := Open(context.Background(), Options{Driver: DriverSQLite, DSN: path, Table: table})
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.EnsureSchema(context.Background()))

	id, err := s.Insert(context.Background(), Record{Name: "a", Content: "body text"})
	require.NoError(t, err)

	recs, err := s.Fetch(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, id, recs[0].ID)
	assert.Equal(t, "body text", recs[0].Content)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	assert.NoError(t, s.Close())
}

func TestPragma_JournalMode(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
}
