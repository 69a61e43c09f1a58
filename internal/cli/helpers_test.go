package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/rhdcoder/internal/store"
)

const testPassphrase = "correct-horse-battery-staple1"

// testEnv is a temp-dir SQLite database with a matching config file.
type testEnv struct {
	dir    string
	dbPath string
	config string
}

func newTestEnv(t *testing.T, extra ...string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:    dir,
		dbPath: filepath.Join(dir, "records.db"),
		config: filepath.Join(dir, "rhdcoder.yaml"),
	}
	body := fmt.Sprintf(`database:
  driver: sqlite3
  path: %s
coder:
  passphrase: %s
backup:
  dir: %s
log:
  dir: %s
%s`, env.dbPath, testPassphrase, filepath.Join(dir, "backups"), filepath.Join(dir, "logs"), strings.Join(extra, "\n"))
	require.NoError(t, os.WriteFile(env.config, []byte(body), 0o600))

	st := env.open(t)
	require.NoError(t, st.EnsureSchema(context.Background()))
	return env
}

func (e *testEnv) open(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), store.Options{Driver: store.DriverSQLite, DSN: e.dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func (e *testEnv) seed(t *testing.T, recs ...store.Record) {
	t.Helper()
	st := e.open(t)
	for _, rec := range recs {
		_, err := st.Insert(context.Background(), rec)
		require.NoError(t, err)
	}
	require.NoError(t, st.Close())
}

func (e *testEnv) records(t *testing.T, obfuscated bool) []store.Record {
	t.Helper()
	recs, err := e.open(t).Fetch(context.Background(), obfuscated)
	require.NoError(t, err)
	return recs
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
