package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rhdcoder/internal/logging"
	"github.com/roach88/rhdcoder/internal/store"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
database:
  driver: mysql
  host: db.example.internal
  user: tanss
  password: secret
  name: tanss
coder:
  passphrase: correct-horse-battery
backup:
  compress: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "db.example.internal", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, store.DefaultTable(), cfg.Table)
	assert.Equal(t, "strict", cfg.Coder.Policy)
	assert.True(t, cfg.Backup.Compress)
	assert.Equal(t, "backups", cfg.Backup.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadCUE(t *testing.T) {
	path := writeConfig(t, "config.cue", `
database: {
	driver: "sqlite3"
	path:   "local.db"
}
table: {
	name:    "documents"
	content: "body"
}
coder: policy: "replace"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, store.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "local.db", cfg.DSN())
	assert.Equal(t, "documents", cfg.Table.Name)
	assert.Equal(t, "body", cfg.Table.Content)
	assert.Equal(t, "kodiert", cfg.Table.Flag)
	assert.Equal(t, "replace", cfg.Coder.Policy)
	assert.Equal(t, 3306, cfg.Database.Port)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "config.ini", "[mysql]\nhost=localhost\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoad_UnknownYAMLKey(t *testing.T) {
	path := writeConfig(t, "config.yaml", "database:\n  hostname: x\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hostname")
}

func TestLoad_SchemaViolations(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"bad policy", "database: {driver: sqlite3, path: x.db}\ncoder: {policy: xmlcharrefreplace}\n", "policy"},
		{"port range", "database: {driver: mysql, user: u, name: n, port: 70000}\n", "port"},
		{"bad driver", "database: {driver: postgres}\n", "driver"},
		{"bad identifier", "database: {driver: sqlite3, path: x.db}\ntable: {content: \"inhalt; DROP\"}\n", "content"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", tc.body))
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_CUEUnknownField(t *testing.T) {
	path := writeConfig(t, "config.cue", `database: {driver: "sqlite3", path: "x.db", hostname: "x"}`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hostname")
}

func TestLoad_MissingRequiredMySQLFields(t *testing.T) {
	path := writeConfig(t, "config.yaml", "database:\n  driver: mysql\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.name is required")
	assert.Contains(t, err.Error(), "database.user is required")
}

func TestLoad_SQLiteNeedsPath(t *testing.T) {
	path := writeConfig(t, "config.yaml", "database:\n  driver: sqlite3\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.path is required")
}

func TestLoad_EmptyYAMLUsesDefaultsThenFailsValidation(t *testing.T) {
	path := writeConfig(t, "config.yaml", "")
	_, err := Load(path)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvDBPassword, "from-env")
	t.Setenv(EnvPassphrase, "env-passphrase")
	path := writeConfig(t, "config.yaml", `
database: {driver: mysql, user: u, name: n, password: from-file}
coder: {passphrase: file-passphrase}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "env-passphrase", cfg.Coder.Passphrase)
}

func TestDSN_MySQL(t *testing.T) {
	cfg := Default()
	cfg.Database.User = "tanss"
	cfg.Database.Password = "p@ss"
	cfg.Database.Host = "db"
	cfg.Database.Port = 3307
	cfg.Database.Name = "tanss"

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "tanss:p@ss@tcp(db:3307)/tanss")
	assert.Contains(t, dsn, "clientFoundRows=true")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")

	cfg.Database.DSN = "custom"
	assert.Equal(t, "custom", cfg.DSN())
}

func TestStoreOptions(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = store.DriverSQLite
	cfg.Database.Path = "records.db"

	opts := cfg.StoreOptions()
	assert.Equal(t, store.DriverSQLite, opts.Driver)
	assert.Equal(t, "records.db", opts.DSN)
	assert.Equal(t, store.DefaultTable(), opts.Table)
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Database.Password = "secret"
	cfg.Coder.Passphrase = "k"

	r := cfg.Redacted()
	assert.Equal(t, "********", r.Database.Password)
	assert.Equal(t, "********", r.Coder.Passphrase)
	assert.Equal(t, "secret", cfg.Database.Password)
}

func TestDefaultMatchesSchema(t *testing.T) {
	cfg := Default()
	cfg.Database.User = "u"
	cfg.Database.Name = "n"
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvPassphrase, "from-env")

	cfg := FromEnv()
	assert.Equal(t, "from-env", cfg.Coder.Passphrase)
	assert.Equal(t, "strict", cfg.Coder.Policy)
}

func TestMySQL(t *testing.T) {
	cfg := Default()
	cfg.Database.DSN = "backup:pw@tcp(db.internal:3310)/archive"

	mc, err := cfg.MySQL()
	require.NoError(t, err)
	assert.Equal(t, "backup", mc.User)
	assert.Equal(t, "pw", mc.Passwd)
	assert.Equal(t, "db.internal:3310", mc.Addr)
	assert.Equal(t, "archive", mc.DBName)

	cfg.Database.Driver = store.DriverSQLite
	_, err = cfg.MySQL()
	assert.Error(t, err)
}

func TestLoad_LogLevelsMatchLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "warning", "error"} {
		t.Run(level, func(t *testing.T) {
			path := writeConfig(t, "config.yaml", `
database: {driver: sqlite3, path: records.db}
log: {level: `+level+`}
`)
			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, level, cfg.Log.Level)

			_, err = logging.ParseLevel(cfg.Log.Level)
			assert.NoError(t, err)
		})
	}
}
