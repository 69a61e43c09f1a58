// Package config loads the rhdcoder configuration file.
//
// YAML (.yaml, .yml) and CUE (.cue) files are accepted. Whatever the format,
// the result is checked against the embedded CUE schema (schema.cue), so a
// typo in a key or an out-of-range value is reported before any database is
// touched.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"

	"github.com/roach88/rhdcoder/internal/store"
)

// Environment variables that override file values.
const (
	EnvDBPassword = "RHDCODER_DB_PASSWORD"
	EnvPassphrase = "RHDCODER_PASSPHRASE"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Config is the full configuration.
type Config struct {
	Database Database    `json:"database" yaml:"database"`
	Table    store.Table `json:"table" yaml:"table"`
	Coder    Coder       `json:"coder" yaml:"coder"`
	Backup   Backup      `json:"backup" yaml:"backup"`
	Log      Log         `json:"log" yaml:"log"`
}

// Database holds connection settings.
type Database struct {
	Driver   string `json:"driver" yaml:"driver"`
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Name     string `json:"name" yaml:"name"`

	// DSN, when set, is passed to the driver as is.
	DSN string `json:"dsn" yaml:"dsn"`

	// Path is the database file for sqlite3.
	Path string `json:"path" yaml:"path"`
}

// Coder holds transform settings.
type Coder struct {
	Passphrase string `json:"passphrase" yaml:"passphrase"`
	Policy     string `json:"policy" yaml:"policy"`
}

// Backup holds backup settings.
type Backup struct {
	Dir       string `json:"dir" yaml:"dir"`
	Compress  bool   `json:"compress" yaml:"compress"`
	Mysqldump string `json:"mysqldump" yaml:"mysqldump"`
}

// Log holds logging settings.
type Log struct {
	Dir   string `json:"dir" yaml:"dir"`
	Level string `json:"level" yaml:"level"`
}

// Default returns the configuration used for keys a file leaves out.
// It matches the defaults in schema.cue.
func Default() Config {
	return Config{
		Database: Database{
			Driver: store.DriverMySQL,
			Host:   "localhost",
			Port:   3306,
		},
		Table: store.DefaultTable(),
		Coder: Coder{Policy: "strict"},
		Backup: Backup{
			Dir:       "backups",
			Mysqldump: "mysqldump",
		},
		Log: Log{
			Dir:   "logs",
			Level: "info",
		},
	}
}

// Load reads, validates and returns the configuration at path.
// Environment overrides are applied after the file is read.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		cfg, err = parseYAML(data)
	case ".cue":
		cfg, err = parseCUE(path, data)
	default:
		return nil, fmt.Errorf("unsupported config format %q: use .yaml, .yml or .cue", ext)
	}
	if err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv returns the defaults with environment overrides applied. It serves
// commands that can run without a configuration file.
func FromEnv() *Config {
	cfg := Default()
	cfg.applyEnv()
	return &cfg
}

func parseYAML(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse yaml config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvDBPassword); ok {
		c.Database.Password = v
	}
	if v, ok := os.LookupEnv(EnvPassphrase); ok {
		c.Coder.Passphrase = v
	}
}

// Validate checks the configuration against the schema and the rules the
// schema cannot express.
func (c *Config) Validate() error {
	if err := validateSchema(c); err != nil {
		return err
	}

	var problems []string
	switch c.Database.Driver {
	case store.DriverMySQL:
		if c.Database.DSN == "" {
			if c.Database.Name == "" {
				problems = append(problems, "database.name is required for mysql")
			}
			if c.Database.User == "" {
				problems = append(problems, "database.user is required for mysql")
			}
		}
	case store.DriverSQLite:
		if c.Database.DSN == "" && c.Database.Path == "" {
			problems = append(problems, "database.path is required for sqlite3")
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	db := c.Database
	if db.DSN != "" {
		return db.DSN
	}
	if db.Driver == store.DriverSQLite {
		return db.Path
	}

	mc := mysql.NewConfig()
	mc.User = db.User
	mc.Passwd = db.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(db.Host, strconv.Itoa(db.Port))
	mc.DBName = db.Name
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	// Report matched rather than changed rows so Update can detect missing ids.
	mc.ClientFoundRows = true
	return mc.FormatDSN()
}

// MySQL returns the parsed MySQL connection settings, including those given
// only through database.dsn.
func (c *Config) MySQL() (*mysql.Config, error) {
	if c.Database.Driver != store.DriverMySQL {
		return nil, fmt.Errorf("database.driver is %q, not mysql", c.Database.Driver)
	}
	mc, err := mysql.ParseDSN(c.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	return mc, nil
}

// StoreOptions returns the options for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Driver: c.Database.Driver,
		DSN:    c.DSN(),
		Table:  c.Table,
	}
}

// Redacted returns a copy safe to print: secrets are masked.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	c.Database.Password = mask(c.Database.Password)
	c.Coder.Passphrase = mask(c.Coder.Passphrase)
	if c.Database.DSN != "" {
		c.Database.DSN = mask(c.Database.DSN)
	}
	return c
}
