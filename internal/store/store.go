package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql.tmpl
var schemaTemplate string

var schemaTmpl = template.Must(template.New("schema").Parse(schemaTemplate))

// Supported driver names.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

var (
	// ErrRecordNotFound is returned by Update when no row has the given id.
	ErrRecordNotFound = errors.New("record not found")

	// ErrUnsupportedDriver is returned by Open for drivers other than sqlite3 and mysql.
	ErrUnsupportedDriver = errors.New("unsupported driver")

	// ErrSchemaUnsupported is returned by EnsureSchema on drivers where the
	// table must already exist.
	ErrSchemaUnsupported = errors.New("schema creation only supported on sqlite3")
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Table names the record table and its columns.
type Table struct {
	Name    string `json:"name" yaml:"name"`
	ID      string `json:"id" yaml:"id"`
	Label   string `json:"label" yaml:"label"`
	Content string `json:"content" yaml:"content"`
	Flag    string `json:"flag" yaml:"flag"`
}

// DefaultTable returns the dokumente layout.
func DefaultTable() Table {
	return Table{
		Name:    "dokumente",
		ID:      "ID",
		Label:   "name",
		Content: "inhalt",
		Flag:    "kodiert",
	}
}

// Validate checks every name is a plain SQL identifier. Names are quoted
// into queries, so nothing else is accepted.
func (t Table) Validate() error {
	fields := []struct{ field, value string }{
		{"name", t.Name},
		{"id", t.ID},
		{"label", t.Label},
		{"content", t.Content},
		{"flag", t.Flag},
	}
	for _, f := range fields {
		if !identifierPattern.MatchString(f.value) {
			return fmt.Errorf("table %s: invalid identifier %q", f.field, f.value)
		}
	}
	return nil
}

// quoted returns the table with every identifier backtick-quoted. Both
// SQLite and MySQL accept backticks.
func (t Table) quoted() Table {
	q := func(s string) string { return "`" + s + "`" }
	return Table{
		Name:    q(t.Name),
		ID:      q(t.ID),
		Label:   q(t.Label),
		Content: q(t.Content),
		Flag:    q(t.Flag),
	}
}

// Options configures Open.
type Options struct {
	// Driver is DriverSQLite or DriverMySQL.
	Driver string

	// DSN is the driver data source name (a file path for sqlite3).
	DSN string

	// Table defaults to DefaultTable() when zero.
	Table Table
}

// Store reads and updates records in one table.
type Store struct {
	db      *sql.DB
	driver  string
	table   Table
	queries queries
}

type queries struct {
	fetch    string
	fetchOne string
	update   string
	count    string
	insert   string
}

// Open connects to the database and prepares queries for the table.
// SQLite connections get the pragmas listed in the package doc.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Driver != DriverSQLite && opts.Driver != DriverMySQL {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, opts.Driver)
	}
	table := opts.Table
	if table == (Table{}) {
		table = DefaultTable()
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	} else {
		db.SetMaxOpenConns(2)
	}

	return &Store{
		db:      db,
		driver:  opts.Driver,
		table:   table,
		queries: buildQueries(table.quoted()),
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB. Used by the SQLite backup.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string {
	return s.driver
}

// Table returns the table layout in use.
func (s *Store) Table() Table {
	return s.table
}

// EnsureSchema creates the record table if it does not exist.
// Only SQLite databases are touched; production tables are never created.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.driver != DriverSQLite {
		return ErrSchemaUnsupported
	}
	var sb strings.Builder
	data := struct {
		Table
		Raw Table
	}{Table: s.table.quoted(), Raw: s.table}
	if err := schemaTmpl.Execute(&sb, data); err != nil {
		return fmt.Errorf("render schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sb.String()); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

func buildQueries(t Table) queries {
	selectCols := fmt.Sprintf("SELECT %s, %s, %s, %s FROM %s", t.ID, t.Label, t.Content, t.Flag, t.Name)
	where := fmt.Sprintf("WHERE %s = ? AND %s IS NOT NULL AND %s != ''", t.Flag, t.Content, t.Content)
	return queries{
		fetch:    fmt.Sprintf("%s %s ORDER BY %s ASC", selectCols, where, t.ID),
		fetchOne: fmt.Sprintf("%s %s ORDER BY %s ASC LIMIT 1", selectCols, where, t.ID),
		update:   fmt.Sprintf("UPDATE %s SET %s = ?, %s = ? WHERE %s = ?", t.Name, t.Content, t.Flag, t.ID),
		count:    fmt.Sprintf("SELECT %s, COUNT(*) FROM %s WHERE %s IS NOT NULL AND %s != '' GROUP BY %s", t.Flag, t.Name, t.Content, t.Content, t.Flag),
		insert:   fmt.Sprintf("INSERT INTO %s (%s, %s, %s) VALUES (?, ?, ?)", t.Name, t.Label, t.Content, t.Flag),
	}
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
