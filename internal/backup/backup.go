// Package backup takes a full snapshot of the record database before a run
// that modifies records.
//
// Dumps land in a directory as <name>_backup_YYYYMMDD_HHMMSS.sql (MySQL) or
// .db (SQLite), with a .zst suffix when compressed. A failed backup never
// leaves a partial file behind.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

const timestampLayout = "20060102_150405"

// Creator takes a backup and returns the path it was written to.
type Creator interface {
	CreateBackup(ctx context.Context) (string, error)
}

// MySQLDump runs mysqldump and stores its output.
type MySQLDump struct {
	// Binary defaults to "mysqldump" resolved through PATH.
	Binary string

	Host     string
	Port     int
	User     string
	Password string
	Database string

	// Dir is created if missing.
	Dir      string
	Compress bool

	// Now defaults to time.Now.
	Now func() time.Time
}

// CreateBackup dumps the database with --single-transaction so InnoDB
// tables are captured consistently without locking writers. The password
// reaches mysqldump through MYSQL_PWD, never the argument list.
func (d *MySQLDump) CreateBackup(ctx context.Context) (string, error) {
	path, err := prepare(d.Dir, d.Database, ".sql", d.Compress, d.Now)
	if err != nil {
		return "", err
	}

	binary := d.Binary
	if binary == "" {
		binary = "mysqldump"
	}
	args := []string{
		"-h", d.Host,
		"-u", d.User,
		"-P", strconv.Itoa(d.Port),
		"--single-transaction",
		"--routines",
		"--triggers",
		d.Database,
	}

	err = writeFile(path, d.Compress, func(w io.Writer) error {
		cmd := exec.CommandContext(ctx, binary, args...)
		cmd.Env = append(os.Environ(), "MYSQL_PWD="+d.Password)
		var stderr bytes.Buffer
		cmd.Stdout = w
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return fmt.Errorf("mysqldump: %w: %s", err, msg)
			}
			return fmt.Errorf("mysqldump: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// SQLiteSnapshot copies a live SQLite database with VACUUM INTO.
type SQLiteSnapshot struct {
	DB       *sql.DB
	Name     string
	Dir      string
	Compress bool
	Now      func() time.Time
}

// CreateBackup writes a consistent copy of the database. With Compress the
// snapshot is taken into a temporary file first and then zstd-compressed.
func (s *SQLiteSnapshot) CreateBackup(ctx context.Context) (string, error) {
	if s.DB == nil {
		return "", fmt.Errorf("sqlite snapshot: no database handle")
	}
	name := s.Name
	if name == "" {
		name = "records"
	}
	path, err := prepare(s.Dir, name, ".db", s.Compress, s.Now)
	if err != nil {
		return "", err
	}

	target := path
	if s.Compress {
		target = strings.TrimSuffix(path, ".zst") + ".tmp"
		defer os.Remove(target)
	}
	if _, err := s.DB.ExecContext(ctx, "VACUUM INTO ?", target); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("sqlite snapshot: %w", err)
	}
	if !s.Compress {
		return path, nil
	}

	src, err := os.Open(target)
	if err != nil {
		return "", fmt.Errorf("sqlite snapshot: %w", err)
	}
	defer src.Close()

	err = writeFile(path, true, func(w io.Writer) error {
		_, err := io.Copy(w, src)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("sqlite snapshot: %w", err)
	}
	return path, nil
}

// prepare creates dir and returns a timestamped, not yet existing file path.
func prepare(dir, name, ext string, compress bool, now func() time.Time) (string, error) {
	if dir == "" {
		dir = "backups"
	}
	if now == nil {
		now = time.Now
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	file := fmt.Sprintf("%s_backup_%s%s", name, now().Format(timestampLayout), ext)
	if compress {
		file += ".zst"
	}
	return filepath.Join(dir, file), nil
}

// writeFile creates path and hands fill a writer, zstd-wrapped when
// compress is set. On any error the file is removed.
func writeFile(path string, compress bool, fill func(io.Writer) error) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close backup file: %w", cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if !compress {
		return fill(f)
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := fill(zw); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("zstd close: %w", err)
	}
	return nil
}
