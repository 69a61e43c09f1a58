package backup

import (
	"database/sql"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/roach88/rhdcoder/internal/config"
	"github.com/roach88/rhdcoder/internal/store"
)

// New returns the backup strategy for the configured driver. db is the open
// store handle; only SQLite snapshots use it.
func New(cfg *config.Config, db *sql.DB) (Creator, error) {
	b := cfg.Backup
	switch cfg.Database.Driver {
	case store.DriverSQLite:
		name := "records"
		if p := cfg.Database.Path; p != "" {
			name = strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		}
		return &SQLiteSnapshot{DB: db, Name: name, Dir: b.Dir, Compress: b.Compress}, nil

	case store.DriverMySQL:
		mc, err := cfg.MySQL()
		if err != nil {
			return nil, err
		}
		host, portStr, err := net.SplitHostPort(mc.Addr)
		if err != nil {
			return nil, fmt.Errorf("mysql address %q: %w", mc.Addr, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("mysql port %q: %w", portStr, err)
		}
		return &MySQLDump{
			Binary:   b.Mysqldump,
			Host:     host,
			Port:     port,
			User:     mc.User,
			Password: mc.Passwd,
			Database: mc.DBName,
			Dir:      b.Dir,
			Compress: b.Compress,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", store.ErrUnsupportedDriver, cfg.Database.Driver)
	}
}
