package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rhdcoder/internal/backup"
	"github.com/roach88/rhdcoder/internal/config"
	"github.com/roach88/rhdcoder/internal/logging"
	"github.com/roach88/rhdcoder/internal/store"
)

// session is everything a command that touches the database needs.
type session struct {
	cfg   *config.Config
	log   *logging.Logger
	store *store.Store
}

// loadConfig reads the configuration named by --config and reports
// failures through f.
func loadConfig(opts *RootOptions, f *OutputFormatter) (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		var details interface{}
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			details = verr.Problems
		}
		return nil, report(f, ExitCommandError, ErrCodeConfig, "failed to load configuration", err, details)
	}
	f.VerboseLog("Loaded configuration from %s", opts.Config)
	return cfg, nil
}

// openSession loads the configuration, sets up logging and opens the store.
// SQLite databases get the record table created if it is missing.
func openSession(ctx context.Context, opts *RootOptions, cmd *cobra.Command, f *OutputFormatter) (*session, error) {
	cfg, err := loadConfig(opts, f)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Console: cmd.ErrOrStderr(),
		Level:   cfg.Log.Level,
		Verbose: opts.Verbose,
		Dir:     cfg.Log.Dir,
	})
	if err != nil {
		return nil, report(f, ExitCommandError, ErrCodeConfig, "failed to set up logging", err, nil)
	}

	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.Database.Driver, "error", err)
		logger.Close()
		return nil, report(f, ExitCommandError, ErrCodeStore, "failed to open database", err, nil)
	}
	if st.Driver() == store.DriverSQLite {
		if err := st.EnsureSchema(ctx); err != nil {
			st.Close()
			logger.Close()
			return nil, report(f, ExitCommandError, ErrCodeStore, "failed to prepare database", err, nil)
		}
	}
	logger.Debug("store opened", "driver", st.Driver(), "table", st.Table().Name)

	return &session{cfg: cfg, log: logger, store: st}, nil
}

// backupCreator returns the backup strategy for the configured driver.
func (s *session) backupCreator() (backup.Creator, error) {
	return backup.New(s.cfg, s.store.DB())
}

func (s *session) Close() error {
	err := s.store.Close()
	if cerr := s.log.Close(); err == nil {
		err = cerr
	}
	return err
}

// report writes an error through f and returns the matching ExitError.
func report(f *OutputFormatter, exitCode int, code, message string, err error, details interface{}) error {
	text := message
	if err != nil {
		text = fmt.Sprintf("%s: %v", message, err)
	}
	_ = f.Error(code, text, details)
	exitErr := WrapExitError(exitCode, message, err)
	exitErr.Reported = true
	return exitErr
}
