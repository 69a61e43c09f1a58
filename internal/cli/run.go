package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/rhdcoder/internal/batch"
	"github.com/roach88/rhdcoder/internal/rhd"
)

// BatchOptions holds flags shared by the commands that drive a batch run.
type BatchOptions struct {
	*RootOptions
	DryRun     bool
	SkipBackup bool
	Validate   bool
	Policy     string

	// NewRunID overrides the run ID generator (for testing).
	NewRunID func() string
}

func addBatchFlags(cmd *cobra.Command, opts *BatchOptions) {
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "transform without writing to the database")
	cmd.Flags().BoolVar(&opts.SkipBackup, "skip-backup", false, "do not back up the database first")
	cmd.Flags().BoolVar(&opts.Validate, "validate", false, "round-trip the selected records without writing")
	cmd.Flags().StringVar(&opts.Policy, "policy", "", "out-of-alphabet policy: strict|replace|ignore (default from config)")
}

// runBatch executes one run of mode against the configured store and
// renders its summary.
func runBatch(opts *BatchOptions, mode batch.Mode, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	ctx, stop := signalContext(cmd)
	defer stop()

	sess, err := openSession(ctx, opts.RootOptions, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	policy := opts.Policy
	if policy == "" {
		policy = sess.cfg.Coder.Policy
	}
	runOpts := batch.Options{
		Passphrase: sess.cfg.Coder.Passphrase,
		Policy:     rhd.Policy(policy),
		DryRun:     opts.DryRun,
		Backup:     !opts.SkipBackup,
	}
	if opts.Validate {
		runOpts.Target = mode
		mode = batch.ModeValidate
	}
	if mode == batch.ModeValidate || mode == batch.ModeSelfTest {
		runOpts.Backup = false
	}

	if p, err := rhd.ParsePolicy(policy); err == nil && p.Lossy() && opts.Format != "json" {
		fmt.Fprintf(formatter.GetErrWriter(), "Warning: policy %q alters symbols outside ISO-8859-1; affected records cannot be restored exactly.\n", p)
	}

	runner := batch.New(sess.store, nil, sess.log.Logger)
	runner.NewRunID = opts.NewRunID
	if runOpts.Backup {
		bk, err := sess.backupCreator()
		if err != nil {
			return report(formatter, ExitCommandError, ErrCodeConfig, "failed to configure backup", err, nil)
		}
		runner.Backup = bk
	}

	summary, err := runner.Run(ctx, mode, runOpts)
	if summary == nil {
		return reportRunError(formatter, err)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return report(formatter, ExitCommandError, ErrCodeGeneric, "run failed", err, nil)
	}
	if p := sess.log.Path(); p != "" {
		formatter.VerboseLog("Log written to %s", p)
	}
	return outputSummary(formatter, summary)
}

// reportRunError maps a run-fatal error to its exit code.
func reportRunError(f *OutputFormatter, err error) error {
	switch {
	case errors.Is(err, batch.ErrConfiguration):
		return report(f, ExitCommandError, ErrCodeConfig, "invalid run configuration", err, nil)
	case errors.Is(err, batch.ErrBackup):
		return report(f, ExitCommandError, ErrCodeBackup, "backup failed, no records were changed", err, nil)
	case errors.Is(err, context.Canceled):
		return report(f, ExitInterrupted, ErrCodeInterrupted, "interrupted before processing", err, nil)
	default:
		return report(f, ExitCommandError, ErrCodeStore, "failed to read records", err, nil)
	}
}

// outputSummary renders s and returns the ExitError its status calls for.
func outputSummary(f *OutputFormatter, s *batch.Summary) error {
	var exitErr *ExitError
	switch s.Status() {
	case batch.StatusInterrupted:
		exitErr = NewExitError(ExitInterrupted, "run interrupted")
	case batch.StatusPartial:
		exitErr = NewExitError(ExitFailure, fmt.Sprintf("%d of %d records failed", s.Failed, s.Attempted))
	}

	if f.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: s, RunID: s.RunID}
		if exitErr != nil {
			code := ErrCodeRecords
			if exitErr.Code == ExitInterrupted {
				code = ErrCodeInterrupted
			}
			resp.Status = "error"
			resp.Error = &CLIError{Code: code, Message: exitErr.Message}
		}
		if err := f.JSON(resp); err != nil {
			return err
		}
	} else {
		writeSummary(f.Writer, s)
	}

	if exitErr == nil {
		return nil
	}
	exitErr.Reported = true
	return exitErr
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, func()) {
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigChan:
			fmt.Fprintf(cmd.ErrOrStderr(), "\nReceived %s, stopping after the current record\n", sig)
			cancel()
		case <-done:
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan) // Prevent signal handler leak
		close(done)
		cancel()
	}
}
