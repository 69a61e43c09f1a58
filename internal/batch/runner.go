package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/rhdcoder/internal/backup"
	"github.com/roach88/rhdcoder/internal/rhd"
	"github.com/roach88/rhdcoder/internal/store"
)

// Mode selects what a run does.
type Mode string

const (
	// ModeForward obfuscates plain records.
	ModeForward Mode = "forward"
	// ModeBackward restores obfuscated records.
	ModeBackward Mode = "backward"
	// ModeSelfTest runs the fixed round-trip fixture.
	ModeSelfTest Mode = "self_test"
	// ModeValidate round-trips the target mode's records without writing.
	ModeValidate Mode = "validate"
)

// RecordStore is the part of the store a run needs.
type RecordStore interface {
	Fetch(ctx context.Context, obfuscated bool) ([]store.Record, error)
	FetchOne(ctx context.Context, obfuscated bool) (store.Record, bool, error)
	Update(ctx context.Context, id int64, content string, obfuscated bool) error
}

// Options parameterize a single run.
type Options struct {
	Passphrase string
	Policy     rhd.Policy

	// DryRun transforms without writing. Forced off for validate.
	DryRun bool

	// Backup takes a snapshot before any forward or backward write.
	Backup bool

	// Target is the mode a validate run mirrors: ModeForward or ModeBackward.
	Target Mode
}

// Runner drives runs against one store.
type Runner struct {
	Store  RecordStore
	Backup backup.Creator
	Logger *slog.Logger

	// NewRunID defaults to UUIDv7 strings.
	NewRunID func() string

	// Now defaults to time.Now.
	Now func() time.Time
}

// New creates a Runner. bk may be nil when no run will request a backup.
func New(st RecordStore, bk backup.Creator, logger *slog.Logger) *Runner {
	return &Runner{Store: st, Backup: bk, Logger: logger}
}

// direction is one way through the codec together with the records it reads.
type direction struct {
	verb      string
	reads     bool // state flag of records it applies to
	writes    bool // state flag after applying
	transform func(string) (string, error)
	inverse   func(string) (string, error)
}

func directionFor(mode Mode, codec *rhd.Codec) direction {
	if mode == ModeBackward {
		return direction{verb: "decrypt", reads: true, writes: false, transform: codec.Decode, inverse: codec.Encode}
	}
	return direction{verb: "encrypt", reads: false, writes: true, transform: codec.Encode, inverse: codec.Decode}
}

// Run executes mode and returns the summary. Only configuration, backup and
// fetch failures are returned as errors with a nil summary; per-record
// failures live in the summary. A cancelled context yields the partial
// summary together with ctx.Err().
func (r *Runner) Run(ctx context.Context, mode Mode, opts Options) (*Summary, error) {
	// INIT
	codec, opts, err := r.init(mode, opts)
	if err != nil {
		return nil, err
	}

	summary := Summary{
		RunID:     r.runID(),
		Mode:      mode,
		Target:    opts.Target,
		Policy:    codec.Policy(),
		DryRun:    opts.DryRun,
		StartedAt: r.now(),
	}
	log := r.logger().With("run_id", summary.RunID, "mode", string(mode))
	if codec.Policy().Lossy() {
		log.Warn("lossy policy: symbols outside ISO-8859-1 will be altered and cannot be restored", "policy", codec.Policy())
	}

	if mode == ModeSelfTest {
		summary = r.selfTest(ctx, log, codec, summary)
		return r.finish(ctx, log, summary)
	}

	target := mode
	if mode == ModeValidate {
		target = opts.Target
	}
	dir := directionFor(target, codec)

	// BACKUP
	if opts.Backup {
		log.Info("creating backup")
		path, err := r.Backup.CreateBackup(ctx)
		if err != nil {
			log.Error("backup failed", "error", err)
			return nil, &BackupError{Err: err}
		}
		summary.BackupPath = path
		log.Info("backup created", "path", path)
	} else if mode != ModeValidate {
		log.Info("skipping backup")
	}

	// FETCH
	records, err := r.Store.Fetch(ctx, dir.reads)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	log.Info("records selected", "count", len(records), "obfuscated", dir.reads)

	// PROCESS
	step := r.transformStep(log, dir, opts.DryRun)
	if mode == ModeValidate {
		step = r.validateStep(log, dir, codec.Policy())
	}
	for i, rec := range records {
		if ctx.Err() != nil {
			log.Warn("interrupted", "processed", i, "remaining", len(records)-i)
			summary.Interrupted = true
			break
		}
		log.Debug("processing record", "n", i+1, "total", len(records), "id", rec.ID, "name", rec.Name)
		summary = summary.Record(step(ctx, rec))
	}

	// SUMMARIZE
	return r.finish(ctx, log, summary)
}

func (r *Runner) init(mode Mode, opts Options) (*rhd.Codec, Options, error) {
	if r.Store == nil {
		return nil, opts, &ConfigurationError{Reason: "record store handle missing"}
	}
	if opts.Passphrase == "" {
		return nil, opts, &ConfigurationError{Reason: "passphrase missing"}
	}
	codec, err := rhd.NewCodec(opts.Passphrase, opts.Policy)
	if err != nil {
		return nil, opts, &ConfigurationError{Reason: "invalid codec settings", Err: err}
	}

	switch mode {
	case ModeForward, ModeBackward:
		opts.Target = ""
		if opts.Backup && r.Backup == nil {
			return nil, opts, &ConfigurationError{Reason: "backup requested but no backup collaborator configured"}
		}
	case ModeValidate:
		if opts.Target != ModeForward && opts.Target != ModeBackward {
			return nil, opts, &ConfigurationError{Reason: fmt.Sprintf("validate needs a forward or backward target, got %q", opts.Target)}
		}
		opts.DryRun = false
		opts.Backup = false
	case ModeSelfTest:
		opts.Target = ""
		opts.DryRun = false
		opts.Backup = false
	default:
		return nil, opts, &ConfigurationError{Reason: fmt.Sprintf("unknown mode %q", mode)}
	}
	return codec, opts, nil
}

type step func(ctx context.Context, rec store.Record) Outcome

// transformStep applies dir to a record and, unless dryRun, writes the
// result with the flipped state flag.
func (r *Runner) transformStep(log *slog.Logger, dir direction, dryRun bool) step {
	return func(ctx context.Context, rec store.Record) Outcome {
		out := Outcome{ID: rec.ID, Name: rec.Name}
		if rec.Content == "" {
			log.Info("skipping empty record", "id", rec.ID, "name", rec.Name)
			out.Result = ResultSkipped
			return out
		}

		transformed, err := dir.transform(rec.Content)
		if err != nil {
			code := classify(err)
			log.Error("failed to "+dir.verb+" record", "id", rec.ID, "name", rec.Name, "code", code, "error", err)
			return failed(out, code, err.Error())
		}

		if dryRun {
			log.Info("would "+dir.verb+" record", "id", rec.ID, "name", rec.Name, "dry_run", true)
			out.Result = ResultSucceeded
			return out
		}

		if err := r.Store.Update(ctx, rec.ID, transformed, dir.writes); err != nil {
			log.Error("failed to update record", "id", rec.ID, "name", rec.Name, "code", CodeStoreWrite, "error", err)
			return failed(out, CodeStoreWrite, err.Error())
		}
		log.Info(dir.verb+"ed record", "id", rec.ID, "name", rec.Name,
			"bytes_in", len(rec.Content), "bytes_out", len(transformed))
		out.Result = ResultSucceeded
		return out
	}
}

// validateStep round-trips a record through dir and its inverse and compares
// the result with the stored content. It never writes.
func (r *Runner) validateStep(log *slog.Logger, dir direction, policy rhd.Policy) step {
	return func(_ context.Context, rec store.Record) Outcome {
		out := Outcome{ID: rec.ID, Name: rec.Name}
		if rec.Content == "" {
			out.Result = ResultSkipped
			return out
		}

		if err := roundTrip(rec.Content, dir.transform, dir.inverse); err != nil {
			if errors.Is(err, errMismatch) && policy.Lossy() && !dir.reads {
				log.Warn("validation failed: content altered by policy", "id", rec.ID, "name", rec.Name, "policy", policy)
			} else {
				log.Error("validation failed", "id", rec.ID, "name", rec.Name, "code", classify(err), "error", err)
			}
			return failed(out, classify(err), err.Error())
		}
		log.Info("validated record", "id", rec.ID, "name", rec.Name)
		out.Result = ResultSucceeded
		return out
	}
}

var errMismatch = errors.New("round trip does not reproduce the original content")

// roundTrip applies there then back and checks the original comes back.
func roundTrip(content string, there, back func(string) (string, error)) error {
	mid, err := there(content)
	if err != nil {
		return err
	}
	got, err := back(mid)
	if err != nil {
		return err
	}
	if got != content {
		return fmt.Errorf("%w (%d bytes in, %d bytes out)", errMismatch, len(content), len(got))
	}
	return nil
}

func failed(o Outcome, code FailureCode, reason string) Outcome {
	o.Result = ResultFailed
	o.Code = code
	o.Reason = reason
	return o
}

func classify(err error) FailureCode {
	switch {
	case errors.Is(err, rhd.ErrUnsupportedSymbol):
		return CodeUnsupportedSymbol
	case errors.Is(err, rhd.ErrMalformedInput):
		return CodeMalformedInput
	case errors.Is(err, rhd.ErrInnerMismatch):
		return CodeInnerMismatch
	case errors.Is(err, errMismatch):
		return CodeRoundTrip
	default:
		return CodeEngine
	}
}

func (r *Runner) finish(ctx context.Context, log *slog.Logger, summary Summary) (*Summary, error) {
	summary.FinishedAt = r.now()
	log.Info("run finished",
		"status", summary.Status(),
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	if summary.Interrupted {
		return &summary, ctx.Err()
	}
	return &summary, nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Runner) runID() string {
	if r.NewRunID != nil {
		return r.NewRunID()
	}
	return uuid.Must(uuid.NewV7()).String()
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
