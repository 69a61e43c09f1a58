package batch

import (
	"time"

	"github.com/roach88/rhdcoder/internal/rhd"
)

// Result is the fate of one processed record.
type Result int

const (
	ResultSucceeded Result = iota
	ResultFailed
	ResultSkipped
)

// FailureCode classifies a per-record failure.
type FailureCode string

const (
	CodeUnsupportedSymbol FailureCode = "UNSUPPORTED_SYMBOL"
	CodeMalformedInput    FailureCode = "MALFORMED_INPUT"
	CodeInnerMismatch     FailureCode = "INNER_MISMATCH" // well-formed, but not under this passphrase
	CodeStoreWrite        FailureCode = "STORE_WRITE"
	CodeStoreRead         FailureCode = "STORE_READ"
	CodeRoundTrip         FailureCode = "ROUND_TRIP_MISMATCH"
	CodeEngine            FailureCode = "ENGINE"
)

// Outcome is what processing a single record produced.
type Outcome struct {
	ID     int64
	Name   string
	Result Result
	Code   FailureCode
	Reason string
}

// Failure identifies a failed record in the summary.
type Failure struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Code   FailureCode `json:"code"`
	Reason string      `json:"reason"`
}

// Status is the overall result of a completed run.
type Status string

const (
	StatusComplete    Status = "complete"
	StatusPartial     Status = "partial"
	StatusInterrupted Status = "interrupted"
)

// Summary aggregates a run. It is built by folding outcomes with Record.
type Summary struct {
	RunID      string     `json:"run_id"`
	Mode       Mode       `json:"mode"`
	Target     Mode       `json:"target,omitempty"`
	Policy     rhd.Policy `json:"policy"`
	DryRun     bool       `json:"dry_run"`
	BackupPath string     `json:"backup_path,omitempty"`

	Attempted int       `json:"attempted"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	Failures  []Failure `json:"failures,omitempty"`

	Interrupted bool      `json:"interrupted,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Record returns the summary with o folded in.
func (s Summary) Record(o Outcome) Summary {
	s.Attempted++
	switch o.Result {
	case ResultSucceeded:
		s.Succeeded++
	case ResultSkipped:
		s.Skipped++
	default:
		s.Failed++
		s.Failures = append(s.Failures, Failure{ID: o.ID, Name: o.Name, Code: o.Code, Reason: o.Reason})
	}
	return s
}

// Status reports whether every attempted record succeeded or was skipped.
func (s Summary) Status() Status {
	switch {
	case s.Interrupted:
		return StatusInterrupted
	case s.Failed > 0:
		return StatusPartial
	default:
		return StatusComplete
	}
}

// Duration is the wall time between start and finish.
func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
