package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/roach88/rhdcoder/internal/batch"
)

const (
	heavyRule = "============================================================"
	lightRule = "------------------------------------------------------------"
)

// writeSummary renders a run summary as the human-readable SUMMARY block.
func writeSummary(w io.Writer, s *batch.Summary) {
	mode := string(s.Mode)
	if s.Mode == batch.ModeValidate {
		mode = fmt.Sprintf("%s (%s)", s.Mode, s.Target)
	}
	backupPath := s.BackupPath
	if backupPath == "" {
		backupPath = "none"
	}

	fmt.Fprintln(w, heavyRule)
	fmt.Fprintln(w, "SUMMARY")
	fmt.Fprintln(w, heavyRule)
	row(w, "Run ID", s.RunID)
	row(w, "Mode", mode)
	row(w, "Policy", string(s.Policy))
	row(w, "Dry run", yesNo(s.DryRun))
	row(w, "Backup", backupPath)
	fmt.Fprintln(w, lightRule)
	row(w, "Attempted", s.Attempted)
	row(w, successLabel(s), s.Succeeded)
	row(w, "Failed", s.Failed)
	row(w, "Skipped", s.Skipped)
	row(w, "Status", strings.ToUpper(string(s.Status())))
	row(w, "Duration", s.Duration().Round(time.Millisecond))
	if len(s.Failures) > 0 {
		fmt.Fprintln(w, lightRule)
		fmt.Fprintln(w, "Failures:")
		for _, f := range s.Failures {
			fmt.Fprintf(w, "  #%d %q [%s] %s\n", f.ID, f.Name, f.Code, f.Reason)
		}
	}
	fmt.Fprintln(w, heavyRule)
}

func successLabel(s *batch.Summary) string {
	switch s.Mode {
	case batch.ModeForward:
		return "Encrypted"
	case batch.ModeBackward:
		return "Decrypted"
	case batch.ModeValidate:
		return "Validated"
	default:
		return "Passed"
	}
}

func row(w io.Writer, label string, value interface{}) {
	fmt.Fprintf(w, "%-12s %v\n", label+":", value)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
