package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// StatusResult is the record count by state.
type StatusResult struct {
	Driver     string `json:"driver"`
	Table      string `json:"table"`
	Plain      int    `json:"plain"`
	Obfuscated int    `json:"obfuscated"`
	Total      int    `json:"total"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Count plain and obfuscated records",
		Long: `Report how many records with content are currently plain and how
many are obfuscated. Records without content are not counted.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}

	return cmd
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	sess, err := openSession(cmd.Context(), opts, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	counts, err := sess.store.Count(cmd.Context())
	if err != nil {
		return report(formatter, ExitCommandError, ErrCodeStore, "failed to count records", err, nil)
	}

	result := StatusResult{
		Driver:     sess.store.Driver(),
		Table:      sess.store.Table().Name,
		Plain:      counts.Plain,
		Obfuscated: counts.Obfuscated,
		Total:      counts.Plain + counts.Obfuscated,
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s table %s\n", result.Driver, result.Table)
	row(w, "Plain", result.Plain)
	row(w, "Obfuscated", result.Obfuscated)
	row(w, "Total", result.Total)
	if result.Total == 0 {
		fmt.Fprintln(w, "No records with content.")
	}
	return nil
}
