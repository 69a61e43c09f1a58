package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/rhdcoder/internal/batch"
)

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "test",
		Aliases: []string{"self-test"},
		Short:   "Round-trip a fixed set of texts and one record of each state",
		Long: `Check that the configured passphrase and policy reproduce content
exactly. The first plain record is encoded and decoded, the first obfuscated
record is decoded and encoded, and a built-in set of sample texts is
round-tripped. Nothing is written and no backup is taken.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed
  2 - Command error (configuration, database)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.SkipBackup = true
			return runBatch(opts, batch.ModeSelfTest, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Policy, "policy", "", "out-of-alphabet policy: strict|replace|ignore (default from config)")

	return cmd
}
