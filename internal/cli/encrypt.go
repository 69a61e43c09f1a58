package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/rhdcoder/internal/batch"
)

// NewEncryptCommand creates the encrypt command.
func NewEncryptCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "encrypt",
		Aliases: []string{"forward", "encode"},
		Short:   "Obfuscate every plain record",
		Long: `Apply the RHD transform to every record whose state flag says plain,
write the result back and mark the record obfuscated.

The database is backed up first unless --skip-backup is given. With
--validate nothing is written: each record is encoded and decoded again and
the result compared to the original.

Examples:
  rhdcoder encrypt --dry-run
  rhdcoder encrypt --validate --policy replace
  rhdcoder -c prod.cue encrypt --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, batch.ModeForward, cmd)
		},
	}
	addBatchFlags(cmd, opts)

	return cmd
}

// NewDecryptCommand creates the decrypt command.
func NewDecryptCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "decrypt",
		Aliases: []string{"backward", "decode"},
		Short:   "Restore every obfuscated record",
		Long: `Reverse the RHD transform on every record whose state flag says
obfuscated, write the plain text back and mark the record plain.

The database is backed up first unless --skip-backup is given. With
--validate nothing is written: each record is decoded and encoded again and
the result compared to the stored content.

Examples:
  rhdcoder decrypt --dry-run
  rhdcoder decrypt --skip-backup`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, batch.ModeBackward, cmd)
		},
	}
	addBatchFlags(cmd, opts)

	return cmd
}
