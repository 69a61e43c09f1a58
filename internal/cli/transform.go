package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rhdcoder/internal/config"
	"github.com/roach88/rhdcoder/internal/rhd"
)

// TransformOptions holds flags for the transform command.
type TransformOptions struct {
	*RootOptions
	Policy string
}

// TransformResult is the output of a one-off transform.
type TransformResult struct {
	Direction string     `json:"direction"`
	Policy    rhd.Policy `json:"policy"`
	Output    string     `json:"output"`
}

// NewTransformCommand creates the transform command.
func NewTransformCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TransformOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "transform <encode|decode> <text>",
		Short: "Encode or decode a single text",
		Long: `Run the RHD transform on one text with the configured passphrase,
without touching the database. Pass "-" as text to read it from stdin; a
single trailing newline is dropped.

If the configuration file named by --config does not exist and --config was
not given explicitly, the passphrase is taken from RHDCODER_PASSPHRASE.

Examples:
  rhdcoder transform encode "Zugang: Tresor 3"
  echo vgC+w=QQ | rhdcoder transform decode -`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Policy, "policy", "", "out-of-alphabet policy: strict|replace|ignore (default from config)")

	return cmd
}

func runTransform(opts *TransformOptions, direction, text string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if direction != "encode" && direction != "decode" {
		return report(formatter, ExitCommandError, ErrCodeGeneric, fmt.Sprintf("unknown direction %q: must be encode or decode", direction), nil, nil)
	}

	cfg, err := transformConfig(opts, cmd, formatter)
	if err != nil {
		return err
	}

	if text == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return report(formatter, ExitCommandError, ErrCodeGeneric, "failed to read stdin", err, nil)
		}
		text = strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r")
	}

	policy := opts.Policy
	if policy == "" {
		policy = cfg.Coder.Policy
	}
	codec, err := rhd.NewCodec(cfg.Coder.Passphrase, rhd.Policy(policy))
	if err != nil {
		return report(formatter, ExitCommandError, ErrCodeConfig, "invalid codec settings", err, nil)
	}

	apply := codec.Encode
	if direction == "decode" {
		apply = codec.Decode
	}
	out, err := apply(text)
	if err != nil {
		return report(formatter, ExitFailure, ErrCodeTransform, direction+" failed", err, nil)
	}

	if opts.Format == "json" {
		return formatter.Success(TransformResult{Direction: direction, Policy: codec.Policy(), Output: out})
	}
	return formatter.Success(out)
}

// transformConfig loads the configuration, falling back to the environment
// when the default file is absent.
func transformConfig(opts *TransformOptions, cmd *cobra.Command, f *OutputFormatter) (*config.Config, error) {
	if !cmd.Flags().Changed("config") {
		cfg, err := config.Load(opts.Config)
		if errors.Is(err, config.ErrConfigNotFound) {
			f.VerboseLog("No configuration at %s, using environment", opts.Config)
			return config.FromEnv(), nil
		}
		if err == nil {
			return cfg, nil
		}
	}
	return loadConfig(opts.RootOptions, f)
}
