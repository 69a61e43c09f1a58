// Command rhdcoder obfuscates and restores record content in a database
// table with the RHD transform.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/rhdcoder/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || !exitErr.Reported {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
