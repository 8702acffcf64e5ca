// Package cli implements the remind CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var projectRoot string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "remind",
	Short: "Cognitive session scoring dashboard",
	Long:  "ReMind ingests cognitive-test session results, scores them against a baseline, and serves a running history and dashboard.",
}

func init() {
	RootCmd.PersistentFlags().StringVar(&projectRoot, "root", ".", "Project root (config/ and logs/ live here)")
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
