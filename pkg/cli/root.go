// Package cli implements the interceptd command line, used to validate and
// exercise declarative handler files outside a test run.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is injected during build
	Version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "interceptd",
	Short: "interceptd inspects handler files for the HTTP interception harness",
	Long: `interceptd works with declarative handler files (YAML or JSON) used to seed
the base layer of the interception harness. It can validate handler files and
render the response a given request would receive, without running any tests.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
