// Command linenctl runs maintenance tasks against the linen admin database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "linenctl",
	Short: "Maintenance tasks for the linen admin service",
	Long: `linenctl reads the same environment as the API server.

Available commands:
  migrate          - apply the database schema
  seed-categories  - create the standard linen categories
  export-report    - write a monthly invoice report to a file`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(migrateCmd, seedCmd, exportCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
