// Package cli wires the csvgrid commands together.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cfgFile is the optional YAML config path, set with --config. Environment
// variables still win over the file.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "csvgrid",
	Short: "Parse delimited text files and explore them in a filterable grid",
	Long: `csvgrid parses CSV-like files (quoted fields, embedded newlines,
any single-rune delimiter) and serves them as an interactive table with
per-column filtering, sorting, pagination and CSV export.

Run "csvgrid serve" to start the web UI, or "csvgrid parse" to inspect a
file from the terminal.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file (optional)")
}
