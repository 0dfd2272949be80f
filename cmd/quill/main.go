package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Pull-diagnostics engine for LSP language servers",
	Long: `Quill connects to configured language servers, pulls diagnostics for
open documents, and keeps the results reconciled as files change.`,
}

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace root directory")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
