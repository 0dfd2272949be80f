package main

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/cobra"

	"quill/internal/config"
	"quill/internal/settings"
)

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a user preference for this workspace",
	Long: `Set stores a dotted-path key in the workspace settings file, e.g.

  quill set diagnostics.debounce-ms 100`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspace, err := cmd.Flags().GetString("workspace")
		if err != nil {
			return err
		}
		root, err := filepath.Abs(workspace)
		if err != nil {
			return err
		}

		folder, err := config.ProjectConfigFolder(root)
		if err != nil {
			return err
		}

		// Numbers, booleans and JSON structures pass through typed; anything
		// else is stored as a string.
		var value interface{}
		if err := json.Unmarshal([]byte(args[1]), &value); err != nil {
			value = args[1]
		}

		return settings.Set(filepath.Join(folder, settings.FileName), args[0], value)
	},
}
