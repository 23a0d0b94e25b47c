// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/workflow-mapper/internal/intake"
	"github.com/pdiddy/workflow-mapper/pkg/types"
)

var filesCmd = &cobra.Command{
	Use:   "files [files...]",
	Short: "Preview which files would be accepted for mapping",
	Long: `Files validates a selection the same way map does and prints the listing:
accepted files with their sizes, a warning for each file over the size limit,
and the ready count. Use --remove to preview dropping files by name.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{"max-file-size": "intake.max_file_size"})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig()
		remove, _ := cmd.Flags().GetStringSlice("remove")

		candidates, err := intake.FromPaths(args)
		if err != nil {
			return err
		}
		ws := intake.NewWorkingSet(cfg.Intake.MaxFileSize)
		ws.Select(candidates)
		for _, name := range remove {
			if err := ws.Remove(name); err != nil {
				return err
			}
		}
		intake.WriteListing(os.Stdout, intake.Render(ws))
		return nil
	},
}

func init() {
	filesCmd.Flags().StringSlice("remove", nil, "file names to drop from the selection")
	filesCmd.Flags().Int64("max-file-size", types.DefaultMaxFileSize, "per-file size limit in bytes")

	rootCmd.AddCommand(filesCmd)
}
