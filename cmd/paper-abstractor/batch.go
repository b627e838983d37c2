// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-abstractor/internal/config"
)

var batchCmd = &cobra.Command{
	Use:   "batch <folder>",
	Short: "Process every PDF in one folder and exit",
	Long: `Batch processes all unprocessed PDFs in a single folder and exits
when done, or fails when advanced.drain_timeout elapses first.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringP("output", "o", "", "output folder (overrides output.folder)")
	batchCmd.Flags().BoolP("recursive", "r", false, "include subfolders")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide exactly one folder")
	}
	if err := resolveFolders(args); err != nil {
		return err
	}
	if cmd.Flags().Changed("recursive") {
		cfg.Watch.Recursive, _ = cmd.Flags().GetBool("recursive")
	} else {
		cfg.Watch.Recursive = false
	}
	applyOutputFlag(cmd)
	if err := config.Validate(cfg, config.NeedAI|config.NeedFolders|config.NeedOutput); err != nil {
		return err
	}

	m, cleanup, err := newMonitor()
	if err != nil {
		return err
	}
	defer cleanup()

	return runMonitor(cmd, m, false)
}
