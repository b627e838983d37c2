// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-abstractor/internal/config"
)

var watchCmd = &cobra.Command{
	Use:   "watch [folders...]",
	Short: "Process PDFs in watch folders",
	Long: `Watch scans the watch folders (arguments, or watch.folders from the
config), processes every PDF that has not produced a note yet, and exits
once the queue is empty. With --daemon it keeps watching for new files
until interrupted, rescanning on watch.rescan_schedule when set.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringP("output", "o", "", "output folder (overrides output.folder)")
	watchCmd.Flags().Bool("daemon", false, "keep watching until interrupted")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		if err := resolveFolders(args); err != nil {
			return err
		}
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

	daemon, _ := cmd.Flags().GetBool("daemon")
	return runMonitor(cmd, m, daemon)
}
