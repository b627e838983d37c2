// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-abstractor/internal/config"
	"github.com/pdiddy/paper-abstractor/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process <file>...",
	Short: "Process individual PDF files",
	Long: `Process runs each file through the filter, extraction, AI abstract,
and note writing. With --force the de-dup cache and filter rejections are
ignored.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringP("output", "o", "", "output folder (overrides output.folder)")
	processCmd.Flags().Bool("force", false, "process even if already processed or rejected by the filter")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more PDF files")
	}
	applyOutputFlag(cmd)
	if err := config.Validate(cfg, config.NeedAI|config.NeedOutput); err != nil {
		return err
	}

	m, cleanup, err := newMonitor()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	force, _ := cmd.Flags().GetBool("force")
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		res := m.ProcessOne(ctx, path, force)
		switch res.Status {
		case types.StatusWritten:
			fmt.Fprintf(out, "written: %s\n", res.NotePath)
		case types.StatusRejected:
			fmt.Fprintf(out, "rejected: %s (score %.1f)\n", res.Path, res.Filter.Score)
		case types.StatusSkipped:
			fmt.Fprintf(out, "skipped: %s (already processed)\n", res.Path)
		default:
			failed++
			fmt.Fprintf(out, "failed: %s: %v\n", res.Path, res.Err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}
