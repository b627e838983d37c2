// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-abstractor/internal/dedup"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the de-dup cache and configured folders",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cache, err := dedup.Open(cfg.Cache)
	if err != nil {
		return err
	}
	defer cache.Close()
	if err := cache.Load(); err != nil {
		return fmt.Errorf("loading de-dup cache: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processed files: %s\n", humanize.Comma(int64(cache.Len())))
	if last := cache.LastUpdated(); !last.IsZero() {
		fmt.Fprintf(out, "Last updated:    %s (%s)\n", last.Format("2006-01-02 15:04:05"), humanize.Time(last))
	} else {
		fmt.Fprintln(out, "Last updated:    never")
	}
	if cfg.Cache.Enabled {
		fmt.Fprintf(out, "Cache:           %s in %s\n", cfg.Cache.Backend, cfg.Cache.Dir)
	} else {
		fmt.Fprintln(out, "Cache:           disabled")
	}

	fmt.Fprintf(out, "Output folder:   %s\n", valueOr(cfg.Output.Folder, "(not set)"))
	fmt.Fprintf(out, "AI provider:     %s (%s)\n", cfg.AI.Provider, cfg.AI.Model)
	fmt.Fprintln(out, "Watch folders:")
	if len(cfg.Watch.Folders) == 0 {
		fmt.Fprintln(out, "  (none)")
	}
	for _, f := range cfg.Watch.Folders {
		fmt.Fprintf(out, "  %s\n", f)
	}
	return nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
