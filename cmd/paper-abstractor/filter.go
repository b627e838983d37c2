// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-abstractor/internal/filter"
	"github.com/pdiddy/paper-abstractor/internal/pdftext"
	"github.com/pdiddy/paper-abstractor/pkg/types"
)

var filterCmd = &cobra.Command{
	Use:   "filter [files...]",
	Short: "Score PDFs with the admission filter",
	Long: `Filter evaluates each file with the admission filter and prints the
decision, score, per-stage scores, and reasons. No AI key is needed.
With --rules it prints the effective scoring rules as YAML instead.`,
	RunE: runFilter,
}

func init() {
	filterCmd.Flags().Bool("academic-only", false, "reject files below the academic threshold")
	filterCmd.Flags().Bool("rules", false, "print the effective scoring rules and exit")

	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("academic-only") {
		cfg.Filter.AcademicOnly, _ = cmd.Flags().GetBool("academic-only")
	}
	cfg.Filter.Enabled = true

	extractor := pdftext.New(cfg.PDF)
	f, err := filter.New(cfg.Filter, extractor)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if rules, _ := cmd.Flags().GetBool("rules"); rules {
		positive, negative := f.Rules()
		enc := yaml.NewEncoder(out)
		if err := enc.Encode(map[string][]types.ScoringRule{
			"positive": positive,
			"negative": negative,
		}); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(args) == 0 {
		return fmt.Errorf("provide one or more PDF files")
	}
	if err := extractor.Available(); err != nil {
		return err
	}

	for _, path := range args {
		res := f.Evaluate(cmd.Context(), path)
		decision := "ACCEPT"
		if !res.Accepted {
			decision = "REJECT"
		}
		size := ""
		if info, err := os.Stat(path); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		fmt.Fprintf(out, "%s  %6.1f  %s  %s\n", decision, res.Score, path, size)

		stages := make([]string, 0, len(res.StageScores))
		for s := range res.StageScores {
			stages = append(stages, string(s))
		}
		sort.Strings(stages)
		for _, s := range stages {
			fmt.Fprintf(out, "    %-9s %6.1f\n", s, res.StageScores[types.Stage(s)])
		}
		for _, r := range res.Reasons {
			fmt.Fprintf(out, "    - %s\n", r)
		}
	}
	return nil
}
