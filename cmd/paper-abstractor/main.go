// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-abstractor CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-abstractor/internal/config"
	"github.com/pdiddy/paper-abstractor/internal/logger"
	"github.com/pdiddy/paper-abstractor/internal/secrets"
	"github.com/pdiddy/paper-abstractor/internal/vault"
	"github.com/pdiddy/paper-abstractor/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the resolved configuration, loaded before every command.
	cfg types.Config

	// resolver resolves vault:// and placeholder paths against cfg.Output.VaultPath.
	resolver *vault.Resolver
)

// rootCmd is the base command for the paper-abstractor CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-abstractor",
	Short: "Turn academic PDFs into structured abstract notes",
	Long: `paper-abstractor watches folders for academic PDFs, filters out
non-papers (invoices, receipts, scans), extracts the text, asks an AI model
for a structured abstract, and writes one Markdown note per paper into a
note vault. Files that already produced a note are never processed again.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./config/config.yaml, ./config.yaml or ~/.config/paper-abstractor/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of API key files")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file read before configuration")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

// setup loads secrets and configuration, then configures logging.
func setup(cmd *cobra.Command, args []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := secrets.LoadDotenv(envFile); err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("secrets-dir")
	s, err := secrets.Load(dir)
	if err != nil {
		return err
	}
	if set := secrets.Export(s); len(set) > 0 {
		logger.Debug("loaded secrets: %v", set)
	}

	path, _ := cmd.Flags().GetString("config")
	cfg, err = config.Load(path)
	if err != nil {
		return err
	}

	if err := logger.SetLevel(cfg.Advanced.LogLevel); err != nil {
		return err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetVerbose(true)
	}

	resolver, err = config.ResolvePaths(&cfg)
	if err != nil {
		return err
	}
	if cfg.Advanced.LogFile != "" {
		if err := logger.SetFile(cfg.Advanced.LogFile); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
