// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-abstractor/pkg/types"
)

// isolate clears the API key variables and points HOME at an empty
// directory so a developer's own config never leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{GoogleKeyEnv, AnthropicKeyEnv, "PAPER_ABSTRACTOR_AI_API_KEY", "PAPER_ABSTRACTOR_ADVANCED_WORKERS"} {
		t.Setenv(k, "")
	}
	return home
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_TopLevelScoringRules(t *testing.T) {
	isolate(t)
	p := writeConfig(t, `
scoring_rules:
  positive:
    doi_pattern: 15
    arxiv_id: 20
  negative:
    receipt_scan:
      pattern: scan_
      score: -40
pdf_filter:
  scoring_rules:
    positive:
      doi_pattern: 30
`)

	cfg, err := Load(p)
	require.NoError(t, err)

	rules := cfg.Filter.ScoringRules
	assert.Equal(t, types.RuleOverride{WeightOnly: true, Weight: 30}, rules.Positive["doi_pattern"], "pdf_filter entry wins")
	assert.Equal(t, types.RuleOverride{WeightOnly: true, Weight: 20}, rules.Positive["arxiv_id"])
	assert.Equal(t, types.RuleOverride{Pattern: "scan_", Weight: -40}, rules.Negative["receipt_scan"])
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	p := writeConfig(t, `
ai:
  provider: anthropic
  api_key: sk-test
watch:
  folders: [/data/inbox, /data/papers]
  settle_delay: 500ms
  rescan_schedule: "@every 10m"
output:
  folder: vault://papers/{{year}}
pdf_filter:
  academic_only: true
  scoring_rules:
    positive:
      doi_pattern: 15
    negative:
      receipt_scan:
        pattern: scan_
        score: -40
        description: Scanner output
advanced:
  workers: 4
`)

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, types.ProviderAnthropic, cfg.AI.Provider)
	assert.Equal(t, DefaultClaudeModel, cfg.AI.Model)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, []string{"/data/inbox", "/data/papers"}, cfg.Watch.Folders)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.SettleDelay)
	assert.Equal(t, "@every 10m", cfg.Watch.RescanSchedule)
	assert.Equal(t, "vault://papers/{{year}}", cfg.Output.Folder)
	assert.True(t, cfg.Filter.AcademicOnly)
	assert.Equal(t, 4, cfg.Advanced.Workers)

	assert.Equal(t, types.RuleOverride{WeightOnly: true, Weight: 15}, cfg.Filter.ScoringRules.Positive["doi_pattern"])
	assert.Equal(t, types.RuleOverride{Pattern: "scan_", Weight: -40, Description: "Scanner output"}, cfg.Filter.ScoringRules.Negative["receipt_scan"])

	def := types.DefaultConfig()
	assert.Equal(t, def.Filter.AcademicThreshold, cfg.Filter.AcademicThreshold, "unset keys keep defaults")
	assert.Equal(t, def.Watch.Patterns, cfg.Watch.Patterns)
	assert.Equal(t, def.Advanced.DrainTimeout, cfg.Advanced.DrainTimeout)
	assert.Equal(t, def.RateLimit, cfg.RateLimit)
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	p := writeConfig(t, "advanced:\n  workers: 3\n")
	t.Setenv("PAPER_ABSTRACTOR_ADVANCED_WORKERS", "6")
	t.Setenv("PAPER_ABSTRACTOR_ABSTRACTOR_LANGUAGE", "ja")
	t.Setenv(GoogleKeyEnv, "google-key")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Advanced.Workers, "environment overrides the file")
	assert.Equal(t, "ja", cfg.Abstractor.Language)
	assert.Equal(t, "google-key", cfg.AI.APIKey)
	assert.Equal(t, types.DefaultConfig().AI.Model, cfg.AI.Model)
}

func TestLoad_PrefixedKeyWins(t *testing.T) {
	isolate(t)
	p := writeConfig(t, "ai:\n  provider: anthropic\n")
	t.Setenv("PAPER_ABSTRACTOR_AI_API_KEY", "explicit")
	t.Setenv(AnthropicKeyEnv, "fallback")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.AI.APIKey)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_SearchPaths(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig().Advanced.Workers, cfg.Advanced.Workers, "defaults without any file")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.yaml"), []byte("advanced:\n  workers: 9\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("advanced:\n  workers: 5\n"), 0o644))

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Advanced.Workers, "./config/config.yaml is searched first")
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolate(t)
	p := writeConfig(t, "ai: [unterminated\n")
	_, err := Load(p)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() types.Config {
		cfg := types.DefaultConfig()
		cfg.AI.APIKey = "k"
		cfg.Watch.Folders = []string{"/in"}
		cfg.Output.Folder = "/out"
		return cfg
	}
	all := NeedAI | NeedFolders | NeedOutput

	tests := []struct {
		name    string
		mutate  func(*types.Config)
		need    Need
		wantErr error
	}{
		{name: "valid", mutate: func(*types.Config) {}, need: all},
		{name: "missing key", mutate: func(c *types.Config) { c.AI.APIKey = "" }, need: all, wantErr: ErrMissingAPIKey},
		{name: "missing key not needed", mutate: func(c *types.Config) { c.AI.APIKey = "" }, need: NeedFolders},
		{name: "no folders", mutate: func(c *types.Config) { c.Watch.Folders = nil }, need: all, wantErr: ErrNoWatchFolders},
		{name: "no output", mutate: func(c *types.Config) { c.Output.Folder = "" }, need: all, wantErr: ErrNoOutput},
		{name: "bad provider", mutate: func(c *types.Config) { c.AI.Provider = "openai" }, need: 0, wantErr: ErrInvalid},
		{name: "bad language", mutate: func(c *types.Config) { c.Abstractor.Language = "fr" }, need: 0, wantErr: ErrInvalid},
		{name: "bad backend", mutate: func(c *types.Config) { c.Cache.Backend = "redis" }, need: 0, wantErr: ErrInvalid},
		{name: "zero workers", mutate: func(c *types.Config) { c.Advanced.Workers = 0 }, need: 0, wantErr: ErrInvalid},
		{name: "page bounds", mutate: func(c *types.Config) { c.Filter.MinPages = 600 }, need: 0, wantErr: ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := Validate(cfg, tt.need)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_JoinsProblems(t *testing.T) {
	cfg := types.DefaultConfig()
	err := Validate(cfg, NeedAI|NeedFolders|NeedOutput)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.ErrorIs(t, err, ErrNoWatchFolders)
	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestResolvePaths(t *testing.T) {
	home := isolate(t)
	vaultDir := t.TempDir()

	cfg := types.DefaultConfig()
	cfg.Output.VaultPath = vaultDir
	cfg.Output.Folder = "vault://papers/{{year}}"
	cfg.Watch.Folders = []string{"vault://inbox", "~/Downloads"}
	cfg.Cache.Dir = "~/.cache/paper-abstractor"

	r, err := ResolvePaths(&cfg)
	require.NoError(t, err)
	assert.Equal(t, vaultDir, r.Root())
	assert.Equal(t, []string{filepath.Join(vaultDir, "inbox"), filepath.Join(home, "Downloads")}, cfg.Watch.Folders)
	assert.Equal(t, filepath.Join(home, ".cache", "paper-abstractor"), cfg.Cache.Dir)
	assert.Equal(t, "vault://papers/{{year}}", cfg.Output.Folder, "output folder is resolved per note")
	assert.Empty(t, cfg.Advanced.LogFile)

	cfg.Output.VaultPath = ""
	cfg.Watch.Folders = []string{"vault://inbox"}
	_, err = ResolvePaths(&cfg)
	assert.Error(t, err)
}
