// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads the run configuration from a YAML file and the
// environment on top of types.DefaultConfig, resolves configured paths,
// and validates the result before any processing starts.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-abstractor/internal/logger"
	"github.com/pdiddy/paper-abstractor/pkg/types"
)

// EnvPrefix prefixes environment overrides, e.g. PAPER_ABSTRACTOR_ADVANCED_WORKERS.
const EnvPrefix = "PAPER_ABSTRACTOR"

// DefaultClaudeModel replaces the Gemini default model when the Anthropic
// provider is selected without a model.
const DefaultClaudeModel = "claude-sonnet-4-5-20250929"

// Provider-specific API key variables, read when ai.api_key is unset.
const (
	GoogleKeyEnv    = "GOOGLE_AI_API_KEY"
	AnthropicKeyEnv = "ANTHROPIC_API_KEY"
)

// Configuration errors reported by Validate.
var (
	ErrMissingAPIKey  = errors.New("missing AI API key")
	ErrNoWatchFolders = errors.New("no watch folders configured")
	ErrNoOutput       = errors.New("no output folder configured")
	ErrInvalid        = errors.New("invalid configuration")
)

// SearchPaths returns the directories searched for config.yaml, in order.
func SearchPaths() []string {
	paths := []string{"./config", "."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "paper-abstractor"))
	}
	return paths
}

// Load reads the configuration file at path, or the first config.yaml
// found in SearchPaths when path is empty, and overlays it and the
// environment on the defaults. A missing config file is not an error
// unless path names it explicitly.
func Load(path string) (types.Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := setDefaults(v); err != nil {
		return types.Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		for _, p := range SearchPaths() {
			v.AddConfigPath(p)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range optionalKeys {
		if err := v.BindEnv(key); err != nil {
			return types.Config{}, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("reading config: %w", err)
		}
		logger.Debug("no config file found, using defaults")
	} else {
		logger.Debug("using config file %s", v.ConfigFileUsed())
	}

	cfg := types.DefaultConfig()
	if err := v.Unmarshal(&cfg, decoderOptions); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if v.IsSet(topLevelRulesKey) {
		var top types.ScoringRulesConfig
		if err := v.UnmarshalKey(topLevelRulesKey, &top, decoderOptions); err != nil {
			return types.Config{}, fmt.Errorf("decoding %s: %w", topLevelRulesKey, err)
		}
		mergeTopLevelRules(&cfg.Filter.ScoringRules, top)
	}
	applyProviderDefaults(&cfg)
	return cfg, nil
}

// topLevelRulesKey is the older location of pdf_filter.scoring_rules.
const topLevelRulesKey = "scoring_rules"

// mergeTopLevelRules adds top-level rule overrides that pdf_filter does not
// already name. Entries under pdf_filter win.
func mergeTopLevelRules(dst *types.ScoringRulesConfig, top types.ScoringRulesConfig) {
	merge := func(dst *map[string]types.RuleOverride, src map[string]types.RuleOverride) {
		for name, o := range src {
			if _, ok := (*dst)[name]; ok {
				continue
			}
			if *dst == nil {
				*dst = make(map[string]types.RuleOverride, len(src))
			}
			(*dst)[name] = o
		}
	}
	merge(&dst.Positive, top.Positive)
	merge(&dst.Negative, top.Negative)
}

// optionalKeys are omitted from the encoded defaults when empty, so they
// are bound to the environment explicitly.
var optionalKeys = []string{
	"ai.api_key",
	"watch.rescan_schedule",
	"pdf.pdfinfo_path",
	"pdf.pdftotext_path",
	"pdf_filter.quarantine_folder",
	"advanced.log_file",
}

// setDefaults registers every default key with viper so that environment
// variables can override keys absent from the config file.
func setDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(types.DefaultConfig())
	if err != nil {
		return fmt.Errorf("encoding defaults: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decoding defaults: %w", err)
	}
	setFlat(v, "", m)
	return nil
}

func setFlat(v *viper.Viper, prefix string, m map[string]any) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setFlat(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

func decoderOptions(dc *mapstructure.DecoderConfig) {
	dc.TagName = "yaml"
	dc.WeaklyTypedInput = true
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		ruleOverrideHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

var ruleOverrideType = reflect.TypeOf(types.RuleOverride{})

// ruleOverrideHook decodes a bare number into a weight-only override.
// Mappings are left to the default decoder.
func ruleOverrideHook(from, to reflect.Type, data any) (any, error) {
	if to != ruleOverrideType {
		return data, nil
	}
	switch n := data.(type) {
	case int:
		return types.RuleOverride{WeightOnly: true, Weight: float64(n)}, nil
	case int64:
		return types.RuleOverride{WeightOnly: true, Weight: float64(n)}, nil
	case float64:
		return types.RuleOverride{WeightOnly: true, Weight: n}, nil
	}
	return data, nil
}

// applyProviderDefaults fills the API key from the provider's variable and
// swaps the default model when the provider changes.
func applyProviderDefaults(cfg *types.Config) {
	def := types.DefaultConfig().AI
	switch cfg.AI.Provider {
	case types.ProviderAnthropic:
		if cfg.AI.Model == "" || cfg.AI.Model == def.Model {
			cfg.AI.Model = DefaultClaudeModel
		}
		if cfg.AI.APIKey == "" {
			cfg.AI.APIKey = os.Getenv(AnthropicKeyEnv)
		}
	default:
		if cfg.AI.Model == "" {
			cfg.AI.Model = def.Model
		}
		if cfg.AI.APIKey == "" {
			cfg.AI.APIKey = os.Getenv(GoogleKeyEnv)
		}
	}
}
