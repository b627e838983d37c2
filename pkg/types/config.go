// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AIProvider selects the generative AI backend.
type AIProvider string

const (
	ProviderGemini    AIProvider = "gemini"
	ProviderAnthropic AIProvider = "anthropic"
)

// AIConfig holds settings for the summarization backend.
type AIConfig struct {
	// Provider is "gemini" (default) or "anthropic".
	Provider AIProvider `json:"provider" yaml:"provider"`

	// Model is the AI model identifier (e.g. "gemini-2.0-flash-001").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// RetryAttempts is the number of attempts per document (default 3).
	RetryAttempts int `json:"retry_attempts" yaml:"retry_attempts"`

	// RetryDelay is the base of the linear backoff between attempts (default 1s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`

	// Timeout bounds a single HTTP request to the backend (default 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// WatchConfig holds the folder-monitoring settings.
type WatchConfig struct {
	Folders        []string `json:"folders" yaml:"folders"`
	Patterns       []string `json:"patterns" yaml:"patterns"`
	IgnorePatterns []string `json:"ignore_patterns" yaml:"ignore_patterns"`

	// Recursive controls whether subdirectories are scanned and watched.
	Recursive bool `json:"recursive" yaml:"recursive"`

	// SettleDelay is the wait between detecting a file and queueing it (default 2s).
	SettleDelay time.Duration `json:"settle_delay" yaml:"settle_delay"`

	// PollInterval bounds how long a worker blocks on an empty queue (default 1s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// RescanSchedule is an optional cron spec (e.g. "@every 15m") for
	// periodic rescans in daemon mode. Empty disables rescans.
	RescanSchedule string `json:"rescan_schedule,omitempty" yaml:"rescan_schedule,omitempty"`
}

// OutputConfig controls where and how notes are written.
type OutputConfig struct {
	// VaultPath is the root of the note vault; "vault://" paths resolve against it.
	VaultPath string `json:"vault_path" yaml:"vault_path"`

	// Folder is the output folder template, e.g. "vault://inbox/{{year}}".
	Folder string `json:"folder" yaml:"folder"`

	// FilePattern names notes, e.g. "{year}_{first_author}_{title_short}".
	FilePattern string `json:"file_pattern" yaml:"file_pattern"`
}

// AbstractorConfig holds settings for prompt preparation and parsing.
type AbstractorConfig struct {
	// Language is "en" or "ja".
	Language         string `json:"language" yaml:"language"`
	MaxLength        int    `json:"max_length" yaml:"max_length"`
	IncludeCitations bool   `json:"include_citations" yaml:"include_citations"`
	IncludeFigures   bool   `json:"include_figures" yaml:"include_figures"`
	ExtractKeywords  bool   `json:"extract_keywords" yaml:"extract_keywords"`

	// MaxInputChars truncates the document text sent to the backend (default 60000).
	MaxInputChars int `json:"max_input_chars" yaml:"max_input_chars"`
}

// PDFConfig holds settings for the PDF extractor.
type PDFConfig struct {
	MaxSizeMB       float64 `json:"max_size_mb" yaml:"max_size_mb"`
	HandleEncrypted bool    `json:"handle_encrypted" yaml:"handle_encrypted"`

	// PdfinfoPath and PdftotextPath override the poppler binaries on PATH.
	PdfinfoPath   string `json:"pdfinfo_path,omitempty" yaml:"pdfinfo_path,omitempty"`
	PdftotextPath string `json:"pdftotext_path,omitempty" yaml:"pdftotext_path,omitempty"`
}

// ScoringRulesConfig holds caller overrides for the built-in rule sets.
type ScoringRulesConfig struct {
	Positive map[string]RuleOverride `json:"positive,omitempty" yaml:"positive,omitempty"`
	Negative map[string]RuleOverride `json:"negative,omitempty" yaml:"negative,omitempty"`
}

// FilterConfig holds the admission funnel settings.
type FilterConfig struct {
	Enabled           bool    `json:"enabled" yaml:"enabled"`
	AcademicOnly      bool    `json:"academic_only" yaml:"academic_only"`
	AcademicThreshold float64 `json:"academic_threshold" yaml:"academic_threshold"`
	MinPages          int     `json:"min_pages" yaml:"min_pages"`
	MaxPages          int     `json:"max_pages" yaml:"max_pages"`
	MinSizeMB         float64 `json:"min_size_mb" yaml:"min_size_mb"`
	MaxSizeMB         float64 `json:"max_size_mb" yaml:"max_size_mb"`

	// FilenameCutoff and SizeCutoff end evaluation early when reached (defaults -100, -50).
	FilenameCutoff float64 `json:"filename_cutoff" yaml:"filename_cutoff"`
	SizeCutoff     float64 `json:"size_cutoff" yaml:"size_cutoff"`

	QuarantineEnabled bool   `json:"quarantine_enabled" yaml:"quarantine_enabled"`
	QuarantineFolder  string `json:"quarantine_folder,omitempty" yaml:"quarantine_folder,omitempty"`

	ScoringRules ScoringRulesConfig `json:"scoring_rules" yaml:"scoring_rules"`
}

// CacheBackend selects the de-duplication store.
type CacheBackend string

const (
	CacheJSON   CacheBackend = "json"
	CacheSQLite CacheBackend = "sqlite"
)

// CacheConfig holds settings for the processed-file cache.
type CacheConfig struct {
	Enabled bool         `json:"enabled" yaml:"enabled"`
	Dir     string       `json:"dir" yaml:"dir"`
	Backend CacheBackend `json:"backend" yaml:"backend"`
}

// RateLimitConfig bounds requests to the AI backend.
type RateLimitConfig struct {
	RequestsPerMinute int           `json:"requests_per_minute" yaml:"requests_per_minute"`
	RequestDelay      time.Duration `json:"request_delay" yaml:"request_delay"`
}

// AdvancedConfig holds process-wide settings.
type AdvancedConfig struct {
	Workers int `json:"workers" yaml:"workers"`

	// DrainTimeout bounds a drain-mode run (default 30m).
	DrainTimeout time.Duration `json:"drain_timeout" yaml:"drain_timeout"`

	LogLevel string `json:"log_level" yaml:"log_level"`
	LogFile  string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
}

// Config groups all settings for a run.
type Config struct {
	AI         AIConfig         `json:"ai" yaml:"ai"`
	Watch      WatchConfig      `json:"watch" yaml:"watch"`
	Output     OutputConfig     `json:"output" yaml:"output"`
	Abstractor AbstractorConfig `json:"abstractor" yaml:"abstractor"`
	PDF        PDFConfig        `json:"pdf" yaml:"pdf"`
	Filter     FilterConfig     `json:"pdf_filter" yaml:"pdf_filter"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`
	RateLimit  RateLimitConfig  `json:"rate_limit" yaml:"rate_limit"`
	Advanced   AdvancedConfig   `json:"advanced" yaml:"advanced"`
}

// DefaultConfig returns the settings used when neither a config file nor
// the environment provides a value.
func DefaultConfig() Config {
	return Config{
		AI: AIConfig{
			Provider:      ProviderGemini,
			Model:         "gemini-2.0-flash-001",
			MaxTokens:     2048,
			Temperature:   0.7,
			RetryAttempts: 3,
			RetryDelay:    time.Second,
			Timeout:       120 * time.Second,
		},
		Watch: WatchConfig{
			Patterns:       []string{"*.pdf", "*.PDF"},
			IgnorePatterns: []string{"*draft*", "*tmp*", ".*"},
			Recursive:      true,
			SettleDelay:    2 * time.Second,
			PollInterval:   time.Second,
		},
		Output: OutputConfig{
			VaultPath:   "~/Obsidian",
			FilePattern: "{year}_{first_author}_{title_short}",
		},
		Abstractor: AbstractorConfig{
			Language:         "en",
			MaxLength:        1000,
			IncludeCitations: true,
			IncludeFigures:   true,
			ExtractKeywords:  true,
			MaxInputChars:    60000,
		},
		PDF: PDFConfig{
			MaxSizeMB: 100,
		},
		Filter: FilterConfig{
			Enabled:           true,
			AcademicThreshold: 50,
			MinPages:          5,
			MaxPages:          500,
			MinSizeMB:         0.1,
			MaxSizeMB:         100,
			FilenameCutoff:    -100,
			SizeCutoff:        -50,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "~/.cache/paper-abstractor",
			Backend: CacheJSON,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			RequestDelay:      time.Second,
		},
		Advanced: AdvancedConfig{
			Workers:      2,
			DrainTimeout: 30 * time.Minute,
			LogLevel:     "info",
		},
	}
}
