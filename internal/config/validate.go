// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"errors"
	"fmt"

	"github.com/pdiddy/paper-abstractor/internal/vault"
	"github.com/pdiddy/paper-abstractor/pkg/types"
)

// Need lists what a command requires from the configuration.
type Need int

const (
	// NeedAI requires an API key for the selected provider.
	NeedAI Need = 1 << iota
	// NeedFolders requires at least one watch folder.
	NeedFolders
	// NeedOutput requires an output folder.
	NeedOutput
)

// Validate checks cfg for the given needs and returns every problem found,
// joined. Individual problems wrap ErrMissingAPIKey, ErrNoWatchFolders,
// ErrNoOutput or ErrInvalid.
func Validate(cfg types.Config, need Need) error {
	var errs []error

	if need&NeedAI != 0 && cfg.AI.APIKey == "" {
		errs = append(errs, fmt.Errorf("%w: set ai.api_key, %s or %s", ErrMissingAPIKey, GoogleKeyEnv, AnthropicKeyEnv))
	}
	if need&NeedFolders != 0 && len(cfg.Watch.Folders) == 0 {
		errs = append(errs, ErrNoWatchFolders)
	}
	if need&NeedOutput != 0 && cfg.Output.Folder == "" {
		errs = append(errs, ErrNoOutput)
	}

	switch cfg.AI.Provider {
	case types.ProviderGemini, types.ProviderAnthropic:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown ai.provider %q", ErrInvalid, cfg.AI.Provider))
	}
	switch cfg.Abstractor.Language {
	case "en", "ja":
	default:
		errs = append(errs, fmt.Errorf("%w: abstractor.language must be en or ja, got %q", ErrInvalid, cfg.Abstractor.Language))
	}
	switch cfg.Cache.Backend {
	case types.CacheJSON, types.CacheSQLite, "":
	default:
		errs = append(errs, fmt.Errorf("%w: unknown cache.backend %q", ErrInvalid, cfg.Cache.Backend))
	}
	if cfg.Advanced.Workers < 1 {
		errs = append(errs, fmt.Errorf("%w: advanced.workers must be at least 1", ErrInvalid))
	}
	if cfg.Filter.MinPages > cfg.Filter.MaxPages {
		errs = append(errs, fmt.Errorf("%w: pdf_filter.min_pages exceeds max_pages", ErrInvalid))
	}
	if cfg.Filter.MinSizeMB > cfg.Filter.MaxSizeMB {
		errs = append(errs, fmt.Errorf("%w: pdf_filter.min_size_mb exceeds max_size_mb", ErrInvalid))
	}
	return errors.Join(errs...)
}

// ResolvePaths expands "~" and "vault://" in every configured path except
// the output folder, whose placeholders are filled per note. It returns the
// resolver for later use.
func ResolvePaths(cfg *types.Config) (*vault.Resolver, error) {
	r, err := vault.NewResolver(cfg.Output.VaultPath)
	if err != nil {
		return nil, err
	}
	cfg.Output.VaultPath = r.Root()

	resolve := func(p *string) error {
		if *p == "" {
			return nil
		}
		abs, err := r.Resolve(*p)
		if err != nil {
			return err
		}
		*p = abs
		return nil
	}

	for i := range cfg.Watch.Folders {
		if err := resolve(&cfg.Watch.Folders[i]); err != nil {
			return nil, fmt.Errorf("watch folder: %w", err)
		}
	}
	for _, p := range []*string{&cfg.Cache.Dir, &cfg.Filter.QuarantineFolder, &cfg.Advanced.LogFile} {
		if err := resolve(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}
