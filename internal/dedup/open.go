// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"fmt"
	"path/filepath"

	"github.com/pdiddy/paper-abstractor/pkg/types"
)

// Open builds a cache for cfg. A disabled cache lives in memory only.
// cfg.Dir must already be expanded.
func Open(cfg types.CacheConfig) (*Cache, error) {
	if !cfg.Enabled {
		return New(nil), nil
	}
	switch cfg.Backend {
	case types.CacheSQLite:
		store, err := NewSQLiteStore(filepath.Join(cfg.Dir, SQLiteFile))
		if err != nil {
			return nil, err
		}
		return New(store), nil
	case types.CacheJSON, "":
		return New(NewJSONStore(filepath.Join(cfg.Dir, JSONFile))), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
