// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files and
// from an optional .env file. Each file in the directory represents one
// secret: the filename is the key name and the file contents (trimmed) are
// the value.
//
// Supported key files: google-ai-api-key, anthropic-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pdiddy/paper-abstractor/internal/logger"
)

// EnvVars maps secret file names to the environment variables the
// configuration layer reads.
var EnvVars = map[string]string{
	"google-ai-api-key": "GOOGLE_AI_API_KEY",
	"anthropic-api-key": "ANTHROPIC_API_KEY",
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret %s: %v", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadDotenv sets variables from a .env file without overriding ones
// already present in the environment. A missing file is not an error.
func LoadDotenv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Export sets the environment variable of every known secret that is not
// already set, and returns the names of the variables it set in order.
func Export(secrets map[string]string) []string {
	var set []string
	for name, env := range EnvVars {
		v, ok := secrets[name]
		if !ok {
			continue
		}
		if _, present := os.LookupEnv(env); present {
			continue
		}
		if err := os.Setenv(env, v); err != nil {
			logger.Warn("could not export %s: %v", env, err)
			continue
		}
		set = append(set, env)
	}
	sort.Strings(set)
	return set
}
