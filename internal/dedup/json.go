// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// JSONFile is the cache file name inside the cache directory.
const JSONFile = "processed_files.json"

// legacyStamp is the timestamp layout of cache files written without a zone.
const legacyStamp = "2006-01-02T15:04:05.999999"

// jsonSnapshot is the on-disk form. last_updated is kept raw so a stamp in
// an unexpected layout never costs the processed set.
type jsonSnapshot struct {
	ProcessedFiles []string `json:"processed_files"`
	LastUpdated    string   `json:"last_updated"`
}

// parseStamp accepts RFC 3339 and the zoneless layout, read as local time.
// Anything else is the zero time.
func parseStamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(legacyStamp, s, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

// JSONStore keeps the snapshot in a single JSON document.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store that reads and writes path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads the snapshot. A missing file is an empty snapshot.
func (s *JSONStore) Load() (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading cache %s: %w", s.path, err)
	}
	var raw jsonSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("parsing cache %s: %w", s.path, err)
	}
	return Snapshot{ProcessedFiles: raw.ProcessedFiles, LastUpdated: parseStamp(raw.LastUpdated)}, nil
}

// Save writes the snapshot to a temporary file and renames it into place.
func (s *JSONStore) Save(snap Snapshot) error {
	raw := jsonSnapshot{ProcessedFiles: snap.ProcessedFiles}
	if raw.ProcessedFiles == nil {
		raw.ProcessedFiles = []string{}
	}
	if !snap.LastUpdated.IsZero() {
		raw.LastUpdated = snap.LastUpdated.Format(time.RFC3339Nano)
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".processed-*.json")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing cache: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming cache: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *JSONStore) Close() error { return nil }
