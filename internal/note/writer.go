// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package note

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Ext is the note file extension.
const Ext = ".md"

// maxSuffix bounds the "_N" counter searched for a free name.
const maxSuffix = 1000

// Writer stores notes on disk.
type Writer struct{}

// Write stores content as dir/base.md, or dir/base_N.md when that name is
// taken, and returns the final path. The content is written to a temporary
// file in dir and then claimed under a free name with a hard link, so
// readers never see a partial note and concurrent writers never share a
// name.
func (Writer) Write(dir, base, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output folder %s: %w", dir, err)
	}

	tmp := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing note: %w", err)
	}
	defer os.Remove(tmp)

	for n := 0; n <= maxSuffix; n++ {
		target := candidate(dir, base, n)
		ok, err := claim(tmp, target)
		if err != nil {
			return "", err
		}
		if ok {
			return target, nil
		}
	}
	return "", fmt.Errorf("no free note name for %s in %s", base, dir)
}

func candidate(dir, base string, n int) string {
	if n == 0 {
		return filepath.Join(dir, base+Ext)
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, n, Ext))
}

// claim places tmp at target unless target already exists. Filesystems
// without hard links get an exclusive placeholder that tmp is renamed over.
func claim(tmp, target string) (bool, error) {
	err := os.Link(tmp, target)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrExist):
		return false, nil
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reserving %s: %w", target, err)
	}
	f.Close()
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(target)
		return false, fmt.Errorf("renaming note into place: %w", err)
	}
	return true, nil
}
