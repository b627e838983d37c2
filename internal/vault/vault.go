// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vault resolves configured paths: "vault://" paths relative to the
// note vault, "~" home paths, and {{placeholder}} substitution.
package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/paper-abstractor/internal/logger"
)

// Prefix marks a path relative to the vault root.
const Prefix = "vault://"

// ErrNoVault is returned when a vault path is resolved without a vault root.
var ErrNoVault = errors.New("vault path not set")

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", p, err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Resolver turns configured path strings into absolute paths.
type Resolver struct {
	root string

	// now is time.Now; tests pin it.
	now func() time.Time
}

// NewResolver returns a Resolver rooted at vaultPath, which may start with
// "~". An empty vaultPath disables "vault://" paths.
func NewResolver(vaultPath string) (*Resolver, error) {
	r := &Resolver{now: time.Now}
	if vaultPath == "" {
		return r, nil
	}
	root, err := ExpandHome(vaultPath)
	if err != nil {
		return nil, err
	}
	r.root, err = filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault path: %w", err)
	}
	return r, nil
}

// Root returns the absolute vault root, or "" when unset.
func (r *Resolver) Root() string { return r.root }

// IsVaultPath reports whether p is relative to the vault.
func (r *Resolver) IsVaultPath(p string) bool {
	return strings.HasPrefix(p, Prefix)
}

// Resolve returns the absolute form of p.
func (r *Resolver) Resolve(p string) (string, error) {
	if p == "" {
		return "", errors.New("empty path")
	}
	p = strings.ReplaceAll(p, `\`, "/")

	if r.IsVaultPath(p) {
		if r.root == "" {
			return "", fmt.Errorf("%w: cannot resolve %s", ErrNoVault, p)
		}
		rel := strings.TrimLeft(strings.TrimPrefix(p, Prefix), "/")
		return filepath.Join(r.root, filepath.FromSlash(rel)), nil
	}

	expanded, err := ExpandHome(p)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(filepath.FromSlash(expanded))
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", p, err)
	}
	return abs, nil
}

// ResolveWith substitutes {{year}}, {{month}}, {{day}}, {{date}}, {{vault}}
// and the keys of vars, then resolves the result. Unknown placeholders are
// left in place and logged.
func (r *Resolver) ResolveWith(p string, vars map[string]string) (string, error) {
	now := r.now()
	values := map[string]string{
		"year":  now.Format("2006"),
		"month": now.Format("01"),
		"day":   now.Format("02"),
		"date":  now.Format("2006-01-02"),
		"vault": r.root,
	}
	for k, v := range vars {
		values[k] = v
	}

	out := placeholderPattern.ReplaceAllStringFunc(p, func(m string) string {
		if v, ok := values[m[2:len(m)-2]]; ok {
			return v
		}
		return m
	})
	if left := placeholderPattern.FindAllStringSubmatch(out, -1); len(left) > 0 {
		names := make([]string, len(left))
		for i, m := range left {
			names[i] = m[1]
		}
		sort.Strings(names)
		logger.Warn("unresolved placeholders in %s: %s", p, strings.Join(names, ", "))
	}
	return r.Resolve(out)
}

// Rel returns p as a "vault://" path when it lies inside the vault.
func (r *Resolver) Rel(p string) (string, bool) {
	if r.root == "" {
		return "", false
	}
	rel, err := filepath.Rel(r.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return Prefix + filepath.ToSlash(rel), true
}
