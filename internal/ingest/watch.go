// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/paper-abstractor/internal/logger"
)

// watchTree adds folder, and its subdirectories when watching recursively.
func (m *Monitor) watchTree(w *fsnotify.Watcher, folder string) error {
	info, err := os.Stat(folder)
	if err != nil {
		return fmt.Errorf("watch folder %s: %w", folder, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch folder %s: not a directory", folder)
	}
	if !m.cfg.Watch.Recursive {
		return w.Add(folder)
	}
	return filepath.WalkDir(folder, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("walking %s: %v", p, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != folder && m.ignored(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}

func (m *Monitor) ignored(name string) bool {
	for _, p := range m.cfg.Watch.IgnorePatterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// watch turns filesystem events into Enqueue calls until ctx is done or
// the watcher is closed.
func (m *Monitor) watch(ctx context.Context, w *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			m.handleEvent(w, ev)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher: %v", err)
		}
	}
}

func (m *Monitor) handleEvent(w *fsnotify.Watcher, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if ev.Has(fsnotify.Create) && m.cfg.Watch.Recursive && !m.ignored(info.Name()) {
			if err := m.watchTree(w, ev.Name); err != nil && !errors.Is(err, fsnotify.ErrClosed) {
				logger.Warn("watching new folder: %v", err)
			}
			m.scanFolder(ev.Name)
		}
		return
	}
	if m.Enqueue(ev.Name) {
		logger.Debug("detected %s", ev.Name)
	}
}

// scanAll enqueues every unprocessed candidate in the watch folders.
func (m *Monitor) scanAll() {
	for _, folder := range m.cfg.Watch.Folders {
		m.scanFolder(folder)
	}
}

func (m *Monitor) scanFolder(folder string) {
	queued := 0
	err := filepath.WalkDir(folder, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("scanning %s: %v", p, err)
			return nil
		}
		if d.IsDir() {
			if p != folder && (!m.cfg.Watch.Recursive || m.ignored(d.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		if m.Enqueue(p) {
			queued++
		}
		return nil
	})
	if err != nil {
		logger.Warn("scanning %s: %v", folder, err)
	}
	if queued > 0 {
		logger.Info("queued %d file(s) from %s", queued, folder)
	}
}
