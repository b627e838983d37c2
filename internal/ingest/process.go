// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/paper-abstractor/internal/dedup"
	"github.com/pdiddy/paper-abstractor/internal/logger"
	"github.com/pdiddy/paper-abstractor/internal/note"
	"github.com/pdiddy/paper-abstractor/pkg/types"
)

// QuarantineSuffix ends the name of the record written for a rejected file.
const QuarantineSuffix = "_filter_info.txt"

// ProcessOne runs path through the filter, extraction, summarization, and
// note writing, then records it in the de-dup cache. With force the cache
// and a filter rejection are ignored. Failures are reported in the result
// and logged; they never panic or abort other work.
func (m *Monitor) ProcessOne(ctx context.Context, path string, force bool) types.ProcessResult {
	key := dedup.Key(path)
	res := types.ProcessResult{Path: key}
	log := logger.With(logrus.Fields{"path": key})

	fail := func(stage string, err error) types.ProcessResult {
		res.Status = types.StatusFailed
		res.Err = fmt.Errorf("%s: %w", stage, err)
		m.failures.Add(1)
		log.Errorf("%v", res.Err)
		return res
	}

	if !force && m.deps.Cache.Contains(key) {
		res.Status = types.StatusSkipped
		m.skipped.Add(1)
		log.Debug("already processed")
		return res
	}

	if m.deps.Filter != nil && m.deps.Filter.Enabled() {
		fr := m.deps.Filter.Evaluate(ctx, key)
		res.Filter = &fr
		log.WithField("score", fr.Score).Debugf("filter: %s", strings.Join(fr.Reasons, "; "))
		if !fr.Accepted {
			if !force {
				res.Status = types.StatusRejected
				m.rejects.Add(1)
				log.WithField("score", fr.Score).Infof("rejected: %s", firstReason(fr))
				if m.cfg.Filter.QuarantineEnabled {
					if err := m.quarantine(key, fr); err != nil {
						log.Warnf("writing quarantine record: %v", err)
					}
				}
				return res
			}
			log.Info("filter rejected the file, processing anyway")
		}
	}

	start := time.Now()
	doc, err := m.deps.Extractor.Extract(ctx, key)
	if err != nil {
		return fail("extracting text", err)
	}
	log.WithFields(logrus.Fields{
		"pages": doc.PageCount,
		"size":  humanize.Bytes(uint64(doc.SizeMB * 1024 * 1024)),
	}).Debug("extracted")

	rec, err := m.deps.Summarizer.Summarize(ctx, doc)
	if err != nil {
		return fail("generating abstract", err)
	}

	content, err := m.deps.Renderer.Format(doc, rec)
	if err != nil {
		return fail("formatting note", err)
	}

	dir, err := m.deps.Resolver.ResolveWith(m.cfg.Output.Folder, map[string]string{
		"author":     note.FirstAuthor(doc.Metadata.Author),
		"paper_year": doc.Metadata.Year,
		"title":      note.CleanFilename(note.ShortTitle(doc.Metadata.Title)),
	})
	if err != nil {
		return fail("resolving output folder", err)
	}

	notePath, err := m.deps.Writer.Write(dir, m.deps.Renderer.Filename(doc), content)
	if err != nil {
		return fail("writing note", err)
	}

	if err := m.deps.Cache.Add(key); err != nil {
		log.Warnf("recording in de-dup cache: %v", err)
	}

	res.Status = types.StatusWritten
	res.NotePath = notePath
	m.written.Add(1)
	log.WithFields(logrus.Fields{
		"note":    notePath,
		"kind":    rec.Kind,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("note written")
	return res
}

func firstReason(fr types.FilterResult) string {
	if len(fr.Reasons) == 0 {
		return "no reason recorded"
	}
	return fr.Reasons[0]
}

// quarantine writes a text record describing why path was rejected. The
// record goes to the quarantine folder when one is configured, otherwise
// next to the file. The rejected file itself is left untouched.
func (m *Monitor) quarantine(path string, fr types.FilterResult) error {
	dir := m.cfg.Filter.QuarantineFolder
	if dir == "" {
		dir = filepath.Dir(path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	target := filepath.Join(dir, stem+QuarantineSuffix)

	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", filepath.Base(path))
	fmt.Fprintf(&b, "Path: %s\n", path)
	if info, err := os.Stat(path); err == nil {
		fmt.Fprintf(&b, "Size: %s\n", humanize.Bytes(uint64(info.Size())))
	}
	fmt.Fprintf(&b, "Filtered at: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "Score: %.1f\n", fr.Score)
	fmt.Fprintf(&b, "Threshold: %.1f\n", m.deps.Filter.Threshold())
	b.WriteString("Reasons:\n")
	for _, r := range fr.Reasons {
		fmt.Fprintf(&b, "- %s\n", r)
	}

	return os.WriteFile(target, []byte(b.String()), 0o644)
}
