// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext extracts text and metadata from PDFs with the poppler
// command-line tools (pdfinfo and pdftotext).
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/paper-abstractor/pkg/types"
)

const (
	binPdfinfo   = "pdfinfo"
	binPdftotext = "pdftotext"
	bytesPerMB   = 1024 * 1024
)

// Extraction errors. Callers distinguish them with errors.Is.
var (
	ErrTooLarge  = errors.New("pdf too large")
	ErrEncrypted = errors.New("pdf is encrypted")
	ErrOpen      = errors.New("failed to open pdf")
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Extractor reads PDFs through pdfinfo and pdftotext. It implements the
// admission filter's Inspector.
type Extractor struct {
	cfg       types.PDFConfig
	exec      executor
	pdfinfo   string
	pdftotext string
}

// New returns an Extractor using the binaries named in cfg, or the ones on
// PATH when unset.
func New(cfg types.PDFConfig) *Extractor {
	return newExtractor(cfg, osExecutor{})
}

func newExtractor(cfg types.PDFConfig, exec executor) *Extractor {
	e := &Extractor{cfg: cfg, exec: exec, pdfinfo: cfg.PdfinfoPath, pdftotext: cfg.PdftotextPath}
	if e.pdfinfo == "" {
		e.pdfinfo = binPdfinfo
	}
	if e.pdftotext == "" {
		e.pdftotext = binPdftotext
	}
	return e
}

// Available reports an error when either poppler binary cannot be found.
func (e *Extractor) Available() error {
	for _, bin := range []string{e.pdfinfo, e.pdftotext} {
		if _, err := e.exec.LookPath(bin); err != nil {
			return fmt.Errorf("%s not found (install poppler-utils): %w", bin, err)
		}
	}
	return nil
}

// Info returns page count, encryption state, and document metadata.
func (e *Extractor) Info(ctx context.Context, path string) (types.PDFInfo, error) {
	out, err := e.exec.Output(ctx, e.pdfinfo, "-isodates", path)
	if err != nil {
		return types.PDFInfo{}, classify(err)
	}
	return parseInfo(string(out)), nil
}

// PageText returns the text of pages first..last (1-based, inclusive).
// Pages are separated by form feeds. A non-positive first or last leaves
// that end of the range open.
func (e *Extractor) PageText(ctx context.Context, path string, first, last int) (string, error) {
	args := []string{"-q", "-enc", "UTF-8"}
	if first > 0 {
		args = append(args, "-f", strconv.Itoa(first))
	}
	if last > 0 {
		args = append(args, "-l", strconv.Itoa(last))
	}
	args = append(args, path, "-")

	out, err := e.exec.Output(ctx, e.pdftotext, args...)
	if err != nil {
		return "", classify(err)
	}
	return string(out), nil
}

// classify maps a poppler failure to ErrEncrypted or ErrOpen.
func classify(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "password") {
		return fmt.Errorf("%w: %v", ErrEncrypted, err)
	}
	return fmt.Errorf("%w: %v", ErrOpen, err)
}

// Extract reads the whole document. It fails with ErrTooLarge when the
// file exceeds the configured size, ErrEncrypted when the file is
// encrypted and encrypted files are not handled, and ErrOpen otherwise.
func (e *Extractor) Extract(ctx context.Context, path string) (types.Document, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return types.Document{}, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	sizeMB := float64(fi.Size()) / bytesPerMB
	if e.cfg.MaxSizeMB > 0 && sizeMB > e.cfg.MaxSizeMB {
		return types.Document{}, fmt.Errorf("%w: %.1fMB (max %gMB)", ErrTooLarge, sizeMB, e.cfg.MaxSizeMB)
	}

	info, err := e.Info(ctx, path)
	if err != nil {
		return types.Document{}, err
	}
	if info.Encrypted && !e.cfg.HandleEncrypted {
		return types.Document{}, fmt.Errorf("%w: handle_encrypted is off", ErrEncrypted)
	}

	raw, err := e.PageText(ctx, path, 0, 0)
	if err != nil {
		return types.Document{}, err
	}
	pages := strings.Split(raw, "\f")

	meta := info.Metadata
	var firstPage string
	if len(pages) > 0 {
		firstPage = pages[0]
	}
	fillFromFirstPage(&meta, firstPage)

	return types.Document{
		Path:        path,
		Text:        joinPages(pages),
		Metadata:    meta,
		Figures:     extractFigures(pages),
		References:  extractReferences(pages),
		PageCount:   info.PageCount,
		SizeMB:      sizeMB,
		ExtractedAt: time.Now(),
	}, nil
}

// joinPages labels every non-blank page with its number.
func joinPages(pages []string) string {
	var parts []string
	for i, p := range pages {
		if strings.TrimSpace(p) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("[Page %d]\n%s", i+1, strings.TrimRight(p, "\n")))
	}
	return strings.Join(parts, "\n\n")
}
