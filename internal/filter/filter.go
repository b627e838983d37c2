// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter decides whether a PDF looks like an academic paper before
// any expensive extraction or AI call is spent on it. Evaluation runs four
// stages from cheapest to most expensive (filename, size, metadata, content
// sample) and stops early on strongly negative evidence.
package filter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/paper-abstractor/internal/logger"
	"github.com/pdiddy/paper-abstractor/pkg/types"
)

// Inspector reads PDF metadata and page text. The pdftext package provides
// the production implementation.
type Inspector interface {
	// Info returns page count and document metadata.
	Info(ctx context.Context, path string) (types.PDFInfo, error)

	// PageText returns the text of pages first..last (1-based, inclusive).
	PageText(ctx context.Context, path string, first, last int) (string, error)
}

const bytesPerMB = 1024 * 1024

var (
	// filenameHints add a small bonus each when present in the filename.
	filenameHints = []string{"paper", "article", "journal", "conference", "proceedings"}

	yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

	// academicTools are producer/creator signatures of publishers and typesetters.
	academicTools = []string{
		"elsevier", "springer", "wiley", "nature", "science",
		"ieee", "acm", "taylor & francis", "sage", "oxford",
		"cambridge", "plos", "frontiers", "mdpi", "arxiv",
		"latex", "pdflatex", "xelatex", "lualatex",
	}

	academicKeywords = []string{
		"abstract", "introduction", "methodology", "results",
		"discussion", "conclusion", "references", "bibliography",
		"keywords", "corresponding author", "doi:", "issn",
		"received:", "accepted:", "published:",
	}
)

const (
	headPages       = 3
	tailPages       = 2
	tailMinPages    = 5
	minKeywordCount = 3
)

// Filter scores PDFs against configurable rules.
type Filter struct {
	cfg       types.FilterConfig
	positive  []matcher
	negative  []matcher
	inspector Inspector

	// stat is os.Stat; tests substitute it to fake file sizes.
	stat func(string) (os.FileInfo, error)
}

// New builds a Filter from cfg, merging cfg.ScoringRules over the built-in
// rules. It fails only when a regex rule does not compile.
func New(cfg types.FilterConfig, inspector Inspector) (*Filter, error) {
	cfg = withDefaults(cfg)
	positive, err := compileRules(MergeRules(DefaultPositiveRules(), cfg.ScoringRules.Positive))
	if err != nil {
		return nil, fmt.Errorf("positive rules: %w", err)
	}
	negative, err := compileRules(MergeRules(DefaultNegativeRules(), cfg.ScoringRules.Negative))
	if err != nil {
		return nil, fmt.Errorf("negative rules: %w", err)
	}
	return &Filter{
		cfg:       cfg,
		positive:  positive,
		negative:  negative,
		inspector: inspector,
		stat:      os.Stat,
	}, nil
}

// withDefaults fills zero-valued bounds and cutoffs, which would otherwise
// reject every file.
func withDefaults(cfg types.FilterConfig) types.FilterConfig {
	def := types.DefaultConfig().Filter
	if cfg.FilenameCutoff == 0 {
		cfg.FilenameCutoff = def.FilenameCutoff
	}
	if cfg.SizeCutoff == 0 {
		cfg.SizeCutoff = def.SizeCutoff
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = def.MaxSizeMB
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = def.MaxPages
	}
	return cfg
}

// Enabled reports whether filtering is switched on.
func (f *Filter) Enabled() bool { return f.cfg.Enabled }

// Threshold returns the academic threshold.
func (f *Filter) Threshold() float64 { return f.cfg.AcademicThreshold }

// Rules returns the effective positive and negative rule sets.
func (f *Filter) Rules() (positive, negative []types.ScoringRule) {
	for _, m := range f.positive {
		positive = append(positive, m.rule)
	}
	for _, m := range f.negative {
		negative = append(negative, m.rule)
	}
	return positive, negative
}

// evaluation accumulates stage outcomes for one file.
type evaluation struct {
	stages  map[types.Stage]float64
	reasons []string
}

func (e *evaluation) add(stage types.Stage, score float64, reasons []string) {
	e.stages[stage] = score
	e.reasons = append(e.reasons, reasons...)
}

func (e *evaluation) total() float64 {
	var t float64
	for _, s := range e.stages {
		t += s
	}
	return t
}

// Evaluate runs the funnel over the PDF at path. It never fails: missing or
// unreadable files yield a partial score with an "Analysis error" reason.
func (f *Filter) Evaluate(ctx context.Context, path string) types.FilterResult {
	if !f.cfg.Enabled {
		return types.FilterResult{
			Accepted:    true,
			Reasons:     []string{"Filtering disabled"},
			StageScores: map[types.Stage]float64{},
		}
	}

	ev := &evaluation{stages: make(map[types.Stage]float64, 4)}

	score, reasons, stop := f.checkFilename(filepath.Base(path))
	ev.add(types.StageFilename, score, reasons)
	if stop {
		return f.rejectEarly(ev, types.StageFilename, f.cfg.FilenameCutoff)
	}

	score, reasons = f.checkSize(path)
	ev.add(types.StageSize, score, reasons)
	if score <= f.cfg.SizeCutoff {
		return f.rejectEarly(ev, types.StageSize, f.cfg.SizeCutoff)
	}

	info, err := f.inspector.Info(ctx, path)
	if err != nil {
		logger.Warn("filter: reading metadata of %s: %v", path, err)
		ev.add(types.StageMetadata, 0, []string{fmt.Sprintf("Analysis error: %v", err)})
		return f.decide(ev)
	}
	score, reasons = f.checkMetadata(info)
	ev.add(types.StageMetadata, score, reasons)

	score, reasons = f.scanContent(ctx, path, info.PageCount)
	ev.add(types.StageContent, score, reasons)

	return f.decide(ev)
}

func (f *Filter) decide(ev *evaluation) types.FilterResult {
	total := ev.total()
	accepted := !f.cfg.AcademicOnly || total >= f.cfg.AcademicThreshold

	summary := fmt.Sprintf("Score %g below threshold %g", total, f.cfg.AcademicThreshold)
	if total >= f.cfg.AcademicThreshold {
		summary = fmt.Sprintf("Score %g meets threshold %g", total, f.cfg.AcademicThreshold)
	}
	return types.FilterResult{
		Accepted:    accepted,
		Score:       total,
		Reasons:     append([]string{summary}, ev.reasons...),
		StageScores: ev.stages,
	}
}

func (f *Filter) rejectEarly(ev *evaluation, stage types.Stage, cutoff float64) types.FilterResult {
	total := ev.total()
	summary := fmt.Sprintf("Rejected at %s stage: score %g at or below cutoff %g", stage, total, cutoff)
	return types.FilterResult{
		Accepted:    false,
		Score:       total,
		Reasons:     append([]string{summary}, ev.reasons...),
		StageScores: ev.stages,
	}
}

// checkFilename applies negative rules first. When they alone reach the
// filename cutoff, positive hints are skipped and stop is true.
func (f *Filter) checkFilename(name string) (score float64, reasons []string, stop bool) {
	lower := strings.ToLower(name)

	for _, m := range f.negative {
		if m.match(lower) {
			score += m.rule.Weight
			reasons = append(reasons, "Filename: "+m.rule.Description)
		}
	}
	if score <= f.cfg.FilenameCutoff {
		return score, reasons, true
	}

	for _, kw := range filenameHints {
		if strings.Contains(lower, kw) {
			score += 5
			reasons = append(reasons, fmt.Sprintf("Filename: Contains '%s'", kw))
		}
	}
	if yearPattern.MatchString(name) {
		score += 5
		reasons = append(reasons, "Filename: Contains year pattern")
	}
	return score, reasons, false
}

func (f *Filter) checkSize(path string) (float64, []string) {
	fi, err := f.stat(path)
	if err != nil {
		logger.Warn("filter: checking size of %s: %v", path, err)
		return 0, []string{fmt.Sprintf("Analysis error: %v", err)}
	}

	sizeMB := float64(fi.Size()) / bytesPerMB
	switch {
	case sizeMB < f.cfg.MinSizeMB:
		return -50, []string{fmt.Sprintf("File too small: %.1fMB < %gMB", sizeMB, f.cfg.MinSizeMB)}
	case sizeMB > f.cfg.MaxSizeMB:
		return -30, []string{fmt.Sprintf("File too large: %.1fMB > %gMB", sizeMB, f.cfg.MaxSizeMB)}
	case sizeMB >= 0.5 && sizeMB <= 10:
		return 10, []string{fmt.Sprintf("File size optimal: %.1fMB", sizeMB)}
	default:
		return 0, []string{fmt.Sprintf("File size: %.1fMB", sizeMB)}
	}
}

func (f *Filter) checkMetadata(info types.PDFInfo) (float64, []string) {
	var score float64
	var reasons []string

	pages := info.PageCount
	switch {
	case pages < f.cfg.MinPages:
		score -= 30
		reasons = append(reasons, fmt.Sprintf("Too few pages: %d < %d", pages, f.cfg.MinPages))
	case pages > f.cfg.MaxPages:
		score -= 20
		reasons = append(reasons, fmt.Sprintf("Too many pages: %d > %d", pages, f.cfg.MaxPages))
	case pages >= 8 && pages <= 40:
		score += 15
		reasons = append(reasons, fmt.Sprintf("Page count typical: %d", pages))
	default:
		score += 5
		reasons = append(reasons, fmt.Sprintf("Page count: %d", pages))
	}

	producer := strings.ToLower(info.Metadata.Producer)
	creator := strings.ToLower(info.Metadata.Creator)
	for _, tool := range academicTools {
		if strings.Contains(producer, tool) || strings.Contains(creator, tool) {
			score += 20
			reasons = append(reasons, "Academic tool detected: "+tool)
			break
		}
	}

	if strings.TrimSpace(info.Metadata.Title) != "" {
		score += 5
		reasons = append(reasons, "Has metadata title")
	}
	if strings.TrimSpace(info.Metadata.Author) != "" {
		score += 5
		reasons = append(reasons, "Has metadata author")
	}
	return score, reasons
}

// samplePages returns the inclusive page ranges scanned for a document of
// n pages: the first three, plus the last two when there are more than five.
func samplePages(n int) [][2]int {
	if n <= 0 {
		return nil
	}
	ranges := [][2]int{{1, min(headPages, n)}}
	if n > tailMinPages {
		ranges = append(ranges, [2]int{n - tailPages + 1, n})
	}
	return ranges
}

func (f *Filter) scanContent(ctx context.Context, path string, pageCount int) (float64, []string) {
	ranges := samplePages(pageCount)
	if len(ranges) == 0 {
		return 0, []string{"No pages to scan"}
	}

	var b strings.Builder
	for _, r := range ranges {
		text, err := f.inspector.PageText(ctx, path, r[0], r[1])
		if err != nil {
			logger.Warn("filter: reading pages %d-%d of %s: %v", r[0], r[1], path, err)
			return 0, []string{fmt.Sprintf("Analysis error: %v", err)}
		}
		b.WriteString(strings.ToLower(text))
		b.WriteByte('\n')
	}
	sample := b.String()

	var score float64
	var reasons []string
	for _, m := range f.positive {
		if m.match(sample) {
			score += m.rule.Weight
			reasons = append(reasons, "Content: "+m.rule.Description)
		}
	}

	var found []string
	for _, kw := range academicKeywords {
		if strings.Contains(sample, kw) {
			found = append(found, kw)
		}
	}
	if len(found) >= minKeywordCount {
		score += 10 * float64(len(found))
		reasons = append(reasons, "Multiple academic keywords: "+strings.Join(found[:min(5, len(found))], ", "))
	}
	return score, reasons
}
