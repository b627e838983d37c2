// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/paper-abstractor/pkg/types"
)

const (
	maxReferences   = 50
	referencePages  = 10
	titleScanLines  = 20
	authorScanLines = 50
	maxAuthors      = 5
)

var (
	yearPattern     = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	isoYear         = regexp.MustCompile(`^(\d{4})-`)
	authorLine      = regexp.MustCompile(`^[A-Z][a-z]+\s+[A-Z][a-z]+`)
	referenceHeader = regexp.MustCompile(`(?i)^\s*(references|bibliography|参考文献|引用文献)\s*$`)
	referenceStart  = regexp.MustCompile(`^(\[\d+\]|\d+\.)`)

	captionPatterns = []struct {
		kind string
		re   *regexp.Regexp
	}{
		{"figure", regexp.MustCompile(`(?im)^\s*Fig(?:ure)?\.?\s*(\d+)[:.]?\s*(.+)$`)},
		{"table", regexp.MustCompile(`(?im)^\s*Table\s*(\d+)[:.]?\s*(.+)$`)},
		{"figure", regexp.MustCompile(`(?m)^\s*図\s*(\d+)[:.：]?\s*(.+)$`)},
		{"table", regexp.MustCompile(`(?m)^\s*表\s*(\d+)[:.：]?\s*(.+)$`)},
	}
)

// parseInfo reads pdfinfo's "Key: value" output.
func parseInfo(out string) types.PDFInfo {
	var info types.PDFInfo
	for _, l := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(l, ":")
		if !ok {
			continue
		}
		value = cleanString(value)
		switch strings.TrimSpace(key) {
		case "Title":
			info.Metadata.Title = value
		case "Author":
			info.Metadata.Author = value
		case "Subject":
			info.Metadata.Subject = value
		case "Keywords":
			info.Metadata.Keywords = value
		case "Creator":
			info.Metadata.Creator = value
		case "Producer":
			info.Metadata.Producer = value
		case "CreationDate":
			if m := isoYear.FindStringSubmatch(value); m != nil {
				info.Metadata.Year = m[1]
			}
		case "Pages":
			info.PageCount, _ = strconv.Atoi(value)
		case "Encrypted":
			info.Encrypted = strings.HasPrefix(value, "yes")
		}
	}
	return info
}

func cleanString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// fillFromFirstPage fills a missing title, author, or year from the first
// page text: the longest of the first lines, capitalized name lines before
// the abstract, and the first plausible year.
func fillFromFirstPage(meta *types.DocMetadata, page string) {
	lines := strings.Split(page, "\n")

	if meta.Title == "" {
		for _, l := range lines[:min(titleScanLines, len(lines))] {
			l = cleanString(l)
			if utf8.RuneCountInString(l) > 10 && utf8.RuneCountInString(l) > utf8.RuneCountInString(meta.Title) {
				meta.Title = l
			}
		}
	}

	if meta.Author == "" {
		var authors []string
		for _, l := range lines[:min(authorScanLines, len(lines))] {
			l = cleanString(l)
			if strings.HasPrefix(strings.ToLower(l), "abstract") {
				break
			}
			if l != meta.Title && authorLine.MatchString(l) && len(l) <= 100 {
				authors = append(authors, l)
			}
			if len(authors) == maxAuthors {
				break
			}
		}
		meta.Author = strings.Join(authors, ", ")
	}

	if meta.Year == "" {
		meta.Year = yearPattern.FindString(page)
	}
}

// extractFigures collects figure and table captions, one per type and
// number.
func extractFigures(pages []string) []types.Figure {
	seen := make(map[string]bool)
	var figures []types.Figure
	for i, page := range pages {
		for _, cp := range captionPatterns {
			for _, m := range cp.re.FindAllStringSubmatch(page, -1) {
				key := cp.kind + m[1]
				if seen[key] {
					continue
				}
				seen[key] = true
				figures = append(figures, types.Figure{
					Type:    cp.kind,
					Number:  m[1],
					Caption: cleanString(m[2]),
					Page:    i + 1,
				})
			}
		}
	}
	return figures
}

// extractReferences returns the numbered entries after the last references
// heading within the final pages, capped at 50.
func extractReferences(pages []string) []string {
	start := max(0, len(pages)-referencePages)
	var lines []string
	found := false
	for _, page := range pages[start:] {
		for _, l := range strings.Split(page, "\n") {
			if referenceHeader.MatchString(l) {
				found = true
				lines = lines[:0]
				continue
			}
			if found {
				lines = append(lines, strings.TrimSpace(l))
			}
		}
	}

	var refs []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			refs = append(refs, strings.Join(cur, " "))
			cur = nil
		}
	}
	for _, l := range lines {
		switch {
		case referenceStart.MatchString(l):
			flush()
			cur = []string{l}
		case l != "" && cur != nil:
			cur = append(cur, l)
		}
		if len(refs) >= maxReferences {
			break
		}
	}
	flush()
	if len(refs) > maxReferences {
		refs = refs[:maxReferences]
	}
	return refs
}
