// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package abstract turns the free-form structured text returned by the AI
// backend into a typed types.AbstractRecord. Parsing never fails: a field
// whose heading cannot be found is left empty.
//
// Headings may use any '#' depth, a bold label, or a trailing colon, and
// their names may be Japanese or English, so every field is looked up by a
// list of candidate names.
package abstract

import (
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/paper-abstractor/pkg/types"
)

const maxKeywords = 15

// Options carries the context the response text itself does not hold.
type Options struct {
	// Language is the abstract language ("en" or "ja").
	Language string

	// ModelID names the model that produced the response.
	ModelID string

	// MetadataKeywords is the comma-separated keyword field of the PDF.
	MetadataKeywords string

	// ExtractKeywords enables keyword extraction.
	ExtractKeywords bool

	// Now stamps GeneratedAt; zero means time.Now.
	Now time.Time
}

// DetectKind picks the record variant from marker phrases in text.
func DetectKind(text string) types.PaperKind {
	for _, m := range experimentalMarkers {
		if strings.Contains(text, m) {
			return types.KindExperimental
		}
	}
	for _, m := range reviewMarkers {
		if strings.Contains(text, m) {
			return types.KindReview
		}
	}
	return types.KindGeneric
}

// Parse builds an AbstractRecord from a raw AI response.
func Parse(raw string, opts Options) types.AbstractRecord {
	lines := splitLines(raw)

	common := types.AbstractCommon{
		Language:    opts.Language,
		ModelID:     opts.ModelID,
		GeneratedAt: opts.Now,
	}
	if common.GeneratedAt.IsZero() {
		common.GeneratedAt = time.Now()
	}
	if opts.ExtractKeywords {
		common.Keywords = ExtractKeywords(raw, opts.MetadataKeywords, opts.Language)
	}

	kind := DetectKind(raw)
	rec := types.AbstractRecord{Kind: kind}

	switch kind {
	case types.KindExperimental:
		n := experimentalNames
		common.Summary = sectionText(lines, n.summary)
		rec.Experimental = &types.ExperimentalAbstract{
			AbstractCommon: common,
			Background:     sectionText(lines, n.background),
			PriorResearch:  sectionText(lines, n.priorResearch),
			Objectives:     sectionText(lines, n.objectives),
			Experiments:    ExtractExperiments(raw),
			Discussion:     sectionText(lines, n.discussion),
			Contributions:  sectionText(lines, n.contributions),
			Limitations:    sectionText(lines, n.limitations),
		}
	case types.KindReview:
		n := reviewNames
		common.Summary = sectionText(lines, n.summary)
		rec.Review = &types.ReviewAbstract{
			AbstractCommon:           common,
			ReviewTheme:              sectionText(lines, n.theme),
			ReviewNecessity:          sectionText(lines, n.necessity),
			MainTheories:             sectionText(lines, n.theories),
			DiscussionClassification: sectionText(lines, n.classification),
			LandmarkStudies:          sectionText(lines, n.landmarks),
			Consensus:                sectionText(lines, n.consensus),
			Controversies:            sectionText(lines, n.controversies),
			Conclusions:              sectionText(lines, n.conclusions),
			FutureDirections:         sectionText(lines, n.future),
		}
	default:
		n := genericNames
		common.Summary = sectionText(lines, n.summary)
		rec.Generic = &types.GenericAbstract{
			AbstractCommon:   common,
			KeyContributions: ExtractList(raw, n.contributions),
			Methodology:      sectionText(lines, n.methodology),
			Results:          sectionText(lines, n.results),
			Insights:         sectionText(lines, n.insights),
			Limitations:      sectionText(lines, n.limitations),
			FutureWork:       sectionText(lines, n.future),
		}
	}
	return rec
}

// ExtractKeywords merges metadata keywords with the response's keyword
// section, normalizes them, adds the default tags, and returns at most 15
// in sorted order.
func ExtractKeywords(text, metadataKeywords, language string) []string {
	var raw []string
	raw = append(raw, splitKeywords(metadataKeywords)...)
	for _, item := range ExtractList(text, keywordNames) {
		raw = append(raw, splitKeywords(item)...)
	}
	raw = append(raw, "research-paper", "academic")
	if language == "ja" {
		raw = append(raw, "japanese")
	}

	seen := make(map[string]bool, len(raw))
	var out []string
	for _, k := range raw {
		k = strings.TrimSpace(strings.ReplaceAll(strings.ToLower(k), "#", ""))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	if len(out) > maxKeywords {
		out = out[:maxKeywords]
	}
	return out
}

func splitKeywords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ',', '、', ';', '，', '；':
			return true
		}
		return false
	})
}
