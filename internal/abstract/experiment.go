// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package abstract

import (
	"regexp"
	"strings"

	"github.com/pdiddy/paper-abstractor/pkg/types"
)

// experimentHeading matches "実験1", "Experiment 2", "Study 3", optionally
// after an outline code such as "A-2".
var experimentHeading = regexp.MustCompile(`^(?:A-2.*?)?(?:実験|(?i:experiment|study))\s*(\d+)(.*)$`)

// experimentBlock is the run of lines under one experiment heading.
type experimentBlock struct {
	number string
	level  int
	lines  []line
}

// parseExperimentHeading returns the experiment number when l opens an
// experiment block. Plain body lines qualify only when the number is
// followed by punctuation or nothing, so "実験1では" stays body text.
func parseExperimentHeading(l line) (string, bool) {
	s := l.text
	if l.level == 0 {
		s, _ = stripBullet(s)
	}
	s, bold := stripBold(s)

	m := experimentHeading.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	if l.level == 0 && !bold {
		rest := strings.TrimSpace(m[2])
		if rest != "" && !strings.ContainsAny(rest[:1], ":.)") && !strings.HasPrefix(rest, "：") {
			return "", false
		}
	}
	return m[1], true
}

// closesExperiment reports whether l is a major heading that ends the
// experiment section, such as general discussion or conclusions. Headings
// deeper than the experiment heading never close it.
func closesExperiment(l line, cur experimentBlock) bool {
	s := l.text
	if l.level == 0 {
		var bold bool
		if s, bold = stripBold(s); !bold {
			return false
		}
		s = sectionCode.ReplaceAllString(s, "")
		for _, marker := range experimentClosers {
			if hasPrefixFold(s, marker) {
				return true
			}
		}
		return false
	}

	if cur.level > 0 && l.level > cur.level {
		return false
	}
	if cur.level > 0 && l.level < cur.level {
		return true
	}
	lower := strings.ToLower(s)
	for _, marker := range experimentClosers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// splitExperiments groups lines into experiment blocks. Each experiment
// heading closes the previous block; a discussion or conclusion heading
// closes the open block without starting another.
func splitExperiments(lines []line) []experimentBlock {
	var blocks []experimentBlock
	var cur *experimentBlock

	flush := func() {
		if cur != nil {
			blocks = append(blocks, *cur)
			cur = nil
		}
	}

	for _, l := range lines {
		if n, ok := parseExperimentHeading(l); ok {
			flush()
			cur = &experimentBlock{number: n, level: l.level}
			continue
		}
		if cur == nil {
			continue
		}
		if closesExperiment(l, *cur) {
			flush()
			continue
		}
		cur.lines = append(cur.lines, l)
	}
	flush()
	return blocks
}

// ExtractExperiments recovers one ExperimentDetail per experiment block,
// dropping blocks in which no field could be found.
func ExtractExperiments(text string) []types.ExperimentDetail {
	var out []types.ExperimentDetail
	for _, b := range splitExperiments(splitLines(text)) {
		names := experimentFieldNames
		exp := types.ExperimentDetail{
			Number:       b.number,
			Objectives:   sectionText(b.lines, names.objectives),
			Participants: sectionText(b.lines, names.participants),
			Tasks:        sectionText(b.lines, names.tasks),
			Procedure:    sectionText(b.lines, names.procedure),
			Analysis:     sectionText(b.lines, names.analysis),
			Results:      sectionText(b.lines, names.results),
		}
		if exp.IsEmpty() {
			continue
		}
		out = append(out, exp)
	}
	return out
}
