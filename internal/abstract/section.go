// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package abstract

import (
	"regexp"
	"strings"
)

// line is one input line with its heading depth resolved.
type line struct {
	level int    // count of leading '#'; 0 for body text
	text  string // trimmed, heading marker removed
}

func classify(raw string) line {
	s := strings.TrimSpace(raw)
	level := 0
	for level < len(s) && s[level] == '#' {
		level++
	}
	return line{level: level, text: strings.TrimSpace(s[level:])}
}

func splitLines(text string) []line {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]line, len(raw))
	for i, r := range raw {
		out[i] = classify(r)
	}
	return out
}

var (
	bulletPattern = regexp.MustCompile(`^(?:[-*+]\s+|[•・]\s*|\d+[.)]\s+)`)

	// sectionCode matches outline codes such as "A-1." or "B-2:".
	sectionCode = regexp.MustCompile(`^[A-Z]-\d+[.:：]?\s*`)

	// labelPattern matches a short "Label:" line that opens a new field.
	labelPattern = regexp.MustCompile(`^[\p{L}][\p{L}\p{N} ()/&・-]{0,39}[:：](\s|$)`)
)

func stripBullet(s string) (string, bool) {
	loc := bulletPattern.FindStringIndex(s)
	if loc == nil {
		return s, false
	}
	return strings.TrimSpace(s[loc[1]:]), true
}

func stripBold(s string) (string, bool) {
	for _, m := range []string{"**", "__"} {
		if strings.HasPrefix(s, m) {
			return strings.TrimSpace(s[len(m):]), true
		}
	}
	return s, false
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// matchHeader reports whether l introduces one of names and returns the
// text that follows the name on the same line. Headings match by prefix;
// body lines need a bold marker or a colon after the name.
func matchHeader(l line, names []string) (string, bool) {
	s := l.text
	if l.level == 0 {
		s, _ = stripBullet(s)
	}
	s, bold := stripBold(s)

	forms := []string{s}
	if code := sectionCode.FindString(s); code != "" {
		forms = append(forms, s[len(code):])
	}

	for _, name := range names {
		for _, form := range forms {
			if !hasPrefixFold(form, name) {
				continue
			}
			rest := form[len(name):]
			if l.level == 0 && !bold && !startsWithColon(rest) {
				continue
			}
			return trimTrailing(rest), true
		}
	}
	return "", false
}

func startsWithColon(s string) bool {
	s = strings.TrimLeft(s, " *_")
	return strings.HasPrefix(s, ":") || strings.HasPrefix(s, "：")
}

func trimTrailing(s string) string {
	return strings.TrimSpace(strings.TrimLeft(s, " *_:：.-"))
}

// isLabel reports whether a body line opens a new bold or "Label:" field.
func isLabel(l line) bool {
	if l.level != 0 || l.text == "" {
		return false
	}
	s, _ := stripBullet(l.text)
	if strings.HasPrefix(s, "**") || strings.HasPrefix(s, "__") {
		return true
	}
	return labelPattern.MatchString(s)
}

// scanState is the state of a sectionScanner.
type scanState int

const (
	seekingHeader scanState = iota
	inSection
	finished
)

// fragment is one captured piece of section text.
type fragment struct {
	text   string
	bullet bool
}

// sectionScanner walks lines looking for the first header that matches one
// of its names and captures everything up to the next header at the same
// or a shallower level.
type sectionScanner struct {
	names []string
	state scanState
	level int
	frags []fragment
}

func newScanner(names []string) *sectionScanner {
	return &sectionScanner{names: names}
}

// feed advances the scanner by one line.
func (sc *sectionScanner) feed(l line) {
	switch sc.state {
	case seekingHeader:
		if trailing, ok := matchHeader(l, sc.names); ok {
			sc.state = inSection
			sc.level = l.level
			sc.capture(trailing, false)
		}
	case inSection:
		if trailing, ok := matchHeader(l, sc.names); ok {
			sc.level = l.level
			sc.capture(trailing, false)
			return
		}
		if sc.terminates(l) {
			sc.state = finished
			return
		}
		text, bullet := l.text, false
		if l.level == 0 {
			text, bullet = stripBullet(text)
		}
		sc.capture(text, bullet)
	}
}

// terminates reports whether l closes the current section. A section opened
// by a bold or colon label closes at any heading or the next label.
func (sc *sectionScanner) terminates(l line) bool {
	if l.level > 0 {
		return sc.level == 0 || l.level <= sc.level
	}
	return sc.level == 0 && isLabel(l)
}

func (sc *sectionScanner) capture(text string, bullet bool) {
	if text == "" {
		return
	}
	sc.frags = append(sc.frags, fragment{text: text, bullet: bullet})
}

func (sc *sectionScanner) run(lines []line) []fragment {
	for _, l := range lines {
		if sc.state == finished {
			break
		}
		sc.feed(l)
	}
	return sc.frags
}

var emphasis = strings.NewReplacer("**", "", "__", "", "*", "")

// Single underscores are italics only at the edges of a word, so
// snake_case identifiers keep theirs.
var (
	italicOpen  = regexp.MustCompile(`^([("'「『（]*)_+`)
	italicClose = regexp.MustCompile(`_+([.,;:!?)"'」』）。、]*)$`)
)

// clean strips emphasis markers and collapses whitespace.
func clean(s string) string {
	words := strings.Fields(emphasis.Replace(s))
	out := words[:0]
	for _, w := range words {
		w = italicOpen.ReplaceAllString(w, "$1")
		w = italicClose.ReplaceAllString(w, "$1")
		if w != "" {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}

// ExtractSection returns the text of the first section headed by one of
// names, or "" when none is present.
func ExtractSection(text string, names []string) string {
	return sectionText(splitLines(text), names)
}

func sectionText(lines []line, names []string) string {
	frags := newScanner(names).run(lines)
	parts := make([]string, len(frags))
	for i, f := range frags {
		parts[i] = f.text
	}
	return clean(strings.Join(parts, " "))
}

// ExtractList returns the bullet or numbered items of the first section
// headed by one of names. Unmarked lines continue the previous item; a
// section with no markers at all yields a single item.
func ExtractList(text string, names []string) []string {
	frags := newScanner(names).run(splitLines(text))

	var items []string
	for _, f := range frags {
		switch {
		case f.bullet || len(items) == 0:
			items = append(items, f.text)
		default:
			items[len(items)-1] += " " + f.text
		}
	}

	out := items[:0]
	for _, it := range items {
		if c := clean(it); c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
