// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package note renders an abstract record as a Markdown note with YAML
// frontmatter and writes it into the vault.
package note

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-abstractor/pkg/types"
)

const (
	// DefaultPattern names notes when the output config leaves it empty.
	DefaultPattern = "{year}_{first_author}_{title_short}"

	maxTags          = 20
	maxFilename      = 100
	maxShortTitle    = 30
	doiSearchWindow  = 5000
	maxNoteFigures   = 10
	maxNoteReference = 5
)

var (
	doiPattern      = regexp.MustCompile(`10\.\d{4,}/[-._;()/:\w]+`)
	invalidFileChar = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	underscoreRun   = regexp.MustCompile(`_+`)
	invalidTagChar  = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)
	dashRun         = regexp.MustCompile(`-+`)

	// lastFirst matches a single "Last, First" author.
	lastFirst = regexp.MustCompile(`^\s*[^,\s]+,\s*[^,\s]+\s*$`)

	stopWords = map[string]bool{
		"a": true, "an": true, "the": true, "of": true, "for": true, "and": true,
		"or": true, "in": true, "on": true, "at": true, "to": true, "with": true, "by": true,
	}
)

// Formatter renders notes.
type Formatter struct {
	pattern  string
	language string

	// now is time.Now; tests pin it.
	now func() time.Time
}

// NewFormatter returns a Formatter using the output file pattern and the
// abstract language.
func NewFormatter(out types.OutputConfig, language string) *Formatter {
	pattern := out.FilePattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &Formatter{pattern: pattern, language: language, now: time.Now}
}

// frontmatter is the YAML header of a note. Empty fields are omitted.
type frontmatter struct {
	Title      string   `yaml:"title,omitempty"`
	Authors    []string `yaml:"authors,omitempty"`
	Year       string   `yaml:"year,omitempty"`
	Journal    string   `yaml:"journal,omitempty"`
	DOI        string   `yaml:"doi,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`
	Created    string   `yaml:"created,omitempty"`
	PDFPath    string   `yaml:"pdf-path,omitempty"`
	AbstractBy string   `yaml:"abstract-by,omitempty"`
	Language   string   `yaml:"language,omitempty"`
	PageCount  int      `yaml:"page-count,omitempty"`
	FileSizeMB float64  `yaml:"file-size-mb,omitempty"`
	PaperType  string   `yaml:"paper_type,omitempty"`
}

// Format returns the full note: frontmatter, then the body.
func (f *Formatter) Format(doc types.Document, rec types.AbstractRecord) (string, error) {
	fm, err := yaml.Marshal(f.frontmatter(doc, rec))
	if err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}
	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString(f.body(doc, rec))
	return b.String(), nil
}

func (f *Formatter) frontmatter(doc types.Document, rec types.AbstractRecord) frontmatter {
	common := rec.Common()
	lang := common.Language
	if lang == "" {
		lang = f.language
	}
	model := common.ModelID
	if model == "" {
		model = "unknown"
	}
	return frontmatter{
		Title:      title(doc),
		Authors:    SplitAuthors(doc.Metadata.Author),
		Year:       f.year(doc),
		Journal:    doc.Metadata.Subject,
		DOI:        ExtractDOI(doc.Text),
		Tags:       f.Tags(common.Keywords, doc.Metadata.Year),
		Created:    f.now().Format("2006-01-02"),
		PDFPath:    "[[" + filepath.Base(doc.Path) + "]]",
		AbstractBy: model,
		Language:   lang,
		PageCount:  doc.PageCount,
		FileSizeMB: doc.SizeMB,
		PaperType:  string(rec.Kind),
	}
}

func title(doc types.Document) string {
	if t := strings.TrimSpace(doc.Metadata.Title); t != "" {
		return t
	}
	return strings.TrimSuffix(filepath.Base(doc.Path), filepath.Ext(doc.Path))
}

func (f *Formatter) year(doc types.Document) string {
	if doc.Metadata.Year != "" {
		return doc.Metadata.Year
	}
	return strconv.Itoa(f.now().Year())
}

// Filename returns the note base name, without extension, built from the
// file pattern. Recognized fields are {year}, {first_author}, {title_short}
// and {title}.
func (f *Formatter) Filename(doc types.Document) string {
	t := title(doc)
	r := strings.NewReplacer(
		"{year}", f.year(doc),
		"{first_author}", FirstAuthor(doc.Metadata.Author),
		"{title_short}", ShortTitle(t),
		"{title}", t,
	)
	return CleanFilename(r.Replace(f.pattern))
}

// SplitAuthors splits an author field on " and ", then ";", then ",". A
// single "Last, First" name is kept whole.
func SplitAuthors(s string) []string {
	var parts []string
	switch {
	case strings.TrimSpace(s) == "":
		return nil
	case strings.Contains(s, " and "):
		parts = strings.Split(s, " and ")
	case strings.Contains(s, ";"):
		parts = strings.Split(s, ";")
	case strings.Contains(s, ",") && !lastFirst.MatchString(s):
		parts = strings.Split(s, ",")
	default:
		parts = []string{s}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FirstAuthor returns the family name of the first author, or "Unknown".
func FirstAuthor(s string) string {
	authors := SplitAuthors(s)
	if len(authors) == 0 {
		return "Unknown"
	}
	first := authors[0]
	if lastFirst.MatchString(first) {
		return strings.TrimSpace(first[:strings.Index(first, ",")])
	}
	words := strings.Fields(first)
	return words[len(words)-1]
}

// ShortTitle keeps the first three non-stop-words of title, cut back to a
// word boundary when longer than 30 characters.
func ShortTitle(title string) string {
	var words []string
	for _, w := range strings.Fields(title) {
		if stopWords[strings.ToLower(w)] {
			continue
		}
		words = append(words, w)
		if len(words) == 3 {
			break
		}
	}
	short := strings.Join(words, " ")
	if len(short) > maxShortTitle {
		cut := truncateBytes(short, maxShortTitle)
		if i := strings.LastIndex(cut, " "); i > 0 {
			cut = cut[:i]
		}
		short = cut
	}
	return short
}

// CleanFilename makes name safe for the filesystem and caps it at 100 bytes
// on a rune boundary.
func CleanFilename(name string) string {
	name = invalidFileChar.ReplaceAllString(name, "-")
	name = whitespaceRun.ReplaceAllString(name, "_")
	name = underscoreRun.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_-.")
	return truncateBytes(name, maxFilename)
}

func truncateBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !isRuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// ExtractDOI returns the first DOI in the opening part of text.
func ExtractDOI(text string) string {
	return doiPattern.FindString(truncateBytes(text, doiSearchWindow))
}

// Tags returns the note tags: keywords, the default tags, a language tag
// and "year-YYYY", cleaned to [a-z0-9-_], deduplicated in order, at most 20.
func (f *Formatter) Tags(keywords []string, year string) []string {
	raw := append([]string{}, keywords...)
	raw = append(raw, "research-paper", "academic")
	if f.language == "ja" {
		raw = append(raw, "japanese")
	}
	if year != "" {
		raw = append(raw, "year-"+year)
	}

	seen := make(map[string]bool, len(raw))
	var tags []string
	for _, t := range raw {
		t = cleanTag(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}

func cleanTag(t string) string {
	t = invalidTagChar.ReplaceAllString(t, "-")
	t = dashRun.ReplaceAllString(t, "-")
	return strings.ToLower(strings.Trim(t, "-"))
}
