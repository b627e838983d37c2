// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package note

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-abstractor/pkg/types"
)

var fixedNow = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

func newTestFormatter(lang string) *Formatter {
	f := NewFormatter(types.OutputConfig{}, lang)
	f.now = func() time.Time { return fixedNow }
	return f
}

func sampleDoc() types.Document {
	return types.Document{
		Path:      "/papers/attention.pdf",
		Text:      "Attention Is All You Need\nhttps://doi.org/10.48550/arXiv.1706.03762 more text",
		PageCount: 15,
		SizeMB:    2.1,
		Metadata: types.DocMetadata{
			Title:   "Attention Is All You Need",
			Author:  "Ashish Vaswani and Noam Shazeer",
			Year:    "2017",
			Subject: "NeurIPS",
		},
		Figures: []types.Figure{
			{Type: "figure", Number: "1", Caption: "The Transformer architecture.", Page: 3},
			{Type: "table", Number: "2", Caption: "BLEU scores.", Page: 8},
		},
		References: []string{"[1] Bahdanau et al.", "[2] Cho et al."},
	}
}

func TestFormat_Generic(t *testing.T) {
	f := newTestFormatter("en")
	rec := types.AbstractRecord{
		Kind: types.KindGeneric,
		Generic: &types.GenericAbstract{
			AbstractCommon: types.AbstractCommon{
				Summary:  "A model built only on attention.",
				Keywords: []string{"Transformers", "machine translation"},
				Language: "en",
				ModelID:  "gemini-2.0-flash-001",
			},
			KeyContributions: []string{"Transformer", "Multi-head attention"},
			Results:          "State of the art BLEU.",
		},
	}

	out, err := f.Format(sampleDoc(), rec)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "---\n"))

	parts := strings.SplitN(out, "---\n", 3)
	require.Len(t, parts, 3)

	var fm map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(parts[1]), &fm))
	assert.Equal(t, "Attention Is All You Need", fm["title"])
	assert.Equal(t, []any{"Ashish Vaswani", "Noam Shazeer"}, fm["authors"])
	assert.Equal(t, "2017", fm["year"])
	assert.Equal(t, "NeurIPS", fm["journal"])
	assert.Equal(t, "10.48550/arXiv.1706.03762", fm["doi"])
	assert.Equal(t, "2026-04-02", fm["created"])
	assert.Equal(t, "[[attention.pdf]]", fm["pdf-path"])
	assert.Equal(t, "gemini-2.0-flash-001", fm["abstract-by"])
	assert.Equal(t, 15, fm["page-count"])
	assert.Equal(t, "unknown", fm["paper_type"])
	assert.Equal(t, []any{"transformers", "machine-translation", "research-paper", "academic", "year-2017"}, fm["tags"])

	body := parts[2]
	assert.Contains(t, body, "# Attention Is All You Need\n")
	assert.Contains(t, body, "## Abstract\n\nA model built only on attention.")
	assert.Contains(t, body, "## Key Contributions\n\n- Transformer\n- Multi-head attention\n")
	assert.Contains(t, body, "## Results\n\nState of the art BLEU.")
	assert.NotContains(t, body, "## Methodology", "empty sections are omitted")
	assert.Contains(t, body, "- **Figure 1**: The Transformer architecture.")
	assert.Contains(t, body, "- **Table 2**: BLEU scores.")
	assert.Contains(t, body, "## References (Sample)\n\n- [1] Bahdanau et al.")
	assert.True(t, strings.HasSuffix(body, "## Personal Notes\n\n"))
}

func TestFormat_Experimental(t *testing.T) {
	f := newTestFormatter("ja")
	rec := types.AbstractRecord{
		Kind: types.KindExperimental,
		Experimental: &types.ExperimentalAbstract{
			AbstractCommon: types.AbstractCommon{Summary: "視覚探索の研究。", Language: "ja"},
			Experiments: []types.ExperimentDetail{
				{Number: "1", Participants: "大学生20名"},
				{Number: "2", Results: "効果あり"},
			},
			Discussion: "まとめ",
		},
	}
	doc := types.Document{Path: "/in/visual_search.pdf", Text: "no identifiers"}

	out, err := f.Format(doc, rec)
	require.NoError(t, err)
	assert.Contains(t, out, "title: visual_search\n", "falls back to the file stem")
	assert.Contains(t, out, "year: \"2026\"\n", "falls back to the current year")
	assert.Contains(t, out, "abstract-by: unknown\n")
	assert.Contains(t, out, "paper_type: experimental\n")
	assert.NotContains(t, out, "doi:")
	assert.NotContains(t, out, "journal:")
	assert.Contains(t, out, "- japanese\n")
	assert.Contains(t, out, "### Experiment 1\n\n**Participants**: 大学生20名")
	assert.Contains(t, out, "### Experiment 2\n\n**Results**: 効果あり")
	assert.Contains(t, out, "## General Discussion and Conclusions\n\nまとめ")
	assert.NotContains(t, out, "## Figures and Tables")
}

func TestFormat_Review(t *testing.T) {
	f := newTestFormatter("en")
	rec := types.AbstractRecord{
		Kind: types.KindReview,
		Review: &types.ReviewAbstract{
			ReviewTheme:   "Attention in vision",
			Controversies: "Interpretability",
		},
	}
	out, err := f.Format(sampleDoc(), rec)
	require.NoError(t, err)
	assert.Contains(t, out, "## Review Theme\n\nAttention in vision")
	assert.Contains(t, out, "## Controversies\n\nInterpretability")
	assert.NotContains(t, out, "## Consensus")
}

func TestFilename(t *testing.T) {
	f := newTestFormatter("en")
	tests := []struct {
		name string
		doc  types.Document
		want string
	}{
		{
			name: "default pattern",
			doc:  sampleDoc(),
			want: "2017_Vaswani_Attention_Is_All",
		},
		{
			name: "stop words dropped",
			doc: types.Document{Metadata: types.DocMetadata{
				Title: "On the Role of Memory in Learning", Author: "Jane Q. Doe", Year: "2020",
			}},
			want: "2020_Doe_Role_Memory_Learning",
		},
		{
			name: "last-first author",
			doc: types.Document{Metadata: types.DocMetadata{
				Title: "Deep Learning", Author: "LeCun, Yann", Year: "2015",
			}},
			want: "2015_LeCun_Deep_Learning",
		},
		{
			name: "unsafe characters and missing author",
			doc: types.Document{Path: "/x/a.pdf", Metadata: types.DocMetadata{
				Title: "What/Why: A <Study>?", Year: "2021",
			}},
			want: "2021_Unknown_What-Why-_-Study",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Filename(tt.doc))
		})
	}
}

func TestFilename_CustomPattern(t *testing.T) {
	f := NewFormatter(types.OutputConfig{FilePattern: "{first_author} - {title}"}, "en")
	got := f.Filename(sampleDoc())
	assert.Equal(t, "Vaswani_-_Attention_Is_All_You_Need", got)
}

func TestSplitAuthors(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"A. Smith and B. Jones", []string{"A. Smith", "B. Jones"}},
		{"A. Smith; B. Jones;", []string{"A. Smith", "B. Jones"}},
		{"Alice Smith, Bob Jones, Carol White", []string{"Alice Smith", "Bob Jones", "Carol White"}},
		{"Smith, John", []string{"Smith, John"}},
		{"Single Author", []string{"Single Author"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitAuthors(tt.in), tt.in)
	}
}

func TestShortTitle(t *testing.T) {
	assert.Equal(t, "Attention Is All", ShortTitle("Attention Is All You Need"))
	assert.Equal(t, "Extraordinarily", ShortTitle("Extraordinarily Longwindedtitlewords Everywhere"))
	assert.Equal(t, "", ShortTitle("of the and"))
}

func TestCleanFilename(t *testing.T) {
	assert.Equal(t, "a-b_c", CleanFilename("  a:b   c. "))
	assert.Equal(t, "x", CleanFilename("__x__"))
	long := CleanFilename(strings.Repeat("長", 60))
	assert.LessOrEqual(t, len(long), maxFilename)
	assert.True(t, strings.HasPrefix(strings.Repeat("長", 60), long))
}

func TestTags(t *testing.T) {
	f := newTestFormatter("en")

	got := f.Tags([]string{"Deep Learning", "deep-learning", "記憶", "C++"}, "2019")
	assert.Equal(t, []string{"deep-learning", "c", "research-paper", "academic", "year-2019"}, got)

	many := make([]string, 30)
	for i := range many {
		many[i] = "tag" + strings.Repeat("x", i)
	}
	assert.Len(t, f.Tags(many, ""), maxTags)
}

func TestExtractDOI(t *testing.T) {
	assert.Equal(t, "10.1038/nature14539", ExtractDOI("doi: 10.1038/nature14539 "))
	assert.Empty(t, ExtractDOI("no doi here"))
	late := strings.Repeat("x", doiSearchWindow) + " 10.1038/nature14539"
	assert.Empty(t, ExtractDOI(late), "only the opening text is searched")
}

func TestWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "notes", "2026")
	var w Writer

	p1, err := w.Write(dir, "2017_Vaswani_Attention", "first")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2017_Vaswani_Attention.md"), p1)

	p2, err := w.Write(dir, "2017_Vaswani_Attention", "second")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2017_Vaswani_Attention_1.md"), p2)

	p3, err := w.Write(dir, "2017_Vaswani_Attention", "third")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2017_Vaswani_Attention_2.md"), p3)

	data, err := os.ReadFile(p1)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temporary files remain")
}

func TestWriter_WriteConcurrentSameName(t *testing.T) {
	const writers = 16
	var w Writer
	for round := 0; round < 50; round++ {
		dir := t.TempDir()

		paths := make([]string, writers)
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				p, err := w.Write(dir, "2024_Smith_Deep", strings.Repeat("x", i+1))
				assert.NoError(t, err)
				paths[i] = p
			}(i)
		}
		wg.Wait()

		seen := make(map[string]bool, writers)
		for i, p := range paths {
			require.NotEmpty(t, p)
			assert.False(t, seen[p], "path %s returned twice", p)
			seen[p] = true

			data, err := os.ReadFile(p)
			require.NoError(t, err)
			assert.Equal(t, strings.Repeat("x", i+1), string(data))
		}

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, writers)
	}
}
