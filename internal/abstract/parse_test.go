// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package abstract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-abstractor/pkg/types"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		text string
		want types.PaperKind
	}{
		{"# 実験論文\n## 研究の背景", types.KindExperimental},
		{"Paper type: Experimental Paper", types.KindExperimental},
		{"## レビュー論文", types.KindReview},
		{"This is a Review Paper about X", types.KindReview},
		{"## Summary\nNothing special", types.KindGeneric},
		{"", types.KindGeneric},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectKind(tt.text), tt.text)
	}
}

func TestExtractSection(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		names []string
		want  string
	}{
		{
			name:  "heading with body until same level",
			text:  "## Summary\nThis paper proposes X.\nIt evaluates Y.\n\n## Methodology\nWe use Z.",
			names: []string{"Summary"},
			want:  "This paper proposes X. It evaluates Y.",
		},
		{
			name:  "deeper headings stay inside",
			text:  "### Methodology\n#### Data\nCollected logs.\n## Results\nDone.",
			names: []string{"Methodology"},
			want:  "Data Collected logs.",
		},
		{
			name:  "trailing text on header line",
			text:  "## Review Theme: **Attention** in vision\n## Review Necessity\nx",
			names: []string{"Review Theme"},
			want:  "Attention in vision",
		},
		{
			name:  "bold label without heading",
			text:  "**Summary**: Short text.\n**Results**: Good results.",
			names: []string{"Summary"},
			want:  "Short text.",
		},
		{
			name:  "colon label without heading",
			text:  "Intro line\nResults: first part\nsecond part\nLimitations: none",
			names: []string{"Results"},
			want:  "first part second part",
		},
		{
			name:  "bullets and numbers stripped",
			text:  "## Insights\n- one\n* two\n3. three\n・four",
			names: []string{"Insights"},
			want:  "one two three four",
		},
		{
			name:  "outline code before name",
			text:  "## A-1. 論文全体の背景と目的\n背景の説明。\n## A-2. 実験",
			names: []string{"論文全体の背景と目的", "A-1"},
			want:  "背景の説明。",
		},
		{
			name:  "second candidate name matches",
			text:  "# 概要\n日本語の要約。\n# 手法\n方法。",
			names: []string{"要約", "Summary", "概要"},
			want:  "日本語の要約。",
		},
		{
			name:  "body mention without colon is not a header",
			text:  "Summary of the results follows.\nNothing else.",
			names: []string{"Summary"},
			want:  "",
		},
		{
			name:  "no candidate present",
			text:  "## Methodology\nWe use Z.",
			names: []string{"Conclusions", "結論"},
			want:  "",
		},
		{
			name:  "italic underscores stripped",
			text:  "## Results\n_Large_ gains over the _baseline_. The snake_case flag stays (_see below_).",
			names: []string{"Results"},
			want:  "Large gains over the baseline. The snake_case flag stays (see below).",
		},
		{
			name:  "whitespace collapsed",
			text:  "## Results\n  many    spaces\t here  ",
			names: []string{"Results"},
			want:  "many spaces here",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSection(tt.text, tt.names)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, ExtractSection(tt.text, tt.names), "extraction must be idempotent")
		})
	}
}

func TestExtractList(t *testing.T) {
	text := "## Key Contributions\n- First contribution\n- Second contribution\n  continued here\n1. Third\n\n## Methodology\nx"
	got := ExtractList(text, []string{"Key Contributions"})
	assert.Equal(t, []string{"First contribution", "Second contribution continued here", "Third"}, got)

	assert.Equal(t, []string{"one plain paragraph"}, ExtractList("## Key Contributions\none plain\nparagraph", []string{"Key Contributions"}))
	assert.Nil(t, ExtractList("## Other\n- x", []string{"Key Contributions"}))
}

func TestParse_ReviewTheme(t *testing.T) {
	raw := "# レビュー論文\n\n## レビューの主題 **注意機構**の役割\n## レビューの必要性\n既存研究が分散している。\n## 論争点\n- 解釈可能性\n"
	rec := Parse(raw, Options{Language: "ja", ModelID: "gemini-2.0-flash-001"})

	require.Equal(t, types.KindReview, rec.Kind)
	require.NotNil(t, rec.Review)
	assert.Nil(t, rec.Experimental)
	assert.Nil(t, rec.Generic)
	assert.Equal(t, "注意機構の役割", rec.Review.ReviewTheme)
	assert.Equal(t, "既存研究が分散している。", rec.Review.ReviewNecessity)
	assert.Equal(t, "解釈可能性", rec.Review.Controversies)
	assert.Equal(t, "", rec.Review.Consensus)
	assert.Equal(t, "gemini-2.0-flash-001", rec.Common().ModelID)
}

func TestParse_ExperimentWithOnlyParticipants(t *testing.T) {
	raw := "# Experimental Paper\n## A-2 Experiments\n### Experiment 1\nParticipants: 24 undergraduate students (12 female).\n## General Discussion\nEverything converges."
	rec := Parse(raw, Options{Language: "en"})

	require.Equal(t, types.KindExperimental, rec.Kind)
	require.NotNil(t, rec.Experimental)
	require.Len(t, rec.Experimental.Experiments, 1)
	assert.Equal(t, types.ExperimentDetail{
		Number:       "1",
		Participants: "24 undergraduate students (12 female).",
	}, rec.Experimental.Experiments[0])
	assert.Equal(t, "Everything converges.", rec.Experimental.Discussion)
}

func TestParse_JapaneseExperiments(t *testing.T) {
	raw := `実験論文
## A-1. 論文全体の背景と目的
視覚探索の研究。
## 実験1
**実験参加者**: 大学生20名
**手続き**: 画面を見る
## 実験2
**結果と小括**: 効果あり
## 実験3
特になし
## 総合考察と結論
まとめ`
	rec := Parse(raw, Options{Language: "ja"})

	require.NotNil(t, rec.Experimental)
	exps := rec.Experimental.Experiments
	require.Len(t, exps, 2, "experiment without fields is dropped")
	assert.Equal(t, "1", exps[0].Number)
	assert.Equal(t, "大学生20名", exps[0].Participants)
	assert.Equal(t, "画面を見る", exps[0].Procedure)
	assert.Equal(t, "2", exps[1].Number)
	assert.Equal(t, "効果あり", exps[1].Results)
	assert.Equal(t, "まとめ", rec.Experimental.Discussion)
	assert.Equal(t, "視覚探索の研究。", rec.Experimental.Summary)
}

func TestParse_Generic(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := "## Summary\nA new method.\n\n## Key Contributions\n- Faster\n- Smaller\n\n## Results\nIt works.\n\n## Keywords\nTransformers, #Vision, efficiency"
	rec := Parse(raw, Options{Language: "en", ModelID: "m", ExtractKeywords: true, MetadataKeywords: "Vision, pruning", Now: now})

	require.Equal(t, types.KindGeneric, rec.Kind)
	require.NotNil(t, rec.Generic)
	g := rec.Generic
	assert.Equal(t, "A new method.", g.Summary)
	assert.Equal(t, []string{"Faster", "Smaller"}, g.KeyContributions)
	assert.Equal(t, "It works.", g.Results)
	assert.Empty(t, g.Methodology)
	assert.Equal(t, now, g.GeneratedAt)
	assert.Equal(t, []string{"academic", "efficiency", "pruning", "research-paper", "transformers", "vision"}, g.Keywords)
}

func TestParse_MalformedInputNeverPanics(t *testing.T) {
	for _, raw := range []string{"", "#", "####", "**", "：", "- ", "実験", "Experiment\n###\n**"} {
		assert.NotPanics(t, func() { Parse(raw, Options{ExtractKeywords: true}) }, raw)
	}
}

func TestExtractKeywords(t *testing.T) {
	t.Run("japanese default tag", func(t *testing.T) {
		got := ExtractKeywords("キーワード: 認知、記憶", "", "ja")
		assert.Equal(t, []string{"academic", "japanese", "research-paper", "記憶", "認知"}, got)
	})

	t.Run("capped and sorted", func(t *testing.T) {
		meta := "k01,k02,k03,k04,k05,k06,k07,k08,k09,k10,k11,k12,k13,k14,k15,k16"
		got := ExtractKeywords("", meta, "en")
		assert.Len(t, got, maxKeywords)
		assert.IsNonDecreasing(t, got)
	})

	t.Run("deduplicated case-insensitively", func(t *testing.T) {
		got := ExtractKeywords("Keywords: Memory, memory, #MEMORY", "", "en")
		assert.Equal(t, []string{"academic", "memory", "research-paper"}, got)
	})
}

func TestParseExperimentHeading(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"### 実験1", "1", true},
		{"## 実験 2: 視覚探索", "2", true},
		{"**Experiment 3**", "3", true},
		{"#### Study 4 - replication", "4", true},
		{"### A-2. 実験5の詳細", "5", true},
		{"Experiment 6:", "6", true},
		{"実験1では効果が見られた。", "", false},
		{"Experiment 2 showed no effect.", "", false},
		{"**実験参加者**: 20名", "", false},
	}
	for _, tt := range tests {
		got, ok := parseExperimentHeading(classify(tt.raw))
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}
