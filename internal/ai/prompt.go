// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/pdiddy/paper-abstractor/pkg/types"
)

const (
	maxFigures    = 10
	maxReferences = 5
	truncatedNote = "\n\n[Text truncated due to length...]"
)

// promptData feeds the prompt templates.
type promptData struct {
	MaxLength int
	Text      string
}

// englishPromptTmpl asks for headings the abstract parser recognizes.
var englishPromptTmpl = template.Must(template.New("en").Parse(`Analyze the following academic paper and create a structured abstract in English.

First decide the paper type and state it on the first line as exactly one of:
"Paper type: Experimental Paper", "Paper type: Review Paper", or "Paper type: Other".

For an Experimental Paper use these ## headings:
## Overall Background and Purpose
## Research Background
## Prior Research
## Objectives and Hypotheses
Then one ### Experiment N heading per experiment, each with the bold fields
**Objectives:**, **Participants:**, **Tasks:**, **Procedure:**, **Analysis:**, **Results:**
## General Discussion
## Academic Contributions
## Limitations

For a Review Paper use these ## headings:
## Review Theme and Purpose, ## Review Necessity, ## Main Theories, ## Discussion Classification,
## Landmark Studies, ## Consensus, ## Controversies, ## Conclusions, ## Future Directions

Otherwise use:
## Summary, ## Key Contributions (as a - bullet list), ## Methodology, ## Results,
## Insights, ## Limitations, ## Future Work

Finish with "## Keywords" followed by a comma-separated list.

Format rules:
- Important points as bullet lists (use -)
- Show quantitative results with specific numbers
- Mention figures or tables when they support a point
- Maximum {{.MaxLength}} characters per section

Paper text:
{{.Text}}
`))

// japanesePromptTmpl is the Japanese counterpart of englishPromptTmpl.
var japanesePromptTmpl = template.Must(template.New("ja").Parse(`以下の学術論文を分析し、構造化された要約を日本語で作成してください。

最初の行に論文の種類を「論文タイプ: 実験論文」「論文タイプ: レビュー論文」「論文タイプ: その他」のいずれかで記載してください。

実験論文の場合は次の ## 見出しを使用:
## 論文全体の背景と目的
## 研究の背景
## 先行研究と問題点
## 本研究の目的と仮説
各実験ごとに ### 実験N の見出しを付け、太字の項目
**目的と仮説:**、**実験参加者:**、**課題と刺激:**、**手続き:**、**分析方法:**、**結果と小括:** を記載
## 総合考察と結論
## 学術的貢献
## 研究の限界と今後の展望

レビュー論文の場合:
## レビューの主題と目的、## レビューの必要性、## 主要な理論・モデル、## 議論の分類、
## 画期的な研究、## 学術的コンセンサス、## 論争点、## 結論と総括、## 今後の課題

その他の場合:
## 要約、## 主要な貢献（- の箇条書き）、## 手法、## 結果、## 洞察、## 限界、## 今後の研究

最後に「## キーワード」の見出しの下にカンマ区切りでキーワードを記載してください。

形式：
- 重要なポイントは箇条書き（- を使用）
- 専門用語は日本語と英語を併記
- 定量的な結果は具体的な数値で示す
- 各セクション最大{{.MaxLength}}文字以内

論文テキスト：
{{.Text}}
`))

// renderPrompt executes the template for language with the prepared text.
func renderPrompt(language string, maxLength int, text string) (string, error) {
	tmpl := englishPromptTmpl
	if language == "ja" {
		tmpl = japanesePromptTmpl
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{MaxLength: maxLength, Text: text}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// prepareInput assembles the metadata header, the (possibly truncated)
// text, and optional figure captions and references.
func prepareInput(doc types.Document, cfg types.AbstractorConfig) string {
	var parts []string
	if doc.Metadata.Title != "" {
		parts = append(parts, "Title: "+doc.Metadata.Title)
	}
	if doc.Metadata.Author != "" {
		parts = append(parts, "Authors: "+doc.Metadata.Author)
	}
	if doc.Metadata.Year != "" {
		parts = append(parts, "Year: "+doc.Metadata.Year)
	}
	parts = append(parts, "")

	parts = append(parts, truncateRunes(doc.Text, cfg.MaxInputChars))

	if cfg.IncludeFigures && len(doc.Figures) > 0 {
		parts = append(parts, "\n\nFigures and Tables:")
		for _, f := range doc.Figures[:min(maxFigures, len(doc.Figures))] {
			parts = append(parts, fmt.Sprintf("- %s %s: %s", capitalize(f.Type), f.Number, f.Caption))
		}
	}
	if cfg.IncludeCitations && len(doc.References) > 0 {
		parts = append(parts, "\n\nSample References:")
		for _, r := range doc.References[:min(maxReferences, len(doc.References))] {
			parts = append(parts, "- "+r)
		}
	}
	return strings.Join(parts, "\n")
}

// truncateRunes cuts s to limit runes and appends a marker. A non-positive
// limit leaves s unchanged.
func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit]) + truncatedNote
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// stripCodeFence removes a ``` or ```markdown wrapper around the answer.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.Contains(s[:i], " ") {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
