// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package abstract

// Candidate heading names per field, localized first then English.
var (
	experimentalMarkers = []string{"実験論文", "Experimental Paper"}
	reviewMarkers       = []string{"レビュー論文", "Review Paper"}

	keywordNames = []string{"キーワード", "Keywords", "タグ", "Tags"}
)

var experimentalNames = struct {
	summary, background, priorResearch, objectives []string
	discussion, contributions, limitations         []string
}{
	summary:       []string{"論文全体の背景と目的", "A-1", "研究の背景", "Overall Background and Purpose", "Summary"},
	background:    []string{"研究の背景", "Research Background", "Background"},
	priorResearch: []string{"先行研究と問題点", "Prior Research", "Related Work"},
	objectives:    []string{"本研究の目的と仮説", "Objectives and Hypotheses", "Research Objectives"},
	discussion:    []string{"総合考察と結論", "General Discussion", "A-3", "結果の統合"},
	contributions: []string{"学術的貢献", "Academic Contributions", "Contributions"},
	limitations:   []string{"研究の限界と今後の展望", "限界", "Limitations"},
}

var reviewNames = struct {
	summary, theme, necessity, theories, classification []string
	landmarks, consensus, controversies                 []string
	conclusions, future                                 []string
}{
	summary:        []string{"レビューの主題と目的", "B-1", "レビューの主題", "Review Theme and Purpose"},
	theme:          []string{"レビューの主題", "Review Theme", "Review Topic"},
	necessity:      []string{"レビューの必要性", "Review Necessity", "Need for the Review"},
	theories:       []string{"主要な理論・モデル", "Main Theories", "Key Theories and Models"},
	classification: []string{"議論の分類", "Discussion Classification", "Classification of Arguments"},
	landmarks:      []string{"画期的な研究", "Landmark Studies"},
	consensus:      []string{"コンセンサス", "学術的コンセンサス", "Consensus"},
	controversies:  []string{"論争点", "Controversies"},
	conclusions:    []string{"結論と総括", "著者らの結論", "Conclusions"},
	future:         []string{"今後の課題", "Future Directions"},
}

var genericNames = struct {
	summary, contributions, methodology, results []string
	insights, limitations, future                []string
}{
	summary:       []string{"要約", "Summary", "概要", "論文全体の背景と目的", "レビューの主題と目的"},
	contributions: []string{"主要な貢献", "Key Contributions", "主要貢献", "学術的貢献"},
	methodology:   []string{"手法", "Methodology", "方法", "実験手法"},
	results:       []string{"結果", "Results", "実験結果", "結果と小括"},
	insights:      []string{"洞察", "Insights", "考察", "総合考察"},
	limitations:   []string{"限界", "Limitations", "制限事項", "研究の限界"},
	future:        []string{"今後の研究", "Future Work", "将来の研究", "今後の展望"},
}

// Field names inside one experiment block.
var experimentFieldNames = struct {
	objectives, participants, tasks, procedure, analysis, results []string
}{
	objectives:   []string{"目的と仮説", "Objectives", "Hypothesis", "Purpose"},
	participants: []string{"実験参加者", "Participants", "参加者", "Subjects"},
	tasks:        []string{"課題と刺激", "Tasks", "Stimuli", "課題", "Materials"},
	procedure:    []string{"手続き", "Procedure", "プロシージャ"},
	analysis:     []string{"分析方法", "Statistical Analysis", "Analysis", "統計分析"},
	results:      []string{"結果と小括", "Results", "結果"},
}

// experimentClosers end the current experiment block when they open a heading.
var experimentClosers = []string{"総合考察", "結論", "General Discussion", "Discussion", "Conclusion", "A-3"}
