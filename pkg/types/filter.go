// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Stage names a step of the admission funnel.
type Stage string

const (
	StageFilename Stage = "filename"
	StageSize     Stage = "size"
	StageMetadata Stage = "metadata"
	StageContent  Stage = "content"
)

// ScoringRule is a named pattern with a signed weight. Rules are matched
// against the lower-cased filename (negative rules) or a lower-cased text
// sample (positive rules).
type ScoringRule struct {
	// Name identifies the rule for overrides (e.g. "invoice_pattern").
	Name string `json:"name" yaml:"name"`

	// Pattern is a literal substring, or a regular expression when IsRegex is set.
	Pattern string `json:"pattern" yaml:"pattern"`

	// Weight is added to the stage score when the pattern matches.
	Weight float64 `json:"weight" yaml:"weight"`

	// Description is the human-readable reason recorded on a match.
	Description string `json:"description" yaml:"description"`

	IsRegex bool `json:"is_regex" yaml:"is_regex"`
}

// RuleOverride is a caller-supplied change to a rule set. A weight-only
// override (decoded from a bare number) changes the weight of an existing
// rule and is ignored for unknown names. A full override replaces or
// creates the named rule.
type RuleOverride struct {
	WeightOnly  bool    `json:"-" yaml:"-"`
	Pattern     string  `json:"pattern" yaml:"pattern"`
	Weight      float64 `json:"score" yaml:"score"`
	Description string  `json:"description" yaml:"description"`
	IsRegex     bool    `json:"is_regex" yaml:"is_regex"`
}

// FilterResult is the outcome of evaluating one PDF. It is built once and
// not modified afterwards. Score always equals the sum of StageScores.
type FilterResult struct {
	Accepted bool `json:"accepted" yaml:"accepted"`

	Score float64 `json:"score" yaml:"score"`

	// Reasons lists human-readable findings; the first entry summarizes the
	// decision relative to the threshold.
	Reasons []string `json:"reasons" yaml:"reasons"`

	// StageScores holds the score of every stage that ran. Stages skipped by
	// an early exit are absent.
	StageScores map[Stage]float64 `json:"stage_scores" yaml:"stage_scores"`
}

// StageTotal returns the sum of all recorded stage scores.
func (r FilterResult) StageTotal() float64 {
	var total float64
	for _, s := range r.StageScores {
		total += s
	}
	return total
}
