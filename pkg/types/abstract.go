// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PaperKind identifies which AbstractRecord variant was produced.
type PaperKind string

const (
	KindExperimental PaperKind = "experimental"
	KindReview       PaperKind = "review"
	KindGeneric      PaperKind = "unknown"
)

// AbstractRecord is the typed result of parsing one AI response. Exactly one
// of Experimental, Review, or Generic is set, selected by Kind.
type AbstractRecord struct {
	Kind         PaperKind
	Experimental *ExperimentalAbstract
	Review       *ReviewAbstract
	Generic      *GenericAbstract
}

// Common returns the fields shared by every variant.
func (r AbstractRecord) Common() AbstractCommon {
	switch r.Kind {
	case KindExperimental:
		if r.Experimental != nil {
			return r.Experimental.AbstractCommon
		}
	case KindReview:
		if r.Review != nil {
			return r.Review.AbstractCommon
		}
	default:
		if r.Generic != nil {
			return r.Generic.AbstractCommon
		}
	}
	return AbstractCommon{}
}

// AbstractCommon holds the fields every variant carries.
type AbstractCommon struct {
	Summary     string    `json:"summary" yaml:"summary"`
	Keywords    []string  `json:"keywords" yaml:"keywords"`
	Language    string    `json:"language" yaml:"language"`
	ModelID     string    `json:"model_id" yaml:"model_id"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}

// ExperimentalAbstract describes an empirical paper with one or more experiments.
type ExperimentalAbstract struct {
	AbstractCommon

	Background    string             `json:"background" yaml:"background"`
	PriorResearch string             `json:"prior_research" yaml:"prior_research"`
	Objectives    string             `json:"objectives" yaml:"objectives"`
	Experiments   []ExperimentDetail `json:"experiments" yaml:"experiments"`
	Discussion    string             `json:"discussion" yaml:"discussion"`
	Contributions string             `json:"contributions" yaml:"contributions"`
	Limitations   string             `json:"limitations" yaml:"limitations"`
}

// ReviewAbstract describes a review or survey paper.
type ReviewAbstract struct {
	AbstractCommon

	ReviewTheme              string `json:"review_theme" yaml:"review_theme"`
	ReviewNecessity          string `json:"review_necessity" yaml:"review_necessity"`
	MainTheories             string `json:"main_theories" yaml:"main_theories"`
	DiscussionClassification string `json:"discussion_classification" yaml:"discussion_classification"`
	LandmarkStudies          string `json:"landmark_studies" yaml:"landmark_studies"`
	Consensus                string `json:"consensus" yaml:"consensus"`
	Controversies            string `json:"controversies" yaml:"controversies"`
	Conclusions              string `json:"conclusions" yaml:"conclusions"`
	FutureDirections         string `json:"future_directions" yaml:"future_directions"`
}

// GenericAbstract is the fallback when no paper-type marker is present.
type GenericAbstract struct {
	AbstractCommon

	KeyContributions []string `json:"key_contributions" yaml:"key_contributions"`
	Methodology      string   `json:"methodology" yaml:"methodology"`
	Results          string   `json:"results" yaml:"results"`
	Insights         string   `json:"insights" yaml:"insights"`
	Limitations      string   `json:"limitations" yaml:"limitations"`
	FutureWork       string   `json:"future_work" yaml:"future_work"`
}

// ExperimentDetail is one experiment block of an experimental paper.
type ExperimentDetail struct {
	Number       string `json:"number" yaml:"number"`
	Objectives   string `json:"objectives" yaml:"objectives"`
	Participants string `json:"participants" yaml:"participants"`
	Tasks        string `json:"tasks" yaml:"tasks"`
	Procedure    string `json:"procedure" yaml:"procedure"`
	Analysis     string `json:"analysis" yaml:"analysis"`
	Results      string `json:"results" yaml:"results"`
}

// IsEmpty reports whether every text field other than Number is blank.
func (e ExperimentDetail) IsEmpty() bool {
	return e.Objectives == "" && e.Participants == "" && e.Tasks == "" &&
		e.Procedure == "" && e.Analysis == "" && e.Results == ""
}
