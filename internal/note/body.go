// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package note

import (
	"fmt"
	"strings"

	"github.com/pdiddy/paper-abstractor/pkg/types"
)

// section writes "## heading" and text when text is not blank.
func section(b *strings.Builder, heading, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	fmt.Fprintf(b, "## %s\n\n%s\n\n", heading, text)
}

func field(b *strings.Builder, label, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	fmt.Fprintf(b, "**%s**: %s\n\n", label, text)
}

func (f *Formatter) body(doc types.Document, rec types.AbstractRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title(doc))

	switch {
	case rec.Kind == types.KindExperimental && rec.Experimental != nil:
		writeExperimental(&b, rec.Experimental)
	case rec.Kind == types.KindReview && rec.Review != nil:
		writeReview(&b, rec.Review)
	case rec.Generic != nil:
		writeGeneric(&b, rec.Generic)
	}

	if n := len(doc.Figures); n > 0 {
		b.WriteString("## Figures and Tables\n\n")
		for _, fig := range doc.Figures[:min(n, maxNoteFigures)] {
			label := "Figure"
			if fig.Type == "table" {
				label = "Table"
			}
			fmt.Fprintf(&b, "- **%s %s**: %s\n", label, fig.Number, fig.Caption)
		}
		b.WriteString("\n")
	}

	if n := len(doc.References); n > 0 {
		b.WriteString("## References (Sample)\n\n")
		for _, ref := range doc.References[:min(n, maxNoteReference)] {
			fmt.Fprintf(&b, "- %s\n", ref)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Personal Notes\n\n")
	return b.String()
}

func writeExperimental(b *strings.Builder, a *types.ExperimentalAbstract) {
	section(b, "Overall Background and Purpose", a.Summary)
	section(b, "Research Background", a.Background)
	section(b, "Prior Research", a.PriorResearch)
	section(b, "Objectives and Hypotheses", a.Objectives)

	if len(a.Experiments) > 0 {
		b.WriteString("## Experiments\n\n")
		for _, e := range a.Experiments {
			fmt.Fprintf(b, "### Experiment %s\n\n", e.Number)
			field(b, "Objectives", e.Objectives)
			field(b, "Participants", e.Participants)
			field(b, "Tasks and Stimuli", e.Tasks)
			field(b, "Procedure", e.Procedure)
			field(b, "Analysis", e.Analysis)
			field(b, "Results", e.Results)
		}
	}

	section(b, "General Discussion and Conclusions", a.Discussion)
	section(b, "Academic Contributions", a.Contributions)
	section(b, "Limitations and Future Directions", a.Limitations)
}

func writeReview(b *strings.Builder, a *types.ReviewAbstract) {
	section(b, "Review Theme and Purpose", a.Summary)
	section(b, "Review Theme", a.ReviewTheme)
	section(b, "Review Necessity", a.ReviewNecessity)
	section(b, "Main Theories", a.MainTheories)
	section(b, "Discussion Classification", a.DiscussionClassification)
	section(b, "Landmark Studies", a.LandmarkStudies)
	section(b, "Consensus", a.Consensus)
	section(b, "Controversies", a.Controversies)
	section(b, "Conclusions", a.Conclusions)
	section(b, "Future Directions", a.FutureDirections)
}

func writeGeneric(b *strings.Builder, a *types.GenericAbstract) {
	section(b, "Abstract", a.Summary)
	if len(a.KeyContributions) > 0 {
		b.WriteString("## Key Contributions\n\n")
		for _, c := range a.KeyContributions {
			fmt.Fprintf(b, "- %s\n", c)
		}
		b.WriteString("\n")
	}
	section(b, "Methodology", a.Methodology)
	section(b, "Results", a.Results)
	section(b, "Insights", a.Insights)
	section(b, "Limitations", a.Limitations)
	section(b, "Future Work", a.FutureWork)
}
