// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/paper-abstractor/pkg/types"
)

// DefaultPositiveRules are matched against the content sample.
func DefaultPositiveRules() []types.ScoringRule {
	return []types.ScoringRule{
		{Name: "doi_found", Pattern: `10\.\d{4,9}/[-._;()/:\w]+`, Weight: 50, Description: "DOI pattern found", IsRegex: true},
		{Name: "abstract_section", Pattern: "abstract", Weight: 20, Description: "Abstract section found"},
		{Name: "references_section", Pattern: "references", Weight: 20, Description: "References section found"},
		{Name: "introduction_section", Pattern: "introduction", Weight: 15, Description: "Introduction section found"},
		{Name: "conclusion_section", Pattern: "conclusion", Weight: 10, Description: "Conclusion section found"},
		{Name: "methodology_section", Pattern: "methodology", Weight: 10, Description: "Methodology section found"},
	}
}

// DefaultNegativeRules are matched against the lower-cased filename.
func DefaultNegativeRules() []types.ScoringRule {
	return []types.ScoringRule{
		{Name: "invoice_pattern", Pattern: "invoice", Weight: -100, Description: "Invoice pattern in filename"},
		{Name: "receipt_pattern", Pattern: "receipt", Weight: -100, Description: "Receipt pattern in filename"},
		{Name: "presentation_pattern", Pattern: "presentation", Weight: -50, Description: "Presentation pattern in filename"},
		{Name: "slides_pattern", Pattern: "slides", Weight: -50, Description: "Slides pattern in filename"},
		{Name: "manual_pattern", Pattern: "manual", Weight: -70, Description: "Manual pattern in filename"},
		{Name: "brochure_pattern", Pattern: "brochure", Weight: -70, Description: "Brochure pattern in filename"},
	}
}

// MergeRules returns a copy of defaults with overrides applied in name
// order. A weight-only override changes an existing rule and is ignored for
// unknown names; a full override replaces the named rule or appends a new one.
func MergeRules(defaults []types.ScoringRule, overrides map[string]types.RuleOverride) []types.ScoringRule {
	rules := make([]types.ScoringRule, len(defaults))
	copy(rules, defaults)

	index := make(map[string]int, len(rules))
	for i, r := range rules {
		index[r.Name] = i
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		o := overrides[name]
		i, exists := index[name]
		if o.WeightOnly {
			if exists {
				rules[i].Weight = o.Weight
			}
			continue
		}
		desc := o.Description
		if desc == "" {
			desc = name
		}
		rule := types.ScoringRule{
			Name:        name,
			Pattern:     o.Pattern,
			Weight:      o.Weight,
			Description: desc,
			IsRegex:     o.IsRegex,
		}
		if exists {
			rules[i] = rule
			continue
		}
		index[name] = len(rules)
		rules = append(rules, rule)
	}
	return rules
}

// matcher is a compiled ScoringRule.
type matcher struct {
	rule types.ScoringRule
	re   *regexp.Regexp
}

// compileRules prepares rules for matching against lower-cased text.
// Regex rules match case-insensitively; empty patterns never match.
func compileRules(rules []types.ScoringRule) ([]matcher, error) {
	out := make([]matcher, 0, len(rules))
	for _, r := range rules {
		m := matcher{rule: r}
		if r.IsRegex && r.Pattern != "" {
			re, err := regexp.Compile("(?i)" + r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("compiling rule %q: %w", r.Name, err)
			}
			m.re = re
		}
		out = append(out, m)
	}
	return out, nil
}

func (m matcher) match(lowered string) bool {
	if m.rule.Pattern == "" {
		return false
	}
	if m.re != nil {
		return m.re.MatchString(lowered)
	}
	return strings.Contains(lowered, strings.ToLower(m.rule.Pattern))
}
