// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package section

import (
	"fmt"
	"regexp"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// numberPattern matches a numeric token: digits with an optional fraction.
var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ConstraintViolation reports a number in generated text that does not
// appear in the run's ingested findings.
type ConstraintViolation struct {
	Section string
	Value   string
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("section %s: value %s does not appear in the ingested findings", e.Section, e.Value)
}

// AllowedNumbers returns the numeric tokens of a main finding's text fields:
// claims, stats, columns, sources, figure entries, and constraint text and
// values.
func AllowedNumbers(mf types.MainFinding) map[string]bool {
	allowed := make(map[string]bool)
	add := func(s string) {
		for _, tok := range numberPattern.FindAllString(s, -1) {
			allowed[tok] = true
		}
	}
	for _, f := range mf.KeyFindings {
		add(f.Claim)
		add(f.Stat)
		add(f.Column)
		add(f.Source)
		add(f.Constraint)
	}
	for _, fig := range mf.FiguresCatalog {
		add(fig.Filename)
		add(fig.SuggestedCaption)
	}
	for _, c := range mf.Constraints {
		add(c.Source)
		add(c.Text)
		for _, v := range c.Values {
			add(v)
		}
	}
	return allowed
}

// CheckNumbers returns a *ConstraintViolation for the first numeric token in
// text that is not one of the main finding's tokens.
func CheckNumbers(section, text string, mf types.MainFinding) error {
	allowed := AllowedNumbers(mf)
	for _, tok := range numberPattern.FindAllString(text, -1) {
		if !allowed[tok] {
			return &ConstraintViolation{Section: section, Value: tok}
		}
	}
	return nil
}
