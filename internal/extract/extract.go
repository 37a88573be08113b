// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract builds the hierarchical extraction record of a paper.
// Four levels are derived independently from the paper's title and
// abstract: a high-level summary, mid-level statistics and methods,
// low-level quotes, and code/methods (always empty at the rule-based tier).
// Any level can be replaced by a stronger extractor without touching the
// others.
package extract

import (
	"fmt"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// RuleBasedModel tags records produced by the rule-based tier.
const RuleBasedModel = "rule-based-v1"

// Extractor produces an extraction record for one paper. Implementations
// must be deterministic for a given paper: the level fields of two calls
// compare equal. ExtractedAt is stamped by the caller.
type Extractor interface {
	Model() string
	Extract(p types.Paper) types.Extraction
}

// RuleBased is the heuristic baseline extractor.
type RuleBased struct {
	depth types.ExtractionDepth
}

// NewRuleBased returns a rule-based extractor producing levels up to depth.
// An empty depth means full.
func NewRuleBased(depth types.ExtractionDepth) (*RuleBased, error) {
	d, err := ParseDepth(string(depth))
	if err != nil {
		return nil, err
	}
	return &RuleBased{depth: d}, nil
}

// ParseDepth validates an extraction depth name. "high_only" is accepted
// as an alias of high.
func ParseDepth(s string) (types.ExtractionDepth, error) {
	switch d := types.ExtractionDepth(s); d {
	case "":
		return types.DepthFull, nil
	case "high_only":
		return types.DepthHigh, nil
	case types.DepthFull, types.DepthMid, types.DepthHigh:
		return d, nil
	default:
		return "", fmt.Errorf("unknown extraction depth %q (want full, mid, or high)", s)
	}
}

// Model returns the tier tag stored with every record.
func (r *RuleBased) Model() string { return RuleBasedModel }

// Depth returns the configured depth.
func (r *RuleBased) Depth() types.ExtractionDepth { return r.depth }

// Extract derives every level the depth allows. Mid depth omits the low
// level; high depth omits mid and low. Code/methods is always present.
func (r *RuleBased) Extract(p types.Paper) types.Extraction {
	hl := HighLevel(p)
	cm := CodeMethods(p)
	e := types.Extraction{
		PaperID:     p.ID,
		HighLevel:   &hl,
		CodeMethods: &cm,
		Model:       RuleBasedModel,
	}
	if r.depth == types.DepthHigh {
		return e
	}
	ml := MidLevel(p)
	e.MidLevel = &ml
	if r.depth == types.DepthMid {
		return e
	}
	ll := LowLevel(p)
	e.LowLevel = &ll
	return e
}
