// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FindingKind distinguishes column summaries from derived comparison findings.
type FindingKind string

const (
	FindingSummary FindingKind = "summary"
	FindingWinRate FindingKind = "win_rate"
)

// FindingDetails carries the exact numbers behind a KeyFinding. Summary
// findings fill the distribution fields; win-rate findings fill the counts.
type FindingDetails struct {
	Mean   float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Median float64 `json:"median,omitempty" yaml:"median,omitempty"`
	Std    float64 `json:"std,omitempty" yaml:"std,omitempty"`
	Min    float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max    float64 `json:"max,omitempty" yaml:"max,omitempty"`

	PositiveCount int     `json:"positive_count,omitempty" yaml:"positive_count,omitempty"`
	TotalCount    int     `json:"total_count,omitempty" yaml:"total_count,omitempty"`
	Percentage    float64 `json:"percentage,omitempty" yaml:"percentage,omitempty"`
}

// KeyFinding is one ingested experimental result. Source is the table path
// relative to the repository and doubles as the citation anchor.
type KeyFinding struct {
	Kind       FindingKind    `json:"kind" yaml:"kind"`
	Claim      string         `json:"claim" yaml:"claim"`
	Stat       string         `json:"stat" yaml:"stat"`
	Column     string         `json:"column" yaml:"column"`
	Details    FindingDetails `json:"details" yaml:"details"`
	Source     string         `json:"source" yaml:"source"`
	Constraint string         `json:"constraint" yaml:"constraint"`
}

// FigureEntry catalogs one figure file. No image content is inspected.
type FigureEntry struct {
	Filename         string `json:"filename" yaml:"filename"`
	SuggestedCaption string `json:"suggested_caption" yaml:"suggested_caption"`
}

// ConstraintKind identifies how a constraint is checked at generation time.
type ConstraintKind string

const (
	ConstraintExactValue   ConstraintKind = "exact_value"
	ConstraintNameDomain   ConstraintKind = "name_domain"
	ConstraintFigureSource ConstraintKind = "figure_source"
)

// Constraint is a rule checked when manuscript text is generated.
type Constraint struct {
	Kind   ConstraintKind `json:"kind" yaml:"kind"`
	Source string         `json:"source,omitempty" yaml:"source,omitempty"`
	Text   string         `json:"text" yaml:"text"`
	Values []string       `json:"values,omitempty" yaml:"values,omitempty"`
}

// MainFinding is the structured payload a run carries from ingestion into
// section generation.
type MainFinding struct {
	KeyFindings    []KeyFinding  `json:"key_findings" yaml:"key_findings"`
	FiguresCatalog []FigureEntry `json:"figures_catalog" yaml:"figures_catalog"`
	Constraints    []Constraint  `json:"constraints" yaml:"constraints"`
}
