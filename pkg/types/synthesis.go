// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CrossFieldInsights is the structured form of the cross-field section.
type CrossFieldInsights struct {
	Characteristics []string `json:"characteristics" yaml:"characteristics"`
	Paragraph       string   `json:"paragraph" yaml:"paragraph"`
}

// DomainSynthesis is the aggregate document for one (run, domain) pair.
// PapersAnalyzed equals len(PaperIDs), and CitationKeys[i] is the citation
// label of PaperIDs[i]. Every citation in SummaryMarkdown is one of
// CitationKeys.
type DomainSynthesis struct {
	RunID              string             `json:"synthesis_run_id" yaml:"synthesis_run_id"`
	DomainID           int64              `json:"domain_id" yaml:"domain_id"`
	Domain             string             `json:"domain" yaml:"domain"`
	SummaryMarkdown    string             `json:"summary_markdown" yaml:"summary_markdown"`
	KeyFindings        []string           `json:"key_findings" yaml:"key_findings"`
	CrossFieldInsights CrossFieldInsights `json:"cross_field_insights" yaml:"cross_field_insights"`
	PapersAnalyzed     int                `json:"papers_analyzed" yaml:"papers_analyzed"`
	PaperIDs           []int64            `json:"paper_ids" yaml:"paper_ids"`
	CitationKeys       []string           `json:"citation_keys" yaml:"citation_keys"`
	CreatedAt          time.Time          `json:"created_at" yaml:"created_at"`
}

// Manuscript is a rendered, versioned set of sections for a run.
type Manuscript struct {
	ID           int64             `json:"id" yaml:"id"`
	RunID        string            `json:"synthesis_run_id" yaml:"synthesis_run_id"`
	Version      int               `json:"version" yaml:"version"`
	Mode         string            `json:"mode" yaml:"mode"`
	Field        string            `json:"field" yaml:"field"`
	Sections     map[string]string `json:"sections" yaml:"sections"`
	FullText     string            `json:"full_text" yaml:"full_text"`
	Bibliography string            `json:"bibliography,omitempty" yaml:"bibliography,omitempty"`
	GeneratedAt  time.Time         `json:"generated_at" yaml:"generated_at"`
}
