// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HighLevel is the one-line summary level of an extraction record.
type HighLevel struct {
	MainClaim    string `json:"main_claim" yaml:"main_claim"`
	Novelty      string `json:"novelty" yaml:"novelty"`
	Contribution string `json:"contribution" yaml:"contribution"`
}

// Stat is a numeric result matched in paper text.
type Stat struct {
	Type    string  `json:"type" yaml:"type"`
	Metric  string  `json:"metric" yaml:"metric"`
	Value   float64 `json:"value" yaml:"value"`
	Context string  `json:"context" yaml:"context"`
	Page    string  `json:"page" yaml:"page"`
}

// Method is a candidate method name matched in paper text.
type Method struct {
	Name       string            `json:"name" yaml:"name"`
	Parameters map[string]string `json:"parameters" yaml:"parameters"`
	Page       string            `json:"page" yaml:"page"`
}

// MidLevel holds statistics and methods.
type MidLevel struct {
	Stats   []Stat   `json:"stats" yaml:"stats"`
	Methods []Method `json:"methods" yaml:"methods"`
}

// Quote is a verbatim sentence carrying a claim.
type Quote struct {
	Text    string `json:"text" yaml:"text"`
	Page    string `json:"page" yaml:"page"`
	Section string `json:"section" yaml:"section"`
	Context string `json:"context" yaml:"context"`
}

// LowLevel holds verbatim quotes.
type LowLevel struct {
	Quotes []Quote `json:"quotes" yaml:"quotes"`
}

// CodeMethods holds algorithms, equations, and hyperparameters. The slices
// are never nil in a stored record.
type CodeMethods struct {
	Algorithms      []string `json:"algorithms" yaml:"algorithms"`
	Equations       []string `json:"equations" yaml:"equations"`
	Hyperparameters []string `json:"hyperparameters" yaml:"hyperparameters"`
}

// Extraction is the hierarchical record for exactly one paper. Each level
// may be nil; a present level conforms to its shape. Model names the
// extractor tier that produced the record so upgraded re-extractions are
// distinguishable from stale ones.
type Extraction struct {
	PaperID     int64        `json:"paper_id" yaml:"paper_id"`
	HighLevel   *HighLevel   `json:"high_level,omitempty" yaml:"high_level,omitempty"`
	MidLevel    *MidLevel    `json:"mid_level,omitempty" yaml:"mid_level,omitempty"`
	LowLevel    *LowLevel    `json:"low_level,omitempty" yaml:"low_level,omitempty"`
	CodeMethods *CodeMethods `json:"code_methods,omitempty" yaml:"code_methods,omitempty"`
	Model       string       `json:"extraction_model" yaml:"extraction_model"`
	ExtractedAt time.Time    `json:"extracted_at" yaml:"extracted_at"`
}

// PaperExtraction pairs a paper with its extraction record. It is the unit
// the domain synthesizer consumes.
type PaperExtraction struct {
	Paper      Paper      `json:"paper" yaml:"paper"`
	Extraction Extraction `json:"extraction" yaml:"extraction"`
}
