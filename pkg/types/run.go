// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunStatus is the stage a synthesis run has reached.
type RunStatus string

const (
	StatusAnalyzing    RunStatus = "analyzing"
	StatusDiscovering  RunStatus = "discovering"
	StatusExtracting   RunStatus = "extracting"
	StatusSynthesizing RunStatus = "synthesizing"
	StatusWriting      RunStatus = "writing"
	StatusComplete     RunStatus = "complete"
)

// RunStatuses lists every status in pipeline order.
var RunStatuses = []RunStatus{
	StatusAnalyzing,
	StatusDiscovering,
	StatusExtracting,
	StatusSynthesizing,
	StatusWriting,
	StatusComplete,
}

// Index returns the position of s in RunStatuses, or -1 for an unknown status.
func (s RunStatus) Index() int {
	for i, st := range RunStatuses {
		if st == s {
			return i
		}
	}
	return -1
}

// Mode is the operating mode detected for a repository.
type Mode string

const (
	ModePrimaryResearch Mode = "primary_research"
	ModeReview          Mode = "review"
)

// RunCounts holds the per-stage counters of a run.
type RunCounts struct {
	ProfessorsFound    int `json:"professors_found" yaml:"professors_found"`
	PapersFound        int `json:"papers_found" yaml:"papers_found"`
	PapersExtracted    int `json:"papers_extracted" yaml:"papers_extracted"`
	DomainsSynthesized int `json:"domains_synthesized" yaml:"domains_synthesized"`
}

// CountsUpdate names the counters a stage overwrites when it advances a run.
// Nil fields are left unchanged, so re-running a stage replaces its counts
// instead of adding to them.
type CountsUpdate struct {
	ProfessorsFound    *int
	PapersFound        *int
	PapersExtracted    *int
	DomainsSynthesized *int
}

// Apply returns c with every set field of u written over it.
func (u CountsUpdate) Apply(c RunCounts) RunCounts {
	if u.ProfessorsFound != nil {
		c.ProfessorsFound = *u.ProfessorsFound
	}
	if u.PapersFound != nil {
		c.PapersFound = *u.PapersFound
	}
	if u.PapersExtracted != nil {
		c.PapersExtracted = *u.PapersExtracted
	}
	if u.DomainsSynthesized != nil {
		c.DomainsSynthesized = *u.DomainsSynthesized
	}
	return c
}

// Count is a helper for building CountsUpdate literals.
func Count(n int) *int { return &n }

// SynthesisRun is one end-to-end pipeline execution against one repository.
type SynthesisRun struct {
	ID          string       `json:"id" yaml:"id"`
	RepoPath    string       `json:"repo_path" yaml:"repo_path"`
	Mode        Mode         `json:"mode" yaml:"mode"`
	Domains     []string     `json:"detected_domains" yaml:"detected_domains"`
	MainFinding *MainFinding `json:"main_finding,omitempty" yaml:"main_finding,omitempty"`
	Status      RunStatus    `json:"status" yaml:"status"`
	Counts      RunCounts    `json:"counts" yaml:"counts"`
	CreatedAt   time.Time    `json:"created_at" yaml:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// RunCandidate is a paper discovered for a run, with its discovery score.
type RunCandidate struct {
	PaperID int64  `json:"paper_id" yaml:"paper_id"`
	Query   string `json:"query,omitempty" yaml:"query,omitempty"`
	Score   int    `json:"score" yaml:"score"`
}
