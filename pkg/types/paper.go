// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// Lookup failures shared by the store and the stages that read from it.
var (
	ErrPaperNotFound  = errors.New("paper not found")
	ErrRunNotFound    = errors.New("synthesis run not found")
	ErrDomainNotFound = errors.New("domain not found")
)

// Professor is the owning author group of a set of papers in the corpus.
type Professor struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
}

// Paper is a literature item owned by the corpus store. Runs reference
// papers but never own them.
type Paper struct {
	// ID is the corpus row id.
	ID int64 `json:"id" yaml:"id"`

	// Identifier is the external identifier (PMID). Unique when set; a paper
	// without one cannot be deduplicated across imports.
	Identifier string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	Title    string   `json:"title" yaml:"title"`
	Abstract string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Authors  []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Year     int      `json:"year,omitempty" yaml:"year,omitempty"`
	Journal  string   `json:"journal,omitempty" yaml:"journal,omitempty"`
	DOI      string   `json:"doi,omitempty" yaml:"doi,omitempty"`

	// FullText is optional converted full text.
	FullText string `json:"full_text,omitempty" yaml:"full_text,omitempty"`

	// Domain is the domain tag used to group papers for synthesis.
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`

	ProfessorID   *int64 `json:"professor_id,omitempty" yaml:"professor_id,omitempty"`
	ProfessorName string `json:"professor,omitempty" yaml:"professor,omitempty"`
}

// CitationKey returns the inline citation label for the paper: "PMID: <id>"
// when the external identifier is known, "ID: <corpus id>" otherwise.
func (p Paper) CitationKey() string {
	if p.Identifier != "" {
		return "PMID: " + p.Identifier
	}
	return fmt.Sprintf("ID: %d", p.ID)
}

// Domain is a named research area that syntheses are grouped by.
type Domain struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}
