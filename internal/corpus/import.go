// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// ImportFile is the on-disk corpus seed format. JSON files parse as well,
// since YAML is a superset.
//
//	professors:
//	  - name: Ada Example
//	    affiliation: Example University
//	    papers:
//	      - pmid: "123"
//	        title: ...
//	        authors: [A. One, B. Two]
//	        domain: spatial-transcriptomics
//	papers: []   # papers without an owning professor
type ImportFile struct {
	Professors []ImportProfessor `yaml:"professors"`
	Papers     []ImportPaper     `yaml:"papers"`
}

// ImportProfessor is a professor entry with the papers it owns.
type ImportProfessor struct {
	Name        string        `yaml:"name"`
	Affiliation string        `yaml:"affiliation"`
	Papers      []ImportPaper `yaml:"papers"`
}

// ImportPaper is one paper entry.
type ImportPaper struct {
	PMID     string     `yaml:"pmid"`
	Title    string     `yaml:"title"`
	Abstract string     `yaml:"abstract"`
	Authors  authorList `yaml:"authors"`
	Year     int        `yaml:"year"`
	Journal  string     `yaml:"journal"`
	DOI      string     `yaml:"doi"`
	FullText string     `yaml:"full_text"`
	Domain   string     `yaml:"domain"`
}

// authorList accepts either a single author string or a list.
type authorList []string

func (a *authorList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Value != "" {
			*a = authorList{node.Value}
		}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*a = list
	return nil
}

// ImportSummary holds counts from a corpus import.
type ImportSummary struct {
	ProfessorsAdded int `json:"professors_added"`
	PapersAdded     int `json:"papers_added"`
	PapersSkipped   int `json:"papers_skipped"`
	Failed          int `json:"failed"`
}

// ImportPath reads an ImportFile from path and imports it.
func (s *Store) ImportPath(ctx context.Context, path string, w io.Writer) (ImportSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("reading import file %s: %w", path, err)
	}
	var f ImportFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return ImportSummary{}, fmt.Errorf("parsing import file %s: %w", path, err)
	}
	return s.Import(ctx, f, w)
}

// Import adds professors and papers to the corpus. Papers whose identifier
// already exists are skipped. Progress lines are written to w.
func (s *Store) Import(ctx context.Context, f ImportFile, w io.Writer) (ImportSummary, error) {
	var summary ImportSummary

	add := func(ip ImportPaper, profID *int64) {
		p := types.Paper{
			Identifier:  ip.PMID,
			Title:       ip.Title,
			Abstract:    ip.Abstract,
			Authors:     ip.Authors,
			Year:        ip.Year,
			Journal:     ip.Journal,
			DOI:         ip.DOI,
			FullText:    ip.FullText,
			Domain:      ip.Domain,
			ProfessorID: profID,
		}
		if p.Title == "" {
			fmt.Fprintf(w, "failed  %s: missing title\n", ip.PMID)
			summary.Failed++
			return
		}
		id, added, err := s.AddPaper(ctx, p)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", ip.PMID, err)
			summary.Failed++
			return
		}
		if !added {
			fmt.Fprintf(w, "skipped %s (paper %d)\n", ip.PMID, id)
			summary.PapersSkipped++
			return
		}
		summary.PapersAdded++
	}

	for _, prof := range f.Professors {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		id, added, err := s.UpsertProfessor(ctx, prof.Name, prof.Affiliation)
		if err != nil {
			return summary, err
		}
		if added {
			summary.ProfessorsAdded++
		}
		fmt.Fprintf(w, "importing %s (%d papers)\n", prof.Name, len(prof.Papers))
		for _, ip := range prof.Papers {
			add(ip, &id)
		}
	}
	for _, ip := range f.Papers {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		add(ip, nil)
	}

	fmt.Fprintf(w, "\nprofessors added: %d, papers added: %d, skipped: %d, failed: %d\n",
		summary.ProfessorsAdded, summary.PapersAdded, summary.PapersSkipped, summary.Failed)
	return summary, nil
}
