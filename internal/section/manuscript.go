// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package section

import (
	"fmt"
	"strings"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// Fields recorded on a manuscript.
const (
	FieldMedicalImaging  = "medical_imaging"
	FieldGenomics        = "genomics"
	FieldMachineLearning = "machine_learning"
)

// fieldDomains lists, in priority order, the domain names that place a
// manuscript in each field.
var fieldDomains = []struct {
	field   string
	domains []string
}{
	{FieldMedicalImaging, []string{"spatial-transcriptomics", "medical-imaging", "digital-pathology", "histology", "pathology", "microscopy"}},
	{FieldGenomics, []string{"genomics", "sequencing", "metagenomics", "rna-seq", "dna-seq", "single-cell"}},
	{FieldMachineLearning, []string{"deep-learning", "machine-learning", "neural-networks", "computer-vision", "artificial-intelligence"}},
}

// DetectField returns the first field with a domain in domains, and
// machine_learning when none match.
func DetectField(domains []string) string {
	have := make(map[string]bool, len(domains))
	for _, d := range domains {
		have[strings.ToLower(strings.TrimSpace(d))] = true
	}
	for _, fd := range fieldDomains {
		for _, d := range fd.domains {
			if have[d] {
				return fd.field
			}
		}
	}
	return FieldMachineLearning
}

// AssembleOptions sets the front matter of an assembled manuscript.
type AssembleOptions struct {
	Title   string
	Authors []string
}

// Assemble renders every section and wraps them in a LaTeX document. cited
// lists the papers for the bibliography. The returned manuscript has no id
// or version; the store assigns those.
func (g *Generator) Assemble(mode Mode, in Input, cited []types.Paper, opts AssembleOptions) (types.Manuscript, error) {
	sections := make(map[string]string, len(Names))
	for _, name := range Names {
		text, err := g.Generate(mode, name, in)
		if err != nil {
			return types.Manuscript{}, err
		}
		sections[name] = text
	}

	bib := BibTeX(cited)
	title := opts.Title
	if title == "" {
		title = defaultTitle(mode, in)
	}

	var b strings.Builder
	b.WriteString("\\documentclass{article}\n")
	b.WriteString("\\usepackage{graphicx}\n\n")
	fmt.Fprintf(&b, "\\title{%s}\n", Escape(title))
	authors := make([]string, len(opts.Authors))
	for i, a := range opts.Authors {
		authors[i] = Escape(a)
	}
	fmt.Fprintf(&b, "\\author{%s}\n", strings.Join(authors, " \\and "))
	b.WriteString("\\date{}\n\n")
	b.WriteString("\\begin{document}\n\\maketitle\n\n")
	b.WriteString("\\begin{abstract}\n")
	b.WriteString(strings.TrimSpace(sections[Abstract]))
	b.WriteString("\n\\end{abstract}\n\n")
	for _, name := range Names[1:] {
		b.WriteString(strings.TrimSpace(sections[name]))
		b.WriteString("\n\n")
	}
	if bib != "" {
		b.WriteString("\\nocite{*}\n")
		b.WriteString("\\bibliographystyle{plain}\n")
		b.WriteString("\\bibliography{references}\n\n")
	}
	b.WriteString("\\end{document}\n")

	return types.Manuscript{
		RunID:        in.Run.ID,
		Mode:         string(mode),
		Field:        DetectField(in.Run.Domains),
		Sections:     sections,
		FullText:     b.String(),
		Bibliography: bib,
	}, nil
}

func defaultTitle(mode Mode, in Input) string {
	if mode == ModeReview {
		names := make([]string, 0, len(in.Syntheses))
		for _, ds := range in.Syntheses {
			names = append(names, ds.Domain)
		}
		if len(names) == 0 {
			return "A Literature Review"
		}
		return "A Review of " + titles(names)
	}
	return "Experimental Results"
}

// BibKey returns the BibTeX key of a paper: "pmid<identifier>" when the
// external identifier is known, "paper<corpus id>" otherwise.
func BibKey(p types.Paper) string {
	if p.Identifier != "" {
		return "pmid" + p.Identifier
	}
	return fmt.Sprintf("paper%d", p.ID)
}

// BibTeX renders one @article entry per paper, skipping repeated keys.
func BibTeX(papers []types.Paper) string {
	var b strings.Builder
	seen := make(map[string]bool, len(papers))
	for _, p := range papers {
		key := BibKey(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		fmt.Fprintf(&b, "@article{%s,\n", key)
		fmt.Fprintf(&b, "  title = {%s},\n", Escape(p.Title))
		if len(p.Authors) > 0 {
			authors := make([]string, len(p.Authors))
			for i, a := range p.Authors {
				authors[i] = Escape(a)
			}
			fmt.Fprintf(&b, "  author = {%s},\n", strings.Join(authors, " and "))
		}
		if p.Year > 0 {
			fmt.Fprintf(&b, "  year = {%d},\n", p.Year)
		}
		if p.Journal != "" {
			fmt.Fprintf(&b, "  journal = {%s},\n", Escape(p.Journal))
		}
		if p.DOI != "" {
			fmt.Fprintf(&b, "  doi = {%s},\n", p.DOI)
		}
		if p.Identifier != "" {
			fmt.Fprintf(&b, "  note = {PMID %s},\n", p.Identifier)
		}
		b.WriteString("}\n\n")
	}
	return b.String()
}
