// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synth aggregates the extraction records of one domain into a
// markdown synthesis document. Every citation in the document names a
// paper from the input set; free text taken from papers is sanitized so it
// cannot introduce a citation of its own.
package synth

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// Document is one rendered domain synthesis.
type Document struct {
	Domain             string
	Markdown           string
	KeyFindings        []string
	CrossFieldInsights types.CrossFieldInsights

	// PaperIDs lists the contributing papers in input order and
	// CitationKeys[i] is the citation label of PaperIDs[i].
	PaperIDs     []int64
	CitationKeys []string

	GeneratedAt time.Time
}

// Synthesis converts the document into the stored record for a run.
func (d Document) Synthesis(runID string, domainID int64) types.DomainSynthesis {
	return types.DomainSynthesis{
		RunID:              runID,
		DomainID:           domainID,
		Domain:             d.Domain,
		SummaryMarkdown:    d.Markdown,
		KeyFindings:        d.KeyFindings,
		CrossFieldInsights: d.CrossFieldInsights,
		PapersAnalyzed:     len(d.PaperIDs),
		PaperIDs:           d.PaperIDs,
		CitationKeys:       d.CitationKeys,
		CreatedAt:          d.GeneratedAt,
	}
}

// Synthesizer renders domain documents. Zero caps render everything.
type Synthesizer struct {
	maxKeyFindings int
	maxApproaches  int
	maxTopPapers   int
	now            func() time.Time
}

// New returns a Synthesizer with the caps from cfg.
func New(cfg types.SynthesisConfig) *Synthesizer {
	return &Synthesizer{
		maxKeyFindings: cfg.MaxKeyFindings,
		maxApproaches:  cfg.MaxApproaches,
		maxTopPapers:   cfg.MaxTopPapers,
		now:            time.Now,
	}
}

// WithClock returns a copy of s that stamps documents with now.
func (s *Synthesizer) WithClock(now func() time.Time) *Synthesizer {
	c := *s
	c.now = now
	return &c
}

// approach groups one method name across papers.
type approach struct {
	name  string
	stats []types.Stat
	keys  []string
}

// Synthesize builds the document for domain from its papers' extraction
// records. An empty input yields a valid document stating that zero papers
// were analyzed.
func (s *Synthesizer) Synthesize(domain string, inputs []types.PaperExtraction) Document {
	doc := Document{
		Domain:       domain,
		KeyFindings:  []string{},
		PaperIDs:     make([]int64, 0, len(inputs)),
		CitationKeys: make([]string, 0, len(inputs)),
		GeneratedAt:  s.now().UTC(),
	}
	for _, in := range inputs {
		doc.PaperIDs = append(doc.PaperIDs, in.Paper.ID)
		doc.CitationKeys = append(doc.CitationKeys, in.Paper.CitationKey())
	}
	if len(inputs) == 0 {
		doc.CrossFieldInsights = types.CrossFieldInsights{Characteristics: []string{}}
		doc.Markdown = s.emptyMarkdown(domain, doc.GeneratedAt)
		return doc
	}

	doc.KeyFindings = capped(keyFindings(inputs), s.maxKeyFindings)
	approaches := capped(statisticalApproaches(inputs), s.maxApproaches)
	doc.CrossFieldInsights = crossFieldInsights(domain, inputs)
	top := capped(topPapers(inputs), s.maxTopPapers)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s: Domain Synthesis\n\n", DomainTitle(domain))

	b.WriteString("## Key Findings\n\n")
	if len(doc.KeyFindings) == 0 {
		b.WriteString("- No key findings extracted.\n")
	}
	for _, f := range doc.KeyFindings {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	b.WriteString("\n")

	b.WriteString("## Statistical Approaches\n\n")
	if len(approaches) == 0 {
		b.WriteString("No statistical approaches extracted.\n\n")
	}
	for i, a := range approaches {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, sanitize(a.name))
		for _, st := range a.stats {
			fmt.Fprintf(&b, "   - Key stat: %s = %s (p. %s)\n", sanitize(st.Metric), formatValue(st.Value), sanitize(st.Page))
		}
		fmt.Fprintf(&b, "   - References: %s\n\n", strings.Join(a.keys, ", "))
	}

	b.WriteString("## Cross-Field Transfer\n\n")
	b.WriteString(insightMarkdown(domain, doc.CrossFieldInsights))
	b.WriteString("\n\n")

	b.WriteString("## Top Papers\n\n")
	for i, in := range top {
		p := in.Paper
		fmt.Fprintf(&b, "%d. **%s** (%s)\n", i+1, sanitize(p.Title), yearLabel(p.Year))
		fmt.Fprintf(&b, "   - %s\n", p.CitationKey())
		if in.Extraction.HighLevel != nil && in.Extraction.HighLevel.MainClaim != "" {
			fmt.Fprintf(&b, "   - %s\n", sanitize(in.Extraction.HighLevel.MainClaim))
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "*Papers analyzed: %d*\n", len(inputs))
	fmt.Fprintf(&b, "*Extraction models: %s*\n", strings.Join(models(inputs), ", "))
	fmt.Fprintf(&b, "*Generated: %s*\n", doc.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))

	doc.Markdown = b.String()
	return doc
}

func (s *Synthesizer) emptyMarkdown(domain string, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: Domain Synthesis\n\n", DomainTitle(domain))
	b.WriteString("## Key Findings\n\nNo papers available for this domain.\n\n")
	b.WriteString("## Statistical Approaches\n\nNo statistical approaches extracted.\n\n")
	b.WriteString("## Cross-Field Transfer\n\nNo cross-field insights available.\n\n")
	b.WriteString("## Top Papers\n\nNo papers available.\n\n")
	b.WriteString("---\n\n")
	b.WriteString("*Papers analyzed: 0*\n")
	fmt.Fprintf(&b, "*Generated: %s*\n", at.Format("2006-01-02 15:04:05 UTC"))
	return b.String()
}

// keyFindings emits each paper's contribution and each of its stats, cited
// with the paper's label and year.
func keyFindings(inputs []types.PaperExtraction) []string {
	findings := []string{}
	for _, in := range inputs {
		cite := fmt.Sprintf("(%s, %s)", in.Paper.CitationKey(), yearLabel(in.Paper.Year))
		e := in.Extraction
		if e.HighLevel != nil && strings.TrimSpace(e.HighLevel.Contribution) != "" {
			findings = append(findings, sanitize(e.HighLevel.Contribution)+" "+cite)
		}
		if e.MidLevel == nil {
			continue
		}
		for _, st := range e.MidLevel.Stats {
			findings = append(findings, fmt.Sprintf("Reported %s of %s %s", sanitize(st.Metric), formatValue(st.Value), cite))
		}
	}
	return findings
}

// statisticalApproaches groups methods by name in first-seen order. A
// paper's stats are attached to its first method.
func statisticalApproaches(inputs []types.PaperExtraction) []approach {
	var out []approach
	index := make(map[string]int)
	for _, in := range inputs {
		ml := in.Extraction.MidLevel
		if ml == nil || len(ml.Methods) == 0 {
			continue
		}
		key := in.Paper.CitationKey()
		for _, m := range ml.Methods {
			i, ok := index[m.Name]
			if !ok {
				i = len(out)
				index[m.Name] = i
				out = append(out, approach{name: m.Name})
			}
			if !containsString(out[i].keys, key) {
				out[i].keys = append(out[i].keys, key)
			}
		}
		first := index[ml.Methods[0].Name]
		out[first].stats = append(out[first].stats, ml.Stats...)
	}
	return out
}

// characteristicRules map metric-name fragments to data characteristics.
var characteristicRules = []struct {
	fragments []string
	label     string
}{
	{[]string{"sparse", "sparsity"}, "sparse data"},
	{[]string{"overdispers"}, "overdispersion"},
	{[]string{"zero-inflat", "zero inflat"}, "zero inflation"},
}

func crossFieldInsights(domain string, inputs []types.PaperExtraction) types.CrossFieldInsights {
	var metrics []string
	for _, in := range inputs {
		if in.Extraction.MidLevel == nil {
			continue
		}
		for _, st := range in.Extraction.MidLevel.Stats {
			metrics = append(metrics, strings.ToLower(st.Metric))
		}
	}

	chars := []string{}
	for _, rule := range characteristicRules {
		if anyContains(metrics, rule.fragments) {
			chars = append(chars, rule.label)
		}
	}
	if len(chars) == 0 {
		chars = append(chars, "statistical modeling")
	}
	return types.CrossFieldInsights{
		Characteristics: chars,
		Paragraph: fmt.Sprintf("%s exhibits %s, which is common in other domains with similar data structures.",
			DomainTitle(domain), strings.Join(chars, ", ")),
	}
}

func insightMarkdown(domain string, ins types.CrossFieldInsights) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Similarity**: %s\n\n", ins.Paragraph)
	b.WriteString("**Transferable**:\n")
	fmt.Fprintf(&b, "- Statistical methods and loss functions developed for %s\n", sanitize(domain))
	b.WriteString("- Parameter estimation approaches\n")
	b.WriteString("- Validation strategies")
	return b.String()
}

// topPapers orders papers by year, most recent first, keeping input order
// among equal years.
func topPapers(inputs []types.PaperExtraction) []types.PaperExtraction {
	out := append([]types.PaperExtraction(nil), inputs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Paper.Year > out[j].Paper.Year
	})
	return out
}

func models(inputs []types.PaperExtraction) []string {
	seen := make(map[string]bool)
	var out []string
	for _, in := range inputs {
		m := sanitize(in.Extraction.Model)
		if m == "" {
			m = "unknown"
		}
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

// DomainTitle renders a domain slug as a title: "spatial-transcriptomics"
// becomes "Spatial Transcriptomics".
func DomainTitle(domain string) string {
	words := strings.FieldsFunc(sanitize(domain), func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func yearLabel(year int) string {
	if year <= 0 {
		return "n.d."
	}
	return strconv.Itoa(year)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func capped[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func anyContains(haystack, fragments []string) bool {
	for _, h := range haystack {
		for _, f := range fragments {
			if strings.Contains(h, f) {
				return true
			}
		}
	}
	return false
}
