// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package section renders manuscript sections from a run's ingested findings
// (research mode) or its domain syntheses (review mode). Research output is
// checked so that every number it contains was ingested from the repository.
package section

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pdiddy/polymax-synthesizer/internal/synth"
	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// Section names in manuscript order.
const (
	Abstract     = "abstract"
	Introduction = "introduction"
	Methods      = "methods"
	Results      = "results"
	Discussion   = "discussion"
)

// Names lists every section in manuscript order.
var Names = []string{Abstract, Introduction, Methods, Results, Discussion}

// Mode selects which run data a section is written from.
type Mode string

const (
	ModeResearch Mode = "research"
	ModeReview   Mode = "review"
)

var (
	// ErrUnknownSection is returned for a section name outside Names.
	ErrUnknownSection = errors.New("unknown section")

	// ErrNoFindings is returned when research mode is asked to write a
	// section for a run that has not been ingested.
	ErrNoFindings = errors.New("run has no ingested findings")
)

// ParseMode accepts "research", its alias "primary_research", and "review".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "research", string(types.ModePrimaryResearch):
		return ModeResearch, nil
	case string(types.ModeReview):
		return ModeReview, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want research or review)", s)
	}
}

// ModeFor returns the section mode matching a run's detected mode.
func ModeFor(m types.Mode) Mode {
	if m == types.ModeReview {
		return ModeReview
	}
	return ModeResearch
}

// Input is the run data sections are written from.
type Input struct {
	Run       types.SynthesisRun
	Syntheses []types.DomainSynthesis
}

// Generator renders sections from built-in templates, or from files under
// a templates directory when one is configured.
type Generator struct {
	templatesDir string
}

// New returns a Generator for cfg.
func New(cfg types.SectionConfig) *Generator {
	return &Generator{templatesDir: cfg.TemplatesDir}
}

// Generate renders one section. In research mode the result is rejected
// with a *ConstraintViolation if it contains a number that does not appear
// in the run's main finding.
func (g *Generator) Generate(mode Mode, name string, in Input) (string, error) {
	if !validSection(name) {
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	if mode == ModeResearch && in.Run.MainFinding == nil {
		return "", fmt.Errorf("run %s: %w", in.Run.ID, ErrNoFindings)
	}

	tmpl, err := g.template(mode, name)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, newView(mode, name, in)); err != nil {
		return "", fmt.Errorf("rendering %s %s: %w", mode, name, err)
	}
	text := b.String()

	if mode == ModeResearch {
		if err := CheckNumbers(name, text, *in.Run.MainFinding); err != nil {
			return "", err
		}
	}
	return text, nil
}

// template loads <templatesDir>/<mode>/<name>.tmpl when it exists and the
// built-in template otherwise.
func (g *Generator) template(mode Mode, name string) (*template.Template, error) {
	text := builtin[mode][name]
	if g.templatesDir != "" {
		path := filepath.Join(g.templatesDir, string(mode), name+".tmpl")
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			text = string(data)
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("reading template %s: %w", path, err)
		}
	}
	tmpl, err := template.New(string(mode) + "/" + name).Funcs(funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s %s template: %w", mode, name, err)
	}
	return tmpl, nil
}

func validSection(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// view is the data passed to section templates.
type view struct {
	Section string
	Mode    Mode
	Domains []string

	// Research mode.
	Findings    []types.KeyFinding
	Summaries   []types.KeyFinding
	WinRates    []types.KeyFinding
	Sources     []string
	Figures     []types.FigureEntry
	Constraints []types.Constraint

	// Review mode.
	Syntheses      []types.DomainSynthesis
	PapersAnalyzed int
}

func newView(mode Mode, name string, in Input) view {
	v := view{
		Section:   name,
		Mode:      mode,
		Domains:   in.Run.Domains,
		Syntheses: in.Syntheses,
	}
	for _, ds := range in.Syntheses {
		v.PapersAnalyzed += ds.PapersAnalyzed
	}
	mf := in.Run.MainFinding
	if mf == nil {
		return v
	}
	v.Findings = mf.KeyFindings
	v.Figures = mf.FiguresCatalog
	v.Constraints = mf.Constraints
	seen := make(map[string]bool)
	for _, f := range mf.KeyFindings {
		switch f.Kind {
		case types.FindingWinRate:
			v.WinRates = append(v.WinRates, f)
		default:
			v.Summaries = append(v.Summaries, f)
		}
		if f.Source != "" && !seen[f.Source] {
			seen[f.Source] = true
			v.Sources = append(v.Sources, f.Source)
		}
	}
	return v
}

var funcs = template.FuncMap{
	"tex":      Escape,
	"title":    synth.DomainTitle,
	"titles":   titles,
	"lower":    strings.ToLower,
	"figlabel": FigureLabel,
	"join":     strings.Join,
}

var texReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// Escape quotes LaTeX special characters in s.
func Escape(s string) string {
	return texReplacer.Replace(s)
}

// FigureLabel derives a LaTeX label from a figure file name:
// "fig1.png" becomes "fig:fig1".
func FigureLabel(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	var b strings.Builder
	for _, r := range strings.ToLower(stem) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return "fig:" + b.String()
}

// titles renders domain slugs as an escaped, comma separated list.
func titles(domains []string) string {
	out := make([]string, len(domains))
	for i, d := range domains {
		out[i] = Escape(synth.DomainTitle(d))
	}
	return strings.Join(out, ", ")
}
