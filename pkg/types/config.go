// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StoreConfig locates the corpus database.
type StoreConfig struct {
	// Path is the SQLite database file (default "polymax.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// DomainRule maps a domain name to the keywords that detect it.
type DomainRule struct {
	Name     string   `json:"name" yaml:"name" mapstructure:"name"`
	Keywords []string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`
}

// AnalyzeConfig holds settings for repository analysis.
type AnalyzeConfig struct {
	// TablesDir is the tabular-results directory, relative to the repository root.
	TablesDir string `json:"tables_dir" yaml:"tables_dir" mapstructure:"tables_dir"`

	// FiguresDir is the figures directory, relative to the repository root.
	FiguresDir string `json:"figures_dir" yaml:"figures_dir" mapstructure:"figures_dir"`

	// FigureExtensions lists the file extensions catalogued as figures.
	FigureExtensions []string `json:"figure_extensions" yaml:"figure_extensions" mapstructure:"figure_extensions"`

	// DomainsFile optionally replaces Domains with a YAML list of DomainRule.
	DomainsFile string `json:"domains_file,omitempty" yaml:"domains_file,omitempty" mapstructure:"domains_file"`

	// Domains is the ordered domain table. Detection output follows this order.
	Domains []DomainRule `json:"domains" yaml:"domains" mapstructure:"domains"`
}

// IngestConfig holds settings for results ingestion.
type IngestConfig struct {
	// ComparisonMarkers are case-insensitive substrings marking a comparison
	// column (default ["delta"]).
	ComparisonMarkers []string `json:"comparison_markers" yaml:"comparison_markers" mapstructure:"comparison_markers"`
}

// DiscoverConfig holds settings for literature discovery.
type DiscoverConfig struct {
	// MaxMatches caps the returned match list (default 20). Zero means no cap.
	MaxMatches int `json:"max_matches" yaml:"max_matches" mapstructure:"max_matches"`
}

// ExtractionDepth selects which extraction levels are produced.
type ExtractionDepth string

const (
	DepthFull ExtractionDepth = "full"
	DepthMid  ExtractionDepth = "mid"
	DepthHigh ExtractionDepth = "high"
)

// ExtractConfig holds settings for hierarchical extraction.
type ExtractConfig struct {
	// Workers bounds concurrent extractions (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// Depth is the default extraction depth (default "full").
	Depth ExtractionDepth `json:"depth" yaml:"depth" mapstructure:"depth"`
}

// SynthesisConfig holds settings for domain synthesis. Zero caps mean unlimited.
type SynthesisConfig struct {
	Workers        int `json:"workers" yaml:"workers" mapstructure:"workers"`
	MaxKeyFindings int `json:"max_key_findings" yaml:"max_key_findings" mapstructure:"max_key_findings"`
	MaxApproaches  int `json:"max_approaches" yaml:"max_approaches" mapstructure:"max_approaches"`
	MaxTopPapers   int `json:"max_top_papers" yaml:"max_top_papers" mapstructure:"max_top_papers"`
}

// SectionConfig holds settings for section generation.
type SectionConfig struct {
	// TemplatesDir optionally overrides built-in templates with
	// <dir>/<mode>/<section>.tmpl files.
	TemplatesDir string `json:"templates_dir,omitempty" yaml:"templates_dir,omitempty" mapstructure:"templates_dir"`

	// OutputDir receives assembled manuscripts when set.
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty" mapstructure:"output_dir"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Store     StoreConfig     `json:"store" yaml:"store" mapstructure:"store"`
	Analyze   AnalyzeConfig   `json:"analyze" yaml:"analyze" mapstructure:"analyze"`
	Ingest    IngestConfig    `json:"ingest" yaml:"ingest" mapstructure:"ingest"`
	Discover  DiscoverConfig  `json:"discover" yaml:"discover" mapstructure:"discover"`
	Extract   ExtractConfig   `json:"extract" yaml:"extract" mapstructure:"extract"`
	Synthesis SynthesisConfig `json:"synthesis" yaml:"synthesis" mapstructure:"synthesis"`
	Section   SectionConfig   `json:"section" yaml:"section" mapstructure:"section"`
}

// DefaultDomainRules is the built-in domain table.
func DefaultDomainRules() []DomainRule {
	return []DomainRule{
		{Name: "spatial-transcriptomics", Keywords: []string{"spatial transcriptomics", "visium"}},
		{Name: "loss-functions", Keywords: []string{"loss function", "mse", "poisson"}},
		{Name: "deep-learning", Keywords: []string{"deep learning", "neural network"}},
		{Name: "computational-pathology", Keywords: []string{"pathology", "histology"}},
	}
}

// DefaultPipelineConfig returns the configuration used when no file or
// environment override is present.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Store: StoreConfig{Path: "polymax.db"},
		Analyze: AnalyzeConfig{
			TablesDir:        "tables",
			FiguresDir:       "figures",
			FigureExtensions: []string{".png", ".pdf", ".jpg", ".jpeg", ".svg"},
			Domains:          DefaultDomainRules(),
		},
		Ingest:    IngestConfig{ComparisonMarkers: []string{"delta"}},
		Discover:  DiscoverConfig{MaxMatches: 20},
		Extract:   ExtractConfig{Workers: 4, Depth: DepthFull},
		Synthesis: SynthesisConfig{Workers: 4},
	}
}
