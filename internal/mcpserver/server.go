// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mcpserver exposes the synthesis pipeline as MCP tools over stdio.
// Each tool maps to one pipeline operation and returns its result as
// indented JSON text.
package mcpserver

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/server"

	"github.com/pdiddy/polymax-synthesizer/internal/pipeline"
	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

const serverName = "polymax-synthesizer"

// Pipeline is the set of operations the tools call.
type Pipeline interface {
	Analyze(ctx context.Context, repoPath, mode string) (pipeline.AnalyzeResult, error)
	Ingest(ctx context.Context, runID string) (pipeline.IngestResult, error)
	Discover(ctx context.Context, runID, mode string, terms []string) (pipeline.DiscoverResult, error)
	Extract(ctx context.Context, runID string, paperIDs []int64, depth string) (pipeline.ExtractResult, error)
	Synthesize(ctx context.Context, runID string, domainIDs []int64) (pipeline.SynthesizeResult, error)
	GenerateSection(ctx context.Context, runID, name, mode string) (pipeline.SectionResult, error)
	AssembleManuscript(ctx context.Context, runID string, opts pipeline.ManuscriptOptions) (pipeline.ManuscriptResult, error)
	Run(ctx context.Context, runID string) (types.SynthesisRun, error)
}

// New returns an MCP server with every pipeline tool registered.
func New(p Pipeline, version string) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	for _, t := range Tools(p) {
		s.AddTool(t.Definition(), t.Handle)
	}
	return s
}

// Serve runs s over the given streams until ctx is done or in is closed.
func Serve(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, in, out)
}

const instructions = `Polymax turns a research repository and a literature corpus into manuscript sections.

Stages run in order on one synthesis run:
1. analyze_repo creates the run and detects its mode and domains.
2. ingest_results parses result tables and figures (primary research only).
3. discover_literature selects candidate papers from the corpus.
4. extract_papers summarizes each paper at several levels.
5. synthesize_domains aggregates papers per domain with traceable citations.
6. generate_section and generate_manuscript write LaTeX.

Research-mode text may only quote numbers present in the ingested results.`
