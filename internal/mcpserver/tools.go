// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/pdiddy/polymax-synthesizer/internal/pipeline"
	"github.com/pdiddy/polymax-synthesizer/internal/section"
)

const runIDArg = "synthesis_run_id"

// Tool is one registered MCP tool.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Tools returns every pipeline tool in stage order.
func Tools(p Pipeline) []Tool {
	return []Tool{
		&AnalyzeTool{p: p},
		&IngestTool{p: p},
		&DiscoverTool{p: p},
		&ExtractTool{p: p},
		&SynthesizeTool{p: p},
		&SectionTool{p: p},
		&ManuscriptTool{p: p},
		&StatusTool{p: p},
	}
}

// AnalyzeTool handles analyze_repo.
type AnalyzeTool struct{ p Pipeline }

func (t *AnalyzeTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_repo",
		mcp.WithDescription("Analyze a research repository, detect its mode and domains, and create a synthesis run."),
		mcp.WithString("repo_path", mcp.Required(), mcp.Description("Path to the repository root")),
		mcp.WithString("mode",
			mcp.Description("Force a mode instead of detecting it"),
			mcp.Enum("auto", "primary_research", "review"),
			mcp.DefaultString("auto")),
	)
}

func (t *AnalyzeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo := req.GetString("repo_path", "")
	if repo == "" {
		return mcp.NewToolResultError("repo_path is required"), nil
	}
	return result(t.p.Analyze(ctx, repo, req.GetString("mode", "auto")))
}

// IngestTool handles ingest_results.
type IngestTool struct{ p Pipeline }

func (t *IngestTool) Definition() mcp.Tool {
	return mcp.NewTool("ingest_results",
		mcp.WithDescription("Parse the run's result tables and figures into key findings and generation constraints."),
		runIDOption(),
	)
}

func (t *IngestTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := runID(req)
	if bad != nil {
		return bad, nil
	}
	return result(t.p.Ingest(ctx, id))
}

// DiscoverTool handles discover_literature.
type DiscoverTool struct{ p Pipeline }

func (t *DiscoverTool) Definition() mcp.Tool {
	return mcp.NewTool("discover_literature",
		mcp.WithDescription("Select candidate papers from the corpus, by search queries (targeted) or by the run's domains (broad)."),
		runIDOption(),
		mcp.WithString("mode",
			mcp.Description("Discovery mode"),
			mcp.Enum(pipeline.DiscoverTargeted, pipeline.DiscoverBroad),
			mcp.DefaultString(pipeline.DiscoverTargeted)),
		mcp.WithArray("search_queries",
			mcp.Description("Queries for targeted discovery"),
			mcp.Items(map[string]any{"type": "string"})),
	)
}

func (t *DiscoverTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := runID(req)
	if bad != nil {
		return bad, nil
	}
	queries, err := stringList(req.GetArguments(), "search_queries")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return result(t.p.Discover(ctx, id, req.GetString("mode", pipeline.DiscoverTargeted), queries))
}

// ExtractTool handles extract_papers.
type ExtractTool struct{ p Pipeline }

func (t *ExtractTool) Definition() mcp.Tool {
	return mcp.NewTool("extract_papers",
		mcp.WithDescription("Run hierarchical extraction over papers. Without paper_ids the run's candidates are used. Failures are listed per paper."),
		runIDOption(),
		mcp.WithArray("paper_ids",
			mcp.Description("Corpus paper ids"),
			mcp.Items(map[string]any{"type": "integer"})),
		mcp.WithString("extraction_depth",
			mcp.Description("Levels to extract"),
			mcp.Enum("full", "mid", "high_only")),
	)
}

func (t *ExtractTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := runID(req)
	if bad != nil {
		return bad, nil
	}
	ids, err := idList(req.GetArguments(), "paper_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return result(t.p.Extract(ctx, id, ids, req.GetString("extraction_depth", "")))
}

// SynthesizeTool handles synthesize_domains.
type SynthesizeTool struct{ p Pipeline }

func (t *SynthesizeTool) Definition() mcp.Tool {
	return mcp.NewTool("synthesize_domains",
		mcp.WithDescription("Aggregate extracted papers into one synthesis per domain. Without domain_ids the run's detected domains are used."),
		runIDOption(),
		mcp.WithArray("domain_ids",
			mcp.Description("Domain ids"),
			mcp.Items(map[string]any{"type": "integer"})),
	)
}

func (t *SynthesizeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := runID(req)
	if bad != nil {
		return bad, nil
	}
	ids, err := idList(req.GetArguments(), "domain_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return result(t.p.Synthesize(ctx, id, ids))
}

// SectionTool handles generate_section.
type SectionTool struct{ p Pipeline }

func (t *SectionTool) Definition() mcp.Tool {
	return mcp.NewTool("generate_section",
		mcp.WithDescription("Write one LaTeX manuscript section for the run."),
		runIDOption(),
		mcp.WithString("section",
			mcp.Required(),
			mcp.Description("Section to write"),
			mcp.Enum(section.Names...)),
		mcp.WithString("mode",
			mcp.Description("Writing mode; defaults to the run's mode"),
			mcp.Enum("research", "review")),
	)
}

func (t *SectionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := runID(req)
	if bad != nil {
		return bad, nil
	}
	return result(t.p.GenerateSection(ctx, id, req.GetString("section", ""), req.GetString("mode", "")))
}

// ManuscriptTool handles generate_manuscript.
type ManuscriptTool struct{ p Pipeline }

func (t *ManuscriptTool) Definition() mcp.Tool {
	return mcp.NewTool("generate_manuscript",
		mcp.WithDescription("Assemble every section into a LaTeX manuscript with a BibTeX bibliography and complete the run."),
		runIDOption(),
		mcp.WithString("mode",
			mcp.Description("Writing mode; defaults to the run's mode"),
			mcp.Enum("research", "review")),
		mcp.WithString("title", mcp.Description("Manuscript title")),
		mcp.WithArray("authors",
			mcp.Description("Author names"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("output_path", mcp.Description("Directory to write the .tex and .bib files into")),
	)
}

func (t *ManuscriptTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := runID(req)
	if bad != nil {
		return bad, nil
	}
	authors, err := stringList(req.GetArguments(), "authors")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return result(t.p.AssembleManuscript(ctx, id, pipeline.ManuscriptOptions{
		Mode:      req.GetString("mode", ""),
		Title:     req.GetString("title", ""),
		Authors:   authors,
		OutputDir: req.GetString("output_path", ""),
	}))
}

// StatusTool handles run_status.
type StatusTool struct{ p Pipeline }

func (t *StatusTool) Definition() mcp.Tool {
	return mcp.NewTool("run_status",
		mcp.WithDescription("Show a synthesis run's status, counts, and detected domains."),
		runIDOption(),
	)
}

func (t *StatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := runID(req)
	if bad != nil {
		return bad, nil
	}
	return result(t.p.Run(ctx, id))
}

func runIDOption() mcp.ToolOption {
	return mcp.WithString(runIDArg, mcp.Required(), mcp.Description("Synthesis run id returned by analyze_repo"))
}

// runID returns the run id argument, or an error result when it is missing.
func runID(req mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	id := req.GetString(runIDArg, "")
	if id == "" {
		return "", mcp.NewToolResultError(runIDArg + " is required")
	}
	return id, nil
}

// result renders a pipeline outcome. Pipeline errors become tool errors so
// the caller sees the message; they are not protocol failures.
func result(v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// stringList reads an optional array-of-strings argument.
func stringList(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be an array of strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

// idList reads an optional array-of-integers argument. JSON numbers arrive
// as float64; numeric strings are accepted too.
func idList(args map[string]any, key string) ([]int64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of integers", key)
	}
	out := make([]int64, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("%s: %v is not an integer", key, v)
			}
			out = append(out, int64(v))
		case int:
			out = append(out, int64(v))
		case int64:
			out = append(out, v)
		case string:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not an integer", key, v)
			}
			out = append(out, n)
		default:
			return nil, fmt.Errorf("%s must be an array of integers", key)
		}
	}
	return out, nil
}
