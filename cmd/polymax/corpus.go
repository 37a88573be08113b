// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the local paper corpus (import, export, list)",
	Long: `Corpus manages the SQLite database of professors, papers, and extractions
that discovery searches. Use subcommands to seed it from a file, list its
papers, or export it.`,
}

// --- import subcommand ---

var corpusImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load professors and papers from a YAML or JSON file",
	Long: `Import reads a seed file of professors and their papers and adds them to
the corpus. Papers whose PMID is already present are skipped, so importing
the same file twice is safe.`,
	Args: cobra.ExactArgs(1),
	RunE: runCorpusImport,
}

func runCorpusImport(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.ImportPath(cmd.Context(), args[0], os.Stderr)
	if err != nil {
		return err
	}
	logger.Info("corpus import finished",
		zap.Int("professors_added", summary.ProfessorsAdded),
		zap.Int("papers_added", summary.PapersAdded),
		zap.Int("papers_skipped", summary.PapersSkipped))
	if err := printJSON(summary); err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d paper(s) failed to import", summary.Failed)
	}
	return nil
}

// --- list subcommand ---

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every paper in the corpus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		papers, err := store.ListPapers(cmd.Context())
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			return printJSON(papers)
		}
		if len(papers) == 0 {
			fmt.Println("No papers in the corpus.")
			return nil
		}
		for _, p := range papers {
			title := p.Title
			if len(title) > 70 {
				title = title[:67] + "..."
			}
			fmt.Printf("%-6d  %-10s  %-24s  %s\n", p.ID, p.Identifier, p.Domain, title)
		}
		professors, err := store.CountProfessors(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("\n%d papers, %d professors\n", len(papers), professors)
		return nil
	},
}

// --- export subcommand ---

var corpusExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export papers and extractions to YAML or JSON",
	Args:  cobra.NoArgs,
	RunE:  runCorpusExport,
}

func runCorpusExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	switch format {
	case "yaml", "":
		if output == "" {
			output = "corpus-export.yaml"
		}
		if err := store.ExportYAML(cmd.Context(), output); err != nil {
			return err
		}
	case "json":
		if output == "" {
			output = "corpus-export.json"
		}
		if err := store.ExportJSON(cmd.Context(), output); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	fmt.Println("Exported to", output)
	return nil
}

func init() {
	corpusListCmd.Flags().Bool("json", false, "output papers as JSON")

	corpusExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	corpusExportCmd.Flags().String("output", "", "output file (default: corpus-export.<format>)")

	corpusCmd.AddCommand(corpusImportCmd)
	corpusCmd.AddCommand(corpusListCmd)
	corpusCmd.AddCommand(corpusExportCmd)

	rootCmd.AddCommand(corpusCmd)
}
