package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/polymax-synthesizer/internal/pipeline"
)

var manuscriptCmd = &cobra.Command{
	Use:   "manuscript <run-id>",
	Short: "Assemble a full LaTeX manuscript and complete the run",
	Long: `Manuscript renders every section, adds a BibTeX bibliography of the cited
papers, stores the result as a new manuscript version, and marks the run
complete. With --output the .tex and .bib files are written under
<output>/<run-id>/.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		title, _ := cmd.Flags().GetString("title")
		authors, _ := cmd.Flags().GetStringSlice("author")
		output, _ := cmd.Flags().GetString("output")

		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := svc.AssembleManuscript(ctx, args[0], pipeline.ManuscriptOptions{
			Mode:      mode,
			Title:     title,
			Authors:   authors,
			OutputDir: output,
		})
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	manuscriptCmd.Flags().String("mode", "", "writing mode: research or review (default: the run's mode)")
	manuscriptCmd.Flags().String("title", "", "manuscript title")
	manuscriptCmd.Flags().StringSlice("author", nil, "author name (repeatable)")
	manuscriptCmd.Flags().String("output", "", "directory for the .tex and .bib files (default from config)")

	rootCmd.AddCommand(manuscriptCmd)
}
