package main

import (
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <repo>",
	Short: "Analyze a research repository and create a synthesis run",
	Long: `Analyze walks a repository, classifies it as primary research (it has
result tables) or a literature review, detects its research domains from
README and source text, and creates a synthesis run. The printed run id is
the argument to every later stage.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")

		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := svc.Analyze(ctx, args[0], mode)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	analyzeCmd.Flags().String("mode", "auto", "run mode: auto, primary_research, or review")

	rootCmd.AddCommand(analyzeCmd)
}
