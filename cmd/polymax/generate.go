package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/polymax-synthesizer/internal/section"
)

var generateCmd = &cobra.Command{
	Use:   "generate <run-id> <section>",
	Short: "Write one LaTeX manuscript section",
	Long: `Generate renders a single section (` + strings.Join(section.Names, ", ") + `)
for a run and prints the LaTeX to stdout. In research mode the section may
only contain numbers that appear in the ingested results; a section that
quotes any other number is rejected.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		asJSON, _ := cmd.Flags().GetBool("json")

		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := svc.GenerateSection(ctx, args[0], args[1], mode)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(res)
		}
		fmt.Print(res.Content)
		return nil
	},
}

func init() {
	generateCmd.Flags().String("mode", "", "writing mode: research or review (default: the run's mode)")
	generateCmd.Flags().Bool("json", false, "print the section as JSON")

	rootCmd.AddCommand(generateCmd)
}
