package main

import (
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <run-id>",
	Short: "Parse result tables and figures into key findings",
	Long: `Ingest reads the run repository's CSV result tables and figure files and
records the key findings, win rates, and generation constraints that bound
research-mode writing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := svc.Ingest(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
