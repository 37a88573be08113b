package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show a synthesis run's status and counts",
	Long: `Run prints a synthesis run as JSON, including its stage counts and the
ingested main finding. With --manuscript it prints the LaTeX of the run's
latest manuscript version instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manuscript, _ := cmd.Flags().GetBool("manuscript")

		if manuscript {
			store, _, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			m, err := store.LatestManuscript(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Print(m.FullText)
			return nil
		}

		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		run, err := svc.Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(run)
	},
}

func init() {
	runCmd.Flags().Bool("manuscript", false, "print the latest manuscript instead of the run")

	rootCmd.AddCommand(runCmd)
}
