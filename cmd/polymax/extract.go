package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <run-id> [paper-ids...]",
	Short: "Extract papers at high, mid, and low levels",
	Long: `Extract summarizes each paper into a one-line high-level finding, a
method and results summary, and low-level statistics. Without paper ids
the run's discovered candidates are extracted. A paper that fails does not
stop the batch; failures are listed in the output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		depth, _ := cmd.Flags().GetString("depth")
		ids, err := parseIDs(args[1:])
		if err != nil {
			return err
		}

		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := svc.Extract(ctx, args[0], ids, depth)
		if err != nil {
			return err
		}
		if err := printJSON(res); err != nil {
			return err
		}
		if res.HasFailures() {
			return fmt.Errorf("%d paper(s) failed extraction", res.Failed)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().String("depth", "", "extraction depth: full, mid, or high_only (default from config)")

	rootCmd.AddCommand(extractCmd)
}
