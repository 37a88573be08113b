package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize <run-id> [domain-ids...]",
	Short: "Aggregate extracted papers into one synthesis per domain",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		res, err := svc.Synthesize(ctx, args[0], ids)
		if err != nil {
			return err
		}
		if err := printJSON(res); err != nil {
			return err
		}
		if res.HasFailures() {
			return fmt.Errorf("%d domain(s) failed synthesis", res.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(synthesizeCmd)
}
