package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/polymax-synthesizer/internal/pipeline"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <run-id> [queries...]",
	Short: "Select candidate papers from the corpus",
	Long: `Discover matches corpus papers against search queries (targeted mode) and
records the matches as the run's candidates. Broad mode is reserved for
external literature sources.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")

		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := svc.Discover(ctx, args[0], mode, args[1:])
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	discoverCmd.Flags().String("mode", pipeline.DiscoverTargeted, "discovery mode: targeted or broad")

	rootCmd.AddCommand(discoverCmd)
}
