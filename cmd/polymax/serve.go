package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/polymax-synthesizer/internal/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline as MCP tools over stdio",
	Long: `Serve starts a Model Context Protocol server on stdin and stdout. Each
pipeline stage is a tool; results are returned as JSON text. Logs go to
stderr so they do not corrupt the protocol stream.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := openService()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		logger.Info("mcp server listening on stdio", zap.String("version", version))
		return mcpserver.Serve(ctx, mcpserver.New(svc, version), os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
