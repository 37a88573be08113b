// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the polymax CLI. Each pipeline stage
// is a subcommand that prints its result as JSON; serve exposes the same
// stages as MCP tools over stdio.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/polymax-synthesizer/internal/corpus"
	"github.com/pdiddy/polymax-synthesizer/internal/pipeline"
	"github.com/pdiddy/polymax-synthesizer/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built in PersistentPreRunE.
var logger = zap.NewNop()

// rootCmd is the base command for the polymax CLI.
var rootCmd = &cobra.Command{
	Use:   "polymax",
	Short: "Turn a research repository and a literature corpus into manuscript sections",
	Long: `polymax runs the synthesis pipeline: analyze a repository, ingest its
results, discover related papers in the corpus, extract them, synthesize
each domain, and write LaTeX sections.

Every stage works on a synthesis run created by analyze. Stages print JSON
to stdout; progress and warnings go to stderr.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./polymax.yaml or ~/.config/polymax/polymax.yaml)")
	rootCmd.PersistentFlags().String("db", "", "corpus database path (default: polymax.db)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug output to stderr")
	_ = viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	// A missing .env file is normal.
	_ = godotenv.Load(".env")

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("polymax")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "polymax"))
		}
	}

	setDefaults(types.DefaultPipelineConfig())
	viper.SetEnvPrefix("POLYMAX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every configuration key so environment variables
// such as POLYMAX_STORE_PATH are seen by Unmarshal.
func setDefaults(cfg types.PipelineConfig) {
	viper.SetDefault("store.path", cfg.Store.Path)
	viper.SetDefault("analyze.tables_dir", cfg.Analyze.TablesDir)
	viper.SetDefault("analyze.figures_dir", cfg.Analyze.FiguresDir)
	viper.SetDefault("analyze.figure_extensions", cfg.Analyze.FigureExtensions)
	viper.SetDefault("analyze.domains_file", cfg.Analyze.DomainsFile)
	viper.SetDefault("analyze.domains", cfg.Analyze.Domains)
	viper.SetDefault("ingest.comparison_markers", cfg.Ingest.ComparisonMarkers)
	viper.SetDefault("discover.max_matches", cfg.Discover.MaxMatches)
	viper.SetDefault("extract.workers", cfg.Extract.Workers)
	viper.SetDefault("extract.depth", string(cfg.Extract.Depth))
	viper.SetDefault("synthesis.workers", cfg.Synthesis.Workers)
	viper.SetDefault("synthesis.max_key_findings", cfg.Synthesis.MaxKeyFindings)
	viper.SetDefault("synthesis.max_approaches", cfg.Synthesis.MaxApproaches)
	viper.SetDefault("synthesis.max_top_papers", cfg.Synthesis.MaxTopPapers)
	viper.SetDefault("section.templates_dir", cfg.Section.TemplatesDir)
	viper.SetDefault("section.output_dir", cfg.Section.OutputDir)
}

// loadConfig returns the effective pipeline configuration.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("reading configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return l, nil
}

// openStore opens the configured corpus store.
func openStore() (*corpus.Store, types.PipelineConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	store, err := corpus.NewStore(cfg.Store)
	if err != nil {
		return nil, cfg, err
	}
	logger.Debug("opened corpus", zap.String("path", store.Path()))
	return store, cfg, nil
}

// openService opens the store and returns a pipeline service over it. The
// returned close function releases the store.
func openService() (*pipeline.Service, func(), error) {
	store, cfg, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	svc, err := pipeline.New(store, cfg, pipeline.WithLogger(logger))
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return svc, func() { store.Close() }, nil
}

// commandContext returns a context canceled on interrupt.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseIDs converts positional arguments to int64 ids.
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", a, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
