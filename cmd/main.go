package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/prioritise/internal/adapters/repository"
	app "github.com/okian/prioritise/internal/app"
	"github.com/okian/prioritise/internal/config"
	"github.com/okian/prioritise/pkg/logger"
)

// rootFlags override config values when set on the command line.
type rootFlags struct {
	configFile string
	sourceKind string
	sourcePath string
	logLevel   string
}

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, newRootCmd()); err != nil {
		stop()
		os.Exit(1)
	}
}

// execute runs root and flushes logging before returning.
func execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if serr := logger.Sync(); serr != nil {
		fmt.Fprintf(root.ErrOrStderr(), "failed to sync logger: %v\n", serr)
	}
	return err
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:   "prioritise",
		Short: "Score, tier and rank advisory clients",
		Long: `prioritise turns per-client account metrics into a bounded priority
score, a High/Medium/Low tier, peer rankings and cohort statistics.

Available subcommands:
  serve - Run the HTTP API over the configured client source
  score - Print the highest priority clients, or one client's detail
  stats - Print cohort tier counts and mean score`,
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "YAML config file (overrides "+config.EnvConfigFile+")")
	pf.StringVar(&f.sourceKind, "kind", "", "client source kind: sqlite or csv")
	pf.StringVar(&f.sourcePath, "source", "", "path to the client source")
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(newServeCmd(f), newScoreCmd(f), newStatsCmd(f))
	return root
}

// bootstrap loads config, applies flag overrides and initializes logging
// to the command's error stream.
func bootstrap(cmd *cobra.Command, f *rootFlags) (*config.Config, logger.Logger, error) {
	if f.configFile != "" {
		if err := os.Setenv(config.EnvConfigFile, f.configFile); err != nil {
			return nil, nil, err
		}
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if f.sourceKind != "" {
		cfg.SourceKind = f.sourceKind
	}
	if f.sourcePath != "" {
		cfg.SourcePath = f.sourcePath
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(cmd.Context(), "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, log, nil
}

// newService builds the service over the configured source.
func newService(cfg *config.Config, log logger.Logger, opts ...app.Option) (*app.Service, error) {
	src, err := repository.New(cfg.SourceKind, cfg.SourcePath, repository.WithTable(cfg.SourceTable))
	if err != nil {
		return nil, err
	}
	base := []app.Option{
		app.WithLogger(log),
		app.WithSource(src),
		app.WithScoreWorkers(cfg.ScoreWorkers),
	}
	return app.New(append(base, opts...)...), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
