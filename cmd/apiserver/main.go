// API server entry point for InfringeScope.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/InfringeScope/internal/config"
	"github.com/turtacn/InfringeScope/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

type serveOptions struct {
	configPath string
	httpPort   int
	grpcPort   int
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:           "infringescope-api",
		Short:         "InfringeScope API server",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "path to configuration file")
	cmd.Flags().IntVar(&opts.httpPort, "http-port", 0, "HTTP server port (overrides config)")
	cmd.Flags().IntVar(&opts.grpcPort, "grpc-port", 0, "gRPC health port (overrides config)")
	return cmd
}

// loadConfig reads the config file, falling back to the environment alone
// when the file does not exist. fromFile reports which one was used.
func loadConfig(path string) (cfg *config.Config, fromFile bool, err error) {
	cfg, err = config.Load(path)
	if stderrors.Is(err, config.ErrConfigFileNotFound) {
		fmt.Fprintf(os.Stderr, "warning: %v; using environment configuration\n", err)
		cfg, err = config.LoadFromEnv()
		return cfg, false, err
	}
	return cfg, err == nil, err
}

func serve(parent context.Context, opts *serveOptions) error {
	cfg, fromFile, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.httpPort > 0 {
		cfg.Server.Port = opts.httpPort
	}
	if opts.grpcPort > 0 {
		cfg.GRPC.Port = opts.grpcPort
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	logger.Info("starting InfringeScope API server",
		logging.String("version", Version),
		logging.String("commit", GitCommit),
		logging.Int("http_port", cfg.Server.Port),
		logging.Bool("grpc_enabled", cfg.GRPC.Enabled),
		logging.String("oracle_backend", cfg.Oracle.Backend),
		logging.String("reports_backend", cfg.Reports.Backend),
	)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", logging.Err(err))
		return err
	}

	if fromFile {
		config.Watch(opts.configPath, a.reload, func(err error) {
			logger.WithError(err).Warn("ignoring invalid configuration change")
		})
	}

	return a.run(ctx)
}

//Personal.AI order the ending
