package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Kr4uzr/movie-catalog/internal/server"
	"github.com/Kr4uzr/movie-catalog/pkg/logger"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until SIGINT or SIGTERM.

The store is migrated on startup when storage.auto_migrate is set. In-flight
requests are drained for up to server.shutdown_timeout before exiting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rootOpts, version)
		},
	}
}

func runServe(cmd *cobra.Command, opts *RootOptions, version string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	log, closer, err := logger.NewFromOptions(logger.Options{
		Level:  cfg.Log.Level,
		Caller: cfg.Log.Caller,
		File: logger.FileConfig{
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closer.Close()

	log.Info("Starting catalog-svc",
		logger.String("version", version),
		logger.String("storage", cfg.Storage.Driver),
		logger.Int("http_port", cfg.Server.HTTPPort),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.NewApp(ctx, cfg, log, version)
	if err != nil {
		log.Error("Failed to start", logger.Error(err))
		return err
	}
	if err := app.Run(ctx); err != nil {
		log.Error("Server exited with error", logger.Error(err))
		return err
	}
	log.Info("catalog-svc stopped")
	return nil
}
