// Package cli implements the catalog-svc command line.
package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Kr4uzr/movie-catalog/pkg/config"
	"github.com/Kr4uzr/movie-catalog/pkg/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string // overrides log.level when set
}

// NewRootCommand creates the catalog-svc root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "catalog-svc",
		Short:   "Movie catalog favorites service",
		Long:    "Keeps a list of favorite movies and proxies search and details from the movie provider.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.LogLevel == "" {
				return nil
			}
			if _, err := logger.ParseLevel(opts.LogLevel); err != nil {
				return fmt.Errorf("invalid --log-level: %w", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ./config/config.yaml or ./config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level override (debug|info|warn|error)")

	cmd.AddCommand(NewServeCommand(opts, version))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts, afero.NewOsFs()))

	return cmd
}

// loadConfig resolves the configuration for a command, applying the
// global flag overrides.
func loadConfig(cmd *cobra.Command, opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(cmd.Context(), config.NewFileLoader(opts.ConfigPath))
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	return cfg, nil
}
