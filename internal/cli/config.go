package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Kr4uzr/movie-catalog/pkg/config"
)

// NewConfigCommand creates the config command group. Files are written
// through fs.
func NewConfigCommand(rootOpts *RootOptions, fs afero.Fs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and scaffold configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write an annotated example config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config/config.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.CreateExampleConfig(fs, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load and validate the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, rootOpts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration is valid (storage: %s, provider: %s)\n",
				cfg.Storage.Driver, cfg.Provider.BaseURL)
			return nil
		},
	})

	return cmd
}
