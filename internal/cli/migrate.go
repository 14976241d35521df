package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Kr4uzr/movie-catalog/internal/repository"
	"github.com/Kr4uzr/movie-catalog/pkg/db"
)

// NewMigrateCommand creates the migrate command group.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the favorites schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, rootOpts, func(m *db.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, rootOpts, func(m *db.Migrator) error {
				var err error
				if steps > 0 {
					err = m.Steps(-steps)
				} else {
					err = m.Down()
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 0, "number of migrations to roll back (0 rolls back all)")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, rootOpts, func(m *db.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version: %d, dirty: %t\n", version, dirty)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Set the schema version without running migrations",
		Long:  "Set the schema version without running migrations. Use it to clear a dirty state after fixing the database by hand.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			return withMigrator(cmd, rootOpts, func(m *db.Migrator) error {
				if err := m.Force(version); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "forced version %d\n", version)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(cmd *cobra.Command, opts *RootOptions, fn func(m *db.Migrator) error) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	m, err := repository.NewMigrator(cfg.Storage)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}
