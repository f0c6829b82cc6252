package migrate

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/orris-inc/poolkeeper/internal/infrastructure/migration"
	"github.com/orris-inc/poolkeeper/internal/interfaces/cli/bootstrap"
)

type options struct {
	env        string
	configPath string
}

// NewCommand returns `migrate` with its up, down, status and create
// subcommands. All of them use goose scripts for the configured driver.
func NewCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.PersistentFlags().StringVarP(&opts.env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(
		newUpCommand(opts),
		newDownCommand(opts),
		newStatusCommand(opts),
		newCreateCommand(opts),
	)
	return cmd
}

// run loads the runtime, builds the goose strategy and hands both to fn.
func (o *options) run(cmd *cobra.Command, withDatabase bool, fn func(*bootstrap.Runtime, *migration.GooseStrategy) error) error {
	rt, err := bootstrap.Load(cmd.Context(), bootstrap.Options{
		Env:        o.env,
		ConfigPath: o.configPath,
		Database:   withDatabase,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	strategy, err := migration.NewGooseStrategy(rt.Config.Database.Driver, rt.Log)
	if err != nil {
		return err
	}
	return fn(rt, strategy)
}

func newUpCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, true, func(rt *bootstrap.Runtime, s *migration.GooseStrategy) error {
				rt.Log.Infow("applying migrations", "environment", rt.Env, "driver", s.Dialect())
				if err := s.Migrate(rt.DB); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				rt.Log.Infow("schema is up to date")
				return nil
			})
		},
	}
}

func newDownCommand(opts *options) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1, got %d", steps)
			}
			return opts.run(cmd, true, func(rt *bootstrap.Runtime, s *migration.GooseStrategy) error {
				rt.Log.Infow("rolling back migrations", "environment", rt.Env, "steps", steps)
				if err := s.MigrateDown(rt.DB, steps); err != nil {
					return fmt.Errorf("down migration failed: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to roll back")
	return cmd
}

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the schema version and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, true, func(rt *bootstrap.Runtime, s *migration.GooseStrategy) error {
				version, err := s.GetVersion(rt.DB)
				if err != nil {
					return fmt.Errorf("failed to read schema version: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "environment: %s\ndriver:      %s\nversion:     %d\n", rt.Env, s.Dialect(), version)
				return s.Status(rt.DB)
			})
		},
	}
}

func newCreateCommand(opts *options) *cobra.Command {
	var name, scriptsDir string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an empty SQL migration for the configured driver",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, false, func(rt *bootstrap.Runtime, s *migration.GooseStrategy) error {
				dir, err := filepath.Abs(filepath.Join(scriptsDir, s.Dialect()))
				if err != nil {
					return err
				}
				if err := s.Create(dir, name); err != nil {
					return fmt.Errorf("failed to create migration: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created migration %q in %s\n", name, dir)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration")
	cmd.Flags().StringVar(&scriptsDir, "dir", "./internal/infrastructure/migration/scripts", "Root directory of the migration scripts")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
