package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/poolkeeper/internal/infrastructure/persistence/seeds"
	"github.com/orris-inc/poolkeeper/internal/interfaces/cli/bootstrap"
	jobworker "github.com/orris-inc/poolkeeper/internal/interfaces/worker"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

var (
	env        string
	configPath string
	file       string
	refresh    bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load products, owners and subscriptions from a fixture file",
		Long: `Load catalog fixtures from a YAML file. Running the same file twice is safe:
products are replaced, existing owners are kept and subscriptions with an id are updated.
With --refresh every seeded owner is reconciled right away.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Fixture file (required)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Reconcile pools of every seeded owner")
	cmd.MarkFlagRequired("file")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := bootstrap.Load(ctx, bootstrap.Options{
		Env:        env,
		ConfigPath: configPath,
		Database:   true,
		Redis:      refresh,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	w, err := jobworker.New(rt.DB, rt.Redis, rt.Config, rt.Log)
	if err != nil {
		return fmt.Errorf("failed to build worker: %w", err)
	}

	summary, err := seedFile(ctx, w, file, refresh, rt.Log.Named("seed"))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products, %d new owners, %d subscriptions\n",
		summary.Products, summary.OwnersCreated, summary.Subscriptions)
	return nil
}

// seedFile applies the fixtures at path and optionally reconciles every owner
// they mention.
func seedFile(ctx context.Context, w *jobworker.Worker, path string, reconcile bool, log logger.Interface) (*seeds.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures: %w", err)
	}
	defer f.Close()

	fixtures, err := seeds.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	summary, err := seeds.Apply(ctx, seeds.Target{
		Owners:        w.Repos.Owners,
		Products:      w.Repos.Products,
		Subscriptions: w.Repos.Subscriptions,
	}, fixtures, log)
	if err != nil {
		return nil, err
	}

	if !reconcile {
		return summary, nil
	}
	for _, key := range summary.OwnerKeys {
		report, err := w.Engine.Reconcile(ctx, key, false)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh pools for %s: %w", key, err)
		}
		log.Infow("owner pools refreshed",
			"owner_key", key,
			"created", len(report.CreatedPools),
			"updated", len(report.UpdatedPools),
			"deleted", len(report.DeletedPools),
		)
	}
	return summary, nil
}
