package worker

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/orris-inc/poolkeeper/internal/interfaces/cli/bootstrap"
	jobworker "github.com/orris-inc/poolkeeper/internal/interfaces/worker"
	"github.com/orris-inc/poolkeeper/internal/shared/version"
)

var (
	env        string
	configPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the job dispatcher and maintenance jobs",
		Long: `Run the job dispatcher and the periodic maintenance jobs without the HTTP API.
With Redis enabled, several workers share the scheduler switch, owner locks and job notifications.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Load(ctx, bootstrap.Options{
		Env:        env,
		ConfigPath: configPath,
		Database:   true,
		Redis:      true,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	log := rt.Log.Named("worker")
	log.Infow("starting worker",
		"environment", rt.Env,
		"version", version.String(),
		"workers", rt.Config.Scheduler.Workers,
		"redis", rt.Redis != nil,
	)
	if rt.Redis == nil {
		log.Warnw("redis is disabled; this worker only sees jobs through polling and cannot coordinate with other processes")
	}

	w, err := jobworker.New(rt.DB, rt.Redis, rt.Config, log)
	if err != nil {
		return fmt.Errorf("failed to build worker: %w", err)
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorw("worker stopped with error", "error", err)
		return err
	}

	log.Infow("worker stopped")
	return nil
}
