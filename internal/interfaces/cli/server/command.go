package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/orris-inc/poolkeeper/internal/infrastructure/migration"
	"github.com/orris-inc/poolkeeper/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/orris-inc/poolkeeper/internal/interfaces/http"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
	"github.com/orris-inc/poolkeeper/internal/shared/version"
)

var (
	env                string
	configPath         string
	autoMigrate        bool
	skipMigrationCheck bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the poolkeeper HTTP API. Unless scheduler.run_in_server is false, jobs are dispatched in the same process.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Automatically run database migrations on startup (not recommended for production)")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip migration status check on startup")

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

	log := rt.Log
	log.Infow("starting server",
		"environment", rt.Env,
		"version", version.String(),
		"auto_migrate", autoMigrate,
		"redis", rt.Redis != nil,
	)

	gin.SetMode(mapEnvToGinMode(rt.Env))
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if err := handleMigrations(rt.Env, rt.Config.Database.Driver, rt.DB, log); err != nil {
		return fmt.Errorf("migration handling failed: %w", err)
	}

	container, err := httpRouter.NewContainer(rt.DB, rt.Redis, rt.Config, log)
	if err != nil {
		return fmt.Errorf("failed to build http container: %w", err)
	}

	log.Infow("server starting", "address", rt.Config.Server.GetAddr(), "mode", gin.Mode())
	if err := container.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorw("server stopped with error", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func handleMigrations(environment, driver string, db *gorm.DB, log logger.Interface) error {
	if skipMigrationCheck {
		log.Infow("skipping migration check")
		return nil
	}

	if autoMigrate {
		if environment == "production" {
			log.Warnw("auto-migration is enabled in production environment - this is not recommended!")
		}

		manager, err := migration.NewManager(environment, driver, log)
		if err != nil {
			return err
		}
		log.Infow("running auto-migration", "strategy", manager.GetStrategy().GetName())
		if err := manager.Migrate(db); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		log.Infow("auto-migration completed successfully")
		return nil
	}

	strategy, err := migration.NewGooseStrategy(driver, log)
	if err != nil {
		log.Warnw("failed to prepare migration check", "error", err)
		return nil
	}
	version, err := strategy.GetVersion(db)
	if err != nil {
		log.Warnw("failed to check migration status", "error", err)
		return nil
	}
	log.Infow("current migration version", "version", version)
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return gin.ReleaseMode
	case "test", "testing":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
