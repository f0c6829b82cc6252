// Package bootstrap loads configuration and opens the shared resources every
// command needs.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/poolkeeper/internal/infrastructure/cache"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/config"
	"github.com/orris-inc/poolkeeper/internal/infrastructure/database"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

// Runtime is what a command works with once bootstrapped.
type Runtime struct {
	Env    string
	Config *config.Config
	Log    logger.Interface
	DB     *gorm.DB
	Redis  *redis.Client
}

// Options selects which resources Load opens.
type Options struct {
	Env        string
	ConfigPath string
	Database   bool
	Redis      bool
}

// ResolveEnv lets the ENV variable override the --env flag.
func ResolveEnv(flagValue string) string {
	if v := os.Getenv("ENV"); v != "" {
		return v
	}
	return flagValue
}

// Load reads config, initializes logging and opens the requested resources.
// Callers must Close the returned runtime.
func Load(ctx context.Context, opts Options) (*Runtime, error) {
	env := ResolveEnv(opts.Env)

	cfg, err := config.Load(env, opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	rt := &Runtime{
		Env:    env,
		Config: cfg,
		Log:    logger.NewLogger(),
	}

	if opts.Database {
		if err := database.Init(&cfg.Database); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		rt.DB = database.Get()
	}

	if opts.Redis {
		client, err := cache.NewClient(ctx, &cfg.Redis)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.Redis = client
		if client != nil {
			rt.Log.Infow("redis connection established", "address", cfg.Redis.GetAddr())
		}
	}

	return rt, nil
}

// Close releases whatever Load opened.
func (r *Runtime) Close() {
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			r.Log.Warnw("failed to close redis client", "error", err)
		}
	}
	if r.DB != nil {
		if err := database.Close(); err != nil {
			r.Log.Warnw("failed to close database", "error", err)
		}
	}
}
