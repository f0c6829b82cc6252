package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	sharedConfig "github.com/orris-inc/poolkeeper/internal/shared/config"
)

type Config struct {
	Server        sharedConfig.ServerConfig        `mapstructure:"server"`
	Database      sharedConfig.DatabaseConfig      `mapstructure:"database"`
	Logger        sharedConfig.LoggerConfig        `mapstructure:"logger"`
	Redis         sharedConfig.RedisConfig         `mapstructure:"redis"`
	Scheduler     sharedConfig.SchedulerConfig     `mapstructure:"scheduler"`
	Reconcile     sharedConfig.ReconcileConfig     `mapstructure:"reconcile"`
	Authorization sharedConfig.AuthorizationConfig `mapstructure:"authorization"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// A missing config file is not an error; defaults and env vars still apply.
func Load(env string, configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("POOLKEEPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&config); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration, or nil before Load.
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{})

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "poolkeeper.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "poolkeeper")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "poolkeeper")

	// Scheduler defaults
	v.SetDefault("scheduler.enabled_on_start", true)
	v.SetDefault("scheduler.run_in_server", true)
	v.SetDefault("scheduler.workers", 4)
	v.SetDefault("scheduler.poll_interval", "2s")
	v.SetDefault("scheduler.job_timeout", "10m")
	v.SetDefault("scheduler.maintenance.dev_pool_interval", "10m")
	v.SetDefault("scheduler.maintenance.job_purge_interval", "1h")
	v.SetDefault("scheduler.maintenance.job_retention", "168h")

	// Reconcile defaults
	v.SetDefault("reconcile.lock_ttl", "30s")

	// Authorization defaults
	v.SetDefault("authorization.enabled", false)
	v.SetDefault("authorization.model_path", "")
	v.SetDefault("authorization.policy_path", "")
}

func validate(cfg *Config) error {
	if cfg.Reconcile.LockTTL < time.Second {
		return fmt.Errorf("reconcile.lock_ttl must be at least 1s, got %s", cfg.Reconcile.LockTTL)
	}
	return nil
}
