package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// CORS is only installed when this is non-empty.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the SQL backend. Driver is "mysql" or "sqlite";
// for sqlite only Path is used.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Path            string `mapstructure:"path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// SchedulerConfig controls the job dispatcher and the periodic maintenance jobs.
type SchedulerConfig struct {
	EnabledOnStart bool              `mapstructure:"enabled_on_start"`
	RunInServer    bool              `mapstructure:"run_in_server"`
	Workers        int               `mapstructure:"workers"`
	PollInterval   time.Duration     `mapstructure:"poll_interval"`
	JobTimeout     time.Duration     `mapstructure:"job_timeout"`
	Maintenance    MaintenanceConfig `mapstructure:"maintenance"`
}

type MaintenanceConfig struct {
	DevPoolInterval  time.Duration `mapstructure:"dev_pool_interval"`
	JobPurgeInterval time.Duration `mapstructure:"job_purge_interval"`
	JobRetention     time.Duration `mapstructure:"job_retention"`
}

// ReconcileConfig tunes the owner-scoped lock held for one reconcile pass.
// LockTTL is how long a crashed holder keeps the owner blocked; live holders
// extend it. Waiting for a busy owner is bounded by the job timeout.
type ReconcileConfig struct {
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

type AuthorizationConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ModelPath  string `mapstructure:"model_path"`
	PolicyPath string `mapstructure:"policy_path"`
}
