package migration

import (
	"database/sql"
	"embed"
	"fmt"
	"path"
	"sync"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

//go:embed scripts/mysql/*.sql scripts/sqlite3/*.sql
var scripts embed.FS

// goose keeps its dialect and filesystem in package globals.
var gooseMu sync.Mutex

// Strategy defines the interface for different migration strategies
type Strategy interface {
	// Migrate executes the migration strategy
	Migrate(db *gorm.DB) error
	// GetName returns the strategy name
	GetName() string
}

// GooseStrategy applies the versioned SQL scripts embedded in the binary.
// driver is the gorm driver name ("mysql" or "sqlite"); it selects both the
// goose dialect and the script directory.
type GooseStrategy struct {
	dialect string
	dir     string
	logger  logger.Interface
}

func NewGooseStrategy(driver string, log logger.Interface) (*GooseStrategy, error) {
	var dialect string
	switch driver {
	case "mysql":
		dialect = "mysql"
	case "sqlite", "sqlite3":
		dialect = "sqlite3"
	default:
		return nil, fmt.Errorf("unsupported migration driver: %s", driver)
	}
	return &GooseStrategy{
		dialect: dialect,
		dir:     path.Join("scripts", dialect),
		logger:  log.With("component", "migration.goose"),
	}, nil
}

func (s *GooseStrategy) GetName() string {
	return "goose"
}

// Dialect is the goose dialect, which is also the script subdirectory name.
func (s *GooseStrategy) Dialect() string {
	return s.dialect
}

type gooseRunner struct {
	db  *sql.DB
	dir string
}

// withGoose configures goose and runs fn against the underlying sql.DB.
func (s *GooseStrategy) withGoose(db *gorm.DB, fn func(g gooseRunner) error) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(scripts)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(s.dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return fn(gooseRunner{db: sqlDB, dir: s.dir})
}

func (s *GooseStrategy) Migrate(db *gorm.DB) error {
	s.logger.Infow("starting goose migration", "dialect", s.dialect)

	return s.withGoose(db, func(g gooseRunner) error {
		from, err := goose.GetDBVersion(g.db)
		if err != nil {
			return fmt.Errorf("failed to get current version: %w", err)
		}
		if err := goose.Up(g.db, g.dir); err != nil {
			s.logger.Errorw("migration failed", "error", err)
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		to, err := goose.GetDBVersion(g.db)
		if err != nil {
			return fmt.Errorf("failed to get final version: %w", err)
		}
		s.logger.Infow("migration completed successfully", "from_version", from, "to_version", to)
		return nil
	})
}

// MigrateDown rolls back steps migrations.
func (s *GooseStrategy) MigrateDown(db *gorm.DB, steps int) error {
	s.logger.Infow("starting down migration", "steps", steps)

	return s.withGoose(db, func(g gooseRunner) error {
		for range steps {
			if err := goose.Down(g.db, g.dir); err != nil {
				s.logger.Errorw("down migration failed", "error", err)
				return fmt.Errorf("failed to run down migration: %w", err)
			}
		}
		s.logger.Infow("down migration completed successfully")
		return nil
	})
}

func (s *GooseStrategy) GetVersion(db *gorm.DB) (int64, error) {
	var version int64
	err := s.withGoose(db, func(g gooseRunner) error {
		v, err := goose.GetDBVersion(g.db)
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}

// Status prints the applied state of every script.
func (s *GooseStrategy) Status(db *gorm.DB) error {
	return s.withGoose(db, func(g gooseRunner) error {
		if err := goose.Status(g.db, g.dir); err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}
		return nil
	})
}

// Create writes a new timestamped SQL migration into dir on disk.
func (s *GooseStrategy) Create(dir, name string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := goose.SetDialect(s.dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}
	s.logger.Infow("migration created successfully", "name", name, "dir", dir)
	return nil
}
