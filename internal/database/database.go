package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"budgettracker/internal/config"
	"budgettracker/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Supported values for config.Config.DBDriver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Manager owns the connection pool for the lifetime of the process.
type Manager struct {
	db     *gorm.DB
	driver string
	dsn    string
	url    string
}

// NewManager opens the configured database. For SQLite the parent directory
// of the database file is created when missing.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{driver: cfg.DBDriver}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverSQLite:
		if dir := filepath.Dir(cfg.DBPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		m.dsn = SQLiteDSN(cfg.DBPath)
		dialector = sqlite.Open(m.dsn)
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres driver")
		}
		m.url = cfg.DatabaseURL
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DatabaseURL,
			PreferSimpleProtocol: true,
		})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	logLevel := gormlogger.Warn
	if cfg.IsProduction() {
		logLevel = gormlogger.Error
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	if cfg.DBDriver == DriverSQLite {
		// SQLite serializes writers; a single connection avoids SQLITE_BUSY
		// under concurrent requests.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	m.db = db
	return m, nil
}

// SQLiteDSN returns the go-sqlite3 DSN for a database file with foreign keys
// enforced, which the cascade on user deletion relies on.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}

// Migrator returns a golang-migrate instance reading the embedded migrations
// for the configured driver. The caller must Close it.
func (m *Manager) Migrator() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+m.driver)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	switch m.driver {
	case DriverSQLite:
		// A dedicated connection: the sqlite3 driver closes it on Close.
		conn, err := sql.Open("sqlite3", m.dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open migration connection: %w", err)
		}
		driver, err := sqlite3.WithInstance(conn, &sqlite3.Config{})
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create sqlite3 migrate driver: %w", err)
		}
		return migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	default:
		return migrate.NewWithSourceInstance("iofs", src, m.url)
	}
}

// RunMigrations applies all pending migrations. It is safe to call on every
// start: an up-to-date schema is not an error.
func (m *Manager) RunMigrations() error {
	logger.Get().Infow("running database migrations", "driver", m.driver)

	mig, err := m.Migrator()
	if err != nil {
		return err
	}
	defer CloseMigrator(mig)

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Get().Infow("database migrations completed", "version", version, "dirty", dirty)
	return nil
}

// DB returns the underlying GORM database instance.
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close releases the connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// MigrationNames lists the embedded migration files for a driver.
func MigrationNames(driver string) ([]string, error) {
	return fs.Glob(migrationsFS, "migrations/"+driver+"/*.sql")
}

// CloseMigrator closes a migrator returned by Migrator, logging close errors.
func CloseMigrator(mig *migrate.Migrate) {
	srcErr, dbErr := mig.Close()
	if srcErr != nil {
		logger.Get().Warnf("migrate source close error: %v", srcErr)
	}
	if dbErr != nil {
		logger.Get().Warnf("migrate database close error: %v", dbErr)
	}
}
