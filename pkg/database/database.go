package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite" // pure Go SQLite driver registered as "sqlite"

	"sphinx_backend/pkg/logger"
)

var DB *gorm.DB

const (
	maxOpenConns    = 100
	maxIdleConns    = 10
	connMaxLifetime = 5 * time.Minute
	pingTimeout     = 5 * time.Second
)

// Open connects to Postgres for postgres:// URLs and to SQLite otherwise
// (sqlite://path, sqlite://:memory:, or a file: DSN).
func Open(url string, log *logrus.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:      logger.Gorm(log),
		PrepareStmt: false,
		NowFunc:     func() time.Time { return time.Now().UTC() },
		// References between documents may dangle after deletes.
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	if IsPostgres(url) {
		pgConfig := postgres.Config{
			DSN:                  url,
			PreferSimpleProtocol: true,
		}
		db, err := gorm.Open(postgres.New(pgConfig), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database instance: %w", err)
		}
		sqlDB.SetMaxIdleConns(maxIdleConns)
		sqlDB.SetMaxOpenConns(maxOpenConns)
		sqlDB.SetConnMaxLifetime(connMaxLifetime)
		return db, ping(sqlDB)
	}

	dsn := sqlitePath(url)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// SQLite allows a single writer; an in-memory database also lives on one connection.
	sqlDB.SetMaxOpenConns(1)

	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: dsn, Conn: sqlDB}, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, ping(sqlDB)
}

// InitDB opens the database and stores it in the package-level handle.
func InitDB(url string, log *logrus.Logger) error {
	db, err := Open(url, log)
	if err != nil {
		return err
	}
	DB = db
	log.WithField("driver", db.Dialector.Name()).Info("Database connected successfully")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

func IsPostgres(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

func sqlitePath(url string) string {
	path := strings.TrimPrefix(url, "sqlite://")
	if path == "" {
		return ":memory:"
	}
	return path
}

func ping(sqlDB *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// MigrateDatabase creates missing tables, join tables and columns for the given models.
func MigrateDatabase(db *gorm.DB, log *logrus.Logger, models ...interface{}) error {
	for _, model := range models {
		existed := db.Migrator().HasTable(model)
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
		if existed {
			log.Debugf("Updated table for %T", model)
		} else {
			log.Debugf("Created table for %T", model)
		}
	}
	return nil
}

// HealthCheck pings the database.
func HealthCheck(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return ping(sqlDB)
}
