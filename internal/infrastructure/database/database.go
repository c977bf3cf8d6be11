package database

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/JAlbertoAlonso/kopi-chatbot/internal/config"
)

// duplicateDatabaseCode is the Postgres error returned when two boots race
// on CREATE DATABASE.
const duplicateDatabaseCode = "42P04"

// Connect opens the conversation store at cfg.DatabaseURL and tunes the
// connection pool from the service configuration. The target database is
// created on first boot, so a fresh environment only needs a reachable
// Postgres server.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	if err := createDatabaseIfMissing(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		PrepareStmt: true,
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("retrieve sql db: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnLifetime)

	return db, nil
}

// createDatabaseIfMissing connects to the maintenance database and creates
// the conversation store when it does not exist yet. A concurrent boot that
// wins the CREATE DATABASE race is not an error.
func createDatabaseIfMissing(dsn string) error {
	name, adminDSN, err := splitDatabaseURL(dsn)
	if err != nil || name == "" || name == "postgres" {
		return err
	}

	adminDB, err := sql.Open("postgres", adminDSN)
	if err != nil {
		return err
	}
	defer adminDB.Close()

	if _, err := adminDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(name)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == duplicateDatabaseCode {
			return nil
		}
		return err
	}
	return nil
}

// splitDatabaseURL extracts the database name from a postgres URL and
// rewrites it to target the maintenance database instead. Non-URL DSN
// formats are left alone, which skips the bootstrap.
func splitDatabaseURL(dsn string) (name, adminDSN string, err error) {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "", "", nil
	}

	name = strings.TrimPrefix(u.Path, "/")
	admin := *u
	admin.Path = "/postgres"
	return name, admin.String(), nil
}

// gormLogLevel maps the service log level onto gorm's logger. SQL tracing
// only shows up when the whole service runs at debug.
func gormLogLevel(serviceLevel string) gormlogger.LogLevel {
	if strings.EqualFold(serviceLevel, "debug") {
		return gormlogger.Info
	}
	return gormlogger.Warn
}
