package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"warbler/domain"
)

const (
	// DriverPostgres is the production database.
	DriverPostgres = "postgres"
	// DriverSQLite is used for local development and tests.
	DriverSQLite = "sqlite"
)

// DB provides the database connection.
type DB struct {
	// Object-relational mapping.
	Gorm *gorm.DB
	// Driver is either DriverPostgres or DriverSQLite.
	Driver string
	// Connection info string containing database name, user, port etc.
	ConnectionInfo string
}

// NewDB returns a new instance of DB.
func NewDB(driver, connectionInfo string) *DB {
	return &DB{
		Driver:         driver,
		ConnectionInfo: connectionInfo,
	}
}

// Open opens a new database connection. It also configures logging
// based on whether we're in development or in production.
// Driver errors are translated, so unique constraint violations
// surface as gorm.ErrDuplicatedKey regardless of the database in use.
func Open(db *DB, isProd bool) (err error) {
	if db.ConnectionInfo == "" {
		return fmt.Errorf("connectionInfo required")
	}
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	if !isProd {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch db.Driver {
	case DriverPostgres, "":
		dialector = postgres.Open(db.ConnectionInfo)
	case DriverSQLite:
		dialector = sqlite.Open(db.ConnectionInfo)
	default:
		return fmt.Errorf("unknown database driver %q", db.Driver)
	}

	db.Gorm, err = gorm.Open(dialector, cfg)
	if err != nil {
		return fmt.Errorf("err opening gorm %s connection: %w", db.Driver, err)
	}
	if db.Driver == DriverSQLite {
		// SQLite allows a single writer; serialize access through one connection.
		sqlDB, err := db.Gorm.DB()
		if err != nil {
			return err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return nil
}

// AutoMigrate runs database migrations for all tables.
func AutoMigrate(db *DB) error {
	return db.Gorm.AutoMigrate(
		&domain.User{},
		&domain.Message{},
		&domain.Follow{},
		&domain.Like{},
	)
}

// DestructiveReset drops all tables and rebuilds them.
func DestructiveReset(db *DB) error {
	err := db.Gorm.Migrator().DropTable(
		&domain.Like{},
		&domain.Follow{},
		&domain.Message{},
		&domain.User{},
	)
	if err != nil {
		return err
	}
	return AutoMigrate(db)
}

// Close closes the database connection.
func Close(db *DB) error {
	sqlDb, err := db.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDb.Close()
}
