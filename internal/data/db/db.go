package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type Options struct {
	Driver           string
	SQLiteDSN        string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string
	PostgresSSLMode  string
	// Quiet silences gorm's own logger.
	Quiet bool
}

func (o Options) postgresDSN() string {
	sslMode := o.PostgresSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		o.PostgresUser,
		o.PostgresPassword,
		o.PostgresHost,
		o.PostgresPort,
		o.PostgresName,
		sslMode,
	)
}

type DatabaseService struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

// NewDatabaseService opens the configured database. SQLite is the default
// and accepts in-memory DSNs for tests and demos.
func NewDatabaseService(logg *logger.Logger, opts Options) (*DatabaseService, error) {
	serviceLog := logg.With("service", "DatabaseService")

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	if opts.Quiet {
		gormLog = gormLogger.Default.LogMode(gormLogger.Silent)
	}
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}

	driver := strings.ToLower(strings.TrimSpace(opts.Driver))
	var (
		conn *gorm.DB
		err  error
	)
	switch driver {
	case "", "sqlite":
		driver = "sqlite"
		dsn := opts.SQLiteDSN
		if dsn == "" {
			dsn = "file:dryad?mode=memory&cache=shared"
		}
		conn, err = gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite: %w", err)
		}
		// In-memory databases vanish with their last connection.
		if sqlDB, derr := conn.DB(); derr == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	case "postgres", "postgresql":
		driver = "postgres"
		conn, err = gorm.Open(postgres.Open(opts.postgresDSN()), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", opts.Driver)
	}

	serviceLog.Info("database opened", "driver", driver)
	return &DatabaseService{db: conn, driver: driver, log: serviceLog}, nil
}

func (s *DatabaseService) DB() *gorm.DB { return s.db }

func (s *DatabaseService) Driver() string { return s.driver }

func (s *DatabaseService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
