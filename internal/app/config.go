package app

import (
	"strings"
	"time"

	"github.com/joho/godotenv"

	dbpkg "github.com/dryad-restoration/dryad-backend/internal/data/db"
	"github.com/dryad-restoration/dryad-backend/internal/platform/envutil"
	"github.com/dryad-restoration/dryad-backend/internal/services"
	"github.com/dryad-restoration/dryad-backend/internal/store"
)

type Config struct {
	Env     string
	LogMode string
	Version string

	Port              string
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	CORSOrigins       []string

	DB           dbpkg.Options
	SeedFixtures bool

	SessionSecret string
	SessionTTL    time.Duration

	RedisAddr string

	RefreshInterval time.Duration
	MarkerPoll      time.Duration

	LaborHourlyRate float64
	// WorkflowFile replaces the built-in workflow table when set.
	WorkflowFile string
}

// LoadConfig reads the environment, after loading .env when one exists.
func LoadConfig() Config {
	_ = godotenv.Load()

	logMode := envutil.String("LOG_MODE", "development")
	return Config{
		Env:     envutil.String("APP_ENV", logMode),
		LogMode: logMode,
		Version: envutil.String("APP_VERSION", "dev"),

		Port:              envutil.String("PORT", "8080"),
		ReadHeaderTimeout: envutil.Duration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		IdleTimeout:       envutil.Duration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   envutil.Duration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
		CORSOrigins:       splitList(envutil.String("CORS_ORIGINS", "")),

		DB: dbpkg.Options{
			Driver:           envutil.String("DB_DRIVER", "sqlite"),
			SQLiteDSN:        envutil.String("SQLITE_DSN", ""),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "dryad"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "dryad"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			Quiet:            envutil.Bool("DB_QUIET", false),
		},
		SeedFixtures: envutil.Bool("SEED_FIXTURES", true),

		SessionSecret: envutil.String("SESSION_SECRET", "dryad-dev-secret"),
		SessionTTL:    envutil.Duration("SESSION_TTL", 12*time.Hour),

		RedisAddr: envutil.String("REDIS_ADDR", ""),

		RefreshInterval: envutil.Duration("STORE_REFRESH_INTERVAL", store.DefaultRefreshInterval),
		MarkerPoll:      envutil.Duration("STORE_MARKER_POLL", store.DefaultMarkerPoll),

		LaborHourlyRate: envutil.Float("LABOR_HOURLY_RATE", services.DefaultLaborHourlyRate),
		WorkflowFile:    envutil.String("WORKFLOW_FILE", ""),
	}
}

func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
