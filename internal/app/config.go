package app

import (
	"strings"
	"time"

	"github.com/yungbote/tenderbridge-backend/internal/platform/envutil"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	Environment string
	ServiceName string
	Version     string

	DBDriver   string
	SQLitePath string

	RedisAddr string
	LockTTL   time.Duration
	LockWait  time.Duration

	// WriteAttempts bounds retries of aggregate writes on transient db errors.
	WriteAttempts int

	MetricsAddr string
	CORSOrigins []string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:        envutil.String("PORT", "8080", log),
		Environment: envutil.String("APP_ENV", "development", log),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "tenderbridge", log),
		Version:     envutil.String("APP_VERSION", "dev", log),

		DBDriver:   strings.ToLower(envutil.String("DB_DRIVER", "postgres", log)),
		SQLitePath: envutil.String("SQLITE_PATH", "tenderbridge.db", log),

		RedisAddr: envutil.String("REDIS_ADDR", "", log),
		LockTTL:   time.Duration(envutil.Int("ESTIMATE_LOCK_TTL_SECONDS", 120, log)) * time.Second,
		LockWait:  time.Duration(envutil.Int("ESTIMATE_LOCK_WAIT_SECONDS", 30, log)) * time.Second,

		WriteAttempts: envutil.Int("AGGREGATE_WRITE_ATTEMPTS", 3, log),

		MetricsAddr: envutil.String("METRICS_ADDR", "", log),
		CORSOrigins: splitList(envutil.String("CORS_ALLOWED_ORIGINS", "", log)),
	}
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
