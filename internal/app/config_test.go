package app

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "SQLITE_PATH", "REDIS_ADDR", "ESTIMATE_LOCK_TTL_SECONDS", "ESTIMATE_LOCK_WAIT_SECONDS", "AGGREGATE_WRITE_ATTEMPTS", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig(logger.Nop())
	if cfg.Port != "8080" || cfg.DBDriver != "postgres" || cfg.SQLitePath != "tenderbridge.db" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.LockTTL != 2*time.Minute || cfg.LockWait != 30*time.Second {
		t.Fatalf("lock defaults: ttl=%v wait=%v", cfg.LockTTL, cfg.LockWait)
	}
	if cfg.WriteAttempts != 3 {
		t.Fatalf("write attempts: want=3 got=%d", cfg.WriteAttempts)
	}
	if cfg.CORSOrigins != nil {
		t.Fatalf("cors origins: want none got %v", cfg.CORSOrigins)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", " SQLite ")
	t.Setenv("ESTIMATE_LOCK_TTL_SECONDS", "5")
	t.Setenv("ESTIMATE_LOCK_WAIT_SECONDS", "oops")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")

	cfg := LoadConfig(logger.Nop())
	if cfg.Port != "9090" || cfg.DBDriver != "sqlite" {
		t.Fatalf("port/driver: %q %q", cfg.Port, cfg.DBDriver)
	}
	if cfg.LockTTL != 5*time.Second || cfg.LockWait != 30*time.Second {
		t.Fatalf("locks: ttl=%v wait=%v", cfg.LockTTL, cfg.LockWait)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if diff := cmp.Diff(want, cfg.CORSOrigins); diff != "" {
		t.Fatalf("cors (-want +got):\n%s", diff)
	}
}
