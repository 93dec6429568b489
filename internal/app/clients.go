package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/tenderbridge-backend/internal/platform/gcp"
	"github.com/yungbote/tenderbridge-backend/internal/platform/locks"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

type Clients struct {
	Redis   *goredis.Client
	Locker  locks.EstimateLocker
	Archive gcp.PayloadArchive
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis (estimate locks)
	locker, rdb := locks.NewFromEnv(ctx, log, cfg.RedisAddr, locks.Config{TTL: cfg.LockTTL, Wait: cfg.LockWait})

	// Gcs (import archive)
	storageCfg, err := gcp.ResolveObjectStorageConfigFromEnv()
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return Clients{}, fmt.Errorf("resolve import archive config: %w", err)
	}
	archive, err := gcp.NewPayloadArchive(ctx, log, storageCfg)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return Clients{}, fmt.Errorf("init import archive: %w", err)
	}

	return Clients{Redis: rdb, Locker: locker, Archive: archive}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Archive != nil {
		_ = c.Archive.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
