package locks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

// ErrLocked is returned when the estimate stays locked past the wait budget.
var ErrLocked = errors.New("estimate is locked by another run")

// EstimateLocker serializes baseline re-imports and offer runs per estimate.
// Release is idempotent.
type EstimateLocker interface {
	Acquire(ctx context.Context, estimateID uuid.UUID) (release func(), err error)
}

type Config struct {
	TTL  time.Duration
	Wait time.Duration
	// Poll is the retry interval while waiting on a held lock.
	Poll time.Duration
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = 2 * time.Minute
	}
	if c.Wait < 0 {
		c.Wait = 0
	}
	if c.Poll <= 0 {
		c.Poll = 50 * time.Millisecond
	}
	return c
}

func lockKey(estimateID uuid.UUID) string {
	return "tb:lock:estimate:" + estimateID.String()
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	log *logger.Logger
	rdb goredis.UniversalClient
	cfg Config
}

func NewRedisLocker(log *logger.Logger, rdb goredis.UniversalClient, cfg Config) EstimateLocker {
	return &redisLocker{
		log: log.With("service", "RedisEstimateLocker"),
		rdb: rdb,
		cfg: cfg.withDefaults(),
	}
}

func (l *redisLocker) Acquire(ctx context.Context, estimateID uuid.UUID) (func(), error) {
	key := lockKey(estimateID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.cfg.Wait)
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.cfg.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire estimate lock: %w", err)
		}
		if ok {
			break
		}
		if !time.Now().Before(deadline) {
			return nil, ErrLocked
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.cfg.Poll):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.rdb, []string{key}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
				l.log.Warn("estimate lock release failed", "estimate_id", estimateID, "error", err)
			}
		})
	}, nil
}

// localLocker is the single-process fallback used without Redis and by the CLI.
type localLocker struct {
	cfg Config
	mu  sync.Mutex
	sem map[uuid.UUID]chan struct{}
}

func NewLocalLocker(cfg Config) EstimateLocker {
	return &localLocker{cfg: cfg.withDefaults(), sem: map[uuid.UUID]chan struct{}{}}
}

func (l *localLocker) slot(estimateID uuid.UUID) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.sem[estimateID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.sem[estimateID] = ch
	}
	return ch
}

func (l *localLocker) Acquire(ctx context.Context, estimateID uuid.UUID) (func(), error) {
	ch := l.slot(estimateID)
	timer := time.NewTimer(l.cfg.Wait)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		select {
		case ch <- struct{}{}:
		default:
			return nil, ErrLocked
		}
	}
	var once sync.Once
	return func() {
		once.Do(func() { <-ch })
	}, nil
}

// NewFromEnv picks the Redis locker when addr is set and reachable, and the
// in-process locker otherwise. The returned client is nil without Redis.
func NewFromEnv(ctx context.Context, log *logger.Logger, addr string, cfg Config) (EstimateLocker, *goredis.Client) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		log.Info("REDIS_ADDR not set; using in-process estimate locks")
		return NewLocalLocker(cfg), nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		log.Warn("redis ping failed; using in-process estimate locks", "addr", addr, "error", err)
		return NewLocalLocker(cfg), nil
	}
	log.Info("Connected to Redis", "addr", addr)
	return NewRedisLocker(log, rdb, cfg), rdb
}
