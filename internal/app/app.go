package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/tenderbridge-backend/internal/data/aggregates"
	"github.com/yungbote/tenderbridge-backend/internal/data/db"
	httpserver "github.com/yungbote/tenderbridge-backend/internal/http"
	"github.com/yungbote/tenderbridge-backend/internal/observability"
	"github.com/yungbote/tenderbridge-backend/internal/platform/envutil"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

type App struct {
	Log     *logger.Logger
	DB      *gorm.DB
	Router  *gin.Engine
	Cfg     Config
	Core    Core
	Clients Clients
	Metrics *observability.Metrics

	server       *httpserver.Server
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	envutil.Load(log)
	cfg := LoadConfig(log)
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	metrics := observability.Init(log)

	theDB, err := db.Open(cfg.DBDriver, cfg.SQLitePath, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	core := NewCore(CoreDeps{
		DB:      theDB,
		Log:     log,
		Metrics: metrics,
		Locker:  clients.Locker,
		Archive: clients.Archive,
		Retry:   aggregates.RetryPolicy{Attempts: cfg.WriteAttempts, Backoff: 25 * time.Millisecond},
	})
	handlers := wireHandlers(log, theDB, core.Services)
	router := wireRouter(log, cfg, metrics, handlers)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Core:         core,
		Clients:      clients,
		Metrics:      metrics,
		server:       httpserver.NewServer(router, ":"+cfg.Port),
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background collectors. It is a no-op when metrics are off.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Metrics != nil {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
		a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB)
		if a.Clients.Redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
		}
	}
}

func (a *App) Run() error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", a.server.Addr())
	return a.server.Run()
}

// Shutdown drains in-flight requests before returning.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
