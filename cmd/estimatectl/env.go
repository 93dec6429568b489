package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/tenderbridge-backend/internal/app"
	"github.com/yungbote/tenderbridge-backend/internal/data/db"
	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/envutil"
	"github.com/yungbote/tenderbridge-backend/internal/platform/gcp"
	"github.com/yungbote/tenderbridge-backend/internal/platform/locks"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

// cliEnv is one opened database plus the services on top of it.
type cliEnv struct {
	core  app.Core
	close func()
}

func openEnv(ctx context.Context, g *globalFlags) (*cliEnv, error) {
	log, err := logger.New(g.logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	envutil.Load(log)

	driver := g.dbDriver
	if driver == "" {
		driver = envutil.String("DB_DRIVER", "sqlite", log)
	}
	sqlitePath := g.sqlitePath
	if sqlitePath == "" {
		sqlitePath = envutil.String("SQLITE_PATH", "tenderbridge.db", log)
	}

	conn, err := db.Open(driver, sqlitePath, log)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrateAll(conn); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	locker, rdb := locks.NewFromEnv(ctx, log, envutil.String("REDIS_ADDR", "", log), locks.Config{
		TTL: time.Duration(envutil.Int("ESTIMATE_LOCK_TTL_SECONDS", 0, log)) * time.Second,
	})
	archive := gcp.NewNoopArchive()
	if storageCfg, err := gcp.ResolveObjectStorageConfigFromEnv(); err == nil && storageCfg.Enabled() {
		if a, err := gcp.NewPayloadArchive(ctx, log, storageCfg); err == nil {
			archive = a
		} else {
			log.Warn("Import archive disabled", "error", err)
		}
	}

	core := app.NewCore(app.CoreDeps{
		DB:      conn,
		Log:     log,
		Locker:  locker,
		Archive: archive,
	})
	return &cliEnv{
		core: core,
		close: func() {
			_ = archive.Close()
			if rdb != nil {
				_ = rdb.Close()
			}
			if sqlDB, err := conn.DB(); err == nil {
				_ = sqlDB.Close()
			}
			log.Sync()
		},
	}, nil
}

// withEnv opens the environment for the duration of fn.
func withEnv(cmd *cobra.Command, g *globalFlags, fn func(ctx context.Context, env *cliEnv) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	env, err := openEnv(ctx, g)
	if err != nil {
		return err
	}
	defer env.close()
	return fn(ctx, env)
}

// loadPayload reads an import payload from a .json, .yaml or .yml file,
// or from stdin when path is "-".
func loadPayload(in io.Reader, path string) (*types.ImportPayload, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(in)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	var p types.ImportPayload
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("parse yaml payload: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("parse json payload: %w", err)
		}
	}
	return &p, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(flag, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return id, nil
}
