package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/tenderbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

// TxRunner opens the transaction an aggregate write runs in.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return gormTxRunner{db: db}
}

func (r gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if r.db == nil {
		return domainagg.NotConfigured("aggregate.tx", "transaction db")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

// RetryPolicy bounds how often a write that failed with a transient error
// (sqlite busy, postgres serialization or deadlock) is run again.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

var defaultRetry = RetryPolicy{Attempts: 3, Backoff: 25 * time.Millisecond}

type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
	Retry    RetryPolicy
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Retry.Attempts < 1 {
		d.Retry = defaultRetry
	}
	return d
}

// executeWrite runs fn in one transaction per attempt. The body must only
// touch the database through dbc, since a retried attempt starts over from
// a rolled back state.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	deps = deps.withDefaults()
	if op = strings.TrimSpace(op); op == "" {
		op = "aggregate.write"
	}
	start := time.Now()
	backoff := deps.Retry.Backoff

	var err error
	attempt := 1
	for ; ; attempt++ {
		err = MapError(op, deps.Runner.InTx(ctx, fn))
		if err == nil || attempt >= deps.Retry.Attempts || !domainagg.CodeOf(err).Transient() || ctx.Err() != nil {
			break
		}
		deps.Hooks.IncRetry(op)
		if deps.Log != nil {
			deps.Log.Warn("Retrying aggregate write", "op", op, "attempt", attempt, "error", err)
		}
		select {
		case <-ctx.Done():
			deps.Hooks.ObserveWrite(op, domainagg.CodeOf(err), attempt, time.Since(start))
			return err
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	deps.Hooks.ObserveWrite(op, domainagg.CodeOf(err), attempt, time.Since(start))
	return err
}
