package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/tenderbridge-backend/internal/data/aggregates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
)

// FaultyTxRunner wraps Inner and injects failures around the body. With a
// real Inner runner an injected commit failure rolls the body's writes back.
type FaultyTxRunner struct {
	Inner aggregates.TxRunner

	// BusyAttempts fails that many leading attempts with BusyErr before the body runs.
	BusyAttempts int
	BusyErr      error
	// CommitErr is returned after the body succeeds, aborting the transaction.
	CommitErr error

	mu        sync.Mutex
	attempts  int
	commits   int
	rollbacks int
}

var _ aggregates.TxRunner = (*FaultyTxRunner)(nil)

func (r *FaultyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.attempts++
	busy := r.attempts <= r.BusyAttempts
	r.mu.Unlock()
	if busy {
		return r.BusyErr
	}

	body := func(dbc dbctx.Context) error {
		if err := fn(dbc); err != nil {
			return err
		}
		return r.CommitErr
	}
	var err error
	if r.Inner != nil {
		err = r.Inner.InTx(ctx, body)
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.rollbacks++
	} else {
		r.commits++
	}
	return err
}

// Counts returns attempts, commits and rollbacks seen so far.
func (r *FaultyTxRunner) Counts() (attempts, commits, rollbacks int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts, r.commits, r.rollbacks
}
