package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
)

func TestFaultyTxRunnerBusyThenCommit(t *testing.T) {
	busy := errors.New("database is locked")
	r := &FaultyTxRunner{BusyAttempts: 1, BusyErr: busy}
	ran := 0
	body := func(dbctx.Context) error { ran++; return nil }

	if err := r.InTx(context.Background(), body); !errors.Is(err, busy) {
		t.Fatalf("first attempt: want busy got=%v", err)
	}
	if err := r.InTx(context.Background(), body); err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	attempts, commits, rollbacks := r.Counts()
	if ran != 1 || attempts != 2 || commits != 1 || rollbacks != 0 {
		t.Fatalf("ran=%d attempts=%d commits=%d rollbacks=%d", ran, attempts, commits, rollbacks)
	}
}

func TestFaultyTxRunnerCommitFailureRollsBack(t *testing.T) {
	commitErr := errors.New("commit failed")
	inner := &FaultyTxRunner{}
	r := &FaultyTxRunner{Inner: inner, CommitErr: commitErr}

	err := r.InTx(context.Background(), func(dbctx.Context) error { return nil })
	if !errors.Is(err, commitErr) {
		t.Fatalf("want commit error, got=%v", err)
	}
	if _, commits, rollbacks := r.Counts(); commits != 0 || rollbacks != 1 {
		t.Fatalf("outer commits=%d rollbacks=%d", commits, rollbacks)
	}
	if _, _, rollbacks := inner.Counts(); rollbacks != 1 {
		t.Fatalf("inner should see the injected failure, rollbacks=%d", rollbacks)
	}
}

func TestFaultyTxRunnerBodyError(t *testing.T) {
	bodyErr := errors.New("boom")
	r := &FaultyTxRunner{}
	if err := r.InTx(context.Background(), func(dbctx.Context) error { return bodyErr }); !errors.Is(err, bodyErr) {
		t.Fatalf("want body error, got=%v", err)
	}
	if _, commits, rollbacks := r.Counts(); commits != 0 || rollbacks != 1 {
		t.Fatalf("commits=%d rollbacks=%d", commits, rollbacks)
	}
}
