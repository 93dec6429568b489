package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/tenderbridge-backend/internal/domain/aggregates"
)

func TestMapErrorClassifies(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domainagg.ErrorCode
	}{
		{"validation sentinel", ValidationError("bad input"), domainagg.CodeValidation},
		{"invariant sentinel", InvariantError("orphan alert"), domainagg.CodeInvariantViolation},
		{"conflict sentinel", ConflictError("stale"), domainagg.CodeConflict},
		{"record not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), domainagg.CodeNotFound},
		{"deadline", context.DeadlineExceeded, domainagg.CodeRetryable},
		{"pg unique", &pgconn.PgError{Code: "23505"}, domainagg.CodeConflict},
		{"pg fk", &pgconn.PgError{Code: "23503"}, domainagg.CodePreconditionFailed},
		{"pg serialization", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), domainagg.CodeRetryable},
		{"pg other", &pgconn.PgError{Code: "42P01"}, domainagg.CodeInternal},
		{"sqlite unique", errors.New("UNIQUE constraint failed: offer.estimate_id, offer.company, offer.round_number"), domainagg.CodeConflict},
		{"pg text unique", errors.New(`ERROR: duplicate key value violates unique constraint "idx_offer_round"`), domainagg.CodeConflict},
		{"sqlite busy", errors.New("database is locked"), domainagg.CodeRetryable},
		{"deadlock text", errors.New("deadlock detected"), domainagg.CodeRetryable},
		{"unknown", errors.New("no such table: widget"), domainagg.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := MapError("Estimates.Offer.ReplaceReconciliation", tc.err)
			if got := domainagg.CodeOf(err); got != tc.want {
				t.Fatalf("want=%s got=%s (%v)", tc.want, got, err)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("cause lost from chain")
			}
		})
	}
}

func TestMapErrorKeepsTypedErrors(t *testing.T) {
	if MapError("op", nil) != nil {
		t.Fatalf("nil in, nil out")
	}
	in := domainagg.NotFoundf("Estimates.Alert.Resolve", "alert not found: a1")
	if out := MapError("other", fmt.Errorf("tx: %w", in)); domainagg.CodeOf(out) != domainagg.CodeNotFound {
		t.Fatalf("typed error should keep its code, got=%v", out)
	}
	if out := MapError("other", in); out != in {
		t.Fatalf("expected passthrough of the typed error")
	}
}
