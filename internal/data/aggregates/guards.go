package aggregates

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
)

// guardedTable is a model whose rows carry a status column.
type guardedTable interface {
	TableName() string
}

// CASGuard updates status-carrying rows only while they are still in the
// status the caller read. No row locks are taken.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) conn(dbc dbctx.Context) (*gorm.DB, error) {
	switch {
	case dbc.Tx != nil:
		return dbc.Tx.WithContext(dbc.Ctx), nil
	case g.db != nil:
		return g.db.WithContext(dbc.Ctx), nil
	}
	return nil, ValidationError("cas guard has no db")
}

// TransitionIfStatus applies updates to row id of model when its status is
// one of from, and reports whether a row matched.
func TransitionIfStatus[S ~string](g CASGuard, dbc dbctx.Context, model guardedTable, id uuid.UUID, from []S, updates map[string]any) (bool, error) {
	if id == uuid.Nil {
		return false, ValidationError(model.TableName() + ": id is required")
	}
	if len(from) == 0 {
		return false, ValidationError(model.TableName() + ": no source status to guard on")
	}
	db, err := g.conn(dbc)
	if err != nil {
		return false, err
	}
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}
	res := db.Table(model.TableName()).
		Where("id = ? AND status IN ?", id, statuses).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RequireCASSuccess turns a guard miss into a conflict.
func RequireCASSuccess(matched bool, message string) error {
	if matched {
		return nil
	}
	return ConflictError(message)
}

// RequireStatusIn fails with a conflict unless current is one of allowed.
func RequireStatusIn[S ~string](current S, allowed []S) error {
	if len(allowed) == 0 {
		return ValidationError("no allowed statuses given")
	}
	for _, s := range allowed {
		if strings.EqualFold(strings.TrimSpace(string(current)), strings.TrimSpace(string(s))) {
			return nil
		}
	}
	return ConflictError(fmt.Sprintf("status %q does not allow this transition", current))
}
