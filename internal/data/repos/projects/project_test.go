package projects

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
)

func TestProjectRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewProjectRepo(db, testutil.Logger(t))

	p := &types.Project{Code: " PRJ-1 ", Name: "Hospital wing"}
	created, err := repo.Create(dbc, []*types.Project{p})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil || created[0].Code != "PRJ-1" {
		t.Fatalf("Create: unexpected: %+v", created)
	}

	if got, err := repo.GetByID(dbc, p.ID); err != nil || got == nil || got.Name != "Hospital wing" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByCode(dbc, "PRJ-1"); err != nil || got == nil || got.ID != p.ID {
		t.Fatalf("GetByCode: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByCode(dbc, "missing"); err != nil || got != nil {
		t.Fatalf("GetByCode missing: got=%v err=%v", got, err)
	}

	testutil.SeedProject(t, ctx, tx, "PRJ-0")
	rows, err := repo.List(dbc, 10, 0)
	if err != nil || len(rows) != 2 {
		t.Fatalf("List: err=%v len=%d", err, len(rows))
	}
	if rows[0].Code != "PRJ-0" {
		t.Fatalf("List order: first=%q", rows[0].Code)
	}

	if err := repo.UpdateFields(dbc, p.ID, map[string]interface{}{"name": "Renamed"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got, _ := repo.GetByID(dbc, p.ID); got == nil || got.Name != "Renamed" {
		t.Fatalf("UpdateFields verify: %+v", got)
	}

	if err := repo.SoftDeleteByIDs(dbc, []uuid.UUID{p.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if got, err := repo.GetByID(dbc, p.ID); err != nil || got != nil {
		t.Fatalf("after SoftDeleteByIDs GetByID: got=%v err=%v", got, err)
	}
}
