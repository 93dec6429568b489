package baselines

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/tenderbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
)

func TestEstimateRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewEstimateRepo(db, testutil.Logger(t))

	p := testutil.SeedProject(t, ctx, tx, "EST-1")
	e := &types.Estimate{ProjectID: p.ID, Name: "baseline", Kind: types.EstimateKindProject, Source: types.EstimateSourceImport}
	if _, err := repo.Create(dbc, []*types.Estimate{e}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.ID == uuid.Nil || string(e.MergedFrom) != "[]" {
		t.Fatalf("Create defaults: id=%s merged_from=%s", e.ID, e.MergedFrom)
	}

	if got, err := repo.GetByID(dbc, e.ID); err != nil || got == nil || got.Name != "baseline" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByProjectAndName(dbc, p.ID, " baseline "); err != nil || got == nil || got.ID != e.ID {
		t.Fatalf("GetByProjectAndName: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByProjectAndName(dbc, p.ID, "other"); err != nil || got != nil {
		t.Fatalf("GetByProjectAndName missing: got=%v err=%v", got, err)
	}
	if rows, err := repo.ListByProject(dbc, p.ID); err != nil || len(rows) != 1 {
		t.Fatalf("ListByProject: err=%v len=%d", err, len(rows))
	}
	if err := repo.UpdateFields(dbc, e.ID, map[string]interface{}{"item_count": 7}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got, _ := repo.GetByID(dbc, e.ID); got == nil || got.ItemCount != 7 {
		t.Fatalf("UpdateFields verify: %+v", got)
	}

	dup := &types.Estimate{ProjectID: p.ID, Name: "baseline", Kind: types.EstimateKindProject, Source: types.EstimateSourceImport}
	if _, err := repo.Create(dbc, []*types.Estimate{dup}); err == nil {
		t.Fatalf("duplicate (project, name) must be rejected")
	}
}

func TestBaselineContentRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)
	groups := NewWbsGroupRepo(db, log)
	catalog := NewCatalogItemRepo(db, log)
	items := NewEstimateItemRepo(db, log)

	p := testutil.SeedProject(t, ctx, tx, "EST-2")
	e := testutil.SeedEstimate(t, ctx, tx, p.ID, "baseline")

	g := &types.WbsGroup{ID: uuid.New(), EstimateID: e.ID, Code: "G1", Description: "Structure"}
	if _, err := groups.Create(dbc, []*types.WbsGroup{g}); err != nil {
		t.Fatalf("groups.Create: %v", err)
	}
	c := &types.CatalogItem{ID: uuid.New(), EstimateID: e.ID, Code: "C1", Description: "Slab", Unit: "m3", UnitPrice: 5}
	if _, err := catalog.Create(dbc, []*types.CatalogItem{c}); err != nil {
		t.Fatalf("catalog.Create: %v", err)
	}
	if string(c.GroupIDs) != "[]" {
		t.Fatalf("catalog group ids default: %s", c.GroupIDs)
	}
	p2, p1 := 2, 1
	rows := []*types.EstimateItem{
		{ID: uuid.New(), EstimateID: e.ID, CatalogItemID: c.ID, Quantity: 1},
		{ID: uuid.New(), EstimateID: e.ID, CatalogItemID: c.ID, Progressive: &p2, Quantity: 2},
		{ID: uuid.New(), EstimateID: e.ID, CatalogItemID: c.ID, Progressive: &p1, Quantity: 3},
	}
	if _, err := items.Create(dbc, rows); err != nil {
		t.Fatalf("items.Create: %v", err)
	}

	got, err := items.GetByEstimateID(dbc, e.ID)
	if err != nil || len(got) != 3 {
		t.Fatalf("items.GetByEstimateID: err=%v len=%d", err, len(got))
	}
	if got[0].Progressive == nil || *got[0].Progressive != 1 || got[2].Progressive != nil {
		t.Fatalf("progressive ordering: %v %v %v", got[0].Progressive, got[1].Progressive, got[2].Progressive)
	}
	if n, err := items.CountByCatalogItemID(dbc, c.ID); err != nil || n != 3 {
		t.Fatalf("CountByCatalogItemID: n=%d err=%v", n, err)
	}
	if cs, err := catalog.GetByEstimateID(dbc, e.ID); err != nil || len(cs) != 1 {
		t.Fatalf("catalog.GetByEstimateID: err=%v len=%d", err, len(cs))
	}
	if cs, err := catalog.GetByIDs(dbc, []uuid.UUID{c.ID}); err != nil || len(cs) != 1 {
		t.Fatalf("catalog.GetByIDs: err=%v len=%d", err, len(cs))
	}
	if gs, err := groups.GetByEstimateID(dbc, e.ID); err != nil || len(gs) != 1 {
		t.Fatalf("groups.GetByEstimateID: err=%v len=%d", err, len(gs))
	}

	if n, err := items.DeleteByEstimateID(dbc, e.ID); err != nil || n != 3 {
		t.Fatalf("items.DeleteByEstimateID: n=%d err=%v", n, err)
	}
	if n, err := catalog.DeleteByEstimateID(dbc, e.ID); err != nil || n != 1 {
		t.Fatalf("catalog.DeleteByEstimateID: n=%d err=%v", n, err)
	}
	if n, err := groups.DeleteByEstimateID(dbc, e.ID); err != nil || n != 1 {
		t.Fatalf("groups.DeleteByEstimateID: n=%d err=%v", n, err)
	}
}

func TestMergeReportRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewMergeReportRepo(db, testutil.Logger(t))

	p := testutil.SeedProject(t, ctx, tx, "EST-3")
	e := testutil.SeedEstimate(t, ctx, tx, p.ID, "merged")
	row := &types.MergeReport{
		ProjectID:         p.ID,
		EstimateID:        e.ID,
		SourceEstimateIDs: types.UUIDListJSON([]uuid.UUID{uuid.New(), uuid.New()}),
		Report:            datatypes.JSON([]byte(`{"mismatches":[],"summary":{"total_codes":0}}`)),
	}
	if _, err := repo.Create(dbc, row); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got, err := repo.GetByID(dbc, row.ID); err != nil || got == nil {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	got, err := repo.GetByEstimateID(dbc, e.ID)
	if err != nil || got == nil || got.ID != row.ID {
		t.Fatalf("GetByEstimateID: got=%v err=%v", got, err)
	}
	if len(types.DecodeUUIDList(got.SourceEstimateIDs)) != 2 {
		t.Fatalf("source ids: %s", got.SourceEstimateIDs)
	}
	if got, err := repo.GetByID(dbc, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID missing: got=%v err=%v", got, err)
	}
}
