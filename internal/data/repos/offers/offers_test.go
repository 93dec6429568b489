package offers

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
)

func TestOfferRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewOfferRepo(db, testutil.Logger(t))

	p := testutil.SeedProject(t, ctx, tx, "OFF-1")
	e := testutil.SeedEstimate(t, ctx, tx, p.ID, "baseline")

	o := &types.Offer{ProjectID: p.ID, EstimateID: e.ID, Company: " Acme ", Mode: types.OfferModeAggregated}
	if _, err := repo.Create(dbc, []*types.Offer{o}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if o.RoundNumber != 1 || o.Company != "Acme" {
		t.Fatalf("Create defaults: round=%d company=%q", o.RoundNumber, o.Company)
	}
	if got, err := repo.GetByRound(dbc, e.ID, "Acme", 0); err != nil || got == nil || got.ID != o.ID {
		t.Fatalf("GetByRound: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByRound(dbc, e.ID, "Acme", 2); err != nil || got != nil {
		t.Fatalf("GetByRound other round: got=%v err=%v", got, err)
	}

	o2 := testutil.SeedOffer(t, ctx, tx, p.ID, e.ID, "Acme", 2, types.OfferModeDetailed)
	rows, err := repo.ListByProject(dbc, p.ID)
	if err != nil || len(rows) != 2 || rows[1].ID != o2.ID {
		t.Fatalf("ListByProject: err=%v rows=%v", err, rows)
	}
	if rows, err := repo.ListByEstimate(dbc, e.ID); err != nil || len(rows) != 2 {
		t.Fatalf("ListByEstimate: err=%v len=%d", err, len(rows))
	}
	if err := repo.UpdateFields(dbc, o.ID, map[string]interface{}{"alert_count": 3}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got, _ := repo.GetByID(dbc, o.ID); got == nil || got.AlertCount != 3 {
		t.Fatalf("UpdateFields verify: %+v", got)
	}
}

func TestOfferItemAndAlertRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)
	items := NewOfferItemRepo(db, log)
	alerts := NewAlertRepo(db, log)

	p := testutil.SeedProject(t, ctx, tx, "OFF-2")
	e := testutil.SeedEstimate(t, ctx, tx, p.ID, "baseline")
	o := testutil.SeedOffer(t, ctx, tx, p.ID, e.ID, "Acme", 1, types.OfferModeAggregated)

	second := testutil.SeedOfferItem(t, ctx, tx, o.ID, 2, []uuid.UUID{uuid.New(), uuid.New()})
	first := testutil.SeedOfferItem(t, ctx, tx, o.ID, 1, nil)

	got, err := items.GetByOfferID(dbc, o.ID)
	if err != nil || len(got) != 2 || got[0].ID != first.ID {
		t.Fatalf("GetByOfferID: err=%v rows=%v", err, got)
	}
	if err := items.UpdateFields(dbc, second.ID, map[string]interface{}{"resolution_status": types.ResolutionResolved}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if it, _ := items.GetByID(dbc, second.ID); it == nil || it.ResolutionStatus != types.ResolutionResolved {
		t.Fatalf("UpdateFields verify: %+v", it)
	}

	missing := testutil.SeedAlert(t, ctx, tx, o, first.ID, types.AlertTypeMissingBaseline, types.SeverityInfo)
	amb := testutil.SeedAlert(t, ctx, tx, o, second.ID, types.AlertTypeAmbiguousMatch, types.SeverityWarning)
	if _, err := alerts.Create(dbc, []*types.Alert{{
		ID: uuid.New(), ProjectID: p.ID, EstimateID: e.ID, OfferID: o.ID, OfferItemID: first.ID,
		Type: types.AlertTypePriceMismatch, Severity: types.SeverityError,
		Origin: types.OriginBaseline, Source: types.OfferModeAggregated,
	}}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, err := alerts.ListByOffer(dbc, o.ID, AlertFilter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("ListByOffer: err=%v len=%d", err, len(all))
	}
	for _, a := range all {
		if a.Status != types.AlertStatusOpen {
			t.Fatalf("default status: %s", a.Status)
		}
	}
	byType, err := alerts.ListByOffer(dbc, o.ID, AlertFilter{Types: []types.AlertType{types.AlertTypeAmbiguousMatch}})
	if err != nil || len(byType) != 1 || byType[0].ID != amb.ID {
		t.Fatalf("ListByOffer by type: err=%v rows=%v", err, byType)
	}
	bySeverity, err := alerts.ListByOffer(dbc, o.ID, AlertFilter{Severities: []types.Severity{types.SeverityInfo, types.SeverityError}})
	if err != nil || len(bySeverity) != 2 {
		t.Fatalf("ListByOffer by severity: err=%v len=%d", err, len(bySeverity))
	}

	if err := alerts.UpdateFields(dbc, missing.ID, map[string]interface{}{"status": types.AlertStatusIgnored}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	open, err := alerts.ListByOffer(dbc, o.ID, AlertFilter{Statuses: []types.AlertStatus{types.AlertStatusOpen}})
	if err != nil || len(open) != 2 {
		t.Fatalf("ListByOffer by status: err=%v len=%d", err, len(open))
	}

	counts, err := alerts.CountByOffer(dbc, o.ID)
	if err != nil || len(counts) != 3 {
		t.Fatalf("CountByOffer: err=%v counts=%+v", err, counts)
	}
	if counts[0].Type != types.AlertTypeAmbiguousMatch || counts[0].Count != 1 {
		t.Fatalf("CountByOffer first: %+v", counts[0])
	}

	if n, err := alerts.DeleteByOfferID(dbc, o.ID); err != nil || n != 3 {
		t.Fatalf("alerts.DeleteByOfferID: n=%d err=%v", n, err)
	}
	if n, err := items.DeleteByOfferID(dbc, o.ID); err != nil || n != 2 {
		t.Fatalf("items.DeleteByOfferID: n=%d err=%v", n, err)
	}
}
