package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/data/repos"
	domainagg "github.com/yungbote/tenderbridge-backend/internal/domain/aggregates"
	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
)

// formworkBaseline adds two catalog entries sharing the description "Formwork".
func formworkBaseline() *types.ImportPayload {
	p := baselinePayload("Base", 10)
	p.Catalog = append(p.Catalog,
		types.CatalogPayload{ID: "f1", Code: "F1", Description: "Formwork", Unit: "m2", Price: 3},
		types.CatalogPayload{ID: "f2", Code: "F2", Description: "Formwork", Unit: "m2", Price: 4},
	)
	p.Estimate.Items = append(p.Estimate.Items,
		types.ItemPayload{CatalogID: "f1", Progressive: ip(3), Quantity: 20},
		types.ItemPayload{CatalogID: "f2", Progressive: ip(4), Quantity: 5},
	)
	return p
}

func TestAlertResolveAmbiguousSelection(t *testing.T) {
	f := newSvcFixture(t)
	p := f.project(t, "P-1")
	f.importBaseline(t, p.ID, formworkBaseline())

	summary, err := f.offers.Import(f.ctx, OfferImportRequest{
		ProjectID: p.ID,
		Mode:      types.OfferModeAggregated,
		Payload: offerPayload("Acme", 1,
			types.ItemPayload{Code: "C1", Quantity: 10, UnitPrice: fp(5)},
			types.ItemPayload{Description: "Formwork", Quantity: 20, UnitPrice: fp(3)},
		),
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	ambiguous, err := f.alerts.List(f.dbc(), summary.OfferID, repos.AlertFilter{
		Types: []types.AlertType{types.AlertTypeAmbiguousMatch},
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ambiguous) != 1 {
		t.Fatalf("ambiguous alerts: want=1 got=%d", len(ambiguous))
	}
	alert := ambiguous[0]

	items, err := f.offers.ListItems(f.dbc(), summary.OfferID)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	row := items[1]
	cands := types.DecodeUUIDList(row.Candidates)
	if row.ResolutionStatus != types.ResolutionPending || len(cands) != 2 {
		t.Fatalf("ambiguous row: status=%s candidates=%d", row.ResolutionStatus, len(cands))
	}

	// A catalog entry outside the candidate set is rejected.
	stranger := uuid.New()
	_, err = f.alerts.Resolve(f.ctx, alert.ID, ResolveDecision{Status: types.AlertStatusResolved, SelectedCatalogItemID: &stranger})
	requireCode(t, err, domainagg.CodeValidation)

	// Selecting requires the resolved status.
	_, err = f.alerts.Resolve(f.ctx, alert.ID, ResolveDecision{Status: types.AlertStatusIgnored, SelectedCatalogItemID: &cands[0]})
	requireCode(t, err, domainagg.CodeValidation)

	note := "  picked F1  "
	res, err := f.alerts.Resolve(f.ctx, alert.ID, ResolveDecision{
		Status:                " Resolved ",
		ResolutionNote:        &note,
		SelectedCatalogItemID: &cands[0],
		ExpectedStatus:        []types.AlertStatus{types.AlertStatusOpen},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Alert.Status != types.AlertStatusResolved || res.Alert.ResolutionNote != "picked F1" || res.Alert.ResolvedAt == nil {
		t.Fatalf("alert after resolve: status=%s note=%q resolved_at=%v", res.Alert.Status, res.Alert.ResolutionNote, res.Alert.ResolvedAt)
	}
	if res.Alert.CatalogItemID == nil || *res.Alert.CatalogItemID != cands[0] {
		t.Fatalf("alert catalog link: %v", res.Alert.CatalogItemID)
	}
	if res.Item == nil || res.Item.CatalogItemID == nil || *res.Item.CatalogItemID != cands[0] {
		t.Fatalf("item not relinked: %+v", res.Item)
	}
	if res.Item.ResolutionStatus != types.ResolutionResolved || res.Item.MatchedBy != "manual" || res.Item.Origin != types.OriginBaseline {
		t.Fatalf("relinked item: status=%s matched_by=%q origin=%s", res.Item.ResolutionStatus, res.Item.MatchedBy, res.Item.Origin)
	}
	if len(types.DecodeUUIDList(res.Item.Candidates)) != 0 {
		t.Fatalf("candidates should be cleared")
	}

	// The alert is no longer open, so a decision expecting "open" loses.
	_, err = f.alerts.Resolve(f.ctx, alert.ID, ResolveDecision{
		Status:         types.AlertStatusIgnored,
		ExpectedStatus: []types.AlertStatus{types.AlertStatusOpen},
	})
	requireCode(t, err, domainagg.CodeConflict)

	reopened, err := f.alerts.Resolve(f.ctx, alert.ID, ResolveDecision{Status: types.AlertStatusOpen})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Alert.ResolvedAt != nil || reopened.Item != nil {
		t.Fatalf("reopen should clear resolved_at and leave the item alone")
	}
}

func TestAlertListFiltersAndSummary(t *testing.T) {
	f := newSvcFixture(t)
	p := f.project(t, "P-1")
	f.importBaseline(t, p.ID, formworkBaseline())

	summary, err := f.offers.Import(f.ctx, OfferImportRequest{
		ProjectID: p.ID,
		Mode:      types.OfferModeAggregated,
		Payload: offerPayload("Acme", 1,
			types.ItemPayload{Code: "C1", Quantity: 12, UnitPrice: fp(5)},
			types.ItemPayload{Description: "Formwork", Quantity: 20, UnitPrice: fp(3)},
			types.ItemPayload{Code: "ZZ", Description: "Nothing like it", Quantity: 1, UnitPrice: fp(1)},
		),
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	offerID := summary.OfferID

	all, err := f.alerts.List(f.dbc(), offerID, repos.AlertFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("alerts: want=3 got=%d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].RowIndex > all[i].RowIndex {
			t.Fatalf("alerts not ordered by row")
		}
	}

	missing := all[2]
	if missing.Type != types.AlertTypeMissingBaseline {
		t.Fatalf("row 3 alert: want missing_baseline got %s", missing.Type)
	}
	if _, err := f.alerts.Resolve(f.ctx, missing.ID, ResolveDecision{Status: types.AlertStatusIgnored}); err != nil {
		t.Fatalf("ignore: %v", err)
	}

	open, err := f.alerts.List(f.dbc(), offerID, repos.AlertFilter{Statuses: []types.AlertStatus{types.AlertStatusOpen}})
	if err != nil {
		t.Fatalf("List open: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("open alerts: want=2 got=%d", len(open))
	}
	page, err := f.alerts.List(f.dbc(), offerID, repos.AlertFilter{Limit: 1, Offset: 1})
	if err != nil || len(page) != 1 || page[0].ID != all[1].ID {
		t.Fatalf("paged list: got %d (%v)", len(page), err)
	}
	_, err = f.alerts.List(f.dbc(), offerID, repos.AlertFilter{Statuses: []types.AlertStatus{"closed"}})
	requireCode(t, err, domainagg.CodeValidation)
	_, err = f.alerts.List(f.dbc(), uuid.New(), repos.AlertFilter{})
	requireCode(t, err, domainagg.CodeNotFound)

	s, err := f.alerts.Summary(f.dbc(), offerID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if s.Total != 3 || s.ByStatus[types.AlertStatusOpen] != 2 || s.ByStatus[types.AlertStatusIgnored] != 1 {
		t.Fatalf("summary: total=%d by_status=%v", s.Total, s.ByStatus)
	}
	for _, typ := range []types.AlertType{types.AlertTypeQuantityMismatch, types.AlertTypeAmbiguousMatch, types.AlertTypeMissingBaseline} {
		if s.ByType[typ] != 1 {
			t.Fatalf("summary by_type[%s]: want=1 got=%d", typ, s.ByType[typ])
		}
	}

	got, err := f.alerts.Get(f.dbc(), missing.ID)
	if err != nil || got.Status != types.AlertStatusIgnored {
		t.Fatalf("Get: status=%v err=%v", got, err)
	}
	_, err = f.alerts.Get(f.dbc(), uuid.New())
	requireCode(t, err, domainagg.CodeNotFound)
}
