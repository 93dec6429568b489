package services

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/tenderbridge-backend/internal/domain/aggregates"
	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
)

func TestProjectServiceCreateGetList(t *testing.T) {
	f := newSvcFixture(t)
	p := f.project(t, "P-001")

	_, err := f.projects.Create(f.ctx, " P-001 ", "again")
	requireCode(t, err, domainagg.CodeConflict)
	_, err = f.projects.Create(f.ctx, "", "no code")
	requireCode(t, err, domainagg.CodeValidation)

	got, err := f.projects.Get(f.dbc(), p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Code != "P-001" {
		t.Fatalf("code: want=P-001 got=%q", got.Code)
	}
	_, err = f.projects.Get(f.dbc(), uuid.New())
	requireCode(t, err, domainagg.CodeNotFound)

	f.project(t, "P-000")
	list, err := f.projects.List(f.dbc(), 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Code != "P-000" {
		t.Fatalf("list: want 2 ordered by code, got %d", len(list))
	}
}

func TestBuildBaselineRowsLinksCatalog(t *testing.T) {
	p := baselinePayload("Base", 10)
	p.Groups = append(p.Groups, types.GroupPayload{ID: "g2", ParentID: "g1", Code: "01.01"}, types.GroupPayload{ID: "g1"})
	p.Estimate.Items = append(p.Estimate.Items,
		types.ItemPayload{Code: "c1", Progressive: ip(3), Quantity: 2},
		types.ItemPayload{Code: "Z9", Description: "Extra", Progressive: ip(4), Quantity: 3, UnitPrice: fp(1.5)},
		types.ItemPayload{CatalogID: "nope", Code: "Z9", Progressive: ip(5), Quantity: 1, Amount: fp(7)},
	)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	rows := buildBaselineRows(p, uuid.New, now)

	if len(rows.Groups) != 2 {
		t.Fatalf("groups: want=2 got=%d", len(rows.Groups))
	}
	if rows.Groups[1].ParentID == nil || *rows.Groups[1].ParentID != rows.Groups[0].ID {
		t.Fatalf("g2 parent not remapped to g1")
	}
	if len(rows.Catalog) != 3 {
		t.Fatalf("catalog: want=3 (two + synthesized) got=%d", len(rows.Catalog))
	}
	c1, b2, z9 := rows.Catalog[0], rows.Catalog[1], rows.Catalog[2]
	if got := types.DecodeUUIDList(c1.GroupIDs); len(got) != 1 || got[0] != rows.Groups[0].ID {
		t.Fatalf("catalog group ids not remapped: %v", got)
	}

	items := rows.Items
	if len(items) != 5 {
		t.Fatalf("items: want=5 got=%d", len(items))
	}
	wantLinks := []uuid.UUID{c1.ID, b2.ID, c1.ID, z9.ID, z9.ID}
	for i, it := range items {
		if it.CatalogItemID != wantLinks[i] {
			t.Fatalf("item %d catalog link: want=%s got=%s", i+1, wantLinks[i], it.CatalogItemID)
		}
	}
	if items[0].Amount != 50 || items[0].Code != "C1" || items[0].Unit != "m3" {
		t.Fatalf("item 1: want amount=50 code=C1 unit=m3 got %v %q %q", items[0].Amount, items[0].Code, items[0].Unit)
	}
	// No unit price on the row: amount uses the catalog price, the row keeps nil.
	if items[2].UnitPrice != nil || items[2].Amount != 10 {
		t.Fatalf("item 3: want nil price amount=10 got %v %v", items[2].UnitPrice, items[2].Amount)
	}
	if z9.UnitPrice != 1.5 || z9.Code != "Z9" {
		t.Fatalf("synthesized catalog: got code=%q price=%v", z9.Code, z9.UnitPrice)
	}
	if items[4].Amount != 7 {
		t.Fatalf("provided amount: want=7 got=%v", items[4].Amount)
	}

	wantWarnings := []string{
		`duplicate group id "g1" skipped`,
		"missing catalog entry for item 4; synthesized from the row",
		`unknown catalog id "nope" on item 5`,
	}
	if diff := cmp.Diff(wantWarnings, rows.Warnings); diff != "" {
		t.Fatalf("warnings (-want +got):\n%s", diff)
	}
}

func TestBaselineImportReplacesByName(t *testing.T) {
	f := newSvcFixture(t)
	p := f.project(t, "P-1")

	first := f.importBaseline(t, p.ID, baselinePayload("Base", 10))
	if !first.Created || first.Items != 2 || first.CatalogItems != 2 || first.Groups != 1 {
		t.Fatalf("first import: %+v", first)
	}
	if len(first.Warnings) != 0 {
		t.Fatalf("warnings: want none got=%v", first.Warnings)
	}

	next := baselinePayload("Base", 11)
	next.Estimate.Items = next.Estimate.Items[:1]
	second := f.importBaseline(t, p.ID, next)
	if second.Created || second.EstimateID != first.EstimateID {
		t.Fatalf("re-import should reuse header %s, got %+v", first.EstimateID, second)
	}

	items, err := f.set.EstimateItem.GetByEstimateID(f.dbc(), first.EstimateID)
	if err != nil {
		t.Fatalf("load items: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 11 {
		t.Fatalf("items after replace: want one row qty=11 got %d", len(items))
	}

	list, err := f.baselines.List(f.dbc(), p.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("List: want 1 estimate, got %d (%v)", len(list), err)
	}
	est, err := f.baselines.Get(f.dbc(), first.EstimateID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if est.ItemCount != 1 || est.Source != types.EstimateSourceImport {
		t.Fatalf("header: item_count=%d source=%s", est.ItemCount, est.Source)
	}
}

func TestBaselineImportFatalPreconditions(t *testing.T) {
	f := newSvcFixture(t)
	p := f.project(t, "P-1")

	_, err := f.baselines.Import(f.ctx, uuid.New(), baselinePayload("Base", 10))
	requireCode(t, err, domainagg.CodeNotFound)

	offer := baselinePayload("Base", 10)
	offer.Estimate.Mode = types.EstimateKindOffer
	_, err = f.baselines.Import(f.ctx, p.ID, offer)
	requireCode(t, err, domainagg.CodeValidation)

	bad := baselinePayload("", 10)
	_, err = f.baselines.Import(f.ctx, p.ID, bad)
	requireCode(t, err, domainagg.CodeValidation)
	if !strings.Contains(err.Error(), "Name") {
		t.Fatalf("validation message should name the field: %v", err)
	}

	_, err = f.baselines.Import(f.ctx, p.ID, nil)
	requireCode(t, err, domainagg.CodeValidation)
}

func TestBaselineImportRejectsNonFiniteNumbers(t *testing.T) {
	f := newSvcFixture(t)
	p := f.project(t, "P-1")

	nanQty := baselinePayload("Base", math.NaN())
	_, err := f.baselines.Import(f.ctx, p.ID, nanQty)
	requireCode(t, err, domainagg.CodeValidation)

	infPrice := baselinePayload("Base", 10)
	infPrice.Catalog[0].Price = math.Inf(1)
	_, err = f.baselines.Import(f.ctx, p.ID, infPrice)
	requireCode(t, err, domainagg.CodeValidation)

	list, err := f.baselines.List(f.dbc(), p.ID)
	if err != nil || len(list) != 0 {
		t.Fatalf("rejected imports must not write estimates: got %d (%v)", len(list), err)
	}
}
