package reconciliation

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
)

var runNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func aggregatedRows() []Row {
	return []Row{
		{Index: 1, Code: "C1", Quantity: 12, UnitPrice: f64(5)},
		{Index: 2, Description: "B2 - Steel beam", Quantity: 4, UnitPrice: f64(0)},
		{Index: 3, Code: "ZZ", Description: "Landscaping", Quantity: 1, UnitPrice: f64(9)},
		{Index: 4, Code: "D3", Quantity: 2, UnitPrice: f64(40)},
	}
}

func TestReconcileIsDeterministic(t *testing.T) {
	f := newBaselineFixture()
	in := RunInput{
		ProjectID:  fixedID("project"),
		EstimateID: f.estimateID,
		OfferID:    fixedID("offer"),
		Mode:       estimates.OfferModeAggregated,
		Rows:       aggregatedRows(),
		Now:        runNow,
	}
	first, err := Reconcile(f.index(), in, seqIDs("a"))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	// Rebuild from a reversed catalog; results must not depend on input order.
	rev := []*estimates.CatalogItem{f.d3, f.b2, f.c1}
	second, err := Reconcile(BuildIndex(f.estimateID, f.items, rev), in, seqIDs("b"))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	ignoreIDs := cmpopts.IgnoreFields(estimates.OfferItem{}, "ID")
	if diff := cmp.Diff(first.Items, second.Items, ignoreIDs); diff != "" {
		t.Fatalf("items differ (-first +second):\n%s", diff)
	}
	ignoreAlertIDs := cmpopts.IgnoreFields(estimates.Alert{}, "ID", "OfferItemID")
	if diff := cmp.Diff(first.Alerts, second.Alerts, ignoreAlertIDs); diff != "" {
		t.Fatalf("alerts differ (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Summary, second.Summary); diff != "" {
		t.Fatalf("summary differs (-first +second):\n%s", diff)
	}
}

func TestReconcileSummary(t *testing.T) {
	f := newBaselineFixture()
	offerID := fixedID("offer")
	res, err := Reconcile(f.index(), RunInput{OfferID: offerID, Mode: estimates.OfferModeAggregated, Rows: aggregatedRows(), Now: runNow}, seqIDs("s"))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	want := Summary{
		OfferID:   offerID,
		ItemCount: 4,
		Warnings: []string{
			"1 row(s) matched no baseline entry and were recorded as addenda",
			"1 row(s) matched catalog entries that carry no baseline quantity",
			"1 row(s) have a missing or zero unit price",
		},
		Alerts: AlertTally{
			Total: 4,
			ByType: map[estimates.AlertType]int{
				estimates.AlertTypeQuantityMismatch: 2,
				estimates.AlertTypePriceMismatch:    1,
				estimates.AlertTypeMissingBaseline:  1,
			},
		},
	}
	if diff := cmp.Diff(want, res.Summary); diff != "" {
		t.Fatalf("summary (-want +got):\n%s", diff)
	}
}

func TestReconcileEmptyOffer(t *testing.T) {
	res, err := Reconcile(newBaselineFixture().index(), RunInput{Mode: estimates.OfferModeDetailed, Now: runNow}, seqIDs("e"))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(res.Items) != 0 || len(res.Alerts) != 0 {
		t.Fatalf("empty offer produced output: items=%d alerts=%d", len(res.Items), len(res.Alerts))
	}
	if len(res.Summary.Warnings) != 1 || res.Summary.Warnings[0] != "offer contains no line items" {
		t.Fatalf("warnings: %v", res.Summary.Warnings)
	}
}

func TestReconcileRejectsBadInput(t *testing.T) {
	if _, err := Reconcile(nil, RunInput{Mode: estimates.OfferModeDetailed}, nil); !errors.Is(err, ErrNilIndex) {
		t.Fatalf("nil index: want ErrNilIndex got=%v", err)
	}
	if _, err := Reconcile(newBaselineFixture().index(), RunInput{Mode: "fuzzy"}, nil); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("bad mode: want ErrInvalidMode got=%v", err)
	}
}

func TestReconcileLinksAreExclusive(t *testing.T) {
	f := newBaselineFixture()
	detailed, err := Reconcile(f.index(), RunInput{
		Mode: estimates.OfferModeDetailed,
		Rows: []Row{
			{Index: 1, Progressive: intp(1), Quantity: 10},
			{Index: 2, Progressive: intp(7), Quantity: 1, UnitPrice: f64(3)},
		},
		Now: runNow,
	}, seqIDs("d"))
	if err != nil {
		t.Fatalf("detailed: %v", err)
	}
	if it := detailed.Items[0]; it.EstimateItemID == nil || it.CatalogItemID != nil {
		t.Fatalf("resolved detailed row must link only the baseline row: %+v", it)
	}
	if it := detailed.Items[1]; it.EstimateItemID != nil || it.CatalogItemID != nil || it.Origin != estimates.OriginAddendum {
		t.Fatalf("unresolved row must carry no link: %+v", it)
	}
	if it := detailed.Items[0]; it.Amount != 50 || it.UnitPrice == nil || *it.UnitPrice != 5 {
		t.Fatalf("backfilled amount: amount=%v price=%v", it.Amount, it.UnitPrice)
	}

	agg, err := Reconcile(f.index(), RunInput{Mode: estimates.OfferModeAggregated, Rows: aggregatedRows(), Now: runNow}, seqIDs("g"))
	if err != nil {
		t.Fatalf("aggregated: %v", err)
	}
	if it := agg.Items[0]; it.CatalogItemID == nil || it.EstimateItemID != nil {
		t.Fatalf("resolved aggregated row must link only the catalog entry: %+v", it)
	}
}

func TestReconcileAlertsMirrorItem(t *testing.T) {
	f := newBaselineFixture()
	res, err := Reconcile(f.index(), RunInput{
		ProjectID: fixedID("project"),
		OfferID:   fixedID("offer"),
		Mode:      estimates.OfferModeAggregated,
		Rows:      aggregatedRows(),
		Now:       runNow,
	}, seqIDs("m"))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	items := map[string]*estimates.OfferItem{}
	for _, it := range res.Items {
		items[it.ID.String()] = it
	}
	for _, a := range res.Alerts {
		it, ok := items[a.OfferItemID.String()]
		if !ok {
			t.Fatalf("alert %s points at unknown item", a.ID)
		}
		if a.Origin != it.Origin || a.Source != it.Source || a.RowIndex != it.RowIndex {
			t.Fatalf("alert does not mirror item: alert=%s/%s/%d item=%s/%s/%d", a.Origin, a.Source, a.RowIndex, it.Origin, it.Source, it.RowIndex)
		}
		if a.Status != estimates.AlertStatusOpen {
			t.Fatalf("new alerts start open, got=%s", a.Status)
		}
	}
}

func TestReconcileKeepsRawRow(t *testing.T) {
	f := newBaselineFixture()
	rows := []Row{{Index: 1, Description: "B2 - Steel beam", Quantity: 4, UnitPrice: f64(90), Amount: f64(360)}}
	res, err := Reconcile(f.index(), RunInput{Mode: estimates.OfferModeAggregated, Rows: rows, Now: runNow}, seqIDs("r"))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	var got Row
	if err := json.Unmarshal(res.Items[0].Raw, &got); err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	if diff := cmp.Diff(rows[0], got); diff != "" {
		t.Fatalf("raw row (-want +got):\n%s", diff)
	}
	if res.Items[0].Code != "B2" {
		t.Fatalf("stored code is the effective code, got=%q", res.Items[0].Code)
	}
}

func TestReconcileAmbiguousAlertDetails(t *testing.T) {
	f := newBaselineFixture()
	alt := catalogEntry("S4", "Concrete slab", "", 7)
	idx := BuildIndex(f.estimateID, f.items, append(f.catalog, alt))
	res, err := Reconcile(idx, RunInput{Mode: estimates.OfferModeAggregated, Rows: []Row{{Index: 1, Description: "Concrete slab", Quantity: 1, UnitPrice: f64(1)}}, Now: runNow}, seqIDs("x"))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(res.Alerts) != 1 || res.Alerts[0].Type != estimates.AlertTypeAmbiguousMatch {
		t.Fatalf("want one ambiguous alert, got=%+v", res.Alerts)
	}
	var details struct {
		Candidates []string `json:"candidates"`
	}
	if err := json.Unmarshal(res.Alerts[0].Details, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	want := []string{f.c1.ID.String(), alt.ID.String()}
	if diff := cmp.Diff(want, details.Candidates); diff != "" {
		t.Fatalf("candidates (-want +got):\n%s", diff)
	}
	if got := estimates.DecodeUUIDList(res.Items[0].Candidates); len(got) != 2 {
		t.Fatalf("item candidates: want=2 got=%d", len(got))
	}
}
