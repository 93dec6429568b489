package reconciliation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
)

func TestLinkAggregatedQuantityMismatchExample(t *testing.T) {
	f := newBaselineFixture()
	res, err := Reconcile(f.index(), RunInput{
		Mode: estimates.OfferModeAggregated,
		Rows: []Row{{Index: 1, Code: "C1", Quantity: 12, UnitPrice: f64(5)}},
	}, seqIDs("run"))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	item := res.Items[0]
	if item.CatalogItemID == nil || *item.CatalogItemID != f.c1.ID {
		t.Fatalf("catalog link: want=%s got=%v", f.c1.ID, item.CatalogItemID)
	}
	if len(res.Alerts) != 1 {
		t.Fatalf("alerts: want=1 got=%d (%+v)", len(res.Alerts), res.Alerts)
	}
	a := res.Alerts[0]
	if a.Type != estimates.AlertTypeQuantityMismatch || a.Severity != estimates.SeverityWarning {
		t.Fatalf("alert type/severity: got=%s/%s", a.Type, a.Severity)
	}
	if *a.Actual != 12 || *a.Expected != 10 || *a.Delta != 2 {
		t.Fatalf("alert values: actual=%v expected=%v delta=%v", *a.Actual, *a.Expected, *a.Delta)
	}
}

func TestLinkAggregatedSplitsCodeAndDescription(t *testing.T) {
	idx := newBaselineFixture().index()
	l := LinkAggregated(idx, Row{Index: 1, Description: "B2 - Steel beam", Quantity: 4, UnitPrice: f64(90)})
	if !l.Resolved() || l.MatchedBy != MatchCode {
		t.Fatalf("split row: want resolved by code got status=%s matched_by=%s", l.Status, l.MatchedBy)
	}
	if l.Code != "B2" || l.Description != "Steel beam" {
		t.Fatalf("split halves: code=%q description=%q", l.Code, l.Description)
	}
	if findings := Evaluate(l); len(findings) != 0 {
		t.Fatalf("split row should be clean, got=%+v", findings)
	}
}

func TestLinkAggregatedSplitRejectsUnknownHalves(t *testing.T) {
	idx := newBaselineFixture().index()
	l := LinkAggregated(idx, Row{Index: 1, Description: "Q7 - Something else", Quantity: 1})
	if l.Code != "" || l.Description != "Q7 - Something else" {
		t.Fatalf("unknown halves must not be accepted: code=%q description=%q", l.Code, l.Description)
	}
	if l.Resolved() || len(l.Candidates) != 0 {
		t.Fatalf("want addendum, got status=%s candidates=%v", l.Status, l.Candidates)
	}
}

// Both halves are accepted independently even when they point at different
// catalog entries; the code half wins by priority.
func TestLinkAggregatedSplitHalvesMatchDifferentEntries(t *testing.T) {
	f := newBaselineFixture()
	l := LinkAggregated(f.index(), Row{Index: 1, Description: "C1 - Steel beam", Quantity: 10, UnitPrice: f64(5)})
	if l.Code != "C1" || l.Description != "Steel beam" {
		t.Fatalf("split halves: code=%q description=%q", l.Code, l.Description)
	}
	if l.CatalogItem == nil || l.CatalogItem.ID != f.c1.ID {
		t.Fatalf("want C1 via code priority, got=%v", l.CatalogItem)
	}
}

func TestLinkAggregatedPriorityCodeBeatsDescriptions(t *testing.T) {
	f := newBaselineFixture()
	l := LinkAggregated(f.index(), Row{Index: 1, Code: "C1", LongDescription: "Steel beam", Description: "Door frame", Quantity: 10, UnitPrice: f64(5)})
	if l.CatalogItem == nil || l.CatalogItem.ID != f.c1.ID || l.MatchedBy != MatchCode {
		t.Fatalf("code must win: got=%v matched_by=%s", l.CatalogItem, l.MatchedBy)
	}
}

func TestLinkAggregatedLongDescriptionBeatsShort(t *testing.T) {
	f := newBaselineFixture()
	dupCode := catalogEntry("C1", "Concrete slab (alt)", "", 6)
	idx := BuildIndex(f.estimateID, f.items, append(f.catalog, dupCode))
	l := LinkAggregated(idx, Row{Index: 1, Code: "C1", LongDescription: "Reinforced concrete slab, 20cm", Description: "Steel beam", Quantity: 10, UnitPrice: f64(5)})
	if l.MatchedBy != MatchLongDescription || l.CatalogItem.ID != f.c1.ID {
		t.Fatalf("want long description match on C1, got matched_by=%s item=%v", l.MatchedBy, l.CatalogItem)
	}
}

func TestLinkAggregatedAmbiguousKeepsExactUnion(t *testing.T) {
	f := newBaselineFixture()
	c1b := catalogEntry("C1", "Concrete slab", "", 6)
	c1b.ID = fixedID("catalog:C1:second")
	slab2 := catalogEntry("S4", "Concrete slab", "", 7)
	idx := BuildIndex(f.estimateID, f.items, append(f.catalog, c1b, slab2))

	row := Row{Index: 5, Code: "C1", Description: "Concrete slab", Quantity: 1, UnitPrice: f64(1)}
	l := LinkAggregated(idx, row)
	if l.Resolved() {
		t.Fatalf("want pending, got resolved to %v", l.CatalogItem)
	}
	want := unionCandidates(idx.CodeMatches("C1"), idx.DescriptionMatches(""), idx.DescriptionMatches("Concrete slab"))
	if diff := cmp.Diff(want, l.Candidates); diff != "" {
		t.Fatalf("candidates (-want +got):\n%s", diff)
	}
	if len(l.Candidates) != 3 {
		t.Fatalf("deduplicated union: want=3 got=%d", len(l.Candidates))
	}
	findings := Evaluate(l)
	if len(findings) != 1 || findings[0].Type != estimates.AlertTypeAmbiguousMatch {
		t.Fatalf("findings: want single ambiguous_match got=%+v", findings)
	}
	if findings[0].Severity != estimates.SeverityWarning {
		t.Fatalf("severity: want=warning got=%s", findings[0].Severity)
	}
}

func TestLinkAggregatedNoMatchIsAddendum(t *testing.T) {
	l := LinkAggregated(newBaselineFixture().index(), Row{Index: 9, Code: "ZZ", Description: "Landscaping", Quantity: 3, UnitPrice: f64(10)})
	if l.Resolved() || l.Origin != estimates.OriginAddendum || len(l.Candidates) != 0 {
		t.Fatalf("want unresolved addendum, got status=%s origin=%s candidates=%v", l.Status, l.Origin, l.Candidates)
	}
	findings := Evaluate(l)
	if len(findings) != 1 || findings[0].Type != estimates.AlertTypeMissingBaseline || findings[0].Severity != estimates.SeverityInfo {
		t.Fatalf("findings: want single info missing_baseline got=%+v", findings)
	}
}

func TestLinkAggregatedCatalogOnlyMatchIsDistinguished(t *testing.T) {
	f := newBaselineFixture()
	l := LinkAggregated(f.index(), Row{Index: 2, Code: "D3", Quantity: 2, UnitPrice: f64(40)})
	if !l.Resolved() || l.CatalogItem.ID != f.d3.ID {
		t.Fatalf("want resolved to D3, got=%v", l.CatalogItem)
	}
	if l.Origin != estimates.OriginAddendum || l.Expected.HasBaseline {
		t.Fatalf("catalog-only match: origin=%s has_baseline=%v", l.Origin, l.Expected.HasBaseline)
	}
	findings := Evaluate(l)
	if len(findings) != 1 || findings[0].Type != estimates.AlertTypeQuantityMismatch {
		t.Fatalf("findings: want quantity_mismatch got=%+v", findings)
	}
	if !strings.Contains(findings[0].Message, "no baseline quantity") {
		t.Fatalf("message should distinguish catalog-only match: %q", findings[0].Message)
	}
	if *findings[0].Expected != 0 {
		t.Fatalf("expected quantity: want=0 got=%v", *findings[0].Expected)
	}
}

func TestCatalogOnlyMatchAlertsAtZeroQuantity(t *testing.T) {
	f := newBaselineFixture()
	l := LinkAggregated(f.index(), Row{Index: 5, Code: "D3", Quantity: 0, UnitPrice: f64(40)})
	if !l.Resolved() || l.Origin != estimates.OriginAddendum {
		t.Fatalf("want resolved addendum, got status=%s origin=%s", l.Status, l.Origin)
	}
	findings := Evaluate(l)
	if len(findings) != 1 || findings[0].Type != estimates.AlertTypeQuantityMismatch {
		t.Fatalf("findings: want quantity_mismatch got=%+v", findings)
	}
	if !strings.Contains(findings[0].Message, "no baseline quantity") || *findings[0].Delta != 0 {
		t.Fatalf("finding: message=%q delta=%v", findings[0].Message, *findings[0].Delta)
	}
}

func TestLinkAggregatedExpectedPriceFromAggregate(t *testing.T) {
	f := newBaselineFixture()
	l := LinkAggregated(f.index(), Row{Index: 1, Code: "B2", Quantity: 4, UnitPrice: f64(0)})
	if l.Expected.UnitPrice == nil || *l.Expected.UnitPrice != 100 {
		t.Fatalf("expected price: want=100 got=%v", l.Expected.UnitPrice)
	}
	findings := Evaluate(l)
	if len(findings) != 1 || findings[0].Type != estimates.AlertTypePriceMismatch || findings[0].Severity != estimates.SeverityError {
		t.Fatalf("findings: want error price_mismatch got=%+v", findings)
	}
}

func TestUnionCandidatesDeduplicatesInOrder(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	got := unionCandidates([]uuid.UUID{b, a}, []uuid.UUID{a, c}, []uuid.UUID{c, b})
	if diff := cmp.Diff([]uuid.UUID{b, a, c}, got); diff != "" {
		t.Fatalf("union (-want +got):\n%s", diff)
	}
}
