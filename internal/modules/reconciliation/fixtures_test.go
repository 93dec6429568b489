package reconciliation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
)

var testNamespace = uuid.MustParse("8a3c2f1e-5d4b-4c6a-9e7f-0b1a2c3d4e5f")

// seqIDs mints deterministic ids so two runs can be compared field by field.
func seqIDs(prefix string) IDFunc {
	n := 0
	return func() uuid.UUID {
		n++
		return uuid.NewSHA1(testNamespace, []byte(fmt.Sprintf("%s-%d", prefix, n)))
	}
}

func fixedID(name string) uuid.UUID {
	return uuid.NewSHA1(testNamespace, []byte(name))
}

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func catalogEntry(code, desc, long string, price float64) *estimates.CatalogItem {
	return &estimates.CatalogItem{
		ID:              fixedID("catalog:" + code + ":" + desc),
		Code:            code,
		Description:     desc,
		LongDescription: long,
		Unit:            "m",
		UnitPrice:       price,
	}
}

func baselineRow(c *estimates.CatalogItem, progressive int, qty float64, price *float64) *estimates.EstimateItem {
	amount := 0.0
	if price != nil {
		amount = LineAmount(qty, price)
	}
	return &estimates.EstimateItem{
		ID:            fixedID(fmt.Sprintf("item:%d", progressive)),
		CatalogItemID: c.ID,
		Progressive:   intp(progressive),
		Code:          c.Code,
		Description:   c.Description,
		Unit:          c.Unit,
		Quantity:      qty,
		UnitPrice:     price,
		Amount:        amount,
	}
}

type baselineFixture struct {
	estimateID uuid.UUID
	c1, b2, d3 *estimates.CatalogItem
	catalog    []*estimates.CatalogItem
	items      []*estimates.EstimateItem
}

// newBaselineFixture: C1 qty 10 @ 5, B2 "Steel beam" qty 4 @ 100, D3 catalog-only.
func newBaselineFixture() baselineFixture {
	f := baselineFixture{estimateID: fixedID("estimate")}
	f.c1 = catalogEntry("C1", "Concrete slab", "Reinforced concrete slab, 20cm", 5)
	f.b2 = catalogEntry("B2", "Steel beam", "", 100)
	f.d3 = catalogEntry("D3", "Door frame", "", 40)
	f.catalog = []*estimates.CatalogItem{f.c1, f.b2, f.d3}
	f.items = []*estimates.EstimateItem{
		baselineRow(f.c1, 1, 10, f64(5)),
		baselineRow(f.b2, 2, 4, f64(100)),
	}
	return f
}

func (f baselineFixture) index() *BaselineIndex {
	return BuildIndex(f.estimateID, f.items, f.catalog)
}
