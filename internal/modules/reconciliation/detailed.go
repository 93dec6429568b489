package reconciliation

import (
	"strings"

	"github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
)

// LinkDetailed links a row to the baseline line item at the same progressive
// number. Resolved rows inherit a missing unit price or unit from the
// baseline row, falling back to its catalog entry.
func LinkDetailed(idx *BaselineIndex, row Row) Link {
	link := Link{
		Row:         row,
		Mode:        estimates.OfferModeDetailed,
		Status:      estimates.ResolutionPending,
		Origin:      estimates.OriginAddendum,
		Code:        strings.TrimSpace(row.Code),
		Description: row.Description,
		Unit:        strings.TrimSpace(row.Unit),
		UnitPrice:   copyFloat(row.UnitPrice),
	}
	if idx == nil || row.Progressive == nil {
		return link
	}
	base, ok := idx.ByProgressive[*row.Progressive]
	if !ok {
		return link
	}
	cat := idx.Catalog[base.CatalogItemID]

	link.Status = estimates.ResolutionResolved
	link.Origin = estimates.OriginBaseline
	link.MatchedBy = MatchProgressive
	link.EstimateItem = base
	link.CatalogItem = cat

	expectedPrice := copyFloat(base.UnitPrice)
	if expectedPrice == nil && cat != nil {
		p := cat.UnitPrice
		expectedPrice = &p
	}
	if link.UnitPrice == nil {
		link.UnitPrice = copyFloat(expectedPrice)
	}
	if link.Unit == "" {
		link.Unit = strings.TrimSpace(base.Unit)
		if link.Unit == "" && cat != nil {
			link.Unit = strings.TrimSpace(cat.Unit)
		}
	}
	if strings.TrimSpace(link.Description) == "" {
		link.Description = base.Description
	}

	expectedCode := strings.TrimSpace(base.Code)
	if expectedCode == "" && cat != nil {
		expectedCode = strings.TrimSpace(cat.Code)
	}
	link.Expected = Expectation{
		Quantity:    base.Quantity,
		UnitPrice:   expectedPrice,
		Code:        expectedCode,
		HasBaseline: true,
	}
	return link
}
