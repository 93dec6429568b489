package reconciliation

import (
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
)

const codeDescriptionSeparator = " - "

// LinkAggregated links a row to a catalog entry by code, then long
// description, then short description. A candidate set is accepted only when
// it has exactly one member; anything else is left for a human to pick.
func LinkAggregated(idx *BaselineIndex, row Row) Link {
	code, desc := splitCodeDescription(idx, row)
	link := Link{
		Row:         row,
		Mode:        estimates.OfferModeAggregated,
		Status:      estimates.ResolutionPending,
		Origin:      estimates.OriginAddendum,
		Code:        code,
		Description: desc,
		Unit:        strings.TrimSpace(row.Unit),
		UnitPrice:   copyFloat(row.UnitPrice),
	}
	if idx == nil {
		return link
	}

	byCode := idx.CodeMatches(code)
	byLong := idx.DescriptionMatches(row.LongDescription)
	byShort := idx.DescriptionMatches(desc)
	if len(byShort) == 0 && desc != row.Description {
		byShort = idx.DescriptionMatches(row.Description)
	}

	var chosen uuid.UUID
	switch {
	case len(byCode) == 1:
		chosen, link.MatchedBy = byCode[0], MatchCode
	case len(byLong) == 1:
		chosen, link.MatchedBy = byLong[0], MatchLongDescription
	case len(byShort) == 1:
		chosen, link.MatchedBy = byShort[0], MatchDescription
	}

	if chosen == uuid.Nil {
		link.Candidates = unionCandidates(byCode, byLong, byShort)
		return link
	}

	cat := idx.Catalog[chosen]
	link.Status = estimates.ResolutionResolved
	link.CatalogItem = cat
	if link.Unit == "" && cat != nil {
		link.Unit = strings.TrimSpace(cat.Unit)
	}

	agg, hasBaseline := idx.Aggregates[chosen]
	exp := Expectation{HasBaseline: hasBaseline}
	if cat != nil {
		exp.Code = strings.TrimSpace(cat.Code)
	}
	if hasBaseline {
		link.Origin = estimates.OriginBaseline
		exp.Quantity = agg.Quantity
		exp.UnitPrice = impliedUnitPrice(agg.Quantity, agg.Amount)
	}
	if exp.UnitPrice == nil && cat != nil {
		p := cat.UnitPrice
		exp.UnitPrice = &p
	}
	link.Expected = exp
	return link
}

// splitCodeDescription applies the "CODE - Description" heuristic to rows
// without a code. Each half is accepted on its own, only if it exists in
// the matching index, so the two halves may point at different entries.
func splitCodeDescription(idx *BaselineIndex, row Row) (code, desc string) {
	code = strings.TrimSpace(row.Code)
	desc = row.Description
	if code != "" || idx == nil || !strings.Contains(desc, codeDescriptionSeparator) {
		return code, desc
	}
	parts := strings.SplitN(desc, codeDescriptionSeparator, 2)
	left, right := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if len(idx.CodeMatches(left)) > 0 {
		code = left
	}
	if len(idx.DescriptionMatches(right)) > 0 {
		desc = right
	}
	return code, desc
}

// unionCandidates merges candidate sets in code, long, short order without duplicates.
func unionCandidates(sets ...[]uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	seen := map[uuid.UUID]struct{}{}
	for _, set := range sets {
		for _, id := range set {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
