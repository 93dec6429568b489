package reconciliation

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/normalization"
)

// Aggregate is the baseline total for one catalog item.
type Aggregate struct {
	Quantity float64
	Amount   float64
}

// BaselineIndex holds the request-scoped lookup tables for one baseline.
// It is built once per run and never mutated while rows are linked.
type BaselineIndex struct {
	EstimateID uuid.UUID

	ByProgressive map[int]*estimates.EstimateItem
	ByCode        map[string][]uuid.UUID
	// ByDescription is keyed by both short and long normalized descriptions.
	ByDescription map[string][]uuid.UUID

	Aggregates map[uuid.UUID]Aggregate
	Catalog    map[uuid.UUID]*estimates.CatalogItem

	// Warnings lists baseline defects found while indexing, e.g. duplicate progressives.
	Warnings []string
}

// BuildIndex indexes a baseline's line items and catalog. Catalog entries are
// visited in (code, description, id) order so candidate lists come out the
// same on every build of the same baseline.
func BuildIndex(estimateID uuid.UUID, items []*estimates.EstimateItem, catalog []*estimates.CatalogItem) *BaselineIndex {
	idx := &BaselineIndex{
		EstimateID:    estimateID,
		ByProgressive: make(map[int]*estimates.EstimateItem, len(items)),
		ByCode:        map[string][]uuid.UUID{},
		ByDescription: map[string][]uuid.UUID{},
		Aggregates:    map[uuid.UUID]Aggregate{},
		Catalog:       make(map[uuid.UUID]*estimates.CatalogItem, len(catalog)),
	}

	cat := make([]*estimates.CatalogItem, 0, len(catalog))
	for _, c := range catalog {
		if c != nil && c.ID != uuid.Nil {
			cat = append(cat, c)
		}
	}
	sort.SliceStable(cat, func(i, j int) bool {
		ci, cj := normalization.NormalizeCode(cat[i].Code), normalization.NormalizeCode(cat[j].Code)
		if ci != cj {
			return ci < cj
		}
		di, dj := normalization.NormalizeDescription(cat[i].Description), normalization.NormalizeDescription(cat[j].Description)
		if di != dj {
			return di < dj
		}
		return cat[i].ID.String() < cat[j].ID.String()
	})
	for _, c := range cat {
		if _, dup := idx.Catalog[c.ID]; dup {
			continue
		}
		idx.Catalog[c.ID] = c
		if code := normalization.NormalizeCode(c.Code); code != "" {
			idx.ByCode[code] = appendUnique(idx.ByCode[code], c.ID)
		}
		if d := normalization.NormalizeDescription(c.Description); d != "" {
			idx.ByDescription[d] = appendUnique(idx.ByDescription[d], c.ID)
		}
		if d := normalization.NormalizeDescription(c.LongDescription); d != "" {
			idx.ByDescription[d] = appendUnique(idx.ByDescription[d], c.ID)
		}
	}

	rows := make([]*estimates.EstimateItem, 0, len(items))
	for _, it := range items {
		if it != nil {
			rows = append(rows, it)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		pi, pj := rows[i].Progressive, rows[j].Progressive
		switch {
		case pi == nil && pj == nil:
		case pi == nil:
			return false
		case pj == nil:
			return true
		case *pi != *pj:
			return *pi < *pj
		}
		return rows[i].ID.String() < rows[j].ID.String()
	})

	totals := map[uuid.UUID][2]decimal.Decimal{}
	for _, it := range rows {
		if it.Progressive != nil {
			if _, taken := idx.ByProgressive[*it.Progressive]; taken {
				idx.Warnings = append(idx.Warnings, fmt.Sprintf("baseline progressive %d appears more than once; first row kept", *it.Progressive))
			} else {
				idx.ByProgressive[*it.Progressive] = it
			}
		}
		if it.CatalogItemID == uuid.Nil {
			continue
		}
		t := totals[it.CatalogItemID]
		t[0] = t[0].Add(decimal.NewFromFloat(it.Quantity))
		t[1] = t[1].Add(decimal.NewFromFloat(it.Amount))
		totals[it.CatalogItemID] = t
	}
	for id, t := range totals {
		q, _ := t[0].Float64()
		a, _ := t[1].Float64()
		idx.Aggregates[id] = Aggregate{Quantity: q, Amount: a}
	}
	return idx
}

// Lookups return nil for an empty key.

func (idx *BaselineIndex) CodeMatches(code string) []uuid.UUID {
	key := normalization.NormalizeCode(code)
	if key == "" {
		return nil
	}
	return idx.ByCode[key]
}

func (idx *BaselineIndex) DescriptionMatches(desc string) []uuid.UUID {
	key := normalization.NormalizeDescription(desc)
	if key == "" {
		return nil
	}
	return idx.ByDescription[key]
}

func appendUnique(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
