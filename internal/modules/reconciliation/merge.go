package reconciliation

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/normalization"
)

// MergeSource is one baseline estimate taking part in a merge.
type MergeSource struct {
	Estimate *estimates.Estimate
	Groups   []*estimates.WbsGroup
	Catalog  []*estimates.CatalogItem
	Items    []*estimates.EstimateItem
}

type MergeSample struct {
	EstimateID uuid.UUID `json:"estimate_id"`
	Quantity   float64   `json:"quantity"`
	Amount     float64   `json:"amount"`
	UnitPrice  *float64  `json:"unit_price,omitempty"`
}

type MergeMismatchEntry struct {
	Code             string        `json:"code"`
	Description      string        `json:"description,omitempty"`
	Unit             string        `json:"unit,omitempty"`
	Samples          []MergeSample `json:"samples"`
	MinQuantity      float64       `json:"min_quantity"`
	MaxQuantity      float64       `json:"max_quantity"`
	MinUnitPrice     *float64      `json:"min_unit_price,omitempty"`
	MaxUnitPrice     *float64      `json:"max_unit_price,omitempty"`
	QuantityMismatch bool          `json:"quantity_mismatch"`
	PriceMismatch    bool          `json:"price_mismatch"`
}

type MergeSummary struct {
	TotalCodes         int `json:"total_codes"`
	Mismatches         int `json:"mismatches"`
	QuantityMismatches int `json:"quantity_mismatches"`
	PriceMismatches    int `json:"price_mismatches"`
}

type MergeReport struct {
	Mismatches []MergeMismatchEntry `json:"mismatches"`
	Summary    MergeSummary         `json:"summary"`
}

type codeTotals struct {
	quantity    decimal.Decimal
	amount      decimal.Decimal
	description string
	unit        string
}

// sourceTotals sums a source's line items by normalized code. Items without
// a code of their own use their catalog entry's code; uncoded items are skipped.
func sourceTotals(src MergeSource) map[string]*codeTotals {
	catalog := make(map[uuid.UUID]*estimates.CatalogItem, len(src.Catalog))
	for _, c := range src.Catalog {
		if c != nil {
			catalog[c.ID] = c
		}
	}
	out := map[string]*codeTotals{}
	for _, it := range src.Items {
		if it == nil {
			continue
		}
		cat := catalog[it.CatalogItemID]
		code := it.Code
		if strings.TrimSpace(code) == "" && cat != nil {
			code = cat.Code
		}
		key := normalization.NormalizeCode(code)
		if key == "" {
			continue
		}
		t, ok := out[key]
		if !ok {
			t = &codeTotals{}
			if cat != nil {
				t.description, t.unit = cat.Description, cat.Unit
			}
			if t.description == "" {
				t.description = it.Description
			}
			if t.unit == "" {
				t.unit = it.Unit
			}
			out[key] = t
		}
		t.quantity = t.quantity.Add(decimal.NewFromFloat(it.Quantity))
		t.amount = t.amount.Add(decimal.NewFromFloat(it.Amount))
	}
	return out
}

// CompareSources reports, per normalized code present in at least two
// sources, whether quantities or implied unit prices disagree beyond
// Tolerance. Only flagged codes appear in the report.
func CompareSources(sources []MergeSource) MergeReport {
	type entry struct {
		samples     []MergeSample
		description string
		unit        string
	}
	byCode := map[string]*entry{}
	for _, src := range sources {
		if src.Estimate == nil {
			continue
		}
		for code, t := range sourceTotals(src) {
			e, ok := byCode[code]
			if !ok {
				e = &entry{description: t.description, unit: t.unit}
				byCode[code] = e
			}
			q, _ := t.quantity.Float64()
			a, _ := t.amount.Float64()
			e.samples = append(e.samples, MergeSample{
				EstimateID: src.Estimate.ID,
				Quantity:   q,
				Amount:     a,
				UnitPrice:  impliedUnitPrice(q, a),
			})
		}
	}

	report := MergeReport{Mismatches: []MergeMismatchEntry{}}
	report.Summary.TotalCodes = len(byCode)

	codes := make([]string, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		e := byCode[code]
		if len(e.samples) < 2 {
			continue
		}
		m := MergeMismatchEntry{
			Code:        code,
			Description: e.description,
			Unit:        e.unit,
			Samples:     e.samples,
			MinQuantity: e.samples[0].Quantity,
			MaxQuantity: e.samples[0].Quantity,
		}
		priced := 0
		for _, s := range e.samples {
			if s.Quantity < m.MinQuantity {
				m.MinQuantity = s.Quantity
			}
			if s.Quantity > m.MaxQuantity {
				m.MaxQuantity = s.Quantity
			}
			if s.UnitPrice == nil {
				continue
			}
			priced++
			if m.MinUnitPrice == nil || *s.UnitPrice < *m.MinUnitPrice {
				m.MinUnitPrice = copyFloat(s.UnitPrice)
			}
			if m.MaxUnitPrice == nil || *s.UnitPrice > *m.MaxUnitPrice {
				m.MaxUnitPrice = copyFloat(s.UnitPrice)
			}
		}
		m.QuantityMismatch = ExceedsTolerance(m.MaxQuantity, m.MinQuantity)
		m.PriceMismatch = priced >= 2 && ExceedsTolerance(*m.MaxUnitPrice, *m.MinUnitPrice)
		if !m.QuantityMismatch && !m.PriceMismatch {
			continue
		}
		report.Mismatches = append(report.Mismatches, m)
		report.Summary.Mismatches++
		if m.QuantityMismatch {
			report.Summary.QuantityMismatches++
		}
		if m.PriceMismatch {
			report.Summary.PriceMismatches++
		}
	}
	return report
}

// MergedBaseline is the re-keyed superset that becomes the new baseline.
type MergedBaseline struct {
	Estimate *estimates.Estimate
	Groups   []*estimates.WbsGroup
	Catalog  []*estimates.CatalogItem
	Items    []*estimates.EstimateItem
}

// BuildMerged re-keys every source row under a new estimate. Catalog entries
// are de-duplicated by normalized code with the first source winning;
// uncoded entries are always kept. Line items are renumbered 1..N in source
// order and keep their source estimate/item as lineage.
func BuildMerged(projectID uuid.UUID, name string, sources []MergeSource, newID IDFunc, now time.Time) MergedBaseline {
	if newID == nil {
		newID = uuid.New
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	sourceIDs := make([]uuid.UUID, 0, len(sources))
	for _, src := range sources {
		if src.Estimate != nil {
			sourceIDs = append(sourceIDs, src.Estimate.ID)
		}
	}
	est := &estimates.Estimate{
		ID:         newID(),
		ProjectID:  projectID,
		Name:       strings.TrimSpace(name),
		Kind:       estimates.EstimateKindProject,
		Source:     estimates.EstimateSourceMerge,
		MergedFrom: estimates.UUIDListJSON(sourceIDs),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	out := MergedBaseline{Estimate: est}

	catalogByCode := map[string]uuid.UUID{}
	progressive := 0
	for _, src := range sources {
		if src.Estimate == nil {
			continue
		}
		srcID := src.Estimate.ID

		groupMap := make(map[uuid.UUID]uuid.UUID, len(src.Groups))
		for _, g := range src.Groups {
			if g != nil {
				groupMap[g.ID] = newID()
			}
		}
		for _, g := range src.Groups {
			if g == nil {
				continue
			}
			ng := &estimates.WbsGroup{
				ID:          groupMap[g.ID],
				EstimateID:  est.ID,
				ExternalID:  g.ExternalID,
				Code:        g.Code,
				Description: g.Description,
				Level:       g.Level,
				CreatedAt:   now,
			}
			if g.ParentID != nil {
				if p, ok := groupMap[*g.ParentID]; ok {
					ng.ParentID = &p
				}
			}
			out.Groups = append(out.Groups, ng)
		}

		catalogMap := make(map[uuid.UUID]uuid.UUID, len(src.Catalog))
		for _, c := range src.Catalog {
			if c == nil {
				continue
			}
			key := normalization.NormalizeCode(c.Code)
			if key != "" {
				if existing, ok := catalogByCode[key]; ok {
					catalogMap[c.ID] = existing
					continue
				}
			}
			nc := &estimates.CatalogItem{
				ID:               newID(),
				EstimateID:       est.ID,
				ExternalID:       c.ExternalID,
				Code:             c.Code,
				Description:      c.Description,
				LongDescription:  c.LongDescription,
				Unit:             c.Unit,
				UnitPrice:        c.UnitPrice,
				GroupIDs:         remapGroupIDs(c.GroupIDs, groupMap),
				SourceEstimateID: ptrUUID(srcID),
				SourceItemID:     ptrUUID(c.ID),
				CreatedAt:        now,
			}
			catalogMap[c.ID] = nc.ID
			if key != "" {
				catalogByCode[key] = nc.ID
			}
			out.Catalog = append(out.Catalog, nc)
		}

		items := make([]*estimates.EstimateItem, 0, len(src.Items))
		for _, it := range src.Items {
			if it != nil {
				items = append(items, it)
			}
		}
		sort.SliceStable(items, func(i, j int) bool {
			pi, pj := items[i].Progressive, items[j].Progressive
			switch {
			case pi == nil:
				return false
			case pj == nil:
				return true
			default:
				return *pi < *pj
			}
		})
		for _, it := range items {
			catID, ok := catalogMap[it.CatalogItemID]
			if !ok {
				nc := &estimates.CatalogItem{
					ID:               newID(),
					EstimateID:       est.ID,
					Code:             it.Code,
					Description:      it.Description,
					Unit:             it.Unit,
					UnitPrice:        derefFloat(it.UnitPrice),
					GroupIDs:         estimates.UUIDListJSON(nil),
					SourceEstimateID: ptrUUID(srcID),
					SourceItemID:     ptrUUID(it.ID),
					CreatedAt:        now,
				}
				out.Catalog = append(out.Catalog, nc)
				catID = nc.ID
			}
			progressive++
			p := progressive
			out.Items = append(out.Items, &estimates.EstimateItem{
				ID:               newID(),
				EstimateID:       est.ID,
				CatalogItemID:    catID,
				Progressive:      &p,
				ExternalID:       it.ExternalID,
				Code:             it.Code,
				Description:      it.Description,
				Unit:             it.Unit,
				Quantity:         it.Quantity,
				UnitPrice:        copyFloat(it.UnitPrice),
				Amount:           it.Amount,
				SourceEstimateID: ptrUUID(srcID),
				SourceItemID:     ptrUUID(it.ID),
				CreatedAt:        now,
			})
		}
	}
	est.GroupCount = len(out.Groups)
	est.CatalogCount = len(out.Catalog)
	est.ItemCount = len(out.Items)
	return out
}

func remapGroupIDs(raw datatypes.JSON, groupMap map[uuid.UUID]uuid.UUID) datatypes.JSON {
	var mapped []uuid.UUID
	for _, id := range estimates.DecodeUUIDList(raw) {
		if n, ok := groupMap[id]; ok {
			mapped = append(mapped, n)
		}
	}
	return estimates.UUIDListJSON(mapped)
}

// ReportJSON encodes a merge report for persistence.
func (r MergeReport) ReportJSON() []byte {
	b, _ := json.Marshal(r)
	return b
}

func ptrUUID(id uuid.UUID) *uuid.UUID { return &id }

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
