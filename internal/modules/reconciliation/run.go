package reconciliation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
)

type RunInput struct {
	ProjectID  uuid.UUID
	EstimateID uuid.UUID
	// OfferID may be nil on a first import; the offer aggregate fills it in.
	OfferID uuid.UUID
	Mode    estimates.OfferMode
	Rows    []Row
	Now     time.Time
}

type RunResult struct {
	Links   []Link
	Items   []*estimates.OfferItem
	Alerts  []*estimates.Alert
	Summary Summary
}

// Reconcile links every row against idx with the strategy selected by mode
// and derives alerts. It is a single synchronous pass; idx is only read.
func Reconcile(idx *BaselineIndex, in RunInput, newID IDFunc) (RunResult, error) {
	if idx == nil {
		return RunResult{}, ErrNilIndex
	}
	var link func(*BaselineIndex, Row) Link
	switch in.Mode {
	case estimates.OfferModeDetailed:
		link = LinkDetailed
	case estimates.OfferModeAggregated:
		link = LinkAggregated
	default:
		return RunResult{}, ErrInvalidMode
	}
	if newID == nil {
		newID = uuid.New
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	out := RunResult{
		Links:  make([]Link, 0, len(in.Rows)),
		Items:  make([]*estimates.OfferItem, 0, len(in.Rows)),
		Alerts: []*estimates.Alert{},
	}
	for _, row := range in.Rows {
		l := link(idx, row)
		item := offerItemFromLink(l, in.OfferID, newID(), now)
		out.Links = append(out.Links, l)
		out.Items = append(out.Items, item)
		for _, f := range Evaluate(l) {
			out.Alerts = append(out.Alerts, alertFromFinding(f, l, item, in, newID(), now))
		}
	}
	out.Summary = Summarize(in.OfferID, out.Links, out.Alerts, idx.Warnings)
	return out, nil
}

func offerItemFromLink(l Link, offerID, id uuid.UUID, now time.Time) *estimates.OfferItem {
	raw, _ := json.Marshal(l.Row)
	item := &estimates.OfferItem{
		ID:               id,
		OfferID:          offerID,
		RowIndex:         l.Row.Index,
		Progressive:      copyInt(l.Row.Progressive),
		Code:             l.Code,
		Description:      l.Description,
		LongDescription:  l.Row.LongDescription,
		Unit:             l.Unit,
		Quantity:         l.Row.Quantity,
		UnitPrice:        copyFloat(l.UnitPrice),
		Origin:           l.Origin,
		Source:           l.Mode,
		ResolutionStatus: l.Status,
		MatchedBy:        l.MatchedBy,
		Candidates:       estimates.UUIDListJSON(l.Candidates),
		Raw:              raw,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if l.Row.Amount != nil {
		item.Amount = *l.Row.Amount
	} else {
		item.Amount = LineAmount(l.Row.Quantity, l.UnitPrice)
	}
	if l.Resolved() {
		switch l.Mode {
		case estimates.OfferModeDetailed:
			if l.EstimateItem != nil {
				eid := l.EstimateItem.ID
				item.EstimateItemID = &eid
			}
		case estimates.OfferModeAggregated:
			if l.CatalogItem != nil {
				cid := l.CatalogItem.ID
				item.CatalogItemID = &cid
			}
		}
	}
	return item
}

func alertFromFinding(f Finding, l Link, item *estimates.OfferItem, in RunInput, id uuid.UUID, now time.Time) *estimates.Alert {
	a := &estimates.Alert{
		ID:          id,
		ProjectID:   in.ProjectID,
		EstimateID:  in.EstimateID,
		OfferID:     in.OfferID,
		OfferItemID: item.ID,
		Type:        f.Type,
		Severity:    f.Severity,
		Status:      estimates.AlertStatusOpen,
		Origin:      item.Origin,
		Source:      item.Source,
		RowIndex:    l.Row.Index,
		Actual:      f.Actual,
		Expected:    f.Expected,
		Delta:       f.Delta,
		Message:     f.Message,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if l.EstimateItem != nil {
		eid := l.EstimateItem.ID
		a.EstimateItemID = &eid
	}
	if l.CatalogItem != nil {
		cid := l.CatalogItem.ID
		a.CatalogItemID = &cid
	}
	if len(f.Candidates) > 0 {
		ids := make([]string, 0, len(f.Candidates))
		for _, c := range f.Candidates {
			ids = append(ids, c.String())
		}
		a.Details, _ = json.Marshal(map[string]any{"candidates": ids})
	}
	return a
}

// Summarize builds the caller facing run summary. Warnings are deterministic
// for a given set of links.
func Summarize(offerID uuid.UUID, links []Link, alerts []*estimates.Alert, baselineWarnings []string) Summary {
	s := Summary{
		OfferID:   offerID,
		ItemCount: len(links),
		Warnings:  []string{},
		Alerts: AlertTally{
			Total:  len(alerts),
			ByType: map[estimates.AlertType]int{},
		},
	}
	for _, a := range alerts {
		s.Alerts.ByType[a.Type]++
	}
	s.Warnings = append(s.Warnings, baselineWarnings...)
	if len(links) == 0 {
		s.Warnings = append(s.Warnings, "offer contains no line items")
		return s
	}
	noBaselineQty := 0
	for _, l := range links {
		if l.Resolved() && !l.Expected.HasBaseline {
			noBaselineQty++
		}
	}
	add := func(n int, format string) {
		if n > 0 {
			s.Warnings = append(s.Warnings, fmt.Sprintf(format, n))
		}
	}
	add(s.Alerts.ByType[estimates.AlertTypeMissingBaseline], "%d row(s) matched no baseline entry and were recorded as addenda")
	add(s.Alerts.ByType[estimates.AlertTypeAmbiguousMatch], "%d row(s) have ambiguous catalog matches awaiting selection")
	add(noBaselineQty, "%d row(s) matched catalog entries that carry no baseline quantity")
	add(s.Alerts.ByType[estimates.AlertTypePriceMismatch], "%d row(s) have a missing or zero unit price")
	return s
}
