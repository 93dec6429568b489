package reporting

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
)

var ErrNilOffer = errors.New("offer is required")

// OfferAlertsXLSX renders an offer's alert log for reviewers. The Summary
// sheet counts alerts by type and severity; Alerts and Items list the rows
// in the order given.
func OfferAlertsXLSX(offer *estimates.Offer, items []*estimates.OfferItem, alerts []*estimates.Alert) ([]byte, error) {
	if offer == nil {
		return nil, ErrNilOffer
	}
	w, err := newWorkbook(SheetSummary, SheetAlerts, SheetItems)
	if err != nil {
		return nil, err
	}
	if err := writeOfferSummary(w, offer, len(items), alerts); err != nil {
		w.close()
		return nil, err
	}
	if err := writeAlerts(w, alerts); err != nil {
		w.close()
		return nil, err
	}
	if err := writeItems(w, items); err != nil {
		w.close()
		return nil, err
	}
	return w.bytes()
}

func writeOfferSummary(w *workbook, offer *estimates.Offer, itemCount int, alerts []*estimates.Alert) error {
	lastRun := ""
	if offer.LastRunAt != nil {
		lastRun = offer.LastRunAt.UTC().Format(time.RFC3339)
	}
	head := [][]any{
		{"Offer", offer.ID.String()},
		{"Company", offer.Company},
		{"Round", offer.RoundNumber},
		{"Mode", string(offer.Mode)},
		{"Estimate", offer.EstimateID.String()},
		{"Last run", lastRun},
		{"Items", itemCount},
		{"Alerts", len(alerts)},
	}
	for i, r := range head {
		if err := w.row(SheetSummary, i+1, r...); err != nil {
			return err
		}
	}

	byType := map[estimates.AlertType]map[estimates.Severity]int{}
	open := map[estimates.AlertType]int{}
	for _, a := range alerts {
		if a == nil {
			continue
		}
		if byType[a.Type] == nil {
			byType[a.Type] = map[estimates.Severity]int{}
		}
		byType[a.Type][a.Severity]++
		if a.Status == estimates.AlertStatusOpen {
			open[a.Type]++
		}
	}

	start := len(head) + 2
	if err := w.row(SheetSummary, start, "Type", "Info", "Warning", "Error", "Open"); err != nil {
		return err
	}
	rowNum := start + 1
	for _, t := range estimates.AlertTypes {
		counts := byType[t]
		if err := w.row(SheetSummary, rowNum,
			string(t),
			counts[estimates.SeverityInfo],
			counts[estimates.SeverityWarning],
			counts[estimates.SeverityError],
			open[t],
		); err != nil {
			return err
		}
		rowNum++
	}
	return nil
}

func writeAlerts(w *workbook, alerts []*estimates.Alert) error {
	if err := w.header(SheetAlerts,
		"Row", "Type", "Severity", "Status", "Origin", "Source",
		"Actual", "Expected", "Delta", "Message", "Resolution note", "Alert ID", "Offer item ID",
	); err != nil {
		return err
	}
	rowNum := 2
	for _, a := range alerts {
		if a == nil {
			continue
		}
		if err := w.row(SheetAlerts, rowNum,
			a.RowIndex,
			string(a.Type),
			string(a.Severity),
			string(a.Status),
			string(a.Origin),
			string(a.Source),
			optional(a.Actual),
			optional(a.Expected),
			optional(a.Delta),
			a.Message,
			a.ResolutionNote,
			a.ID.String(),
			a.OfferItemID.String(),
		); err != nil {
			return err
		}
		rowNum++
	}
	return nil
}

func writeItems(w *workbook, items []*estimates.OfferItem) error {
	if err := w.header(SheetItems,
		"Row", "Progressive", "Code", "Description", "Unit", "Quantity", "Unit price", "Amount",
		"Origin", "Resolution", "Matched by", "Linked to", "Candidates",
	); err != nil {
		return err
	}
	rowNum := 2
	for _, it := range items {
		if it == nil {
			continue
		}
		progressive := any("")
		if it.Progressive != nil {
			progressive = *it.Progressive
		}
		if err := w.row(SheetItems, rowNum,
			it.RowIndex,
			progressive,
			it.Code,
			it.Description,
			it.Unit,
			it.Quantity,
			optional(it.UnitPrice),
			it.Amount,
			string(it.Origin),
			string(it.ResolutionStatus),
			it.MatchedBy,
			linkTarget(it),
			len(estimates.DecodeUUIDList(it.Candidates)),
		); err != nil {
			return err
		}
		rowNum++
	}
	return nil
}

func linkTarget(it *estimates.OfferItem) string {
	switch {
	case it.EstimateItemID != nil && *it.EstimateItemID != uuid.Nil:
		return fmt.Sprintf("estimate_item:%s", it.EstimateItemID)
	case it.CatalogItemID != nil && *it.CatalogItemID != uuid.Nil:
		return fmt.Sprintf("catalog_item:%s", it.CatalogItemID)
	default:
		return ""
	}
}
