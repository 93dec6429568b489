package reporting

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/modules/reconciliation"
)

var ErrNilReport = errors.New("merge report is required")

// MergeReportXLSX renders a persisted merge report. Each mismatch becomes one
// row on the Mismatches sheet with its per-source samples flattened.
func MergeReportXLSX(report *estimates.MergeReport) ([]byte, error) {
	if report == nil {
		return nil, ErrNilReport
	}
	var body reconciliation.MergeReport
	if len(report.Report) > 0 {
		if err := json.Unmarshal(report.Report, &body); err != nil {
			return nil, fmt.Errorf("decode merge report: %w", err)
		}
	}

	w, err := newWorkbook(SheetSummary, SheetMismatches)
	if err != nil {
		return nil, err
	}
	sources := estimates.DecodeUUIDList(report.SourceEstimateIDs)
	sourceStrs := make([]string, 0, len(sources))
	for _, id := range sources {
		sourceStrs = append(sourceStrs, id.String())
	}
	summary := [][]any{
		{"Merged estimate", report.EstimateID.String()},
		{"Sources", strings.Join(sourceStrs, ", ")},
		{"Total codes", body.Summary.TotalCodes},
		{"Mismatches", body.Summary.Mismatches},
		{"Quantity mismatches", body.Summary.QuantityMismatches},
		{"Price mismatches", body.Summary.PriceMismatches},
	}
	for i, r := range summary {
		if err := w.row(SheetSummary, i+1, r...); err != nil {
			w.close()
			return nil, err
		}
	}

	if err := w.header(SheetMismatches,
		"Code", "Description", "Unit", "Min quantity", "Max quantity",
		"Min unit price", "Max unit price", "Quantity mismatch", "Price mismatch", "Samples",
	); err != nil {
		w.close()
		return nil, err
	}
	for i, m := range body.Mismatches {
		if err := w.row(SheetMismatches, i+2,
			m.Code,
			m.Description,
			m.Unit,
			m.MinQuantity,
			m.MaxQuantity,
			optional(m.MinUnitPrice),
			optional(m.MaxUnitPrice),
			m.QuantityMismatch,
			m.PriceMismatch,
			formatSamples(m.Samples),
		); err != nil {
			w.close()
			return nil, err
		}
	}
	return w.bytes()
}

func formatSamples(samples []reconciliation.MergeSample) string {
	parts := make([]string, 0, len(samples))
	for _, s := range samples {
		p := fmt.Sprintf("%s: qty=%g amount=%g", s.EstimateID, s.Quantity, s.Amount)
		if s.UnitPrice != nil {
			p += fmt.Sprintf(" unit=%g", *s.UnitPrice)
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, "; ")
}
