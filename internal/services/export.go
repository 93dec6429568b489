package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/data/repos"
	"github.com/yungbote/tenderbridge-backend/internal/modules/reporting"
	"github.com/yungbote/tenderbridge-backend/internal/observability"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

const (
	ExportKindOfferAlerts = "offer_alerts"
	ExportKindMergeReport = "merge_report"

	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Export is a rendered workbook ready to be written out.
type Export struct {
	Filename string
	Body     []byte
}

type ExportService interface {
	OfferAlertsXLSX(ctx context.Context, offerID uuid.UUID) (*Export, error)
	MergeReportXLSX(ctx context.Context, reportID uuid.UUID) (*Export, error)
}

type exportService struct {
	log    *logger.Logger
	repos  repos.Set
	offers OfferService
	merges MergeService
}

func NewExportService(log *logger.Logger, set repos.Set, offers OfferService, merges MergeService) ExportService {
	return &exportService{
		log:    log.With("service", "ExportService"),
		repos:  set,
		offers: offers,
		merges: merges,
	}
}

func (s *exportService) OfferAlertsXLSX(ctx context.Context, offerID uuid.UUID) (_ *Export, err error) {
	defer func() { observability.Current().IncExport(ExportKindOfferAlerts, exportStatus(err)) }()
	dbc := dbctx.Context{Ctx: ctx}
	offer, err := s.offers.Get(dbc, offerID)
	if err != nil {
		return nil, err
	}
	items, err := s.repos.OfferItem.GetByOfferID(dbc, offer.ID)
	if err != nil {
		return nil, fmt.Errorf("load offer items: %w", err)
	}
	alerts, err := s.repos.Alert.ListByOffer(dbc, offer.ID, repos.AlertFilter{})
	if err != nil {
		return nil, fmt.Errorf("load alerts: %w", err)
	}
	body, err := reporting.OfferAlertsXLSX(offer, items, alerts)
	if err != nil {
		return nil, fmt.Errorf("render offer alerts: %w", err)
	}
	s.log.Debug("Offer alerts exported", "offer_id", offer.ID, "alerts", len(alerts), "bytes", len(body))
	return &Export{
		Filename: fmt.Sprintf("offer-%s-r%d-alerts.xlsx", slug(offer.Company), offer.RoundNumber),
		Body:     body,
	}, nil
}

func (s *exportService) MergeReportXLSX(ctx context.Context, reportID uuid.UUID) (_ *Export, err error) {
	defer func() { observability.Current().IncExport(ExportKindMergeReport, exportStatus(err)) }()
	report, err := s.merges.GetReport(dbctx.Context{Ctx: ctx}, reportID)
	if err != nil {
		return nil, err
	}
	body, err := reporting.MergeReportXLSX(report)
	if err != nil {
		return nil, fmt.Errorf("render merge report: %w", err)
	}
	return &Export{
		Filename: fmt.Sprintf("merge-report-%s.xlsx", report.ID),
		Body:     body,
	}, nil
}

func exportStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// slug keeps filenames to lowercase letters, digits and dashes.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "offer"
	}
	return out
}
