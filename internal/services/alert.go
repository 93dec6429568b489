package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/data/repos"
	domainagg "github.com/yungbote/tenderbridge-backend/internal/domain/aggregates"
	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/observability"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/platform/locks"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

// ResolveDecision is a reviewer's verdict on one alert.
type ResolveDecision struct {
	Status                types.AlertStatus `json:"status"`
	ResolutionNote        *string           `json:"resolution_note,omitempty"`
	SelectedCatalogItemID *uuid.UUID        `json:"selected_catalog_item_id,omitempty"`
	// ExpectedStatus rejects the decision unless the alert is currently in one of these.
	ExpectedStatus []types.AlertStatus `json:"expected_status,omitempty"`
}

type ResolveResult struct {
	Alert *types.Alert     `json:"alert"`
	Item  *types.OfferItem `json:"item,omitempty"`
}

type AlertSummary struct {
	OfferID  uuid.UUID                 `json:"offer_id"`
	Total    int                       `json:"total"`
	ByType   map[types.AlertType]int   `json:"by_type"`
	ByStatus map[types.AlertStatus]int `json:"by_status"`
	Counts   []repos.AlertCount        `json:"counts"`
}

type AlertService interface {
	List(dbc dbctx.Context, offerID uuid.UUID, filter repos.AlertFilter) ([]*types.Alert, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Alert, error)
	Summary(dbc dbctx.Context, offerID uuid.UUID) (*AlertSummary, error)
	Resolve(ctx context.Context, alertID uuid.UUID, decision ResolveDecision) (*ResolveResult, error)
}

type alertService struct {
	log    *logger.Logger
	repos  repos.Set
	agg    domainagg.AlertAggregate
	locker locks.EstimateLocker
}

func NewAlertService(log *logger.Logger, set repos.Set, agg domainagg.AlertAggregate, locker locks.EstimateLocker) AlertService {
	return &alertService{
		log:    log.With("service", "AlertService"),
		repos:  set,
		agg:    agg,
		locker: locker,
	}
}

func (s *alertService) List(dbc dbctx.Context, offerID uuid.UUID, filter repos.AlertFilter) ([]*types.Alert, error) {
	const op = "Alert.List"
	if err := s.requireOffer(dbc, op, offerID); err != nil {
		return nil, err
	}
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, domainagg.Validationf(op, "unknown alert status %q", st)
		}
	}
	out, err := s.repos.Alert.ListByOffer(dbc, offerID, filter)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return out, nil
}

func (s *alertService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Alert, error) {
	const op = "Alert.Get"
	if id == uuid.Nil {
		return nil, domainagg.Validationf(op, "alert id is required")
	}
	a, err := s.repos.Alert.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load alert: %w", err)
	}
	if a == nil {
		return nil, domainagg.NotFoundf(op, "alert %s not found", id)
	}
	return a, nil
}

func (s *alertService) Summary(dbc dbctx.Context, offerID uuid.UUID) (*AlertSummary, error) {
	if err := s.requireOffer(dbc, "Alert.Summary", offerID); err != nil {
		return nil, err
	}
	counts, err := s.repos.Alert.CountByOffer(dbc, offerID)
	if err != nil {
		return nil, fmt.Errorf("count alerts: %w", err)
	}
	out := &AlertSummary{
		OfferID:  offerID,
		ByType:   map[types.AlertType]int{},
		ByStatus: map[types.AlertStatus]int{},
		Counts:   counts,
	}
	for _, c := range counts {
		n := int(c.Count)
		out.Total += n
		out.ByType[c.Type] += n
		out.ByStatus[c.Status] += n
	}
	return out, nil
}

// Resolve applies a decision under the estimate lock so it cannot interleave
// with a rerun replacing the same offer's items.
func (s *alertService) Resolve(ctx context.Context, alertID uuid.UUID, decision ResolveDecision) (_ *ResolveResult, err error) {
	const op = "Alert.Resolve"
	defer func() {
		status := string(decision.Status)
		if err != nil {
			status = "error"
		}
		observability.Current().IncAlertResolution(status)
	}()
	if s.agg == nil {
		return nil, domainagg.NotConfigured(op, "alert aggregate")
	}
	decision.Status = types.AlertStatus(strings.ToLower(strings.TrimSpace(string(decision.Status))))

	alert, err := s.Get(dbctx.Context{Ctx: ctx}, alertID)
	if err != nil {
		return nil, err
	}
	release, err := acquireEstimate(ctx, s.locker, op, alert.EstimateID)
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := s.agg.Resolve(ctx, domainagg.ResolveAlertInput{
		AlertID:               alertID,
		Status:                decision.Status,
		ResolutionNote:        decision.ResolutionNote,
		SelectedCatalogItemID: decision.SelectedCatalogItemID,
		ExpectedCurrentStatus: decision.ExpectedStatus,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Alert resolved",
		"alert_id", alertID,
		"offer_id", alert.OfferID,
		"type", alert.Type,
		"from", alert.Status,
		"to", decision.Status,
		"relinked", res.Item != nil,
	)
	return &ResolveResult{Alert: res.Alert, Item: res.Item}, nil
}

func (s *alertService) requireOffer(dbc dbctx.Context, op string, offerID uuid.UUID) error {
	if offerID == uuid.Nil {
		return domainagg.Validationf(op, "offer id is required")
	}
	offer, err := s.repos.Offer.GetByID(dbc, offerID)
	if err != nil {
		return fmt.Errorf("load offer: %w", err)
	}
	if offer == nil {
		return domainagg.NotFoundf(op, "offer %s not found", offerID)
	}
	return nil
}
