package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/tenderbridge-backend/internal/data/repos"
	domainagg "github.com/yungbote/tenderbridge-backend/internal/domain/aggregates"
	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/modules/reconciliation"
	"github.com/yungbote/tenderbridge-backend/internal/observability"
	"github.com/yungbote/tenderbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/platform/gcp"
	"github.com/yungbote/tenderbridge-backend/internal/platform/locks"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

type OfferImportRequest struct {
	ProjectID uuid.UUID
	// EstimateID selects the baseline; nil means the project's latest one.
	EstimateID *uuid.UUID
	Mode       types.OfferMode
	Payload    *types.ImportPayload
}

type OfferService interface {
	Import(ctx context.Context, req OfferImportRequest) (*reconciliation.Summary, error)
	Rerun(ctx context.Context, offerID uuid.UUID) (*reconciliation.Summary, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Offer, error)
	List(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Offer, error)
	ListItems(dbc dbctx.Context, offerID uuid.UUID) ([]*types.OfferItem, error)
}

type offerService struct {
	log     *logger.Logger
	repos   repos.Set
	agg     domainagg.OfferAggregate
	locker  locks.EstimateLocker
	archive gcp.PayloadArchive
	now     func() time.Time
}

func NewOfferService(log *logger.Logger, set repos.Set, agg domainagg.OfferAggregate, locker locks.EstimateLocker, archive gcp.PayloadArchive) OfferService {
	if archive == nil {
		archive = gcp.NewNoopArchive()
	}
	return &offerService{
		log:     log.With("service", "OfferService"),
		repos:   set,
		agg:     agg,
		locker:  locker,
		archive: archive,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// offerRun is everything one reconciliation pass needs besides the rows.
type offerRun struct {
	op       string
	project  uuid.UUID
	estimate *types.Estimate
	company  string
	round    int
	name     string
	mode     types.OfferMode
	rows     []reconciliation.Row
}

func (s *offerService) Import(ctx context.Context, req OfferImportRequest) (*reconciliation.Summary, error) {
	const op = "Offer.Import"
	if s.agg == nil {
		return nil, domainagg.NotConfigured(op, "offer aggregate")
	}
	if !req.Mode.Valid() {
		return nil, domainagg.Validationf(op, "mode must be %q or %q, got %q", types.OfferModeDetailed, types.OfferModeAggregated, req.Mode)
	}
	if err := req.Payload.Validate(); err != nil {
		return nil, domainagg.Validationf(op, "%s", err.Error())
	}
	if req.Payload.Estimate.Mode != types.EstimateKindOffer {
		return nil, domainagg.Validationf(op, "estimate.mode must be %q, got %q", types.EstimateKindOffer, req.Payload.Estimate.Mode)
	}

	dbc := dbctx.Context{Ctx: ctx}
	if _, err := requireProject(dbc, s.repos.Project, op, req.ProjectID); err != nil {
		return nil, err
	}
	est, err := s.resolveBaseline(dbc, op, req.ProjectID, req.EstimateID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Payload.Estimate.Name)
	company := strings.TrimSpace(req.Payload.Estimate.Company)
	if company == "" {
		company = name
	}
	round := req.Payload.Estimate.RoundNumber
	if round < 1 {
		round = 1
	}

	release, err := acquireEstimate(ctx, s.locker, op, est.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	summary, err := s.run(ctx, offerRun{
		op:       op,
		project:  req.ProjectID,
		estimate: est,
		company:  company,
		round:    round,
		name:     name,
		mode:     req.Mode,
		rows:     reconciliation.RowsFromPayload(req.Payload.Estimate.Items),
	})
	if err != nil {
		return nil, err
	}
	archivePayload(ctx, s.log, s.archive, gcp.PayloadKindOffer, req.ProjectID, req.Payload)
	return summary, nil
}

// Rerun reconciles the stored rows of an offer again against the current
// baseline. Manual ambiguous selections are discarded.
func (s *offerService) Rerun(ctx context.Context, offerID uuid.UUID) (*reconciliation.Summary, error) {
	const op = "Offer.Rerun"
	if s.agg == nil {
		return nil, domainagg.NotConfigured(op, "offer aggregate")
	}
	dbc := dbctx.Context{Ctx: ctx}
	offer, err := s.requireOffer(dbc, op, offerID)
	if err != nil {
		return nil, err
	}
	est, err := s.repos.Estimate.GetByID(dbc, offer.EstimateID)
	if err != nil {
		return nil, fmt.Errorf("load estimate: %w", err)
	}
	if est == nil {
		return nil, domainagg.Preconditionf(op, "baseline %s of offer %s no longer exists", offer.EstimateID, offer.ID)
	}

	release, err := acquireEstimate(ctx, s.locker, op, est.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	items, err := s.repos.OfferItem.GetByOfferID(dbc, offer.ID)
	if err != nil {
		return nil, fmt.Errorf("load offer items: %w", err)
	}
	return s.run(ctx, offerRun{
		op:       op,
		project:  offer.ProjectID,
		estimate: est,
		company:  offer.Company,
		round:    offer.RoundNumber,
		name:     offer.Name,
		mode:     offer.Mode,
		rows:     rowsFromStoredItems(items),
	})
}

func (s *offerService) run(ctx context.Context, in offerRun) (_ *reconciliation.Summary, err error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "offer.reconcile",
		attribute.String("estimate_id", in.estimate.ID.String()),
		attribute.String("mode", string(in.mode)),
		attribute.Int("rows", len(in.rows)),
	)
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.Current().ObserveReconcileRun(string(in.mode), status, time.Since(start))
		span.End()
	}()

	dbc := dbctx.Context{Ctx: ctx}
	baseItems, err := s.repos.EstimateItem.GetByEstimateID(dbc, in.estimate.ID)
	if err != nil {
		return nil, fmt.Errorf("load baseline items: %w", err)
	}
	catalog, err := s.repos.CatalogItem.GetByEstimateID(dbc, in.estimate.ID)
	if err != nil {
		return nil, fmt.Errorf("load baseline catalog: %w", err)
	}
	idx := reconciliation.BuildIndex(in.estimate.ID, baseItems, catalog)

	offerID := uuid.New()
	existing, err := s.repos.Offer.GetByRound(dbc, in.estimate.ID, in.company, in.round)
	if err != nil {
		return nil, fmt.Errorf("lookup offer: %w", err)
	}
	if existing != nil {
		offerID = existing.ID
	}

	now := s.now()
	res, err := reconciliation.Reconcile(idx, reconciliation.RunInput{
		ProjectID:  in.project,
		EstimateID: in.estimate.ID,
		OfferID:    offerID,
		Mode:       in.mode,
		Rows:       in.rows,
		Now:        now,
	}, uuid.New)
	if err != nil {
		return nil, domainagg.Validationf(in.op, "%s", err.Error())
	}

	out, err := s.agg.ReplaceReconciliation(ctx, domainagg.ReplaceOfferInput{
		Offer: &types.Offer{
			ID:          offerID,
			ProjectID:   in.project,
			EstimateID:  in.estimate.ID,
			Company:     in.company,
			RoundNumber: in.round,
			Name:        in.name,
			Mode:        in.mode,
		},
		Items:  res.Items,
		Alerts: res.Alerts,
		RunAt:  now,
	})
	if err != nil {
		return nil, err
	}

	summary := res.Summary
	summary.OfferID = out.OfferID
	span.SetAttributes(attribute.String("offer_id", out.OfferID.String()), attribute.Int("alerts", summary.Alerts.Total))
	recordRunMetrics(in.mode, res)
	observability.ReportDataQualityIssues(ctx, s.log, "offer_import", summary.Warnings, map[string]any{
		"offer_id":    out.OfferID.String(),
		"estimate_id": in.estimate.ID.String(),
	})

	fields := append([]interface{}{
		"offer_id", out.OfferID,
		"estimate_id", in.estimate.ID,
		"mode", in.mode,
		"items", summary.ItemCount,
		"alerts", summary.Alerts.Total,
		"created", out.Created,
	}, ctxutil.LogFields(ctx)...)
	s.log.Info("Reconciliation run complete", fields...)
	return &summary, nil
}

// resolveBaseline returns the requested estimate, or the most recently
// created baseline of the project.
func (s *offerService) resolveBaseline(dbc dbctx.Context, op string, projectID uuid.UUID, estimateID *uuid.UUID) (*types.Estimate, error) {
	if estimateID != nil && *estimateID != uuid.Nil {
		est, err := s.repos.Estimate.GetByID(dbc, *estimateID)
		if err != nil {
			return nil, fmt.Errorf("load estimate: %w", err)
		}
		if est == nil {
			return nil, domainagg.NotFoundf(op, "estimate %s not found", *estimateID)
		}
		if est.ProjectID != projectID {
			return nil, domainagg.Validationf(op, "estimate %s belongs to another project", est.ID)
		}
		return est, nil
	}
	all, err := s.repos.Estimate.ListByProject(dbc, projectID)
	if err != nil {
		return nil, fmt.Errorf("list estimates: %w", err)
	}
	if len(all) == 0 {
		return nil, domainagg.Preconditionf(op, "project %s has no baseline estimate", projectID)
	}
	return all[len(all)-1], nil
}

func (s *offerService) requireOffer(dbc dbctx.Context, op string, id uuid.UUID) (*types.Offer, error) {
	if id == uuid.Nil {
		return nil, domainagg.Validationf(op, "offer id is required")
	}
	offer, err := s.repos.Offer.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load offer: %w", err)
	}
	if offer == nil {
		return nil, domainagg.NotFoundf(op, "offer %s not found", id)
	}
	return offer, nil
}

func (s *offerService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Offer, error) {
	return s.requireOffer(dbc, "Offer.Get", id)
}

func (s *offerService) List(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Offer, error) {
	if _, err := requireProject(dbc, s.repos.Project, "Offer.List", projectID); err != nil {
		return nil, err
	}
	out, err := s.repos.Offer.ListByProject(dbc, projectID)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return out, nil
}

func (s *offerService) ListItems(dbc dbctx.Context, offerID uuid.UUID) ([]*types.OfferItem, error) {
	if _, err := s.requireOffer(dbc, "Offer.ListItems", offerID); err != nil {
		return nil, err
	}
	out, err := s.repos.OfferItem.GetByOfferID(dbc, offerID)
	if err != nil {
		return nil, fmt.Errorf("list offer items: %w", err)
	}
	return out, nil
}

// rowsFromStoredItems rebuilds the imported rows of a previous run. Items
// without a stored raw row fall back to their persisted fields.
func rowsFromStoredItems(items []*types.OfferItem) []reconciliation.Row {
	out := make([]reconciliation.Row, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		var row reconciliation.Row
		if len(it.Raw) > 0 && json.Unmarshal(it.Raw, &row) == nil {
			out = append(out, row)
			continue
		}
		out = append(out, reconciliation.Row{
			Index:           it.RowIndex,
			Progressive:     copyIntPtr(it.Progressive),
			Code:            it.Code,
			Description:     it.Description,
			LongDescription: it.LongDescription,
			Unit:            it.Unit,
			Quantity:        it.Quantity,
			UnitPrice:       copyFloatPtr(it.UnitPrice),
		})
	}
	return out
}

func recordRunMetrics(mode types.OfferMode, res reconciliation.RunResult) {
	m := observability.Current()
	if m == nil {
		return
	}
	type itemKey struct {
		origin     types.Origin
		resolution types.ResolutionStatus
	}
	items := map[itemKey]int{}
	for _, it := range res.Items {
		items[itemKey{it.Origin, it.ResolutionStatus}]++
	}
	for k, n := range items {
		m.AddReconcileItems(string(mode), string(k.origin), string(k.resolution), n)
	}
	type alertKey struct {
		typ types.AlertType
		sev types.Severity
	}
	alerts := map[alertKey]int{}
	for _, a := range res.Alerts {
		alerts[alertKey{a.Type, a.Severity}]++
	}
	for k, n := range alerts {
		m.AddReconcileAlerts(string(k.typ), string(k.sev), n)
	}
}
