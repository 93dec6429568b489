package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/tenderbridge-backend/internal/data/repos"
	domainagg "github.com/yungbote/tenderbridge-backend/internal/domain/aggregates"
	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/modules/reconciliation"
	"github.com/yungbote/tenderbridge-backend/internal/observability"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

const mergeLoadConcurrency = 4

type MergeRequest struct {
	ProjectID         uuid.UUID
	Name              string
	SourceEstimateIDs []uuid.UUID
}

type MergeResult struct {
	EstimateID uuid.UUID                  `json:"estimate_id"`
	ReportID   uuid.UUID                  `json:"report_id"`
	Report     reconciliation.MergeReport `json:"report"`
}

type MergeService interface {
	Merge(ctx context.Context, req MergeRequest) (*MergeResult, error)
	GetReport(dbc dbctx.Context, id uuid.UUID) (*types.MergeReport, error)
}

type mergeService struct {
	log   *logger.Logger
	repos repos.Set
	agg   domainagg.BaselineAggregate
	now   func() time.Time
}

func NewMergeService(log *logger.Logger, set repos.Set, agg domainagg.BaselineAggregate) MergeService {
	return &mergeService{
		log:   log.With("service", "MergeService"),
		repos: set,
		agg:   agg,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *mergeService) Merge(ctx context.Context, req MergeRequest) (_ *MergeResult, err error) {
	const op = "Merge.Create"
	ctx, span := observability.StartSpan(ctx, "baseline.merge", attribute.Int("sources", len(req.SourceEstimateIDs)))
	var report reconciliation.MergeReport
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.Current().ObserveMerge(status, report.Summary.QuantityMismatches, report.Summary.PriceMismatches)
		span.End()
	}()

	if s.agg == nil {
		return nil, domainagg.NotConfigured(op, "baseline aggregate")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domainagg.Validationf(op, "name is required")
	}
	ids := distinctIDs(req.SourceEstimateIDs)
	if len(ids) < 2 {
		return nil, domainagg.Validationf(op, "at least two distinct source estimates are required, got %d", len(ids))
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := requireProject(dbc, s.repos.Project, op, req.ProjectID); err != nil {
		return nil, err
	}

	sources, err := s.loadSources(ctx, op, req.ProjectID, ids)
	if err != nil {
		return nil, err
	}

	report = reconciliation.CompareSources(sources)
	now := s.now()
	merged := reconciliation.BuildMerged(req.ProjectID, name, sources, uuid.New, now)
	res, err := s.agg.CreateMerged(ctx, domainagg.CreateMergedInput{
		Estimate: merged.Estimate,
		Groups:   merged.Groups,
		Catalog:  merged.Catalog,
		Items:    merged.Items,
		Report: &types.MergeReport{
			ID:                uuid.New(),
			SourceEstimateIDs: types.UUIDListJSON(ids),
			Report:            report.ReportJSON(),
			CreatedAt:         now,
		},
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Baselines merged",
		"project_id", req.ProjectID,
		"estimate_id", res.EstimateID,
		"sources", len(ids),
		"codes", report.Summary.TotalCodes,
		"mismatches", report.Summary.Mismatches,
	)
	return &MergeResult{EstimateID: res.EstimateID, ReportID: res.ReportID, Report: report}, nil
}

// loadSources reads every source estimate concurrently. Order follows ids so
// the merged baseline is deterministic.
func (s *mergeService) loadSources(ctx context.Context, op string, projectID uuid.UUID, ids []uuid.UUID) ([]reconciliation.MergeSource, error) {
	sources := make([]reconciliation.MergeSource, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(mergeLoadConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			dbc := dbctx.Context{Ctx: gctx}
			est, err := s.repos.Estimate.GetByID(dbc, id)
			if err != nil {
				return fmt.Errorf("load estimate %s: %w", id, err)
			}
			if est == nil {
				return domainagg.NotFoundf(op, "estimate %s not found", id)
			}
			if est.ProjectID != projectID {
				return domainagg.Validationf(op, "estimate %s belongs to another project", id)
			}
			groups, err := s.repos.WbsGroup.GetByEstimateID(dbc, id)
			if err != nil {
				return fmt.Errorf("load groups of %s: %w", id, err)
			}
			catalog, err := s.repos.CatalogItem.GetByEstimateID(dbc, id)
			if err != nil {
				return fmt.Errorf("load catalog of %s: %w", id, err)
			}
			items, err := s.repos.EstimateItem.GetByEstimateID(dbc, id)
			if err != nil {
				return fmt.Errorf("load items of %s: %w", id, err)
			}
			sources[i] = reconciliation.MergeSource{Estimate: est, Groups: groups, Catalog: catalog, Items: items}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}

func (s *mergeService) GetReport(dbc dbctx.Context, id uuid.UUID) (*types.MergeReport, error) {
	const op = "Merge.GetReport"
	if id == uuid.Nil {
		return nil, domainagg.Validationf(op, "report id is required")
	}
	r, err := s.repos.MergeReport.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load merge report: %w", err)
	}
	if r == nil {
		return nil, domainagg.NotFoundf(op, "merge report %s not found", id)
	}
	return r, nil
}

func distinctIDs(in []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(in))
	out := make([]uuid.UUID, 0, len(in))
	for _, id := range in {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
