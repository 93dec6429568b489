package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/tenderbridge-backend/internal/data/repos"
	domainagg "github.com/yungbote/tenderbridge-backend/internal/domain/aggregates"
	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/observability"
	"github.com/yungbote/tenderbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/platform/gcp"
	"github.com/yungbote/tenderbridge-backend/internal/platform/locks"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

type BaselineImportResult struct {
	EstimateID   uuid.UUID `json:"estimate_id"`
	Created      bool      `json:"created"`
	Groups       int       `json:"groups"`
	CatalogItems int       `json:"catalog_items"`
	Items        int       `json:"items"`
	Warnings     []string  `json:"warnings"`
}

type BaselineService interface {
	Import(ctx context.Context, projectID uuid.UUID, payload *types.ImportPayload) (*BaselineImportResult, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.Estimate, error)
	List(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Estimate, error)
}

type baselineService struct {
	log     *logger.Logger
	repos   repos.Set
	agg     domainagg.BaselineAggregate
	locker  locks.EstimateLocker
	archive gcp.PayloadArchive
	now     func() time.Time
}

func NewBaselineService(log *logger.Logger, set repos.Set, agg domainagg.BaselineAggregate, locker locks.EstimateLocker, archive gcp.PayloadArchive) BaselineService {
	if archive == nil {
		archive = gcp.NewNoopArchive()
	}
	return &baselineService{
		log:     log.With("service", "BaselineService"),
		repos:   set,
		agg:     agg,
		locker:  locker,
		archive: archive,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *baselineService) Import(ctx context.Context, projectID uuid.UUID, payload *types.ImportPayload) (_ *BaselineImportResult, err error) {
	const op = "Baseline.Import"
	ctx, span := observability.StartSpan(ctx, "baseline.import", attribute.String("project_id", projectID.String()))
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		observability.Current().IncBaselineImport(status)
		span.End()
	}()

	if s.agg == nil {
		return nil, domainagg.NotConfigured(op, "baseline aggregate")
	}
	if err := payload.Validate(); err != nil {
		return nil, domainagg.Validationf(op, "%s", err.Error())
	}
	if payload.Estimate.Mode != types.EstimateKindProject {
		return nil, domainagg.Validationf(op, "estimate.mode must be %q, got %q", types.EstimateKindProject, payload.Estimate.Mode)
	}
	name := strings.TrimSpace(payload.Estimate.Name)
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := requireProject(dbc, s.repos.Project, op, projectID); err != nil {
		return nil, err
	}

	now := s.now()
	rows := buildBaselineRows(payload, uuid.New, now)

	lockID, err := s.lockTarget(dbc, projectID, name)
	if err != nil {
		return nil, err
	}
	release, err := acquireEstimate(ctx, s.locker, op, lockID)
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := s.agg.ReplaceContents(ctx, domainagg.ReplaceBaselineInput{
		ProjectID: projectID,
		Name:      name,
		Groups:    rows.Groups,
		Catalog:   rows.Catalog,
		Items:     rows.Items,
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("estimate_id", res.EstimateID.String()))

	archivePayload(ctx, s.log, s.archive, gcp.PayloadKindBaseline, projectID, payload)
	observability.ReportDataQualityIssues(ctx, s.log, "baseline_import", rows.Warnings, map[string]any{
		"project_id":  projectID.String(),
		"estimate_id": res.EstimateID.String(),
	})

	fields := append([]interface{}{
		"project_id", projectID,
		"estimate_id", res.EstimateID,
		"created", res.Created,
		"groups", res.Groups,
		"catalog", res.Catalog,
		"items", res.Items,
		"warnings", len(rows.Warnings),
	}, ctxutil.LogFields(ctx)...)
	s.log.Info("Baseline imported", fields...)

	return &BaselineImportResult{
		EstimateID:   res.EstimateID,
		Created:      res.Created,
		Groups:       res.Groups,
		CatalogItems: res.Catalog,
		Items:        res.Items,
		Warnings:     rows.Warnings,
	}, nil
}

// lockTarget is the existing header id, or a stable id derived from
// (project, name) while the header does not exist yet.
func (s *baselineService) lockTarget(dbc dbctx.Context, projectID uuid.UUID, name string) (uuid.UUID, error) {
	existing, err := s.repos.Estimate.GetByProjectAndName(dbc, projectID, name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("lookup estimate: %w", err)
	}
	if existing != nil {
		return existing.ID, nil
	}
	return uuid.NewSHA1(projectID, []byte(name)), nil
}

func (s *baselineService) Get(dbc dbctx.Context, id uuid.UUID) (*types.Estimate, error) {
	const op = "Baseline.Get"
	if id == uuid.Nil {
		return nil, domainagg.Validationf(op, "estimate id is required")
	}
	est, err := s.repos.Estimate.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load estimate: %w", err)
	}
	if est == nil {
		return nil, domainagg.NotFoundf(op, "estimate %s not found", id)
	}
	return est, nil
}

func (s *baselineService) List(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Estimate, error) {
	if _, err := requireProject(dbc, s.repos.Project, "Baseline.List", projectID); err != nil {
		return nil, err
	}
	out, err := s.repos.Estimate.ListByProject(dbc, projectID)
	if err != nil {
		return nil, fmt.Errorf("list estimates: %w", err)
	}
	return out, nil
}

func acquireEstimate(ctx context.Context, locker locks.EstimateLocker, op string, estimateID uuid.UUID) (func(), error) {
	if locker == nil {
		return func() {}, nil
	}
	release, err := locker.Acquire(ctx, estimateID)
	if err != nil {
		if errors.Is(err, locks.ErrLocked) {
			return nil, domainagg.NewError(domainagg.CodeRetryable, op, err.Error(), err)
		}
		return nil, fmt.Errorf("acquire estimate lock: %w", err)
	}
	return release, nil
}

func archivePayload(ctx context.Context, log *logger.Logger, archive gcp.PayloadArchive, kind gcp.PayloadKind, projectID uuid.UUID, payload *types.ImportPayload) {
	if archive == nil || !archive.Enabled() || payload == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Warn("Payload archive encode failed", "kind", kind, "error", err)
		return
	}
	key, err := archive.Archive(ctx, kind, projectID, body)
	if err != nil {
		log.Warn("Payload archive failed", "kind", kind, "project_id", projectID, "error", err)
		return
	}
	log.Debug("Payload archived", "kind", kind, "object", key)
}
