package aggregates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/data/repos"
	domainagg "github.com/yungbote/tenderbridge-backend/internal/domain/aggregates"
	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
)

type BaselineAggregateDeps struct {
	Base BaseDeps

	Estimates    repos.EstimateRepo
	Groups       repos.WbsGroupRepo
	Catalog      repos.CatalogItemRepo
	Items        repos.EstimateItemRepo
	MergeReports repos.MergeReportRepo
}

type baselineAggregate struct {
	deps BaselineAggregateDeps
}

func NewBaselineAggregate(deps BaselineAggregateDeps) domainagg.BaselineAggregate {
	deps.Base = deps.Base.withDefaults()
	return &baselineAggregate{deps: deps}
}

func (a *baselineAggregate) Contract() domainagg.Contract {
	return domainagg.BaselineAggregateContract
}

func (a *baselineAggregate) configured() bool {
	return a.deps.Estimates != nil && a.deps.Groups != nil && a.deps.Catalog != nil && a.deps.Items != nil
}

func (a *baselineAggregate) ReplaceContents(ctx context.Context, in domainagg.ReplaceBaselineInput) (domainagg.ReplaceBaselineResult, error) {
	const op = "Estimates.Baseline.ReplaceContents"
	var out domainagg.ReplaceBaselineResult
	name := strings.TrimSpace(in.Name)
	if in.ProjectID == uuid.Nil {
		return out, domainagg.Validationf(op, "missing project_id")
	}
	if name == "" {
		return out, domainagg.Validationf(op, "missing estimate name")
	}
	if !a.configured() {
		return out, domainagg.NotConfigured(op, "baseline aggregate repos")
	}
	if err := checkCatalogLinks(in.Catalog, in.Items); err != nil {
		return out, MapError(op, err)
	}

	now := time.Now().UTC()
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		est, err := a.deps.Estimates.GetByProjectAndName(dbc, in.ProjectID, name)
		if err != nil {
			return err
		}
		created := est == nil
		if created {
			est = &types.Estimate{
				ID:        uuid.New(),
				ProjectID: in.ProjectID,
				Name:      name,
				Kind:      types.EstimateKindProject,
				Source:    types.EstimateSourceImport,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if _, err := a.deps.Estimates.Create(dbc, []*types.Estimate{est}); err != nil {
				return err
			}
		} else {
			if _, err := a.deps.Items.DeleteByEstimateID(dbc, est.ID); err != nil {
				return err
			}
			if _, err := a.deps.Catalog.DeleteByEstimateID(dbc, est.ID); err != nil {
				return err
			}
			if _, err := a.deps.Groups.DeleteByEstimateID(dbc, est.ID); err != nil {
				return err
			}
		}

		for _, g := range in.Groups {
			g.EstimateID = est.ID
			if g.CreatedAt.IsZero() {
				g.CreatedAt = now
			}
		}
		for _, c := range in.Catalog {
			c.EstimateID = est.ID
			if c.CreatedAt.IsZero() {
				c.CreatedAt = now
			}
		}
		for _, it := range in.Items {
			it.EstimateID = est.ID
			if it.CreatedAt.IsZero() {
				it.CreatedAt = now
			}
		}
		if _, err := a.deps.Groups.Create(dbc, in.Groups); err != nil {
			return err
		}
		if _, err := a.deps.Catalog.Create(dbc, in.Catalog); err != nil {
			return err
		}
		if _, err := a.deps.Items.Create(dbc, in.Items); err != nil {
			return err
		}
		if err := a.deps.Estimates.UpdateFields(dbc, est.ID, map[string]interface{}{
			"source":        types.EstimateSourceImport,
			"merged_from":   types.UUIDListJSON(nil),
			"group_count":   len(in.Groups),
			"catalog_count": len(in.Catalog),
			"item_count":    len(in.Items),
			"updated_at":    now,
		}); err != nil {
			return err
		}

		out = domainagg.ReplaceBaselineResult{
			EstimateID: est.ID,
			Created:    created,
			Groups:     len(in.Groups),
			Catalog:    len(in.Catalog),
			Items:      len(in.Items),
		}
		return nil
	})
	return out, err
}

func (a *baselineAggregate) CreateMerged(ctx context.Context, in domainagg.CreateMergedInput) (domainagg.CreateMergedResult, error) {
	const op = "Estimates.Baseline.CreateMerged"
	var out domainagg.CreateMergedResult
	if in.Estimate == nil || in.Estimate.ID == uuid.Nil || in.Estimate.ProjectID == uuid.Nil {
		return out, domainagg.Validationf(op, "merged estimate header with id and project_id is required")
	}
	if strings.TrimSpace(in.Estimate.Name) == "" {
		return out, domainagg.Validationf(op, "missing estimate name")
	}
	if in.Report == nil {
		return out, domainagg.Validationf(op, "missing merge report")
	}
	if !a.configured() || a.deps.MergeReports == nil {
		return out, domainagg.NotConfigured(op, "baseline aggregate repos")
	}
	if err := checkCatalogLinks(in.Catalog, in.Items); err != nil {
		return out, MapError(op, err)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		existing, err := a.deps.Estimates.GetByProjectAndName(dbc, in.Estimate.ProjectID, in.Estimate.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return ConflictError(fmt.Sprintf("estimate %q already exists in project", in.Estimate.Name))
		}
		if _, err := a.deps.Estimates.Create(dbc, []*types.Estimate{in.Estimate}); err != nil {
			return err
		}
		if _, err := a.deps.Groups.Create(dbc, in.Groups); err != nil {
			return err
		}
		if _, err := a.deps.Catalog.Create(dbc, in.Catalog); err != nil {
			return err
		}
		if _, err := a.deps.Items.Create(dbc, in.Items); err != nil {
			return err
		}
		in.Report.EstimateID = in.Estimate.ID
		in.Report.ProjectID = in.Estimate.ProjectID
		report, err := a.deps.MergeReports.Create(dbc, in.Report)
		if err != nil {
			return err
		}
		out = domainagg.CreateMergedResult{EstimateID: in.Estimate.ID, ReportID: report.ID}
		return nil
	})
	return out, err
}

// checkCatalogLinks enforces that every line item links a catalog row of the same write.
func checkCatalogLinks(catalog []*types.CatalogItem, items []*types.EstimateItem) error {
	ids := make(map[uuid.UUID]struct{}, len(catalog))
	for _, c := range catalog {
		if c == nil || c.ID == uuid.Nil {
			return ValidationError("catalog rows must carry pre-assigned ids")
		}
		ids[c.ID] = struct{}{}
	}
	for _, it := range items {
		if it == nil || it.ID == uuid.Nil {
			return ValidationError("line items must carry pre-assigned ids")
		}
		if _, ok := ids[it.CatalogItemID]; !ok {
			return InvariantError(fmt.Sprintf("line item %s links unknown catalog item %s", it.ID, it.CatalogItemID))
		}
	}
	return nil
}
