package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
)

var BaselineAggregateContract = Contract{
	Name:   "Estimates.BaselineAggregate",
	Writes: []string{"estimate", "wbs_group", "catalog_item", "estimate_item", "merge_report"},
	Lock:   LockEstimate,
	Notes:  "Replaces a baseline estimate's groups, catalog and line items wholesale in one transaction.",
}

// BaselineAggregate owns baseline estimate contents.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeRetryable, CodeInternal.
type BaselineAggregate interface {
	Aggregate

	// ReplaceContents upserts the estimate header by (project, name) and swaps its
	// groups/catalog/items for the given rows. Row ids must be pre-assigned;
	// EstimateID on rows is overwritten with the resolved header id.
	ReplaceContents(ctx context.Context, in ReplaceBaselineInput) (ReplaceBaselineResult, error)

	// CreateMerged inserts a new merged baseline together with its merge report.
	CreateMerged(ctx context.Context, in CreateMergedInput) (CreateMergedResult, error)
}

type ReplaceBaselineInput struct {
	ProjectID uuid.UUID
	Name      string
	Groups    []*estimates.WbsGroup
	Catalog   []*estimates.CatalogItem
	Items     []*estimates.EstimateItem
}

type ReplaceBaselineResult struct {
	EstimateID uuid.UUID
	Created    bool
	Groups     int
	Catalog    int
	Items      int
}

type CreateMergedInput struct {
	Estimate *estimates.Estimate
	Groups   []*estimates.WbsGroup
	Catalog  []*estimates.CatalogItem
	Items    []*estimates.EstimateItem
	Report   *estimates.MergeReport
}

type CreateMergedResult struct {
	EstimateID uuid.UUID
	ReportID   uuid.UUID
}
