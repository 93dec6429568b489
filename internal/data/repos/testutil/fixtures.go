package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
)

func SeedProject(tb testing.TB, ctx context.Context, tx *gorm.DB, code string) *types.Project {
	tb.Helper()
	now := time.Now().UTC()
	p := &types.Project{
		ID:        uuid.New(),
		Code:      code,
		Name:      "project " + code,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	return p
}

func SeedEstimate(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID uuid.UUID, name string) *types.Estimate {
	tb.Helper()
	now := time.Now().UTC()
	e := &types.Estimate{
		ID:         uuid.New(),
		ProjectID:  projectID,
		Name:       name,
		Kind:       types.EstimateKindProject,
		Source:     types.EstimateSourceImport,
		MergedFrom: datatypes.JSON([]byte("[]")),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed estimate: %v", err)
	}
	return e
}

func SeedCatalogItem(tb testing.TB, ctx context.Context, tx *gorm.DB, estimateID uuid.UUID, code, desc string, price float64) *types.CatalogItem {
	tb.Helper()
	c := &types.CatalogItem{
		ID:          uuid.New(),
		EstimateID:  estimateID,
		Code:        code,
		Description: desc,
		Unit:        "m",
		UnitPrice:   price,
		GroupIDs:    datatypes.JSON([]byte("[]")),
		CreatedAt:   time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed catalog item: %v", err)
	}
	return c
}

func SeedEstimateItem(tb testing.TB, ctx context.Context, tx *gorm.DB, estimateID uuid.UUID, cat *types.CatalogItem, progressive int, qty float64) *types.EstimateItem {
	tb.Helper()
	price := cat.UnitPrice
	it := &types.EstimateItem{
		ID:            uuid.New(),
		EstimateID:    estimateID,
		CatalogItemID: cat.ID,
		Progressive:   &progressive,
		Code:          cat.Code,
		Description:   cat.Description,
		Unit:          cat.Unit,
		Quantity:      qty,
		UnitPrice:     &price,
		Amount:        qty * price,
		CreatedAt:     time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed estimate item: %v", err)
	}
	return it
}

func SeedOffer(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID, estimateID uuid.UUID, company string, round int, mode types.OfferMode) *types.Offer {
	tb.Helper()
	now := time.Now().UTC()
	o := &types.Offer{
		ID:          uuid.New(),
		ProjectID:   projectID,
		EstimateID:  estimateID,
		Company:     company,
		RoundNumber: round,
		Name:        company,
		Mode:        mode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.WithContext(ctx).Create(o).Error; err != nil {
		tb.Fatalf("seed offer: %v", err)
	}
	return o
}

func SeedOfferItem(tb testing.TB, ctx context.Context, tx *gorm.DB, offerID uuid.UUID, row int, candidates []uuid.UUID) *types.OfferItem {
	tb.Helper()
	now := time.Now().UTC()
	status := types.ResolutionResolved
	if len(candidates) > 0 {
		status = types.ResolutionPending
	}
	it := &types.OfferItem{
		ID:               uuid.New(),
		OfferID:          offerID,
		RowIndex:         row,
		Quantity:         1,
		Origin:           types.OriginAddendum,
		Source:           types.OfferModeAggregated,
		ResolutionStatus: status,
		Candidates:       types.UUIDListJSON(candidates),
		Raw:              datatypes.JSON([]byte("{}")),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed offer item: %v", err)
	}
	return it
}

func SeedAlert(tb testing.TB, ctx context.Context, tx *gorm.DB, o *types.Offer, itemID uuid.UUID, typ types.AlertType, sev types.Severity) *types.Alert {
	tb.Helper()
	now := time.Now().UTC()
	a := &types.Alert{
		ID:          uuid.New(),
		ProjectID:   o.ProjectID,
		EstimateID:  o.EstimateID,
		OfferID:     o.ID,
		OfferItemID: itemID,
		Type:        typ,
		Severity:    sev,
		Status:      types.AlertStatusOpen,
		Origin:      types.OriginAddendum,
		Source:      o.Mode,
		Message:     string(typ),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed alert: %v", err)
	}
	return a
}
