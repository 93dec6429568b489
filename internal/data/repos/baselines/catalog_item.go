package baselines

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

type CatalogItemRepo interface {
	Create(dbc dbctx.Context, rows []*types.CatalogItem) ([]*types.CatalogItem, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.CatalogItem, error)
	GetByEstimateID(dbc dbctx.Context, estimateID uuid.UUID) ([]*types.CatalogItem, error)
	DeleteByEstimateID(dbc dbctx.Context, estimateID uuid.UUID) (int64, error)
}

type catalogItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCatalogItemRepo(db *gorm.DB, baseLog *logger.Logger) CatalogItemRepo {
	return &catalogItemRepo{db: db, log: baseLog.With("repo", "CatalogItemRepo")}
}

func (r *catalogItemRepo) Create(dbc dbctx.Context, rows []*types.CatalogItem) ([]*types.CatalogItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.CatalogItem{}, nil
	}
	for _, row := range rows {
		if row != nil && len(row.GroupIDs) == 0 {
			row.GroupIDs = types.UUIDListJSON(nil)
		}
	}
	if err := transaction.WithContext(dbc.Ctx).CreateInBatches(&rows, batchSize).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *catalogItemRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.CatalogItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.CatalogItem
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogItemRepo) GetByEstimateID(dbc dbctx.Context, estimateID uuid.UUID) ([]*types.CatalogItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.CatalogItem
	if estimateID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("estimate_id = ?", estimateID).
		Order("code ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *catalogItemRepo) DeleteByEstimateID(dbc dbctx.Context, estimateID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if estimateID == uuid.Nil {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).Where("estimate_id = ?", estimateID).Delete(&types.CatalogItem{})
	return res.RowsAffected, res.Error
}
