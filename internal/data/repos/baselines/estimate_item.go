package baselines

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

type EstimateItemRepo interface {
	Create(dbc dbctx.Context, rows []*types.EstimateItem) ([]*types.EstimateItem, error)
	GetByEstimateID(dbc dbctx.Context, estimateID uuid.UUID) ([]*types.EstimateItem, error)
	CountByCatalogItemID(dbc dbctx.Context, catalogItemID uuid.UUID) (int64, error)
	DeleteByEstimateID(dbc dbctx.Context, estimateID uuid.UUID) (int64, error)
}

type estimateItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEstimateItemRepo(db *gorm.DB, baseLog *logger.Logger) EstimateItemRepo {
	return &estimateItemRepo{db: db, log: baseLog.With("repo", "EstimateItemRepo")}
}

func (r *estimateItemRepo) Create(dbc dbctx.Context, rows []*types.EstimateItem) ([]*types.EstimateItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.EstimateItem{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).CreateInBatches(&rows, batchSize).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByEstimateID returns line items ordered by progressive, unnumbered rows last.
func (r *estimateItemRepo) GetByEstimateID(dbc dbctx.Context, estimateID uuid.UUID) ([]*types.EstimateItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.EstimateItem
	if estimateID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("estimate_id = ?", estimateID).
		Order("CASE WHEN progressive IS NULL THEN 1 ELSE 0 END, progressive ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *estimateItemRepo) CountByCatalogItemID(dbc dbctx.Context, catalogItemID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if catalogItemID == uuid.Nil {
		return 0, nil
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.EstimateItem{}).
		Where("catalog_item_id = ?", catalogItemID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *estimateItemRepo) DeleteByEstimateID(dbc dbctx.Context, estimateID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if estimateID == uuid.Nil {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).Where("estimate_id = ?", estimateID).Delete(&types.EstimateItem{})
	return res.RowsAffected, res.Error
}
