package baselines

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

type WbsGroupRepo interface {
	Create(dbc dbctx.Context, rows []*types.WbsGroup) ([]*types.WbsGroup, error)
	GetByEstimateID(dbc dbctx.Context, estimateID uuid.UUID) ([]*types.WbsGroup, error)
	DeleteByEstimateID(dbc dbctx.Context, estimateID uuid.UUID) (int64, error)
}

type wbsGroupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWbsGroupRepo(db *gorm.DB, baseLog *logger.Logger) WbsGroupRepo {
	return &wbsGroupRepo{db: db, log: baseLog.With("repo", "WbsGroupRepo")}
}

func (r *wbsGroupRepo) Create(dbc dbctx.Context, rows []*types.WbsGroup) ([]*types.WbsGroup, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.WbsGroup{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).CreateInBatches(&rows, batchSize).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *wbsGroupRepo) GetByEstimateID(dbc dbctx.Context, estimateID uuid.UUID) ([]*types.WbsGroup, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.WbsGroup
	if estimateID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("estimate_id = ?", estimateID).
		Order("level ASC, code ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *wbsGroupRepo) DeleteByEstimateID(dbc dbctx.Context, estimateID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if estimateID == uuid.Nil {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).Where("estimate_id = ?", estimateID).Delete(&types.WbsGroup{})
	return res.RowsAffected, res.Error
}
