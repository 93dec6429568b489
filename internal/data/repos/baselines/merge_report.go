package baselines

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

type MergeReportRepo interface {
	Create(dbc dbctx.Context, row *types.MergeReport) (*types.MergeReport, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MergeReport, error)
	GetByEstimateID(dbc dbctx.Context, estimateID uuid.UUID) (*types.MergeReport, error)
}

type mergeReportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMergeReportRepo(db *gorm.DB, baseLog *logger.Logger) MergeReportRepo {
	return &mergeReportRepo{db: db, log: baseLog.With("repo", "MergeReportRepo")}
}

func (r *mergeReportRepo) Create(dbc dbctx.Context, row *types.MergeReport) (*types.MergeReport, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := transaction.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *mergeReportRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MergeReport, error) {
	return r.first(dbc, "id = ?", id)
}

func (r *mergeReportRepo) GetByEstimateID(dbc dbctx.Context, estimateID uuid.UUID) (*types.MergeReport, error) {
	return r.first(dbc, "estimate_id = ?", estimateID)
}

func (r *mergeReportRepo) first(dbc dbctx.Context, where string, id uuid.UUID) (*types.MergeReport, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.MergeReport
	if err := transaction.WithContext(dbc.Ctx).
		Where(where, id).
		Order("created_at DESC").
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}
