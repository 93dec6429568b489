package baselines

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

const batchSize = 500

type EstimateRepo interface {
	Create(dbc dbctx.Context, rows []*types.Estimate) ([]*types.Estimate, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Estimate, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Estimate, error)
	GetByProjectAndName(dbc dbctx.Context, projectID uuid.UUID, name string) (*types.Estimate, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Estimate, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type estimateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEstimateRepo(db *gorm.DB, baseLog *logger.Logger) EstimateRepo {
	return &estimateRepo{
		db:  db,
		log: baseLog.With("repo", "EstimateRepo"),
	}
}

func (r *estimateRepo) Create(dbc dbctx.Context, rows []*types.Estimate) ([]*types.Estimate, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Estimate{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row == nil {
			continue
		}
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		if row.UpdatedAt.IsZero() {
			row.UpdatedAt = now
		}
		if len(row.MergedFrom) == 0 {
			row.MergedFrom = types.UUIDListJSON(nil)
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *estimateRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Estimate, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Estimate
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

func (r *estimateRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Estimate, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *estimateRepo) GetByProjectAndName(dbc dbctx.Context, projectID uuid.UUID, name string) (*types.Estimate, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	name = strings.TrimSpace(name)
	if projectID == uuid.Nil || name == "" {
		return nil, nil
	}
	var row types.Estimate
	if err := transaction.WithContext(dbc.Ctx).
		Where("project_id = ? AND name = ?", projectID, name).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *estimateRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Estimate, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Estimate
	if projectID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC, name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *estimateRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Estimate{}).
		Where("id = ?", id).
		Updates(updates).Error
}
