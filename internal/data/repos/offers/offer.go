package offers

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

type OfferRepo interface {
	Create(dbc dbctx.Context, rows []*types.Offer) ([]*types.Offer, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Offer, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Offer, error)
	GetByRound(dbc dbctx.Context, estimateID uuid.UUID, company string, round int) (*types.Offer, error)
	ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Offer, error)
	ListByEstimate(dbc dbctx.Context, estimateID uuid.UUID) ([]*types.Offer, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type offerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOfferRepo(db *gorm.DB, baseLog *logger.Logger) OfferRepo {
	return &offerRepo{
		db:  db,
		log: baseLog.With("repo", "OfferRepo"),
	}
}

func (r *offerRepo) Create(dbc dbctx.Context, rows []*types.Offer) ([]*types.Offer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Offer{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row == nil {
			continue
		}
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.Company = strings.TrimSpace(row.Company)
		if row.RoundNumber < 1 {
			row.RoundNumber = 1
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		if row.UpdatedAt.IsZero() {
			row.UpdatedAt = now
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *offerRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Offer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Offer
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

func (r *offerRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Offer, error) {
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

func (r *offerRepo) GetByRound(dbc dbctx.Context, estimateID uuid.UUID, company string, round int) (*types.Offer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	company = strings.TrimSpace(company)
	if estimateID == uuid.Nil || company == "" {
		return nil, nil
	}
	if round < 1 {
		round = 1
	}
	var row types.Offer
	if err := transaction.WithContext(dbc.Ctx).
		Where("estimate_id = ? AND company = ? AND round_number = ?", estimateID, company, round).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *offerRepo) ListByProject(dbc dbctx.Context, projectID uuid.UUID) ([]*types.Offer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Offer
	if projectID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("project_id = ?", projectID).
		Order("company ASC, round_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *offerRepo) ListByEstimate(dbc dbctx.Context, estimateID uuid.UUID) ([]*types.Offer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Offer
	if estimateID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("estimate_id = ?", estimateID).
		Order("company ASC, round_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *offerRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Offer{}).
		Where("id = ?", id).
		Updates(updates).Error
}
