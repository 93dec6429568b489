package offers

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

type OfferItemRepo interface {
	Create(dbc dbctx.Context, rows []*types.OfferItem) ([]*types.OfferItem, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.OfferItem, error)
	GetByOfferID(dbc dbctx.Context, offerID uuid.UUID) ([]*types.OfferItem, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteByOfferID(dbc dbctx.Context, offerID uuid.UUID) (int64, error)
}

type offerItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOfferItemRepo(db *gorm.DB, baseLog *logger.Logger) OfferItemRepo {
	return &offerItemRepo{db: db, log: baseLog.With("repo", "OfferItemRepo")}
}

func (r *offerItemRepo) Create(dbc dbctx.Context, rows []*types.OfferItem) ([]*types.OfferItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.OfferItem{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).CreateInBatches(&rows, batchSize).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *offerItemRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.OfferItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.OfferItem
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *offerItemRepo) GetByOfferID(dbc dbctx.Context, offerID uuid.UUID) ([]*types.OfferItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.OfferItem
	if offerID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("offer_id = ?", offerID).
		Order("row_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *offerItemRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.OfferItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *offerItemRepo) DeleteByOfferID(dbc dbctx.Context, offerID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if offerID == uuid.Nil {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).Where("offer_id = ?", offerID).Delete(&types.OfferItem{})
	return res.RowsAffected, res.Error
}
