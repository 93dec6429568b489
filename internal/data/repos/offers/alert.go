package offers

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

// AlertFilter narrows ListByOffer. Empty slices match everything.
type AlertFilter struct {
	Types      []types.AlertType
	Statuses   []types.AlertStatus
	Severities []types.Severity
	Limit      int
	Offset     int
}

type AlertCount struct {
	Type   types.AlertType   `json:"type"`
	Status types.AlertStatus `json:"status"`
	Count  int64             `json:"count"`
}

type AlertRepo interface {
	Create(dbc dbctx.Context, rows []*types.Alert) ([]*types.Alert, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Alert, error)
	ListByOffer(dbc dbctx.Context, offerID uuid.UUID, filter AlertFilter) ([]*types.Alert, error)
	CountByOffer(dbc dbctx.Context, offerID uuid.UUID) ([]AlertCount, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteByOfferID(dbc dbctx.Context, offerID uuid.UUID) (int64, error)
}

type alertRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAlertRepo(db *gorm.DB, baseLog *logger.Logger) AlertRepo {
	return &alertRepo{db: db, log: baseLog.With("repo", "AlertRepo")}
}

func (r *alertRepo) Create(dbc dbctx.Context, rows []*types.Alert) ([]*types.Alert, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Alert{}, nil
	}
	for _, row := range rows {
		if row != nil && row.Status == "" {
			row.Status = types.AlertStatusOpen
		}
	}
	if err := transaction.WithContext(dbc.Ctx).CreateInBatches(&rows, batchSize).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *alertRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Alert, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Alert
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

func (r *alertRepo) ListByOffer(dbc dbctx.Context, offerID uuid.UUID, filter AlertFilter) ([]*types.Alert, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Alert
	if offerID == uuid.Nil {
		return out, nil
	}
	q := transaction.WithContext(dbc.Ctx).Where("offer_id = ?", offerID)
	if len(filter.Types) > 0 {
		q = q.Where("type IN ?", filter.Types)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if len(filter.Severities) > 0 {
		q = q.Where("severity IN ?", filter.Severities)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if err := q.Order("row_index ASC, created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *alertRepo) CountByOffer(dbc dbctx.Context, offerID uuid.UUID) ([]AlertCount, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []AlertCount
	if offerID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Alert{}).
		Select("type, status, COUNT(*) AS count").
		Where("offer_id = ?", offerID).
		Group("type, status").
		Order("type ASC, status ASC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *alertRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Alert{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *alertRepo) DeleteByOfferID(dbc dbctx.Context, offerID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if offerID == uuid.Nil {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).Where("offer_id = ?", offerID).Delete(&types.Alert{})
	return res.RowsAffected, res.Error
}
