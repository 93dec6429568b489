package estimates

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Alert is a typed reconciliation discrepancy. Reconciliation creates alerts;
// only an explicit resolution changes them afterwards.
type Alert struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"project_id"`
	EstimateID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"estimate_id"`
	OfferID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_alert_offer,priority:1" json:"offer_id"`
	OfferItemID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"offer_item_id"`
	EstimateItemID *uuid.UUID `gorm:"type:uuid" json:"estimate_item_id,omitempty"`
	CatalogItemID  *uuid.UUID `gorm:"type:uuid" json:"catalog_item_id,omitempty"`

	Type     AlertType   `gorm:"column:type;type:text;not null;index:idx_alert_offer,priority:2" json:"type"`
	Severity Severity    `gorm:"column:severity;type:text;not null" json:"severity"`
	Status   AlertStatus `gorm:"column:status;type:text;not null;default:'open'" json:"status"`
	Origin   Origin      `gorm:"column:origin;type:text;not null" json:"origin"`
	Source   OfferMode   `gorm:"column:source;type:text;not null" json:"source"`
	RowIndex int         `gorm:"column:row_index;not null;default:0" json:"row_index"`

	Actual   *float64 `gorm:"column:actual" json:"actual,omitempty"`
	Expected *float64 `gorm:"column:expected" json:"expected,omitempty"`
	Delta    *float64 `gorm:"column:delta" json:"delta,omitempty"`
	Message  string   `gorm:"column:message;type:text" json:"message"`

	// Details carries rule specific data, e.g. {"candidates": [...]}.
	Details datatypes.JSON `gorm:"column:details;type:jsonb" json:"details,omitempty"`

	ResolutionNote string     `gorm:"column:resolution_note;type:text" json:"resolution_note,omitempty"`
	ResolvedAt     *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Alert) TableName() string { return "alert" }
