package estimates

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Offer is a bidder's priced response to one baseline estimate in one round.
type Offer struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	EstimateID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_offer_round,priority:1" json:"estimate_id"`
	Company     string    `gorm:"column:company;type:text;not null;uniqueIndex:idx_offer_round,priority:2" json:"company"`
	RoundNumber int       `gorm:"column:round_number;not null;default:1;uniqueIndex:idx_offer_round,priority:3" json:"round_number"`
	Name        string    `gorm:"column:name;type:text" json:"name"`
	Mode        OfferMode `gorm:"column:mode;type:text;not null" json:"mode"`

	ItemCount  int        `gorm:"column:item_count;not null;default:0" json:"item_count"`
	AlertCount int        `gorm:"column:alert_count;not null;default:0" json:"alert_count"`
	LastRunAt  *time.Time `gorm:"column:last_run_at" json:"last_run_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Offer) TableName() string { return "offer" }

// OfferItem is one imported offer row together with its link outcome.
// At most one of EstimateItemID (detailed) or CatalogItemID (aggregated)
// is set, and only when the row is resolved.
type OfferItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OfferID     uuid.UUID `gorm:"type:uuid;not null;index:idx_offer_item_row,priority:1" json:"offer_id"`
	RowIndex    int       `gorm:"column:row_index;not null;index:idx_offer_item_row,priority:2" json:"row_index"`
	Progressive *int      `gorm:"column:progressive" json:"progressive,omitempty"`

	Code            string   `gorm:"column:code;type:text" json:"code"`
	Description     string   `gorm:"column:description;type:text" json:"description"`
	LongDescription string   `gorm:"column:long_description;type:text" json:"long_description,omitempty"`
	Unit            string   `gorm:"column:unit;type:text" json:"unit"`
	Quantity        float64  `gorm:"column:quantity;not null;default:0" json:"quantity"`
	UnitPrice       *float64 `gorm:"column:unit_price" json:"unit_price,omitempty"`
	Amount          float64  `gorm:"column:amount;not null;default:0" json:"amount"`

	EstimateItemID *uuid.UUID `gorm:"type:uuid;index" json:"estimate_item_id,omitempty"`
	CatalogItemID  *uuid.UUID `gorm:"type:uuid;index" json:"catalog_item_id,omitempty"`

	Origin           Origin           `gorm:"column:origin;type:text;not null" json:"origin"`
	Source           OfferMode        `gorm:"column:source;type:text;not null" json:"source"`
	ResolutionStatus ResolutionStatus `gorm:"column:resolution_status;type:text;not null" json:"resolution_status"`
	MatchedBy        string           `gorm:"column:matched_by;type:text" json:"matched_by,omitempty"`

	// Candidates is a JSON array of catalog item ids awaiting a manual pick.
	Candidates datatypes.JSON `gorm:"column:candidates;type:jsonb" json:"candidates,omitempty"`

	// Raw keeps the imported row as received so a rerun can rebuild it.
	Raw datatypes.JSON `gorm:"column:raw;type:jsonb" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (OfferItem) TableName() string { return "offer_item" }
