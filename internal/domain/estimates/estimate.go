package estimates

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Estimate is a baseline ("project") estimate. Its groups, catalog and
// line items are replaced wholesale on every re-import.
type Estimate struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_estimate_project_name,priority:1" json:"project_id"`
	Name      string         `gorm:"column:name;type:text;not null;uniqueIndex:idx_estimate_project_name,priority:2" json:"name"`
	Kind      EstimateKind   `gorm:"column:kind;type:text;not null" json:"kind"`
	Source    EstimateSource `gorm:"column:source;type:text;not null" json:"source"`

	// MergedFrom holds the source estimate ids of a merged baseline.
	MergedFrom datatypes.JSON `gorm:"column:merged_from;type:jsonb" json:"merged_from,omitempty"`

	GroupCount   int `gorm:"column:group_count;not null;default:0" json:"group_count"`
	CatalogCount int `gorm:"column:catalog_count;not null;default:0" json:"catalog_count"`
	ItemCount    int `gorm:"column:item_count;not null;default:0" json:"item_count"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Estimate) TableName() string { return "estimate" }

// WbsGroup is a node of the work breakdown structure.
type WbsGroup struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EstimateID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"estimate_id"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	ExternalID  string     `gorm:"column:external_id;type:text" json:"external_id,omitempty"`
	Code        string     `gorm:"column:code;type:text" json:"code"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	Level       int        `gorm:"column:level;not null;default:0" json:"level"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (WbsGroup) TableName() string { return "wbs_group" }

type CatalogItem struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EstimateID      uuid.UUID `gorm:"type:uuid;not null;index" json:"estimate_id"`
	ExternalID      string    `gorm:"column:external_id;type:text" json:"external_id,omitempty"`
	Code            string    `gorm:"column:code;type:text;index" json:"code"`
	Description     string    `gorm:"column:description;type:text" json:"description"`
	LongDescription string    `gorm:"column:long_description;type:text" json:"long_description,omitempty"`
	Unit            string    `gorm:"column:unit;type:text" json:"unit"`
	UnitPrice       float64   `gorm:"column:unit_price;not null;default:0" json:"unit_price"`

	// GroupIDs is a JSON array of WbsGroup ids.
	GroupIDs datatypes.JSON `gorm:"column:group_ids;type:jsonb" json:"group_ids,omitempty"`

	SourceEstimateID *uuid.UUID `gorm:"type:uuid" json:"source_estimate_id,omitempty"`
	SourceItemID     *uuid.UUID `gorm:"type:uuid" json:"source_item_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (CatalogItem) TableName() string { return "catalog_item" }

// EstimateItem is a baseline line item. Every row links exactly one CatalogItem.
type EstimateItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EstimateID    uuid.UUID `gorm:"type:uuid;not null;index:idx_estimate_item_progressive,priority:1" json:"estimate_id"`
	CatalogItemID uuid.UUID `gorm:"type:uuid;not null;index" json:"catalog_item_id"`
	Progressive   *int      `gorm:"column:progressive;index:idx_estimate_item_progressive,priority:2" json:"progressive,omitempty"`
	ExternalID    string    `gorm:"column:external_id;type:text" json:"external_id,omitempty"`

	Code        string   `gorm:"column:code;type:text" json:"code"`
	Description string   `gorm:"column:description;type:text" json:"description"`
	Unit        string   `gorm:"column:unit;type:text" json:"unit"`
	Quantity    float64  `gorm:"column:quantity;not null;default:0" json:"quantity"`
	UnitPrice   *float64 `gorm:"column:unit_price" json:"unit_price,omitempty"`
	Amount      float64  `gorm:"column:amount;not null;default:0" json:"amount"`

	SourceEstimateID *uuid.UUID `gorm:"type:uuid" json:"source_estimate_id,omitempty"`
	SourceItemID     *uuid.UUID `gorm:"type:uuid" json:"source_item_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (EstimateItem) TableName() string { return "estimate_item" }
