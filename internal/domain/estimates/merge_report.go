package estimates

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MergeReport persists the cross-source mismatch report produced when
// several baselines are merged into a new one.
type MergeReport struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	EstimateID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"estimate_id"`
	SourceEstimateIDs datatypes.JSON `gorm:"column:source_estimate_ids;type:jsonb" json:"source_estimate_ids"`
	Report            datatypes.JSON `gorm:"column:report;type:jsonb" json:"report"`
	CreatedAt         time.Time      `gorm:"not null" json:"created_at"`
}

func (MergeReport) TableName() string { return "merge_report" }
