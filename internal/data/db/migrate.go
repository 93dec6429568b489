package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&estimates.Project{},

		// Baselines
		&estimates.Estimate{},
		&estimates.WbsGroup{},
		&estimates.CatalogItem{},
		&estimates.EstimateItem{},
		&estimates.MergeReport{},

		// Offers + reconciliation output
		&estimates.Offer{},
		&estimates.OfferItem{},
		&estimates.Alert{},
	)
}
