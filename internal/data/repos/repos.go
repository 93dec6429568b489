package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/tenderbridge-backend/internal/data/repos/baselines"
	"github.com/yungbote/tenderbridge-backend/internal/data/repos/offers"
	"github.com/yungbote/tenderbridge-backend/internal/data/repos/projects"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

type ProjectRepo = projects.ProjectRepo

type EstimateRepo = baselines.EstimateRepo
type WbsGroupRepo = baselines.WbsGroupRepo
type CatalogItemRepo = baselines.CatalogItemRepo
type EstimateItemRepo = baselines.EstimateItemRepo
type MergeReportRepo = baselines.MergeReportRepo

type OfferRepo = offers.OfferRepo
type OfferItemRepo = offers.OfferItemRepo
type AlertRepo = offers.AlertRepo
type AlertFilter = offers.AlertFilter
type AlertCount = offers.AlertCount

// Set bundles every table repo on one connection.
type Set struct {
	Project      ProjectRepo
	Estimate     EstimateRepo
	WbsGroup     WbsGroupRepo
	CatalogItem  CatalogItemRepo
	EstimateItem EstimateItemRepo
	MergeReport  MergeReportRepo
	Offer        OfferRepo
	OfferItem    OfferItemRepo
	Alert        AlertRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		Project:      projects.NewProjectRepo(db, log),
		Estimate:     baselines.NewEstimateRepo(db, log),
		WbsGroup:     baselines.NewWbsGroupRepo(db, log),
		CatalogItem:  baselines.NewCatalogItemRepo(db, log),
		EstimateItem: baselines.NewEstimateItemRepo(db, log),
		MergeReport:  baselines.NewMergeReportRepo(db, log),
		Offer:        offers.NewOfferRepo(db, log),
		OfferItem:    offers.NewOfferItemRepo(db, log),
		Alert:        offers.NewAlertRepo(db, log),
	}
}
