package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/tenderbridge-backend/internal/http/handlers"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Project  *httpH.ProjectHandler
	Estimate *httpH.EstimateHandler
	Offer    *httpH.OfferHandler
	Alert    *httpH.AlertHandler
	Export   *httpH.ExportHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, svc Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(db),
		Project:  httpH.NewProjectHandler(svc.Project),
		Estimate: httpH.NewEstimateHandler(svc.Baseline, svc.Merge),
		Offer:    httpH.NewOfferHandler(svc.Offer),
		Alert:    httpH.NewAlertHandler(svc.Alert),
		Export:   httpH.NewExportHandler(svc.Export),
	}
}
