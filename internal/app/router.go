package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/tenderbridge-backend/internal/http"
	"github.com/yungbote/tenderbridge-backend/internal/observability"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:         log,
		ServiceName: cfg.ServiceName,
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     metrics,
		// A dedicated METRICS_ADDR listener takes /metrics off the API port.
		ServeMetrics: cfg.MetricsAddr == "",

		HealthHandler:   handlers.Health,
		ProjectHandler:  handlers.Project,
		EstimateHandler: handlers.Estimate,
		OfferHandler:    handlers.Offer,
		AlertHandler:    handlers.Alert,
		ExportHandler:   handlers.Export,
	})
}
