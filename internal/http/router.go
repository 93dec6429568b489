package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/tenderbridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/tenderbridge-backend/internal/http/middleware"
	"github.com/yungbote/tenderbridge-backend/internal/observability"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	Metrics *observability.Metrics
	// ServeMetrics mounts GET /metrics on this router.
	ServeMetrics bool

	HealthHandler   *httpH.HealthHandler
	ProjectHandler  *httpH.ProjectHandler
	EstimateHandler *httpH.EstimateHandler
	OfferHandler    *httpH.OfferHandler
	AlertHandler    *httpH.AlertHandler
	ExportHandler   *httpH.ExportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "tenderbridge"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil && cfg.ServeMetrics {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Projects
		if cfg.ProjectHandler != nil {
			api.POST("/projects", cfg.ProjectHandler.CreateProject)
			api.GET("/projects", cfg.ProjectHandler.ListProjects)
			api.GET("/projects/:id", cfg.ProjectHandler.GetProject)
		}

		// Baselines
		if cfg.EstimateHandler != nil {
			api.POST("/projects/:id/estimates/import", cfg.EstimateHandler.ImportBaseline)
			api.GET("/projects/:id/estimates", cfg.EstimateHandler.ListEstimates)
			api.POST("/projects/:id/estimates/merge", cfg.EstimateHandler.MergeEstimates)
		}

		// Offers
		if cfg.OfferHandler != nil {
			api.POST("/projects/:id/offers/import", cfg.OfferHandler.ImportOffer)
			api.GET("/projects/:id/offers", cfg.OfferHandler.ListOffers)
			api.GET("/offers/:id", cfg.OfferHandler.GetOffer)
			api.GET("/offers/:id/items", cfg.OfferHandler.ListItems)
			api.POST("/offers/:id/rerun", cfg.OfferHandler.Rerun)
		}

		// Alerts
		if cfg.AlertHandler != nil {
			api.GET("/offers/:id/alerts", cfg.AlertHandler.ListOfferAlerts)
			api.GET("/alerts/:id", cfg.AlertHandler.GetAlert)
			api.POST("/alerts/:id/resolve", cfg.AlertHandler.ResolveAlert)
		}

		// Exports
		if cfg.ExportHandler != nil {
			api.GET("/offers/:id/alerts/export.xlsx", cfg.ExportHandler.OfferAlerts)
			api.GET("/merge-reports/:id/export.xlsx", cfg.ExportHandler.MergeReport)
		}
	}

	return r
}
