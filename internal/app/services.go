package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/tenderbridge-backend/internal/data/aggregates"
	"github.com/yungbote/tenderbridge-backend/internal/data/repos"
	domainagg "github.com/yungbote/tenderbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/tenderbridge-backend/internal/observability"
	"github.com/yungbote/tenderbridge-backend/internal/platform/gcp"
	"github.com/yungbote/tenderbridge-backend/internal/platform/locks"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
	"github.com/yungbote/tenderbridge-backend/internal/services"
)

type Aggregates struct {
	Baseline domainagg.BaselineAggregate
	Offer    domainagg.OfferAggregate
	Alert    domainagg.AlertAggregate
}

type Services struct {
	Project  services.ProjectService
	Baseline services.BaselineService
	Offer    services.OfferService
	Merge    services.MergeService
	Alert    services.AlertService
	Export   services.ExportService
}

// Core is everything below the transport layer. The API server and the
// operator CLI both build one.
type Core struct {
	Repos      repos.Set
	Aggregates Aggregates
	Services   Services
}

type CoreDeps struct {
	DB      *gorm.DB
	Log     *logger.Logger
	Metrics *observability.Metrics
	Locker  locks.EstimateLocker
	Archive gcp.PayloadArchive
	Retry   aggregates.RetryPolicy
}

func NewCore(deps CoreDeps) Core {
	set := wireRepos(deps.DB, deps.Log)
	aggs := wireAggregates(deps, set)
	return Core{
		Repos:      set,
		Aggregates: aggs,
		Services:   wireServices(deps.Log, set, aggs, deps.Locker, deps.Archive),
	}
}

func wireAggregates(deps CoreDeps, set repos.Set) Aggregates {
	deps.Log.Info("Wiring aggregates...")
	base := aggregates.BaseDeps{
		DB:    deps.DB,
		Log:   deps.Log,
		Hooks: aggregates.NewObservabilityHooks(deps.Metrics),
		Retry: deps.Retry,
	}
	return Aggregates{
		Baseline: aggregates.NewBaselineAggregate(aggregates.BaselineAggregateDeps{
			Base:         base,
			Estimates:    set.Estimate,
			Groups:       set.WbsGroup,
			Catalog:      set.CatalogItem,
			Items:        set.EstimateItem,
			MergeReports: set.MergeReport,
		}),
		Offer: aggregates.NewOfferAggregate(aggregates.OfferAggregateDeps{
			Base:   base,
			Offers: set.Offer,
			Items:  set.OfferItem,
			Alerts: set.Alert,
		}),
		Alert: aggregates.NewAlertAggregate(aggregates.AlertAggregateDeps{
			Base:          base,
			Alerts:        set.Alert,
			OfferItems:    set.OfferItem,
			Catalog:       set.CatalogItem,
			EstimateItems: set.EstimateItem,
		}),
	}
}

func wireServices(log *logger.Logger, set repos.Set, aggs Aggregates, locker locks.EstimateLocker, archive gcp.PayloadArchive) Services {
	log.Info("Wiring services...")
	if locker == nil {
		locker = locks.NewLocalLocker(locks.Config{})
	}
	offers := services.NewOfferService(log, set, aggs.Offer, locker, archive)
	merges := services.NewMergeService(log, set, aggs.Baseline)
	return Services{
		Project:  services.NewProjectService(log, set.Project),
		Baseline: services.NewBaselineService(log, set, aggs.Baseline, locker, archive),
		Offer:    offers,
		Merge:    merges,
		Alert:    services.NewAlertService(log, set, aggs.Alert, locker),
		Export:   services.NewExportService(log, set, offers, merges),
	}
}
