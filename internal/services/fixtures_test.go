package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/tenderbridge-backend/internal/data/aggregates"
	"github.com/yungbote/tenderbridge-backend/internal/data/repos"
	repotest "github.com/yungbote/tenderbridge-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/tenderbridge-backend/internal/domain/aggregates"
	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/tenderbridge-backend/internal/platform/gcp"
	"github.com/yungbote/tenderbridge-backend/internal/platform/locks"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

type svcFixture struct {
	ctx       context.Context
	db        *gorm.DB
	log       *logger.Logger
	set       repos.Set
	projects  ProjectService
	baselines BaselineService
	offers    OfferService
	merges    MergeService
	alerts    AlertService
	exports   ExportService
}

func newSvcFixture(t *testing.T) *svcFixture {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	set := repos.NewSet(db, log)
	base := aggregates.BaseDeps{DB: db, Log: log}
	locker := locks.NewLocalLocker(locks.Config{})

	baselineAgg := aggregates.NewBaselineAggregate(aggregates.BaselineAggregateDeps{
		Base:         base,
		Estimates:    set.Estimate,
		Groups:       set.WbsGroup,
		Catalog:      set.CatalogItem,
		Items:        set.EstimateItem,
		MergeReports: set.MergeReport,
	})
	offerAgg := aggregates.NewOfferAggregate(aggregates.OfferAggregateDeps{
		Base:   base,
		Offers: set.Offer,
		Items:  set.OfferItem,
		Alerts: set.Alert,
	})
	alertAgg := aggregates.NewAlertAggregate(aggregates.AlertAggregateDeps{
		Base:          base,
		Alerts:        set.Alert,
		OfferItems:    set.OfferItem,
		Catalog:       set.CatalogItem,
		EstimateItems: set.EstimateItem,
	})

	f := &svcFixture{ctx: context.Background(), db: db, log: log, set: set}
	f.projects = NewProjectService(log, set.Project)
	f.baselines = NewBaselineService(log, set, baselineAgg, locker, gcp.NewNoopArchive())
	f.offers = NewOfferService(log, set, offerAgg, locker, nil)
	f.merges = NewMergeService(log, set, baselineAgg)
	f.alerts = NewAlertService(log, set, alertAgg, locker)
	f.exports = NewExportService(log, set, f.offers, f.merges)
	return f
}

func (f *svcFixture) dbc() dbctx.Context { return dbctx.Context{Ctx: f.ctx} }

func (f *svcFixture) project(t *testing.T, code string) *types.Project {
	t.Helper()
	p, err := f.projects.Create(f.ctx, code, "Project "+code)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func (f *svcFixture) importBaseline(t *testing.T, projectID uuid.UUID, p *types.ImportPayload) *BaselineImportResult {
	t.Helper()
	res, err := f.baselines.Import(f.ctx, projectID, p)
	if err != nil {
		t.Fatalf("import baseline: %v", err)
	}
	return res
}

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

// baselinePayload has C1 (qty 10 @ 5) and B2 (qty 100 @ 2) under one group.
func baselinePayload(name string, c1Qty float64) *types.ImportPayload {
	return &types.ImportPayload{
		Groups: []types.GroupPayload{{ID: "g1", Code: "01", Description: "Structure"}},
		Catalog: []types.CatalogPayload{
			{ID: "c1", Code: "C1", Description: "Concrete", Unit: "m3", Price: 5, GroupIDs: []string{"g1"}},
			{ID: "b2", Code: "B2", Description: "Steel beam", Unit: "kg", Price: 2, GroupIDs: []string{"g1"}},
		},
		Estimate: types.EstimatePayload{
			Name: name,
			Mode: types.EstimateKindProject,
			Items: []types.ItemPayload{
				{CatalogID: "c1", Progressive: ip(1), Quantity: c1Qty, UnitPrice: fp(5)},
				{CatalogID: "b2", Progressive: ip(2), Quantity: 100, UnitPrice: fp(2)},
			},
		},
	}
}

func offerPayload(company string, round int, items ...types.ItemPayload) *types.ImportPayload {
	return &types.ImportPayload{
		Estimate: types.EstimatePayload{
			Name:        company + " bid",
			Mode:        types.EstimateKindOffer,
			Company:     company,
			RoundNumber: round,
			Items:       items,
		},
	}
}

func requireCode(t *testing.T, err error, code domainagg.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := domainagg.CodeOf(err); got != code {
		t.Fatalf("error code: want=%s got=%s (%v)", code, got, err)
	}
}
