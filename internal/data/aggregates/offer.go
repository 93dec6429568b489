package aggregates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/data/repos"
	domainagg "github.com/yungbote/tenderbridge-backend/internal/domain/aggregates"
	types "github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/platform/dbctx"
)

type OfferAggregateDeps struct {
	Base BaseDeps

	Offers repos.OfferRepo
	Items  repos.OfferItemRepo
	Alerts repos.AlertRepo
}

type offerAggregate struct {
	deps OfferAggregateDeps
}

func NewOfferAggregate(deps OfferAggregateDeps) domainagg.OfferAggregate {
	deps.Base = deps.Base.withDefaults()
	return &offerAggregate{deps: deps}
}

func (a *offerAggregate) Contract() domainagg.Contract {
	return domainagg.OfferAggregateContract
}

func (a *offerAggregate) ReplaceReconciliation(ctx context.Context, in domainagg.ReplaceOfferInput) (domainagg.ReplaceOfferResult, error) {
	const op = "Estimates.Offer.ReplaceReconciliation"
	var out domainagg.ReplaceOfferResult
	hdr := in.Offer
	if hdr == nil {
		return out, domainagg.Validationf(op, "missing offer header")
	}
	company := strings.TrimSpace(hdr.Company)
	switch {
	case hdr.ProjectID == uuid.Nil:
		return out, domainagg.Validationf(op, "missing project_id")
	case hdr.EstimateID == uuid.Nil:
		return out, domainagg.Validationf(op, "missing estimate_id")
	case company == "":
		return out, domainagg.Validationf(op, "missing company")
	case !hdr.Mode.Valid():
		return out, domainagg.Validationf(op, "invalid mode %q", hdr.Mode)
	}
	if a.deps.Offers == nil || a.deps.Items == nil || a.deps.Alerts == nil {
		return out, domainagg.NotConfigured(op, "offer aggregate repos")
	}
	round := hdr.RoundNumber
	if round < 1 {
		round = 1
	}
	if err := checkAlertOwnership(in.Items, in.Alerts); err != nil {
		return out, MapError(op, err)
	}

	runAt := in.RunAt.UTC()
	if runAt.IsZero() {
		runAt = time.Now().UTC()
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		existing, err := a.deps.Offers.GetByRound(dbc, hdr.EstimateID, company, round)
		if err != nil {
			return err
		}
		var offerID uuid.UUID
		created := existing == nil
		if created {
			row := &types.Offer{
				ID:          hdr.ID,
				ProjectID:   hdr.ProjectID,
				EstimateID:  hdr.EstimateID,
				Company:     company,
				RoundNumber: round,
				Name:        strings.TrimSpace(hdr.Name),
				Mode:        hdr.Mode,
				ItemCount:   len(in.Items),
				AlertCount:  len(in.Alerts),
				LastRunAt:   &runAt,
				CreatedAt:   runAt,
				UpdatedAt:   runAt,
			}
			if _, err := a.deps.Offers.Create(dbc, []*types.Offer{row}); err != nil {
				return err
			}
			offerID = row.ID
		} else {
			if existing.Mode != hdr.Mode {
				return ConflictError(fmt.Sprintf("offer mode is fixed: stored %q, requested %q", existing.Mode, hdr.Mode))
			}
			offerID = existing.ID
			deleted, err := a.deps.Alerts.DeleteByOfferID(dbc, offerID)
			if err != nil {
				return err
			}
			out.AlertsDeleted = deleted
			if deleted, err = a.deps.Items.DeleteByOfferID(dbc, offerID); err != nil {
				return err
			}
			out.ItemsDeleted = deleted
			updates := map[string]interface{}{
				"item_count":  len(in.Items),
				"alert_count": len(in.Alerts),
				"last_run_at": runAt,
				"updated_at":  runAt,
			}
			if name := strings.TrimSpace(hdr.Name); name != "" {
				updates["name"] = name
			}
			if err := a.deps.Offers.UpdateFields(dbc, offerID, updates); err != nil {
				return err
			}
		}

		for _, it := range in.Items {
			it.OfferID = offerID
		}
		for _, al := range in.Alerts {
			al.OfferID = offerID
			al.ProjectID = hdr.ProjectID
			al.EstimateID = hdr.EstimateID
		}
		if _, err := a.deps.Items.Create(dbc, in.Items); err != nil {
			return err
		}
		if _, err := a.deps.Alerts.Create(dbc, in.Alerts); err != nil {
			return err
		}

		out.OfferID = offerID
		out.Created = created
		out.ItemsInserted = len(in.Items)
		out.AlertsInserted = len(in.Alerts)
		return nil
	})
	if err != nil {
		return domainagg.ReplaceOfferResult{}, err
	}
	return out, nil
}

func checkAlertOwnership(items []*types.OfferItem, alerts []*types.Alert) error {
	ids := make(map[uuid.UUID]*types.OfferItem, len(items))
	for _, it := range items {
		if it == nil || it.ID == uuid.Nil {
			return ValidationError("offer items must carry pre-assigned ids")
		}
		if it.EstimateItemID != nil && it.CatalogItemID != nil {
			return InvariantError(fmt.Sprintf("offer item %s links both a baseline row and a catalog entry", it.ID))
		}
		ids[it.ID] = it
	}
	for _, al := range alerts {
		if al == nil || al.ID == uuid.Nil {
			return ValidationError("alerts must carry pre-assigned ids")
		}
		it, ok := ids[al.OfferItemID]
		if !ok {
			return InvariantError(fmt.Sprintf("alert %s references an item outside this run", al.ID))
		}
		if al.Origin != it.Origin || al.Source != it.Source {
			return InvariantError(fmt.Sprintf("alert %s does not mirror origin/source of its item", al.ID))
		}
	}
	return nil
}
