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

type AlertAggregateDeps struct {
	Base BaseDeps

	Alerts        repos.AlertRepo
	OfferItems    repos.OfferItemRepo
	Catalog       repos.CatalogItemRepo
	EstimateItems repos.EstimateItemRepo
}

type alertAggregate struct {
	deps AlertAggregateDeps
}

func NewAlertAggregate(deps AlertAggregateDeps) domainagg.AlertAggregate {
	deps.Base = deps.Base.withDefaults()
	return &alertAggregate{deps: deps}
}

func (a *alertAggregate) Contract() domainagg.Contract {
	return domainagg.AlertAggregateContract
}

const matchedByManual = "manual"

func (a *alertAggregate) Resolve(ctx context.Context, in domainagg.ResolveAlertInput) (domainagg.ResolveAlertResult, error) {
	const op = "Estimates.Alert.Resolve"
	var out domainagg.ResolveAlertResult
	if in.AlertID == uuid.Nil {
		return out, domainagg.Validationf(op, "missing alert_id")
	}
	if !in.Status.Valid() {
		return out, domainagg.Validationf(op, "invalid status %q", in.Status)
	}
	selected := in.SelectedCatalogItemID != nil && *in.SelectedCatalogItemID != uuid.Nil
	if selected && in.Status != types.AlertStatusResolved {
		return out, domainagg.Validationf(op, "selected_catalog_item_id requires status %q", types.AlertStatusResolved)
	}
	if a.deps.Alerts == nil || a.deps.OfferItems == nil {
		return out, domainagg.NotConfigured(op, "alert aggregate repos")
	}
	if selected && (a.deps.Catalog == nil || a.deps.EstimateItems == nil) {
		return out, domainagg.NotConfigured(op, "alert aggregate catalog repos")
	}

	at := in.ResolvedAt.UTC()
	if at.IsZero() {
		at = time.Now().UTC()
	}
	allowed := in.ExpectedCurrentStatus
	if len(allowed) == 0 {
		allowed = []types.AlertStatus{types.AlertStatusOpen, types.AlertStatusResolved, types.AlertStatusIgnored}
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		alert, err := a.deps.Alerts.GetByID(dbc, in.AlertID)
		if err != nil {
			return err
		}
		if alert == nil {
			return domainagg.NotFoundf(op, "alert not found: %s", in.AlertID)
		}
		if selected && alert.Type != types.AlertTypeAmbiguousMatch {
			return ValidationError(fmt.Sprintf("selected_catalog_item_id only applies to %s alerts", types.AlertTypeAmbiguousMatch))
		}

		if err := RequireStatusIn(alert.Status, allowed); err != nil {
			return err
		}

		updates := map[string]any{
			"status":     string(in.Status),
			"updated_at": at,
		}
		if in.Status == types.AlertStatusOpen {
			updates["resolved_at"] = nil
		} else {
			updates["resolved_at"] = at
		}
		if in.ResolutionNote != nil {
			updates["resolution_note"] = strings.TrimSpace(*in.ResolutionNote)
		}
		if selected {
			updates["catalog_item_id"] = *in.SelectedCatalogItemID
		}
		ok, err := TransitionIfStatus(a.deps.Base.CASGuard, dbc, types.Alert{}, alert.ID, allowed, updates)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "alert status changed while resolving"); err != nil {
			return err
		}

		if selected {
			item, err := a.relink(dbc, alert, *in.SelectedCatalogItemID, at)
			if err != nil {
				return err
			}
			out.Item = item
		}

		fresh, err := a.deps.Alerts.GetByID(dbc, alert.ID)
		if err != nil {
			return err
		}
		out.Alert = fresh
		return nil
	})
	if err != nil {
		return domainagg.ResolveAlertResult{}, err
	}
	return out, nil
}

// relink points the alert's offer item at the chosen candidate and clears
// its pending state.
func (a *alertAggregate) relink(dbc dbctx.Context, alert *types.Alert, catalogID uuid.UUID, at time.Time) (*types.OfferItem, error) {
	item, err := a.deps.OfferItems.GetByID(dbc, alert.OfferItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, InvariantError(fmt.Sprintf("alert %s references missing offer item %s", alert.ID, alert.OfferItemID))
	}
	isCandidate := false
	for _, id := range types.DecodeUUIDList(item.Candidates) {
		if id == catalogID {
			isCandidate = true
			break
		}
	}
	if !isCandidate {
		return nil, ValidationError(fmt.Sprintf("catalog item %s is not a candidate of offer item %s", catalogID, item.ID))
	}
	rows, err := a.deps.Catalog.GetByIDs(dbc, []uuid.UUID{catalogID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, InvariantError(fmt.Sprintf("candidate catalog item %s no longer exists", catalogID))
	}
	uses, err := a.deps.EstimateItems.CountByCatalogItemID(dbc, catalogID)
	if err != nil {
		return nil, err
	}
	origin := types.OriginAddendum
	if uses > 0 {
		origin = types.OriginBaseline
	}
	if err := a.deps.OfferItems.UpdateFields(dbc, item.ID, map[string]interface{}{
		"catalog_item_id":   catalogID,
		"estimate_item_id":  nil,
		"candidates":        types.UUIDListJSON(nil),
		"resolution_status": string(types.ResolutionResolved),
		"matched_by":        matchedByManual,
		"origin":            string(origin),
		"updated_at":        at,
	}); err != nil {
		return nil, err
	}
	return a.deps.OfferItems.GetByID(dbc, item.ID)
}
