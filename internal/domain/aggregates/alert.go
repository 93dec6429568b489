package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
)

var AlertAggregateContract = Contract{
	Name:   "Estimates.AlertAggregate",
	Writes: []string{"alert", "offer_item"},
	Lock:   LockEstimate,
	Notes:  "Applies a human decision to an alert; only ambiguous_match resolutions may relink the offer item.",
}

// AlertAggregate owns alert resolution.
type AlertAggregate interface {
	Aggregate

	Resolve(ctx context.Context, in ResolveAlertInput) (ResolveAlertResult, error)
}

type ResolveAlertInput struct {
	AlertID               uuid.UUID
	Status                estimates.AlertStatus
	ResolutionNote        *string
	SelectedCatalogItemID *uuid.UUID
	// ExpectedCurrentStatus guards the update; empty means any status.
	ExpectedCurrentStatus []estimates.AlertStatus
	ResolvedAt            time.Time
}

type ResolveAlertResult struct {
	Alert *estimates.Alert
	// Item is set only when the resolution relinked the offer item.
	Item *estimates.OfferItem
}
