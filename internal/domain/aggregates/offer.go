package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
)

var OfferAggregateContract = Contract{
	Name:   "Estimates.OfferAggregate",
	Writes: []string{"offer", "offer_item", "alert"},
	Lock:   LockEstimate,
	Notes:  "Deletes and re-inserts an offer's items and alerts in a single transaction so no empty state is observable.",
}

// OfferAggregate owns an offer's reconciliation output.
type OfferAggregate interface {
	Aggregate

	// ReplaceReconciliation upserts the offer header by (estimate, company, round)
	// and replaces all of its items and alerts. The header's mode cannot change.
	ReplaceReconciliation(ctx context.Context, in ReplaceOfferInput) (ReplaceOfferResult, error)
}

type ReplaceOfferInput struct {
	// Offer carries the header fields; ID may be nil for a first import.
	Offer  *estimates.Offer
	Items  []*estimates.OfferItem
	Alerts []*estimates.Alert
	RunAt  time.Time
}

type ReplaceOfferResult struct {
	OfferID        uuid.UUID
	Created        bool
	ItemsDeleted   int64
	AlertsDeleted  int64
	ItemsInserted  int
	AlertsInserted int
}
