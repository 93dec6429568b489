package reconciliation

import (
	"errors"

	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
)

var (
	ErrNilIndex    = errors.New("reconciliation: baseline index is required")
	ErrInvalidMode = errors.New("reconciliation: mode must be detailed or aggregated")
)

const (
	MatchProgressive     = "progressive"
	MatchCode            = "code"
	MatchLongDescription = "long_description"
	MatchDescription     = "description"
)

// IDFunc mints identities for generated records.
type IDFunc func() uuid.UUID

// Row is one imported offer row exactly as received. It is also the shape
// persisted on OfferItem.Raw so a rerun sees the same input.
type Row struct {
	Index           int      `json:"index"`
	Progressive     *int     `json:"progressive,omitempty"`
	Code            string   `json:"code,omitempty"`
	Description     string   `json:"description,omitempty"`
	LongDescription string   `json:"long_description,omitempty"`
	Unit            string   `json:"unit,omitempty"`
	Quantity        float64  `json:"quantity"`
	UnitPrice       *float64 `json:"unit_price,omitempty"`
	Amount          *float64 `json:"amount,omitempty"`
}

func RowsFromPayload(items []estimates.ItemPayload) []Row {
	out := make([]Row, 0, len(items))
	for i, it := range items {
		out = append(out, Row{
			Index:           i + 1,
			Progressive:     copyInt(it.Progressive),
			Code:            it.Code,
			Description:     it.Description,
			LongDescription: it.LongDescription,
			Unit:            it.Unit,
			Quantity:        it.Quantity,
			UnitPrice:       copyFloat(it.UnitPrice),
			Amount:          copyFloat(it.Amount),
		})
	}
	return out
}

// Expectation is what the baseline says the row should look like.
type Expectation struct {
	Quantity  float64
	UnitPrice *float64
	Code      string
	// HasBaseline is false when the row resolved to a catalog item that no
	// baseline line item references.
	HasBaseline bool
}

// Link is the outcome of running a linker over one row.
type Link struct {
	Row       Row
	Mode      estimates.OfferMode
	Status    estimates.ResolutionStatus
	Origin    estimates.Origin
	MatchedBy string

	EstimateItem *estimates.EstimateItem
	CatalogItem  *estimates.CatalogItem
	Candidates   []uuid.UUID

	// Effective values after the split heuristic and detailed backfill.
	Code        string
	Description string
	Unit        string
	UnitPrice   *float64

	Expected Expectation
}

func (l Link) Resolved() bool { return l.Status == estimates.ResolutionResolved }

type AlertTally struct {
	Total  int                         `json:"total"`
	ByType map[estimates.AlertType]int `json:"by_type"`
}

// Summary is returned to the caller of every offer run.
type Summary struct {
	OfferID   uuid.UUID  `json:"offer_id"`
	ItemCount int        `json:"item_count"`
	Warnings  []string   `json:"warnings"`
	Alerts    AlertTally `json:"alerts"`
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
