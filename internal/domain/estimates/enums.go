package estimates

type EstimateKind string

const (
	EstimateKindProject EstimateKind = "project"
	EstimateKindOffer   EstimateKind = "offer"
)

type EstimateSource string

const (
	EstimateSourceImport EstimateSource = "import"
	EstimateSourceMerge  EstimateSource = "merge"
)

// OfferMode selects the linking strategy and is fixed for an offer's lifetime.
type OfferMode string

const (
	OfferModeDetailed   OfferMode = "detailed"
	OfferModeAggregated OfferMode = "aggregated"
)

func (m OfferMode) Valid() bool {
	return m == OfferModeDetailed || m == OfferModeAggregated
}

type Origin string

const (
	OriginBaseline Origin = "baseline"
	OriginAddendum Origin = "addendum"
)

type ResolutionStatus string

const (
	ResolutionResolved ResolutionStatus = "resolved"
	ResolutionPending  ResolutionStatus = "pending"
)

type AlertType string

const (
	AlertTypeMissingBaseline  AlertType = "missing_baseline"
	AlertTypeAmbiguousMatch   AlertType = "ambiguous_match"
	AlertTypeQuantityMismatch AlertType = "quantity_mismatch"
	AlertTypePriceMismatch    AlertType = "price_mismatch"
	AlertTypeCodeMismatch     AlertType = "code_mismatch"
)

// AlertTypes lists every alert type in rule evaluation order.
var AlertTypes = []AlertType{
	AlertTypeMissingBaseline,
	AlertTypeAmbiguousMatch,
	AlertTypeQuantityMismatch,
	AlertTypePriceMismatch,
	AlertTypeCodeMismatch,
}

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type AlertStatus string

const (
	AlertStatusOpen     AlertStatus = "open"
	AlertStatusResolved AlertStatus = "resolved"
	AlertStatusIgnored  AlertStatus = "ignored"
)

func (s AlertStatus) Valid() bool {
	switch s {
	case AlertStatusOpen, AlertStatusResolved, AlertStatusIgnored:
		return true
	default:
		return false
	}
}
