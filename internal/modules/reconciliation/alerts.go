package reconciliation

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/yungbote/tenderbridge-backend/internal/domain/estimates"
	"github.com/yungbote/tenderbridge-backend/internal/normalization"
)

// Finding is one rule hit for a linked row.
type Finding struct {
	Type       estimates.AlertType
	Severity   estimates.Severity
	Actual     *float64
	Expected   *float64
	Delta      *float64
	Message    string
	Candidates []uuid.UUID
}

type rule func(Link) (Finding, bool)

// Evaluated in this order; every rule is independent of the others.
var rules = []rule{
	missingBaselineRule,
	ambiguousMatchRule,
	quantityMismatchRule,
	priceMismatchRule,
	codeMismatchRule,
}

// Evaluate runs the rule table over a linked row. A different but valid
// price never produces a finding; only a missing or zero price does.
func Evaluate(link Link) []Finding {
	var out []Finding
	for _, r := range rules {
		if f, ok := r(link); ok {
			out = append(out, f)
		}
	}
	return out
}

func missingBaselineRule(l Link) (Finding, bool) {
	if l.Resolved() || len(l.Candidates) > 0 {
		return Finding{}, false
	}
	q := l.Row.Quantity
	return Finding{
		Type:     estimates.AlertTypeMissingBaseline,
		Severity: estimates.SeverityInfo,
		Actual:   &q,
		Message:  missingMessage(l),
	}, true
}

func missingMessage(l Link) string {
	if l.Mode == estimates.OfferModeDetailed {
		if l.Row.Progressive == nil {
			return fmt.Sprintf("row %d has no progressive number; recorded as addendum", l.Row.Index)
		}
		return fmt.Sprintf("row %d: progressive %d not found in baseline; recorded as addendum", l.Row.Index, *l.Row.Progressive)
	}
	return fmt.Sprintf("row %d: no catalog entry matches code %q or description %q; recorded as addendum", l.Row.Index, l.Code, l.Description)
}

func ambiguousMatchRule(l Link) (Finding, bool) {
	if l.Resolved() || len(l.Candidates) == 0 {
		return Finding{}, false
	}
	cands := append([]uuid.UUID(nil), l.Candidates...)
	return Finding{
		Type:       estimates.AlertTypeAmbiguousMatch,
		Severity:   estimates.SeverityWarning,
		Message:    fmt.Sprintf("row %d: %d catalog entries match; manual selection required", l.Row.Index, len(cands)),
		Candidates: cands,
	}, true
}

func quantityMismatchRule(l Link) (Finding, bool) {
	if !l.Resolved() {
		return Finding{}, false
	}
	actual, expected := l.Row.Quantity, l.Expected.Quantity
	// A catalog-only match always alerts, even at quantity 0, so it stays
	// distinguishable from a row that matched nothing.
	if l.Expected.HasBaseline && !ExceedsTolerance(actual, expected) {
		return Finding{}, false
	}
	d := delta(actual, expected)
	msg := fmt.Sprintf("row %d: quantity %s differs from baseline %s", l.Row.Index, fmtNum(actual), fmtNum(expected))
	if !l.Expected.HasBaseline {
		code := ""
		if l.CatalogItem != nil {
			code = l.CatalogItem.Code
		}
		msg = fmt.Sprintf("row %d: catalog entry %q has no baseline quantity; recorded as addendum", l.Row.Index, code)
	}
	return Finding{
		Type:     estimates.AlertTypeQuantityMismatch,
		Severity: estimates.SeverityWarning,
		Actual:   &actual,
		Expected: &expected,
		Delta:    &d,
		Message:  msg,
	}, true
}

func priceMismatchRule(l Link) (Finding, bool) {
	if !l.Resolved() {
		return Finding{}, false
	}
	if l.UnitPrice != nil && *l.UnitPrice != 0 {
		return Finding{}, false
	}
	f := Finding{
		Type:     estimates.AlertTypePriceMismatch,
		Severity: estimates.SeverityError,
		Actual:   copyFloat(l.UnitPrice),
		Expected: copyFloat(l.Expected.UnitPrice),
		Message:  fmt.Sprintf("row %d: unit price is missing", l.Row.Index),
	}
	if l.UnitPrice != nil {
		f.Message = fmt.Sprintf("row %d: unit price is zero", l.Row.Index)
	}
	return f, true
}

func codeMismatchRule(l Link) (Finding, bool) {
	if !l.Resolved() {
		return Finding{}, false
	}
	got := normalization.NormalizeCode(l.Code)
	want := normalization.NormalizeCode(l.Expected.Code)
	if got == "" || want == "" || got == want {
		return Finding{}, false
	}
	return Finding{
		Type:     estimates.AlertTypeCodeMismatch,
		Severity: estimates.SeverityWarning,
		Message:  fmt.Sprintf("row %d: code %q does not match baseline code %q", l.Row.Index, l.Code, l.Expected.Code),
	}, true
}

func fmtNum(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%g", v)
}
