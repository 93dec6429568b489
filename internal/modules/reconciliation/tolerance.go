package reconciliation

import "github.com/shopspring/decimal"

// Tolerance is the equality threshold shared by per-row alerts and merge
// comparison. A difference of exactly Tolerance is still equal.
const Tolerance = 1e-6

var toleranceDec = decimal.NewFromFloat(Tolerance)

// ExceedsTolerance reports whether |a-b| > Tolerance. Values are compared as
// decimals built from their shortest float representation, so 10.000001
// against 10 is a delta of exactly 1e-6.
func ExceedsTolerance(a, b float64) bool {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs().GreaterThan(toleranceDec)
}

func delta(actual, expected float64) float64 {
	d, _ := decimal.NewFromFloat(actual).Sub(decimal.NewFromFloat(expected)).Float64()
	return d
}

// LineAmount is quantity x unit price rounded to six decimals.
func LineAmount(quantity float64, unitPrice *float64) float64 {
	if unitPrice == nil {
		return 0
	}
	out, _ := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(*unitPrice)).Round(6).Float64()
	return out
}

// impliedUnitPrice is amount/quantity, or nil when quantity is not positive.
func impliedUnitPrice(quantity, amount float64) *float64 {
	if quantity <= 0 {
		return nil
	}
	out, _ := decimal.NewFromFloat(amount).DivRound(decimal.NewFromFloat(quantity), 10).Float64()
	return &out
}
