package pricing

import "github.com/shopspring/decimal"

// ChangeGate decides whether a newly computed price is worth writing and
// propagating. Both the dollar and percent thresholds must be met - trivial
// fluctuations in the upstream reference price must not trigger a cascade of
// external API writes.
type ChangeGate struct {
	minDollars     decimal.Decimal
	minPercent     decimal.Decimal
	notableDollars decimal.Decimal
	notablePercent decimal.Decimal
}

// NewChangeGate builds a gate from configured thresholds. minPercent and
// notablePercent are whole percents (5 means 5%).
func NewChangeGate(minDollars, minPercent, notableDollars, notablePercent decimal.Decimal) ChangeGate {
	return ChangeGate{
		minDollars:     minDollars,
		minPercent:     minPercent,
		notableDollars: notableDollars,
		notablePercent: notablePercent,
	}
}

// ShouldPropagate reports whether newPrice differs enough from oldPrice to
// persist and push. An unset or zero old price always propagates.
func (g ChangeGate) ShouldPropagate(oldPrice, newPrice decimal.Decimal) bool {
	if oldPrice.IsZero() {
		return true
	}
	return meetsThresholds(oldPrice, newPrice, g.minDollars, g.minPercent)
}

// IsNotableChange reports whether the move is big enough to call out in
// human-readable reports. It never gates a write, and an unset old price is
// not notable (there is nothing to compare against).
func (g ChangeGate) IsNotableChange(oldPrice, newPrice decimal.Decimal) bool {
	if oldPrice.IsZero() {
		return false
	}
	return meetsThresholds(oldPrice, newPrice, g.notableDollars, g.notablePercent)
}

func meetsThresholds(oldPrice, newPrice, minDollars, minPercent decimal.Decimal) bool {
	dollarChange := newPrice.Sub(oldPrice).Abs()
	percentChange := dollarChange.Div(oldPrice).Mul(decimal.NewFromInt(100))
	return dollarChange.GreaterThanOrEqual(minDollars) && percentChange.GreaterThanOrEqual(minPercent)
}
