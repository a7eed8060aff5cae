package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
)

// sellingMultipliers scales the NM selling price down per condition grade.
var sellingMultipliers = map[domain.Condition]decimal.Decimal{
	domain.ConditionNM:  decimal.NewFromFloat(1.00),
	domain.ConditionLP:  decimal.NewFromFloat(0.80),
	domain.ConditionMP:  decimal.NewFromFloat(0.65),
	domain.ConditionHP:  decimal.NewFromFloat(0.50),
	domain.ConditionDMG: decimal.NewFromFloat(0.35),
}

// Calculator derives selling and buylist prices from market prices. It is
// pure and deterministic; FX rate and markup are fixed at construction.
type Calculator struct {
	fxRate decimal.Decimal
	markup decimal.Decimal
}

// NewCalculator creates a Calculator with the given USD->CAD rate and markup factor.
func NewCalculator(fxRate, markup decimal.Decimal) Calculator {
	return Calculator{fxRate: fxRate, markup: markup}
}

// SellingPrice converts a USD market price to the CAD NM selling price,
// rounded up to the nearest $0.50. Rounding up means the store never
// under-prices a card because of rounding.
func (c Calculator) SellingPrice(marketUSD decimal.Decimal) decimal.Decimal {
	return roundUpToHalf(marketUSD.Mul(c.fxRate).Mul(c.markup))
}

// MarketPriceCAD converts a USD market price at the configured FX rate,
// without markup. Buylist percentages are taken from this figure.
func (c Calculator) MarketPriceCAD(marketUSD decimal.Decimal) decimal.Decimal {
	return marketUSD.Mul(c.fxRate)
}

// ConditionSellingPrice applies the fixed condition multiplier to the NM
// selling price, rounded to 2 decimals. Only the NM base anchors to $0.50
// boundaries; lower grades take exact percentages.
func ConditionSellingPrice(nmPrice decimal.Decimal, cond domain.Condition) decimal.Decimal {
	m, ok := sellingMultipliers[cond]
	if !ok {
		return nmPrice
	}
	return nmPrice.Mul(m).Round(2)
}

// BuylistPrices computes the cash and credit buy prices for a condition.
// NM percentages step up with the CAD market price tier and are floored to
// the nearest $0.50 so a buy price never exceeds the computed percentage.
// LP and MP discount the NM buy prices; HP and DMG are not buylist-eligible
// and return nil, nil.
func BuylistPrices(marketCAD decimal.Decimal, cond domain.Condition, nmBuyCash, nmBuyCredit *decimal.Decimal) (*decimal.Decimal, *decimal.Decimal) {
	switch cond {
	case domain.ConditionNM:
		cashPct, creditPct := nmBuylistPercents(marketCAD)
		cash := floorToHalf(marketCAD.Mul(cashPct))
		credit := floorToHalf(marketCAD.Mul(creditPct))
		return &cash, &credit
	case domain.ConditionLP:
		return discountedBuylist(nmBuyCash, nmBuyCredit, decimal.NewFromFloat(BuylistDiscountLP))
	case domain.ConditionMP:
		return discountedBuylist(nmBuyCash, nmBuyCredit, decimal.NewFromFloat(BuylistDiscountMP))
	default:
		return nil, nil
	}
}

func nmBuylistPercents(marketCAD decimal.Decimal) (cash, credit decimal.Decimal) {
	switch {
	case marketCAD.LessThan(decimal.NewFromInt(BuylistTierMid)):
		return decimal.NewFromFloat(0.60), decimal.NewFromFloat(0.70)
	case marketCAD.LessThan(decimal.NewFromInt(BuylistTierHigh)):
		return decimal.NewFromFloat(0.70), decimal.NewFromFloat(0.80)
	default:
		return decimal.NewFromFloat(0.75), decimal.NewFromFloat(0.85)
	}
}

func discountedBuylist(nmCash, nmCredit *decimal.Decimal, discount decimal.Decimal) (*decimal.Decimal, *decimal.Decimal) {
	if nmCash == nil || nmCredit == nil {
		return nil, nil
	}
	cash := nmCash.Mul(discount).Round(2)
	credit := nmCredit.Mul(discount).Round(2)
	return &cash, &credit
}

// roundUpToHalf rounds up to the nearest 0.50: ceil(x*2)/2.
func roundUpToHalf(d decimal.Decimal) decimal.Decimal {
	two := decimal.NewFromInt(2)
	return d.Mul(two).Ceil().Div(two)
}

// floorToHalf rounds down to the nearest 0.50: floor(x*2)/2.
func floorToHalf(d decimal.Decimal) decimal.Decimal {
	two := decimal.NewFromInt(2)
	return d.Mul(two).Floor().Div(two)
}
