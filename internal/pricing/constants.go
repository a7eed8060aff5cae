package pricing

// Buylist percentage tiers for NM cards, stepped by CAD market price.
const (
	BuylistTierMid  = 50  // below this: 60% cash / 70% credit
	BuylistTierHigh = 100 // below this: 70% / 80%; at or above: 75% / 85%
)

// Condition discounts applied to the NM buy prices.
const (
	BuylistDiscountLP = 0.75
	BuylistDiscountMP = 0.50
)
