package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumplingcollectibles/dumpling-price-automation/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func defaultCalculator() Calculator {
	return NewCalculator(dec("1.35"), dec("1.10"))
}

func TestSellingPrice_RoundsUpToHalfDollar(t *testing.T) {
	calc := defaultCalculator()

	tests := []struct {
		name      string
		marketUSD string
		want      string
	}{
		{"already on boundary", "10.1010101", "15.00"},
		{"rounds up not down", "10.00", "15.00"},   // 10 * 1.35 * 1.10 = 14.85
		{"small card", "1.00", "1.50"},             // 1.485
		{"just above boundary", "13.50", "20.50"},  // 20.0475
		{"zero", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.SellingPrice(dec(tt.marketUSD))
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestSellingPrice_NeverBelowMarkedUpValue(t *testing.T) {
	calc := defaultCalculator()

	for _, raw := range []string{"0.25", "3.33", "19.99", "42.42", "123.45"} {
		market := dec(raw)
		exact := market.Mul(dec("1.35")).Mul(dec("1.10"))
		got := calc.SellingPrice(market)
		assert.True(t, got.GreaterThanOrEqual(exact), "price %s under exact value %s", got, exact)
	}
}

func TestConditionSellingPrice_Multipliers(t *testing.T) {
	nm := dec("100.00")

	tests := []struct {
		cond domain.Condition
		want string
	}{
		{domain.ConditionNM, "100.00"},
		{domain.ConditionLP, "80.00"},
		{domain.ConditionMP, "65.00"},
		{domain.ConditionHP, "50.00"},
		{domain.ConditionDMG, "35.00"},
	}

	for _, tt := range tests {
		t.Run(string(tt.cond), func(t *testing.T) {
			got := ConditionSellingPrice(nm, tt.cond)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

// The NM base must round-trip: applying the NM multiplier to a computed
// selling price returns the selling price unchanged.
func TestConditionSellingPrice_NMRoundTrip(t *testing.T) {
	calc := defaultCalculator()

	for _, raw := range []string{"2.50", "17.30", "99.99", "250.00"} {
		base := calc.SellingPrice(dec(raw))
		assert.True(t, ConditionSellingPrice(base, domain.ConditionNM).Equal(base))
	}
}

func TestBuylistPrices_NMTiers(t *testing.T) {
	tests := []struct {
		name       string
		marketCAD  string
		wantCash   string
		wantCredit string
	}{
		{"low tier 60/70", "40.00", "24.00", "28.00"},
		{"mid tier 70/80", "60.00", "42.00", "48.00"},
		{"high tier 75/85", "200.00", "150.00", "170.00"},
		{"tier boundary at 50", "50.00", "35.00", "40.00"},
		{"tier boundary at 100", "100.00", "75.00", "85.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cash, credit := BuylistPrices(dec(tt.marketCAD), domain.ConditionNM, nil, nil)
			require.NotNil(t, cash)
			require.NotNil(t, credit)
			assert.True(t, cash.Equal(dec(tt.wantCash)), "cash got %s want %s", cash, tt.wantCash)
			assert.True(t, credit.Equal(dec(tt.wantCredit)), "credit got %s want %s", credit, tt.wantCredit)
		})
	}
}

func TestBuylistPrices_FlooredToHalfDollar(t *testing.T) {
	// 33.33 * 0.60 = 19.998 -> floor to 19.50, never 20.00
	cash, credit := BuylistPrices(dec("33.33"), domain.ConditionNM, nil, nil)
	require.NotNil(t, cash)
	require.NotNil(t, credit)
	assert.True(t, cash.Equal(dec("19.50")), "cash got %s", cash)
	// 33.33 * 0.70 = 23.331 -> 23.00
	assert.True(t, credit.Equal(dec("23.00")), "credit got %s", credit)
}

func TestBuylistPrices_ConditionDiscounts(t *testing.T) {
	nmCash := dec("20.00")
	nmCredit := dec("24.00")

	lpCash, lpCredit := BuylistPrices(dec("40.00"), domain.ConditionLP, &nmCash, &nmCredit)
	require.NotNil(t, lpCash)
	assert.True(t, lpCash.Equal(dec("15.00")))
	assert.True(t, lpCredit.Equal(dec("18.00")))

	mpCash, mpCredit := BuylistPrices(dec("40.00"), domain.ConditionMP, &nmCash, &nmCredit)
	require.NotNil(t, mpCash)
	assert.True(t, mpCash.Equal(dec("10.00")))
	assert.True(t, mpCredit.Equal(dec("12.00")))
}

func TestBuylistPrices_NotEligible(t *testing.T) {
	for _, cond := range []domain.Condition{domain.ConditionHP, domain.ConditionDMG} {
		cash, credit := BuylistPrices(dec("40.00"), cond, nil, nil)
		assert.Nil(t, cash)
		assert.Nil(t, credit)
	}
}

func TestBuylistPrices_MissingNMBase(t *testing.T) {
	cash, credit := BuylistPrices(dec("40.00"), domain.ConditionLP, nil, nil)
	assert.Nil(t, cash)
	assert.Nil(t, credit)
}
