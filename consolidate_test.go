package wealth

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedClock = func() time.Time { return time.Date(2024, 4, 5, 10, 30, 15, 123, time.UTC) }

// equity returns a reconciled equity record.
func equity(source, symbol, isin string, qty, avg float64) HoldingRecord {
	r := HoldingRecord{
		Symbol:      symbol,
		ISIN:        isin,
		Category:    Equity,
		Source:      source,
		Quantity:    Q(qty),
		AverageCost: INR(avg),
	}
	r.Reconcile()
	return r
}

func TestConsolidate_SameStockTwoBrokers(t *testing.T) {
	records := []HoldingRecord{
		equity("Zerodha", "RELIANCE", "INE002A01018", 10, 2000),
		equity("Groww", "RELIANCE", "INE002A01018", 5, 2100),
	}
	prices := PriceBook{}
	prices.Set("RELIANCE", decimal.NewFromInt(2500))

	s, err := Consolidate(records, ConsolidateOptions{Prices: prices, Now: fixedClock})
	require.NoError(t, err)

	require.Equal(t, 1, s.Holdings())
	h := s.Holding(Equity, "RELIANCE")
	require.NotNil(t, h)
	assert.Equal(t, "isin:INE002A01018", h.Key)
	assert.True(t, h.Quantity.Equal(Q(15)), "quantity %s", h.Quantity)
	assert.True(t, h.Invested.Equal(INR(30500)), "invested %s", h.Invested)
	assert.True(t, h.AverageCost.Equal(INR(2033.33)), "average %s", h.AverageCost)
	assert.True(t, h.Value.Equal(INR(37500)), "value %s", h.Value)
	assert.True(t, h.PnL.Equal(INR(7000)), "pnl %s", h.PnL)
	assert.True(t, h.PnLPercent.Equal(22.9508), "pnl%% %v", h.PnLPercent)
	assert.True(t, h.Weight.Equal(100))
	assert.Equal(t, []string{"Groww", "Zerodha"}, h.Brokers)
	require.Len(t, h.Lots, 2)
	assert.Equal(t, "Zerodha", h.Lots[0].Source)
	assert.Equal(t, time.Date(2024, 4, 5, 10, 30, 15, 0, time.UTC), s.GeneratedAt)
	assert.Empty(t, s.Warnings)
}

func TestConsolidate_EPFOnly(t *testing.T) {
	records := []HoldingRecord{{
		Symbol:   "EPF MHBAN00000000001234",
		Category: EPFO,
		Source:   "EPFO",
		Invested: INR(650000),
		Value:    INR(800000),
	}}
	s, err := Consolidate(records, ConsolidateOptions{Now: fixedClock})
	require.NoError(t, err)

	assert.Nil(t, s.Category(Equity))
	require.NotNil(t, s.Category(EPFO))
	assert.True(t, s.Totals.Value.Equal(INR(800000)), "value %s", s.Totals.Value)
	assert.True(t, s.Totals.Invested.Equal(INR(650000)))
	assert.True(t, s.Category(EPFO).Allocation.Equal(100))
	assert.Empty(t, s.WarningsOf(MissingPrice))
}

func TestConsolidate_FixedAssetsOnly(t *testing.T) {
	s, err := Consolidate(nil, ConsolidateOptions{
		FixedAssets: map[string]Money{"EPF": INR(800000)},
		Now:         fixedClock,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, s.Holdings())
	assert.Nil(t, s.Category(Equity))
	assert.True(t, s.Totals.Value.Equal(INR(800000)), "value %s", s.Totals.Value)
	assert.True(t, s.Totals.Invested.Equal(INR(800000)), "invested %s", s.Totals.Invested)
	assert.True(t, s.Totals.PnL.IsZero())
	require.Len(t, s.FixedAssets, 1)
	assert.True(t, s.FixedAssets[0].Allocation.Equal(100))
}

func TestConsolidate_TotalsAddUpToTheMinorUnit(t *testing.T) {
	fund := func(symbol, invested, value string) HoldingRecord {
		return HoldingRecord{
			Symbol:   symbol,
			Category: MutualFund,
			Source:   "Groww",
			Quantity: Q(1),
			Invested: M(decimal.RequireFromString(invested), "INR"),
			Value:    M(decimal.RequireFromString(value), "INR"),
		}
	}
	records := []HoldingRecord{
		fund("FUND A", "0.005", "0.005"),
		fund("FUND B", "0.005", "0.005"),
		fund("FUND C", "20333.333333333332", "21000.666666666668"),
	}
	s, err := Consolidate(records, ConsolidateOptions{Now: fixedClock})
	require.NoError(t, err)

	invested, value := INR(0), INR(0)
	for _, h := range s.Category(MutualFund).Holdings {
		assert.True(t, h.Invested.Equal(h.Invested.Round()), "invested %s", h.Invested)
		assert.True(t, h.Value.Equal(h.Value.Round()), "value %s", h.Value)
		invested = invested.Add(h.Invested)
		value = value.Add(h.Value)
	}
	assert.True(t, s.Totals.Invested.Equal(invested), "invested %s, holdings %s", s.Totals.Invested, invested)
	assert.True(t, s.Totals.Value.Equal(value), "value %s, holdings %s", s.Totals.Value, value)
	assert.True(t, s.Totals.Invested.Equal(M(decimal.RequireFromString("20333.35"), "INR")), "invested %s", s.Totals.Invested)
}

func TestConsolidate_Empty(t *testing.T) {
	s, err := Consolidate(nil, ConsolidateOptions{Now: fixedClock})
	require.NoError(t, err)
	assert.Empty(t, s.Categories)
	assert.True(t, s.Totals.Value.IsZero())
	assert.True(t, s.Totals.Invested.IsZero())
	assert.Equal(t, "INR", s.Totals.Value.Currency())
	assert.Nil(t, s.Fire)
	assert.NotEmpty(t, s.ID)
}

func TestConsolidate_RejectsRecordsWithoutIdentity(t *testing.T) {
	records := []HoldingRecord{
		{Category: Equity, Source: "Upstox", Quantity: Q(3), Invested: INR(300), Line: 7},
		{Symbol: "INFY", Category: Equity, Quantity: Q(1), Invested: INR(1500)},
		{Symbol: "INFY", Category: Equity, Source: "Upstox", Quantity: Q(-1)},
		{Symbol: "AAPL", Category: USEquity, Source: "Fidelity", Quantity: Q(1), Invested: INR(1)},
		equity("Upstox", "TCS", "", 2, 3500),
	}
	s, err := Consolidate(records, ConsolidateOptions{Now: fixedClock})
	require.NoError(t, err)

	assert.Equal(t, 1, s.Holdings())
	skipped := s.WarningsOf(SkippedRow)
	require.Len(t, skipped, 4)
	assert.Equal(t, 7, skipped[0].Line)
	assert.Equal(t, "Upstox", skipped[0].Source)
}

func TestConsolidate_AdoptsISINFromSameSymbol(t *testing.T) {
	records := []HoldingRecord{
		equity("Upstox", "RELIANCE", "", 2, 2400),
		equity("Zerodha", "reliance", "INE002A01018", 1, 2500),
	}
	s, err := Consolidate(records, ConsolidateOptions{Now: fixedClock})
	require.NoError(t, err)
	require.Equal(t, 1, s.Holdings())
	h := s.Holding(Equity, "isin:INE002A01018")
	require.NotNil(t, h)
	assert.True(t, h.Quantity.Equal(Q(3)))
	assert.Equal(t, "RELIANCE", h.Symbol)
}

func TestConsolidate_CategoriesNeverMerge(t *testing.T) {
	mf := equity("Groww", "NIFTYBEES", "INF204KB14I2", 10, 200)
	mf.Category = MutualFund
	records := []HoldingRecord{equity("Zerodha", "NIFTYBEES", "INF204KB14I2", 10, 200), mf}

	s, err := Consolidate(records, ConsolidateOptions{Now: fixedClock})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Holdings())
	assert.NotNil(t, s.Holding(Equity, "NIFTYBEES"))
	assert.NotNil(t, s.Holding(MutualFund, "NIFTYBEES"))
}

func TestConsolidate_Pricing(t *testing.T) {
	withValue := equity("Groww", "ITC", "", 100, 400)
	withValue.Value = INR(45012.5)
	withPrice := equity("Groww", "HDFCBANK", "", 3, 1500)
	withPrice.Price = INR(1600.55)
	withPrice.Value = Money{} // statement gave a price only
	noPrice := equity("Groww", "SUZLON", "", 7, 40)

	s, err := Consolidate([]HoldingRecord{withValue, withPrice, noPrice}, ConsolidateOptions{Now: fixedClock})
	require.NoError(t, err)

	itc := s.Holding(Equity, "ITC")
	assert.True(t, itc.Value.Equal(INR(45012.5)), "value %s", itc.Value)
	assert.True(t, itc.Price.Equal(INR(450.125)), "price %s", itc.Price)

	hdfc := s.Holding(Equity, "HDFCBANK")
	assert.True(t, hdfc.Value.Equal(INR(4801.65)), "value %s", hdfc.Value)

	suzlon := s.Holding(Equity, "SUZLON")
	assert.True(t, suzlon.Value.Equal(INR(280)), "value %s", suzlon.Value)
	assert.True(t, suzlon.PnL.IsZero())
	missing := s.WarningsOf(MissingPrice)
	require.Len(t, missing, 1)
	assert.Contains(t, missing[0].Message, "SUZLON")

	// holdings are sorted by decreasing value
	holdings := s.Category(Equity).Holdings
	assert.Equal(t, "ITC", holdings[0].Symbol)
	assert.Equal(t, "HDFCBANK", holdings[1].Symbol)
	assert.Equal(t, "SUZLON", holdings[2].Symbol)
}

func TestConsolidate_GrandTotalsWithForeignHoldings(t *testing.T) {
	us := HoldingRecord{Symbol: "AAPL", ISIN: "US0378331005", Category: USEquity, Source: "Fidelity", Quantity: Q(10), Invested: USD(1500)}
	us.Reconcile()
	records := []HoldingRecord{equity("Zerodha", "RELIANCE", "INE002A01018", 15, 2000), us}
	prices := PriceBook{}
	prices.Set("INE002A01018", decimal.NewFromInt(2500))
	prices.Set("AAPL", decimal.RequireFromString("190.123"))

	_, err := Consolidate(records, ConsolidateOptions{Prices: prices, Now: fixedClock})
	assert.Error(t, err, "a USD holding needs an exchange rate")

	s, err := Consolidate(records, ConsolidateOptions{
		Prices:      prices,
		FXRates:     map[string]decimal.Decimal{"USD": decimal.RequireFromString("83.25")},
		FixedAssets: map[string]Money{"PPF": INR(100000.004), "Gold": M(50000, "")},
		FireTarget:  INR(1000000),
		Now:         fixedClock,
	})
	require.NoError(t, err)

	aapl := s.Holding(USEquity, "AAPL")
	require.NotNil(t, aapl)
	assert.True(t, aapl.Value.Equal(USD(1901.23)), "value %s", aapl.Value)
	assert.True(t, s.Category(USEquity).Totals.Value.Equal(USD(1901.23)))

	// 37500 + 1901.23 × 83.25 + 100000 + 50000
	assert.True(t, s.Totals.Value.Equal(INR(345777.40)), "value %s", s.Totals.Value)
	// 30000 + 1500 × 83.25 + 150000
	assert.True(t, s.Totals.Invested.Equal(INR(304875)), "invested %s", s.Totals.Invested)
	assert.True(t, s.Totals.PnL.Equal(INR(40902.40)), "pnl %s", s.Totals.PnL)

	require.Len(t, s.FixedAssets, 2)
	assert.Equal(t, "Gold", s.FixedAssets[0].Name)
	assert.Equal(t, "PPF", s.FixedAssets[1].Name)
	assert.True(t, s.FixedAssets[1].Amount.Equal(INR(100000)))

	require.NotNil(t, s.Fire)
	assert.True(t, s.Fire.Remaining.Equal(INR(654222.60)), "remaining %s", s.Fire.Remaining)
	assert.True(t, s.Fire.Progress.Equal(34.5777), "progress %v", s.Fire.Progress)

	var sum Percent
	for _, sec := range s.Categories {
		sum += sec.Allocation
	}
	for _, f := range s.FixedAssets {
		sum += f.Allocation
	}
	assert.InDelta(t, 100, float64(sum), 0.001)
}

func TestConsolidate_Verdicts(t *testing.T) {
	records := []HoldingRecord{equity("Zerodha", "RELIANCE", "INE002A01018", 1, 2000)}

	s, err := Consolidate(records, ConsolidateOptions{
		Verdicts: map[string]Verdict{
			"reliance": {Verdict: "HOLD", Risk: "low", Sector: "Energy"},
			"TCS":      {Verdict: "EXIT"},
		},
		Now: fixedClock,
	})
	require.NoError(t, err)
	h := s.Holding(Equity, "RELIANCE")
	require.NotNil(t, h.Verdict)
	assert.Equal(t, "HOLD", h.Verdict.Verdict)
	assert.Equal(t, "Energy", h.Sector)

	unmatched := s.WarningsOf(UnmatchedOverride)
	require.Len(t, unmatched, 1)
	assert.Contains(t, unmatched[0].Message, "TCS")

	_, err = Consolidate(records, ConsolidateOptions{Verdicts: map[string]Verdict{"RELIANCE": {Verdict: "SELL"}}})
	assert.Error(t, err)
}

func TestConsolidate_MutualFundXIRR(t *testing.T) {
	folio := func(invested, value float64, xirr Percent) HoldingRecord {
		r := HoldingRecord{Name: "Parag Parikh Flexi Cap", Symbol: "PARAG PARIKH FLEXI CAP", ISIN: "INF879O01027", Category: MutualFund, Source: "Kuvera",
			Quantity: Q(100), Invested: INR(invested), Value: INR(value), XIRR: xirr}
		r.Reconcile()
		return r
	}
	s, err := Consolidate([]HoldingRecord{folio(10000, 12000, 10), folio(30000, 36000, 20)}, ConsolidateOptions{Now: fixedClock})
	require.NoError(t, err)
	h := s.Holding(MutualFund, "INF879O01027")
	require.NotNil(t, h)
	assert.True(t, h.XIRR.Equal(17.5), "xirr %v", h.XIRR)
	assert.True(t, h.Value.Equal(INR(48000)))
}

func TestConsolidate_Idempotent(t *testing.T) {
	records := []HoldingRecord{
		equity("Zerodha", "RELIANCE", "INE002A01018", 10, 2000),
		equity("Groww", "TCS", "", 5, 3300),
		equity("Groww", "INFY", "", 5, 1400),
		equity("Upstox", "WIPRO", "", 5, 400),
	}
	opts := ConsolidateOptions{FixedAssets: map[string]Money{"PPF": INR(1000), "Gold": INR(2000)}, Now: fixedClock}

	var first, second bytes.Buffer
	s1, err := Consolidate(records, opts)
	require.NoError(t, err)
	require.NoError(t, EncodeSnapshot(&first, s1))
	s2, err := Consolidate(records, opts)
	require.NoError(t, err)
	require.NoError(t, EncodeSnapshot(&second, s2))

	assert.Equal(t, first.String(), second.String())
	assert.Equal(t, s1.ID, s2.ID)
}

func TestSnapshot_Holding(t *testing.T) {
	s, err := Consolidate([]HoldingRecord{equity("Zerodha", "RELIANCE", "INE002A01018", 10, 2000)}, ConsolidateOptions{Now: fixedClock})
	require.NoError(t, err)

	for _, id := range []string{"isin:INE002A01018", "INE002A01018", "RELIANCE", "reliance"} {
		h := s.Holding(Equity, id)
		if assert.NotNil(t, h, id) {
			assert.Equal(t, "RELIANCE", h.Symbol)
		}
	}
	assert.Nil(t, s.Holding(Equity, "TCS"))
	assert.Nil(t, s.Holding(MutualFund, "RELIANCE"), "categories are looked up separately")
}
