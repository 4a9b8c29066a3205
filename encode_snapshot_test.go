package wealth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/wealth/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	us := HoldingRecord{Symbol: "MSFT", ISIN: "US5949181045", Category: USEquity, Source: "Morgan Stanley", Quantity: Q(2.5), Invested: USD(800.10), Price: USD(410.27)}
	us.Reconcile()
	mf := HoldingRecord{Symbol: "AXIS BLUECHIP", Name: "Axis Bluechip Fund", Category: MutualFund, Source: "Groww", Quantity: Q(123.456), Invested: INR(5000), Value: INR(6100.5), XIRR: 12.34}
	mf.Reconcile()
	records := []HoldingRecord{
		equity("Zerodha", "RELIANCE", "INE002A01018", 10, 2000),
		equity("Groww", "RELIANCE", "INE002A01018", 5, 2100),
		mf,
		us,
	}
	s, err := Consolidate(records, ConsolidateOptions{
		FXRates:     map[string]decimal.Decimal{"USD": decimal.RequireFromString("83.4")},
		FixedAssets: map[string]Money{"PPF": INR(250000)},
		Verdicts:    map[string]Verdict{"RELIANCE": {Verdict: "BUY", Note: "core"}},
		FireTarget:  INR(5000000),
		Now:         fixedClock,
		Sources: []SourceFile{
			{Path: "data/statements/Zerodha_2024.xlsx", Source: "zerodha", Broker: "Zerodha", StatementDate: date.New(2024, 4, 5), Records: 1},
			{Path: "data/statements/Groww_2024.xlsx", Source: "groww", Broker: "Groww", Records: 2},
		},
		Warnings: []Warning{{Kind: Unrecognized, Path: "data/statements/notes.txt", Message: "no source matches this file"}},
	})
	require.NoError(t, err)
	return s
}

func TestSnapshot_RoundTrip(t *testing.T) {
	s := sampleSnapshot(t)

	var first bytes.Buffer
	require.NoError(t, EncodeSnapshot(&first, s))
	back, err := DecodeSnapshot(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)

	var second bytes.Buffer
	require.NoError(t, EncodeSnapshot(&second, back))
	assert.Equal(t, first.String(), second.String())

	assert.Equal(t, s.ID, back.ID)
	assert.True(t, s.GeneratedAt.Equal(back.GeneratedAt))
	assert.True(t, back.FXRates["USD"].Equal(decimal.RequireFromString("83.4")))
	assert.True(t, back.Totals.Value.Equal(s.Totals.Value))
	assert.Equal(t, s.Sources, back.Sources)
	assert.Equal(t, s.Warnings, back.Warnings)

	h := back.Holding(Equity, "RELIANCE")
	require.NotNil(t, h)
	assert.True(t, h.AverageCost.Equal(INR(2033.33)))
	assert.Equal(t, "BUY", h.Verdict.Verdict)
	assert.Len(t, h.Lots, 2)

	fund := back.Holding(MutualFund, "AXIS BLUECHIP")
	require.NotNil(t, fund)
	assert.True(t, fund.Quantity.Equal(Q(123.456)))
	assert.True(t, fund.Price.Equal(s.Holding(MutualFund, "AXIS BLUECHIP").Price), "fractional prices keep their digits")
	assert.True(t, fund.XIRR.Equal(12.34))

	msft := back.Holding(USEquity, "MSFT")
	require.NotNil(t, msft)
	assert.True(t, msft.Value.Equal(USD(1025.68)), "value %s", msft.Value)
}

func TestSnapshot_RoundTripKeepsAmounts(t *testing.T) {
	var records []HoldingRecord
	for _, symbol := range []string{"FUND A", "FUND B", "FUND C"} {
		records = append(records, HoldingRecord{
			Symbol:      symbol,
			Category:    MutualFund,
			Source:      "Groww",
			Quantity:    Q(3),
			AverageCost: M(decimal.RequireFromString("6777.777777777777"), "INR"),
			Invested:    M(decimal.RequireFromString("20333.333333333332"), "INR"),
			Value:       M(decimal.RequireFromString("0.005"), "INR"),
		})
	}
	s, err := Consolidate(records, ConsolidateOptions{Now: fixedClock})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeSnapshot(&buf, s))
	back, err := DecodeSnapshot(&buf)
	require.NoError(t, err)

	invested, value := INR(0), INR(0)
	for _, h := range back.Category(MutualFund).Holdings {
		orig := s.Holding(MutualFund, h.Symbol)
		require.NotNil(t, orig)
		assert.True(t, h.Invested.Equal(orig.Invested), "%s invested %s, was %s", h.Symbol, h.Invested, orig.Invested)
		assert.True(t, h.Value.Equal(orig.Value), "%s value %s, was %s", h.Symbol, h.Value, orig.Value)
		require.Len(t, h.Lots, 1)
		assert.True(t, h.Lots[0].Invested.Equal(orig.Lots[0].Invested))
		assert.True(t, h.Lots[0].AverageCost.Equal(orig.Lots[0].AverageCost))
		invested = invested.Add(h.Invested)
		value = value.Add(h.Value)
	}
	assert.True(t, back.Totals.Invested.Equal(s.Totals.Invested))
	assert.True(t, back.Totals.Invested.Equal(invested), "invested %s, holdings %s", back.Totals.Invested, invested)
	assert.True(t, back.Totals.Value.Equal(value), "value %s, holdings %s", back.Totals.Value, value)
}

func TestWriteSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data", "portfolio.json")

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	s := sampleSnapshot(t)
	require.NoError(t, WriteSnapshot(path, s))

	back, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, s.ID, back.ID)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temporary file is left behind")
	assert.Equal(t, "portfolio.json", entries[0].Name())
}

func TestWriteSnapshot_Failure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := WriteSnapshot(filepath.Join(blocker, "portfolio.json"), &Snapshot{})
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr), "got %v", err)
	assert.Equal(t, "write", ioErr.Op)

	_, err = ReadSnapshot(filepath.Join(dir, "missing.json"))
	require.True(t, errors.As(err, &ioErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
