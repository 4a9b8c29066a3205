package statement

import (
	"testing"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroww_Parse(t *testing.T) {
	path := writeXLSX(t, t.TempDir(), "Groww_holdings.xlsx", "Sheet1", [][]any{
		{"Holdings statement for stocks as on 05-04-2024"},
		{},
		{"Stock Name", "ISIN", "Quantity", "Average buy price", "Buy value", "Closing price", "Closing value"},
		{"Reliance Industries Limited", "INE002A01018", 5, 2400, 12000, 2950, 14750},
		{"Some Unknown Co Ltd.", "", 3, 100, 300, 110, 330},
		{"Tata Consultancy Services Limited", "INE467B01029", 2, 3500, 7100, 3900, 7800},
		{"Bad Co", "XX123", 1, 10, 10, 10, 10},
	})

	res, err := Groww{}.Parse(path)
	require.NoError(t, err)
	assert.Equal(t, date.New(2024, 4, 5), res.StatementDate)
	require.Len(t, res.Records, 4)

	var symbols []string
	for _, r := range res.Records {
		symbols = append(symbols, r.Symbol)
		assert.Equal(t, "Groww", r.Source)
	}
	assert.Equal(t, []string{"RELIANCE", "SOMEUNKNOWNCOLT", "TCS", "BADCO"}, symbols)

	rel := res.Records[0]
	assert.Equal(t, "Reliance Industries Limited", rel.Name)
	assert.True(t, rel.Invested.Equal(wealth.M(12000, "INR")))
	assert.True(t, rel.Value.Equal(wealth.M(14750, "INR")))

	tcs := res.Records[2]
	assert.True(t, tcs.Invested.Equal(wealth.M(7100, "INR")), "statement invested amount is kept")
	assert.Equal(t, "", res.Records[3].ISIN, "invalid ISIN is dropped")

	require.Len(t, res.Warnings, 2)
	assert.Equal(t, wealth.InvestedMismatch, res.Warnings[0].Kind)
	assert.Equal(t, 6, res.Warnings[0].Line)
	assert.Equal(t, wealth.InvalidISIN, res.Warnings[1].Kind)
	assert.Equal(t, 7, res.Warnings[1].Line)
}

func TestGrowwSymbol(t *testing.T) {
	tests := []struct {
		name, isin, want string
	}{
		{"Infosys Limited", "", "INFY"},
		{"Infosys Ltd (old name)", "INE009A01021", "INFY"},
		{"Tata Motors Limited", "", "TATAMOTORSLIMIT"},
		{"3M India", "", "3MINDIA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, growwSymbol(tt.name, tt.isin))
		})
	}
}
