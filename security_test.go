package wealth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateISIN(t *testing.T) {
	testCases := []struct {
		isin    string
		wantErr bool
	}{
		{"INE002A01018", false},
		{"US5949181045", false},
		{"INE002A01019", true}, // bad check digit
		{"INE002A0101", true},  // too short
		{"ine002a01018", true}, // lower case
	}
	for _, tc := range testCases {
		t.Run(tc.isin, func(t *testing.T) {
			err := ValidateISIN(tc.isin)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateISIN(%q) error = %v, wantErr %v", tc.isin, err, tc.wantErr)
			}
		})
	}
}

func TestNormalizeISIN(t *testing.T) {
	got, err := NormalizeISIN(" ine002a01018 ")
	assert.NoError(t, err)
	assert.Equal(t, "INE002A01018", got)

	got, err = NormalizeISIN("")
	assert.NoError(t, err)
	assert.Equal(t, "", got)

	_, err = NormalizeISIN("INE002A01019")
	assert.Error(t, err)
}

func TestNormalizeSymbol(t *testing.T) {
	testCases := map[string]string{
		"reliance":       "RELIANCE",
		"NSE:INFY":       "INFY",
		"BSE-TCS":        "TCS",
		"RAJESHEXPO-Z":   "RAJESHEXPO",
		"SILVERBEES-E":   "SILVERBEES",
		"EMBASSY-RR":     "EMBASSY-RR",
		"BAJAJ-AUTO":     "BAJAJ-AUTO",
		"  hdfcbank  ":   "HDFCBANK",
		"NSE:M&M-BE":     "M&M",
		"":               "",
	}
	for in, want := range testCases {
		assert.Equal(t, want, NormalizeSymbol(in), "NormalizeSymbol(%q)", in)
	}
}
