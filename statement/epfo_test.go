package statement

import (
	"errors"
	"testing"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEPFO_ParseText(t *testing.T) {
	text := `Member Passbook
UAN: 100123456789
Member Id: MHBAN00123450000012345
Establishment Name: Acme Software Pvt Ltd
Statement Date: 31-03-2024
Employee Share: 4,50,000
Employer Share: 1,50,000
Pension Share: 1,00,000
Interest Credited: 80,000
Closing Balance: 7,00,000
`
	res, err := EPFO{}.parseText("EPFO_2024.pdf", text)
	require.NoError(t, err)
	assert.Equal(t, date.New(2024, 3, 31), res.StatementDate)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, "EPF MHBAN00123450000012345", rec.Symbol)
	assert.Equal(t, "Acme Software Pvt Ltd", rec.Name)
	assert.Equal(t, wealth.EPFO, rec.Category)
	assert.Equal(t, "EPFO", rec.Source)
	assert.True(t, rec.Value.Equal(wealth.M(700000, "INR")))
	assert.True(t, rec.Invested.Equal(wealth.M(620000, "INR")), "interest is not invested: %s", rec.Invested)
}

func TestEPFO_ParseText_RowFallback(t *testing.T) {
	text := `EPF Passbook
UAN 100123456789
Wage Month  Employee  Employer  Pension
Mar-2024  2,00,000.00  75,000.00  50,000.00
`
	res, err := EPFO{}.parseText("EPFO_2024.pdf", text)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	assert.Equal(t, "EPF 100123456789", rec.Symbol)
	assert.True(t, rec.Value.Equal(wealth.M(325000, "INR")), "value %s", rec.Value)
	assert.True(t, rec.Invested.Equal(rec.Value))
}

func TestEPFO_ParseText_NoBalance(t *testing.T) {
	_, err := EPFO{}.parseText("EPFO_2024.pdf", "Member Passbook\nNothing here\n")
	var pe *wealth.ParseError
	assert.True(t, errors.As(err, &pe), "got %v", err)
}

func TestEPFO_ParseCSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "EPFO_export.csv",
		"UAN,Member ID,Establishment Name,As On Date,Employee Share,Employer Share,Pension Contribution,Interest,Total Balance\n"+
			"100123456789,TNMAS00543210000054321,Acme Ltd,31-03-2023,\"3,00,000\",\"1,00,000\",\"80,000\",\"50,000\",\"4,80,000\"\n"+
			"100123456789,TNMAS00543210000054321,Acme Ltd,31-03-2024,\"3,50,000\",\"1,20,000\",\"90,000\",\"60,000\",\"5,60,000\"\n"+
			",,,,,,,,\n")

	res, err := EPFO{}.Parse(path)
	require.NoError(t, err)
	assert.Equal(t, date.New(2024, 3, 31), res.StatementDate)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, "EPF TNMAS00543210000054321", rec.Symbol)
	assert.Equal(t, "Acme Ltd", rec.Name)
	assert.Equal(t, 3, rec.Line)
	assert.True(t, rec.Value.Equal(wealth.M(560000, "INR")))
	assert.True(t, rec.Invested.Equal(wealth.M(500000, "INR")))
}

func TestEPFOHeader(t *testing.T) {
	cols := epfoHeader([]string{"Date", "Employer Share", "Establishment", "EPS", "Closing Balance"})
	assert.Equal(t, map[string]int{"date": 0, "employer": 1, "establishment": 2, "pension": 3, "total": 4}, cols)
}
