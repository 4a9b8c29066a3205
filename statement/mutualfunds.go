package statement

import (
	"strings"

	"github.com/etnz/wealth"
)

// MutualFunds reads consolidated mutual fund exports (MF Central, Groww,
// Kuvera): Scheme Name, AMC, Category, Sub Category, Folio Number, Source,
// Units, Invested Value, Current Value, Returns, XIRR.
//
// Each folio is one record. Folios of the same scheme share their identity
// and are merged by consolidation, which weights their XIRR by invested amount.
type MutualFunds struct{}

func (MutualFunds) Source() string { return "mutual_funds" }
func (MutualFunds) Broker() string { return "Mutual Funds" }
func (MutualFunds) Patterns() []string {
	return []string{"MutualFunds_*.xlsx", "mf_*.xlsx", "MF_*.xlsx", "mutual_funds_*.xlsx"}
}

const (
	mfScheme = iota
	mfAMC
	mfCategory
	mfSubCategory
	mfFolio
	mfSource
	mfUnits
	mfInvested
	mfCurrent
	mfReturns
	mfXIRR
)

func (m MutualFunds) Parse(path string) (*Result, error) {
	t, err := readTable(path, "Holdings")
	if err != nil {
		return nil, err
	}
	header, ok := t.findHeader(cellContains(mfScheme, "scheme name"))
	if !ok {
		return nil, parseError(path, "no header row with \"Scheme Name\"")
	}
	res := newResult(m, path)
	res.StatementDate = t.findDate(header)

	for i := header + 1; i < len(t.rows); i++ {
		row, line := t.rows[i], i+1
		name := cell(row, mfScheme)
		if isBlank(row) || isFooter(row) {
			continue
		}
		if name == "" {
			res.warn(wealth.SkippedRow, line, "row has no scheme name")
			continue
		}
		var a amounts
		rec := wealth.HoldingRecord{
			Symbol:   strings.ToUpper(strings.Join(strings.Fields(name), " ")),
			Name:     name,
			Category: wealth.MutualFund,
			Source:   cell(row, mfSource),
			Sector:   fundSector(cell(row, mfCategory), cell(row, mfSubCategory)),
			Quantity: a.quantity(cell(row, mfUnits)),
			Invested: a.money(cell(row, mfInvested), "INR"),
			Value:    a.money(cell(row, mfCurrent), "INR"),
			XIRR:     wealth.Percent(a.decimal(cell(row, mfXIRR)).InexactFloat64()),
			Line:     line,
		}
		if a.err != nil {
			res.warn(wealth.SkippedRow, line, "%s: %v", name, a.err)
			continue
		}
		if rec.Quantity.IsNegative() {
			res.warn(wealth.SkippedRow, line, "%s: negative units", name)
			continue
		}
		res.add(rec)
	}
	return res, nil
}

// fundSector joins a fund category and sub category: "Equity / Flexi Cap".
func fundSector(category, sub string) string {
	switch {
	case category == "":
		return sub
	case sub == "":
		return category
	}
	return category + " / " + sub
}
