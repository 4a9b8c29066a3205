package statement

import (
	"github.com/etnz/wealth"
)

// Zerodha reads the equity holdings export of Zerodha Console.
//
// The sheet "Equity" starts at column B: Symbol, ISIN, Sector, Quantity
// Available, Quantity Discrepant, Quantity Long Term, Quantity Pledged
// (Margin), Quantity Pledged (Loan), Average Price, Previous Closing Price...
type Zerodha struct{}

func (Zerodha) Source() string { return "zerodha" }
func (Zerodha) Broker() string { return "Zerodha" }
func (Zerodha) Patterns() []string {
	return []string{"Zerodha_*.xlsx", "zerodha_*.xlsx", "kite_*.xlsx"}
}

// zerodha columns, 0-based.
const (
	zerodhaSymbol = 1 + iota
	zerodhaISIN
	zerodhaSector
	zerodhaQuantity
	zerodhaAverage = 9
	zerodhaClose   = 10
)

func (z Zerodha) Parse(path string) (*Result, error) {
	t, err := readTable(path, "Equity")
	if err != nil {
		return nil, err
	}
	header, ok := t.findHeader(cellContains(zerodhaSymbol, "symbol"))
	if !ok {
		return nil, parseError(path, "no header row with \"Symbol\" in column B")
	}
	res := newResult(z, path)
	res.StatementDate = t.findDate(header)

	for i := header + 1; i < len(t.rows); i++ {
		row, line := t.rows[i], i+1
		symbol := cell(row, zerodhaSymbol)
		if isBlank(row) || isFooter(row) {
			continue
		}
		if symbol == "" && cell(row, zerodhaISIN) == "" {
			res.warn(wealth.SkippedRow, line, "row has neither symbol nor ISIN")
			continue
		}
		var a amounts
		rec := wealth.HoldingRecord{
			Symbol:      wealth.NormalizeSymbol(symbol),
			ISIN:        cell(row, zerodhaISIN),
			Sector:      cell(row, zerodhaSector),
			Category:    wealth.Equity,
			Quantity:    a.quantity(cell(row, zerodhaQuantity)),
			AverageCost: a.money(cell(row, zerodhaAverage), "INR"),
			Price:       a.money(cell(row, zerodhaClose), "INR"),
			Line:        line,
		}
		if a.err != nil {
			res.warn(wealth.SkippedRow, line, "%s: %v", symbol, a.err)
			continue
		}
		if !rec.Quantity.IsPositive() {
			res.warn(wealth.SkippedRow, line, "%s: no quantity held", symbol)
			continue
		}
		res.add(rec)
	}
	return res, nil
}
