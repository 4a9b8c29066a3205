package statement

import (
	"regexp"
	"strings"

	"github.com/etnz/wealth"
)

// Groww reads the equity holdings export of Groww: Stock Name, ISIN,
// Quantity, Average buy price, Buy value, Closing price, Closing value.
type Groww struct{}

func (Groww) Source() string { return "groww" }
func (Groww) Broker() string { return "Groww" }
func (Groww) Patterns() []string {
	return []string{"Grow_*.xlsx", "Groww_*.xlsx", "groww_*.xlsx"}
}

// growwSymbols maps Groww company names to NSE symbols.
var growwSymbols = map[string]string{
	"Aarti Industries Limited":                        "AARTIIND",
	"Aavas Financiers Limited":                        "AAVAS",
	"Alkyl Amines Chemicals Limited":                  "ALKYLAMINE",
	"Avenue Supermarts Limited":                       "DMART",
	"Bajaj Finance Limited":                           "BAJFINANCE",
	"Bajaj Housing Finance Limited":                   "BAJAJHFL",
	"Bandhan Bank Limited":                            "BANDHANBNK",
	"Bata India Limited":                              "BATAINDIA",
	"Dr. Lal PathLabs Limited":                        "LALPATHLAB",
	"Easy Trip Planners Limited":                      "EASEMYTRIP",
	"GMM Pfaudler Limited":                            "GMMPFAUDLR",
	"HDFC Bank Limited":                               "HDFCBANK",
	"HDFC Life Insurance Company Limited":             "HDFCLIFE",
	"ICICI Lombard General Insurance Company Limited": "ICICIGI",
	"Info Edge (India) Limited":                       "NAUKRI",
	"Infosys Limited":                                 "INFY",
	"Jio Financial Services Limited":                  "JIOFIN",
	"Jubilant FoodWorks Limited":                      "JUBLFOOD",
	"LTIMindtree Limited":                             "LTIM",
	"Maruti Suzuki India Limited":                     "MARUTI",
	"Mold-Tek Packaging Limited":                      "MOLDTKPAC",
	"Nestle India Limited":                            "NESTLEIND",
	"Pidilite Industries Limited":                     "PIDILITIND",
	"Prince Pipes and Fittings Limited":               "PRINCEPIPE",
	"Reliance Industries Limited":                     "RELIANCE",
	"SBI - ETF Nifty 50":                              "SETFNIF50",
	"Tata Consultancy Services Limited":               "TCS",
	"Vodafone Idea Limited":                           "IDEA",
}

// isinSymbols maps ISINs to NSE symbols when the name is unknown.
var isinSymbols = map[string]string{
	"INE002A01018": "RELIANCE",
	"INE467B01029": "TCS",
	"INE009A01021": "INFY",
	"INE040A01034": "HDFCBANK",
	"INE296A01024": "BAJFINANCE",
	"INE585B01010": "MARUTI",
	"INE214T01019": "LTIM",
	"INE765G01017": "ICICIGI",
	"INE192R01011": "DMART",
	"INE758E01017": "JIOFIN",
	"INE797F01020": "JUBLFOOD",
}

var nonSymbolChars = regexp.MustCompile(`[^A-Z0-9]`)

// growwSymbol resolves a Groww name to a trading symbol: known name, else
// known ISIN, else the name squeezed to 15 alphanumerics.
func growwSymbol(name, isin string) string {
	if s, ok := growwSymbols[name]; ok {
		return s
	}
	if s := isinSymbols[strings.ToUpper(isin)]; s != "" {
		return s
	}
	s := nonSymbolChars.ReplaceAllString(strings.ToUpper(name), "")
	if len(s) > 15 {
		s = s[:15]
	}
	return s
}

func (g Groww) Parse(path string) (*Result, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	header, ok := t.findHeader(cellContains(0, "stock name"))
	if !ok {
		return nil, parseError(path, "no header row with \"Stock Name\"")
	}
	res := newResult(g, path)
	res.StatementDate = t.findDate(header)

	for i := header + 1; i < len(t.rows); i++ {
		row, line := t.rows[i], i+1
		name, isin := cell(row, 0), cell(row, 1)
		if isBlank(row) || isFooter(row) {
			continue
		}
		if name == "" && isin == "" {
			res.warn(wealth.SkippedRow, line, "row has neither name nor ISIN")
			continue
		}
		var a amounts
		rec := wealth.HoldingRecord{
			Symbol:      growwSymbol(name, isin),
			ISIN:        isin,
			Name:        name,
			Category:    wealth.Equity,
			Quantity:    a.quantity(cell(row, 2)),
			AverageCost: a.money(cell(row, 3), "INR"),
			Invested:    a.money(cell(row, 4), "INR"),
			Price:       a.money(cell(row, 5), "INR"),
			Value:       a.money(cell(row, 6), "INR"),
			Line:        line,
		}
		if a.err != nil {
			res.warn(wealth.SkippedRow, line, "%s: %v", name, a.err)
			continue
		}
		if !rec.Quantity.IsPositive() {
			res.warn(wealth.SkippedRow, line, "%s: no quantity held", name)
			continue
		}
		res.add(rec)
	}
	return res, nil
}
