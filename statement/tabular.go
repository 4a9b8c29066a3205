package statement

import (
	"strings"

	"github.com/etnz/wealth"
)

// Tabular reads equity holdings exports whose columns are found by their
// header labels. Most discount brokers export such a sheet, as XLSX or CSV,
// with their own labels for the same columns.
type Tabular struct {
	Name        string
	DisplayName string
	Globs       []string

	// candidate header labels per column, lowercase, first present wins.
	Symbol   []string
	ISIN     []string
	Quantity []string
	Average  []string
	Price    []string
	Value    []string
	Sector   []string
}

func (t *Tabular) Source() string     { return t.Name }
func (t *Tabular) Broker() string     { return t.DisplayName }
func (t *Tabular) Patterns() []string { return t.Globs }

// both returns XLSX and CSV patterns for each prefix.
func both(prefixes ...string) []string {
	var globs []string
	for _, p := range prefixes {
		globs = append(globs, p+".xlsx", p+".csv")
	}
	return globs
}

var (
	isinLabels   = []string{"isin", "isin code", "isin no"}
	sectorLabels = []string{"sector", "industry"}
	valueLabels  = []string{"current value", "cur. value", "cur value", "cur. val", "mkt value", "market value"}
)

// AngelOne reads Angel One holdings exports.
func AngelOne() *Tabular {
	return &Tabular{
		Name:        "angel_one",
		DisplayName: "Angel One",
		Globs:       both("Angel_*", "angel_*", "AngelOne_*", "angelone_*", "AngelBroking_*"),
		Symbol:      []string{"script", "stock", "scrip", "scrip name", "symbol", "stock name"},
		ISIN:        isinLabels,
		Quantity:    []string{"qty", "quantity", "net qty"},
		Average:     []string{"avg cost", "avg price", "average price", "buy avg"},
		Price:       []string{"ltp", "last price", "close price", "current price", "closing price"},
		Value:       valueLabels,
		Sector:      sectorLabels,
	}
}

// Upstox reads Upstox holdings exports.
func Upstox() *Tabular {
	return &Tabular{
		Name:        "upstox",
		DisplayName: "Upstox",
		Globs:       both("Upstox_*", "upstox_*", "upstox-holdings*"),
		Symbol:      []string{"instrument", "symbol", "scrip", "stock", "company"},
		ISIN:        isinLabels,
		Quantity:    []string{"qty.", "qty", "quantity", "net qty"},
		Average:     []string{"avg. cost", "avg cost", "avg price", "average price", "buy price"},
		Price:       []string{"ltp", "last price", "close price", "closing price"},
		Value:       valueLabels,
		Sector:      sectorLabels,
	}
}

// ICICIDirect reads ICICI Direct holdings exports.
func ICICIDirect() *Tabular {
	return &Tabular{
		Name:        "icici_direct",
		DisplayName: "ICICI Direct",
		Globs:       both("ICICI_*", "icici_*", "ICICIDirect_*", "icicidirect_*"),
		Symbol:      []string{"stock symbol", "symbol", "scrip", "stock code", "nse symbol", "stock name"},
		ISIN:        isinLabels,
		Quantity:    []string{"qty", "quantity", "net qty", "total qty", "holding qty"},
		Average:     []string{"buy avg price", "avg price", "avg cost", "average price", "buy price"},
		Price:       []string{"ltp", "last price", "current price", "close price", "mkt price"},
		Value:       valueLabels,
		Sector:      sectorLabels,
	}
}

// HDFCSecurities reads HDFC Securities holdings exports.
func HDFCSecurities() *Tabular {
	return &Tabular{
		Name:        "hdfc_securities",
		DisplayName: "HDFC Securities",
		Globs:       both("HDFC_*", "hdfc_*", "HDFCSec_*", "hdfcsec_*", "HDFCSecurities_*"),
		Symbol:      []string{"stock symbol", "symbol", "scrip code", "scrip", "stock code", "nse symbol", "trading symbol", "security name"},
		ISIN:        isinLabels,
		Quantity:    []string{"qty", "quantity", "net qty", "total qty", "free qty"},
		Average:     []string{"buy avg", "avg price", "avg cost", "average price", "buy avg price"},
		Price:       []string{"ltp", "last price", "current price", "close price", "mkt price"},
		Value:       valueLabels,
		Sector:      sectorLabels,
	}
}

// KotakSecurities reads Kotak Securities (and Kotak Neo) holdings exports.
func KotakSecurities() *Tabular {
	return &Tabular{
		Name:        "kotak_securities",
		DisplayName: "Kotak Securities",
		Globs:       both("Kotak_*", "kotak_*", "KotakSec_*", "KotakNeo_*", "kotaksecurities_*"),
		Symbol:      []string{"symbol", "stock symbol", "scrip", "script", "instrument", "stock", "trading symbol", "security"},
		ISIN:        isinLabels,
		Quantity:    []string{"quantity", "qty", "net qty", "total qty", "available qty"},
		Average:     []string{"avg price", "avg cost", "average price", "buy avg", "buy price", "cost price"},
		Price:       []string{"ltp", "last price", "current price", "close price", "market price"},
		Value:       valueLabels,
		Sector:      sectorLabels,
	}
}

// Dhan reads Dhan holdings exports. Dhan prefixes symbols with "NSE-".
func Dhan() *Tabular {
	return &Tabular{
		Name:        "dhan",
		DisplayName: "Dhan",
		Globs:       both("Dhan_*", "dhan_*", "dhan-holdings*"),
		Symbol:      []string{"trading symbol", "symbol", "scrip", "stock", "instrument"},
		ISIN:        isinLabels,
		Quantity:    []string{"qty", "quantity", "net qty", "total qty"},
		Average:     []string{"avg. cost price", "avg cost", "avg price", "buy price", "cost price"},
		Price:       []string{"close price", "ltp", "last price", "current price"},
		Value:       valueLabels,
		Sector:      sectorLabels,
	}
}

// FivePaisa reads 5paisa holdings exports.
func FivePaisa() *Tabular {
	return &Tabular{
		Name:        "five_paisa",
		DisplayName: "5paisa",
		Globs:       both("5paisa_*", "5Paisa_*", "fivepaisa_*", "FivePaisa_*"),
		Symbol:      []string{"scrip name", "symbol", "stock name", "scrip", "company name", "trading symbol", "script name"},
		ISIN:        isinLabels,
		Quantity:    []string{"qty", "quantity", "net qty", "holding qty"},
		Average:     []string{"avg rate", "avg price", "avg cost", "buy avg", "average rate"},
		Price:       []string{"ltp", "last price", "current price", "close price", "mkt price"},
		Value:       valueLabels,
		Sector:      sectorLabels,
	}
}

func (t *Tabular) Parse(path string) (*Result, error) {
	tab, err := readTable(path)
	if err != nil {
		return nil, err
	}
	header, ok := tab.findHeader(anyCellIs(t.Symbol...))
	if !ok {
		return nil, parseError(path, "no header row with a symbol column (%s)", strings.Join(t.Symbol, ", "))
	}
	cols := newColumns(tab.rows[header])
	symCol, qtyCol := cols.find(t.Symbol...), cols.find(t.Quantity...)
	if symCol < 0 || qtyCol < 0 {
		return nil, &wealth.ParseError{Path: path, Line: header + 1, Reason: "missing symbol or quantity column, found " + strings.Join(cols.labels(), ", ")}
	}
	isinCol, avgCol, priceCol := cols.find(t.ISIN...), cols.find(t.Average...), cols.find(t.Price...)
	valueCol, sectorCol := cols.find(t.Value...), cols.find(t.Sector...)

	res := newResult(t, path)
	res.StatementDate = tab.findDate(header)
	for i := header + 1; i < len(tab.rows); i++ {
		row, line := tab.rows[i], i+1
		if isBlank(row) || isFooter(row) {
			continue
		}
		symbol, isin := cell(row, symCol), cell(row, isinCol)
		if symbol == "" && isin == "" {
			res.warn(wealth.SkippedRow, line, "row has neither symbol nor ISIN")
			continue
		}
		var a amounts
		rec := wealth.HoldingRecord{
			Symbol:      wealth.NormalizeSymbol(strings.ToUpper(symbol)),
			ISIN:        isin,
			Sector:      cell(row, sectorCol),
			Category:    wealth.Equity,
			Quantity:    a.quantity(cell(row, qtyCol)),
			AverageCost: a.money(cell(row, avgCol), "INR"),
			Price:       a.money(cell(row, priceCol), "INR"),
			Value:       a.money(cell(row, valueCol), "INR"),
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
