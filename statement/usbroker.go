package statement

import (
	"regexp"

	"github.com/etnz/wealth"
)

// USBroker reads the PDF account statement of an employee stock plan
// (ESPP, RSU). A statement holds one stock, priced in USD.
type USBroker struct {
	name, display string
	globs         []string
	fields        *fieldMatcher
}

func (u *USBroker) Source() string     { return u.name }
func (u *USBroker) Broker() string     { return u.display }
func (u *USBroker) Patterns() []string { return u.globs }

const usNumber = `\$?\s*([\d,]+(?:\.\d+)?)`

// knownTickers are employer stocks looked for when the statement does not label the symbol.
var knownTickers = []string{"MSFT", "AAPL", "GOOGL", "GOOG", "AMZN", "META", "TSLA", "NVDA", "CRM", "ORCL", "ADBE", "INTC", "CSCO", "IBM"}

var symbolField = field{"symbol", []string{`(?i:symbol|ticker)\s*[:\-]?\s*([A-Z][A-Z.]{0,5})\b`}}

var costField = field{"cost", []string{`(?i)(?:total\s+)?cost\s+basis[:\s]*` + usNumber}}

// Fidelity reads Fidelity NetBenefits statements.
func Fidelity() *USBroker {
	return &USBroker{
		name:    "fidelity",
		display: "Fidelity",
		globs:   []string{"Fidelity_*.pdf", "fidelity_*.pdf"},
		fields: newFieldMatcher(
			symbolField,
			field{"shares", []string{`(?i)(?:number\s+of\s+)?shares[:\s]*([\d,]+(?:\.\d+)?)`}},
			field{"price", []string{`(?i)(?:share\s+|stock\s+)?price[:\s]*` + usNumber}},
			field{"value", []string{`(?i)(?:total\s+|market\s+)?value[:\s]*` + usNumber}},
			costField,
		),
	}
}

// MorganStanley reads Morgan Stanley StockPlan Connect statements.
func MorganStanley() *USBroker {
	return &USBroker{
		name:    "morgan_stanley",
		display: "Morgan Stanley",
		globs:   []string{"MorganStanley_*.pdf", "morgan_stanley_*.pdf", "MS_*.pdf"},
		fields: newFieldMatcher(
			symbolField,
			field{"shares", []string{`(?i)number\s+of\s+shares\s+([\d,]+(?:\.\d+)?)`}},
			field{"price", []string{`(?i)share\s+price\s+` + usNumber}},
			field{"value", []string{`(?i)share\s+value\s+` + usNumber}},
			costField,
		),
	}
}

func (u *USBroker) Parse(path string) (*Result, error) {
	text, err := extractPDFText(path)
	if err != nil {
		return nil, err
	}
	return u.parseText(path, text)
}

var tickerWord = regexp.MustCompile(`\b[A-Z]{2,5}\b`)

// detectTicker returns the first known ticker appearing as a word of text.
func detectTicker(text string) string {
	words := make(map[string]bool)
	for _, w := range tickerWord.FindAllString(text, -1) {
		words[w] = true
	}
	for _, t := range knownTickers {
		if words[t] {
			return t
		}
	}
	return ""
}

func (u *USBroker) parseText(path, text string) (*Result, error) {
	values := u.fields.scan(text)
	symbol := first(values, "symbol")
	if symbol == "" {
		symbol = detectTicker(text)
	}
	if symbol == "" {
		return nil, parseError(path, "no stock symbol found")
	}
	shares := first(values, "shares")
	if shares == "" {
		return nil, parseError(path, "no number of shares found")
	}

	res := newResult(u, path)
	if d, ok := findStatementDate(text); ok {
		res.StatementDate = d
	}
	var a amounts
	rec := wealth.HoldingRecord{
		Symbol:   symbol,
		Name:     symbol,
		Category: wealth.USEquity,
		Quantity: a.quantity(shares),
		Price:    a.money(first(values, "price"), "USD"),
		Value:    a.money(first(values, "value"), "USD"),
		Invested: a.money(first(values, "cost"), "USD"),
	}
	if a.err != nil {
		return nil, parseError(path, "%s: %v", symbol, a.err)
	}
	if !rec.Quantity.IsPositive() {
		return nil, parseError(path, "%s: no shares held", symbol)
	}
	res.add(rec)
	return res, nil
}
