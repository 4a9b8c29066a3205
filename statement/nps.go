package statement

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/etnz/wealth"
	"github.com/etnz/wealth/date"
	"github.com/shopspring/decimal"
)

// NPS reads the transaction statement of the National Pension System, as
// issued by the central record keeping agencies (NSDL, KFintech).
//
// One record is produced per tier and asset class (E equity, C corporate
// bonds, G government securities, A alternative). The total contribution
// is the invested amount, apportioned to the records by value.
type NPS struct{}

func (NPS) Source() string { return "nps" }
func (NPS) Broker() string { return "NPS" }
func (NPS) Patterns() []string {
	return []string{"NPS_*.pdf", "nps_*.pdf", "NPS_*.PDF", "NSDL_NPS_*.pdf", "nps_statement_*.pdf", "TransactionStatement_*.pdf", "NPS-SOT*.pdf"}
}

// assetClasses in statement order.
var assetClasses = []struct{ code, name string }{
	{"E", "Equity"},
	{"C", "Corporate Bonds"},
	{"G", "Government Securities"},
	{"A", "Alternative"},
}

// npsFields recognizes tier headings and asset class lines.
var npsFields = func() *fieldMatcher {
	fields := []field{{"tier", []string{`(?i)\btier\s*[-–]?\s*(II|I|1|2)\b`}}}
	for _, c := range assetClasses {
		fields = append(fields, field{c.code, []string{
			fmt.Sprintf(`(?i)%s\s*\(%s\)`, c.name, c.code),
			fmt.Sprintf(`(?i)\b(?:scheme|class)\s*[-–]?\s*%s\b`, c.code),
			fmt.Sprintf(`(?i)\b%s\s*[-–]\s*%s`, c.code, c.name),
		}})
	}
	return newFieldMatcher(fields...)
}()

var (
	npsPRAN         = regexp.MustCompile(`(?i)PRAN\s*[:\-]?\s*(\d{12})`)
	npsTotal        = regexp.MustCompile(`(?i)(?:total|closing)\s*(?:balance|value|corpus|amount|holding)\s*[:\-]?\s*(?:₹|Rs\.?)?\s*(\d[\d,]*(?:\.\d+)?)`)
	npsContribution = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:total\s+)?(?:employee|subscriber)\s*contributions?\s*[:\-]?\s*(?:₹|Rs\.?)?\s*(\d[\d,]*(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)(?:total\s+)?employer\s*contributions?\s*[:\-]?\s*(?:₹|Rs\.?)?\s*(\d[\d,]*(?:\.\d+)?)`),
	}
	npsPFM = []*regexp.Regexp{
		regexp.MustCompile(`(?im)(?:pension\s+fund\s*(?:manager)?|pfm|fund\s+manager)\s*[:\-]\s*([A-Z][A-Za-z &]+?)\s*(?:$|,|\d)`),
		regexp.MustCompile(`(?i)\b(SBI|HDFC|ICICI|UTI|Kotak|LIC|Aditya Birla|Tata|Axis|Max)\s+(?:Pension|PFM)`),
	}
	npsNAV   = regexp.MustCompile(`(?i)\bNAV\s*[:\-]?\s*(?:₹|Rs\.?)?\s*(\d[\d,]*\.\d+)`)
	npsUnits = regexp.MustCompile(`(?i)(?:total\s+)?\bunits?\s*[:\-]?\s*(\d[\d,]*\.\d+)`)

	amountWord = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	// statement dates, "as on 31-Mar-2024", "Statement Date: 31/03/2024"...
	statementDate = regexp.MustCompile(`(?i)(?:as\s+on|as\s+of|statement\s+date|date|upto|till|period\s+ending)\s*[:\-]?\s*(\d{1,2}[\-/ ][A-Za-z]{3,9}[\-/ ]\d{4}|\d{1,2}[\-/]\d{1,2}[\-/]\d{4}|[A-Za-z]{3,9}\s+\d{1,2},\s*\d{4})`)
)

// findStatementDate returns the date labelled as the statement date in text.
func findStatementDate(text string) (date.Date, bool) {
	for _, m := range statementDate.FindAllStringSubmatch(text, -1) {
		if d, err := date.ParseStatement(m[1]); err == nil {
			return d, true
		}
	}
	return date.Date{}, false
}

// minNPSValue filters out small numbers (scheme codes, percentages) that
// follow an asset class label.
var minNPSValue = decimal.NewFromInt(100)

// valueAfter returns the first amount larger than minNPSValue in s.
func valueAfter(s string) (decimal.Decimal, bool) {
	for _, w := range amountWord.FindAllString(s, -1) {
		d, err := ParseAmount(w)
		if err == nil && d.GreaterThan(minNPSValue) {
			return d, true
		}
	}
	return decimal.Zero, false
}

func (n NPS) Parse(path string) (*Result, error) {
	text, err := extractPDFText(path)
	if err != nil {
		return nil, err
	}
	return n.parseText(path, text)
}

type npsHolding struct {
	tier  string
	class string
	value decimal.Decimal
}

func (n NPS) parseText(path, text string) (*Result, error) {
	res := newResult(n, path)
	if d, ok := findStatementDate(text); ok {
		res.StatementDate = d
	}

	var holdings []npsHolding
	seen := make(map[string]bool)
	tier := ""
	for _, line := range strings.Split(text, "\n") {
		name, value, ok := npsFields.match(line)
		if !ok {
			continue
		}
		if name == "tier" {
			tier = tierName(value)
			continue
		}
		if tier == "" {
			// asset class lines before any tier heading are allocation preferences
			continue
		}
		key := tier + name
		if seen[key] {
			continue
		}
		// the amount follows the label
		_, after, _ := cutLabel(line, name)
		if v, ok := valueAfter(after); ok {
			holdings = append(holdings, npsHolding{tier: tier, class: name, value: v})
			seen[key] = true
		}
	}
	if len(holdings) == 0 {
		// no breakdown, fall back on the total corpus of tier I
		for _, m := range npsTotal.FindAllStringSubmatch(text, -1) {
			v, err := ParseAmount(m[1])
			if err == nil && v.GreaterThan(decimal.NewFromInt(1000)) {
				holdings = append(holdings, npsHolding{tier: "I", value: v})
				break
			}
		}
	}
	if len(holdings) == 0 {
		return nil, parseError(path, "no NPS holding found")
	}

	contribution := decimal.Zero
	for _, re := range npsContribution {
		if m := re.FindStringSubmatch(text); m != nil {
			if v, err := ParseAmount(m[1]); err == nil {
				contribution = contribution.Add(v)
			}
		}
	}
	pfm := ""
	for _, re := range npsPFM {
		if m := re.FindStringSubmatch(text); m != nil {
			pfm = strings.TrimSpace(m[1])
			break
		}
	}
	pran := ""
	if m := npsPRAN.FindStringSubmatch(text); m != nil {
		pran = m[1]
	}

	invested := apportion(contribution, holdings)
	for i, h := range holdings {
		rec := wealth.HoldingRecord{
			Symbol:   npsSymbol(h),
			Name:     npsName(h, pran),
			Category: wealth.NPS,
			Sector:   pfm,
			Value:    wealth.M(h.value, "INR"),
			Invested: wealth.M(invested[i], "INR"),
		}
		if contribution.IsZero() {
			// contributions unknown, no gain is reported
			rec.Invested = rec.Value
		}
		if len(holdings) == 1 {
			var a amounts
			if m := npsUnits.FindStringSubmatch(text); m != nil {
				rec.Quantity = a.quantity(m[1])
			}
			if m := npsNAV.FindStringSubmatch(text); m != nil {
				rec.Price = a.money(m[1], "INR")
			}
			if a.err != nil {
				res.warn(wealth.SkippedRow, 0, "NPS units or NAV: %v", a.err)
				rec.Quantity, rec.Price = wealth.Quantity{}, wealth.Money{}
			}
		}
		res.add(rec)
	}
	return res, nil
}

// cutLabel splits line after the asset class label of class code.
func cutLabel(line, code string) (before, after string, found bool) {
	for _, p := range npsFields.patterns {
		if p.field != code {
			continue
		}
		if loc := p.re.FindStringIndex(line); loc != nil {
			return line[:loc[0]], line[loc[1]:], true
		}
	}
	return line, "", false
}

// apportion splits total across holdings in proportion of their value,
// rounded to paise, the remainder going to the last holding.
func apportion(total decimal.Decimal, holdings []npsHolding) []decimal.Decimal {
	parts := make([]decimal.Decimal, len(holdings))
	sum := decimal.Zero
	for _, h := range holdings {
		sum = sum.Add(h.value)
	}
	if sum.IsZero() {
		return parts
	}
	rest := total
	for i, h := range holdings {
		if i == len(holdings)-1 {
			parts[i] = rest
			break
		}
		parts[i] = total.Mul(h.value).Div(sum).Round(2)
		rest = rest.Sub(parts[i])
	}
	return parts
}

func tierName(v string) string {
	switch strings.ToUpper(v) {
	case "II", "2":
		return "II"
	}
	return "I"
}

func npsSymbol(h npsHolding) string {
	if h.class == "" {
		return "NPS TIER " + h.tier
	}
	return "NPS TIER " + h.tier + " " + h.class
}

func npsName(h npsHolding, pran string) string {
	name := "NPS Tier " + h.tier
	for _, c := range assetClasses {
		if c.code == h.class {
			name += " " + c.name
		}
	}
	if pran != "" {
		name += " (PRAN " + pran + ")"
	}
	return name
}
