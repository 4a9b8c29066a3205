package statement

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/etnz/wealth"
	"github.com/shopspring/decimal"
)

// EPFO reads Employees' Provident Fund passbooks, as PDF downloaded from the
// EPFO member portal, or as XLSX/CSV exports of payroll providers.
//
// The passbook becomes a single record valued at the total balance. The
// invested amount is the balance without the credited interest.
type EPFO struct{}

func (EPFO) Source() string { return "epfo" }
func (EPFO) Broker() string { return "EPFO" }
func (EPFO) Patterns() []string {
	return []string{
		"EPFO_*.pdf", "epfo_*.pdf",
		"EPF_Passbook*.pdf", "epf_passbook*.pdf",
		"UAN_Passbook*.pdf", "passbook_*.pdf",
		"EPFO_*.xlsx", "epfo_*.xlsx", "EPFO_*.csv", "epfo_*.csv",
		"EPF_*.xlsx", "EPF_*.csv",
	}
}

// passbook is what a passbook tells about the account.
type passbook struct {
	uan, memberID, establishment string
	employee, employer, pension  decimal.Decimal
	total, interest              decimal.Decimal
}

func (e EPFO) Parse(path string) (*Result, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := extractPDFText(path)
		if err != nil {
			return nil, err
		}
		return e.parseText(path, text)
	}
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	return e.parseTable(t)
}

const epfAmount = `\s*[:\-]?\s*(?:₹|Rs\.?)?\s*(\d[\d,]*(?:\.\d+)?)`

var epfoFields = newFieldMatcher(
	field{"employee", []string{`(?i)employee\s*(?:share|contribution)` + epfAmount, `(?i)\bEE\s*share` + epfAmount}},
	field{"employer", []string{`(?i)employer\s*(?:share|contribution)` + epfAmount, `(?i)\bER\s*share` + epfAmount}},
	field{"pension", []string{`(?i)pension\s*(?:share|fund|contribution)` + epfAmount, `(?i)\bEPS` + epfAmount}},
	field{"total", []string{`(?i)(?:closing|total|net)\s*balance` + epfAmount}},
	field{"interest", []string{`(?i)\b(?:interest|int\.?)\s*(?:credited|earned)?(?:\s+for\s+\S+)?` + epfAmount}},
)

var (
	epfoUAN           = regexp.MustCompile(`(?i)UAN\s*[:\-]?\s*(\d{12})`)
	epfoMemberID      = regexp.MustCompile(`(?i)Member\s*Id\s*[:\-]?\s*([A-Z]{2}/?[A-Z]{3}/?\d+/?\d+/?\d+|\w+/\w+/\w+)`)
	epfoEstablishment = regexp.MustCompile(`(?i)(?:establishment|employer|company)\s*name\s*[:\-]?\s*([A-Z][A-Za-z &.,]+?)\s*(?:$|\n|Member|UAN|\d{2}/)`)
	epfoRowAmounts    = regexp.MustCompile(`(?m)(\d[\d,]*\.?\d{0,2})\s+(\d[\d,]*\.?\d{0,2})\s+(\d[\d,]*\.?\d{0,2})\s*$`)
)

func (e EPFO) parseText(path, text string) (*Result, error) {
	var pb passbook
	if m := epfoUAN.FindStringSubmatch(text); m != nil {
		pb.uan = m[1]
	}
	if m := epfoMemberID.FindStringSubmatch(text); m != nil {
		pb.memberID = m[1]
	}
	if m := epfoEstablishment.FindStringSubmatch(text); m != nil {
		pb.establishment = strings.TrimSpace(m[1])
	}

	// running balances: the last value of each share is the closing one
	values := epfoFields.scan(text)
	var a amounts
	pb.employee = a.decimal(last(values, "employee"))
	pb.employer = a.decimal(last(values, "employer"))
	pb.pension = a.decimal(last(values, "pension"))
	pb.total = a.decimal(first(values, "total"))
	pb.interest = a.decimal(first(values, "interest"))
	if a.err != nil {
		return nil, parseError(path, "%v", a.err)
	}

	if pb.employee.IsZero() && pb.total.IsZero() {
		// passbook rows end with the employee, employer and pension balances
		rows := epfoRowAmounts.FindAllStringSubmatch(text, -1)
		if len(rows) > 0 {
			row := rows[len(rows)-1]
			var shares [3]decimal.Decimal
			ok := true
			for i := range shares {
				d, err := ParseAmount(row[i+1])
				if err != nil || !d.GreaterThan(decimal.NewFromInt(100)) {
					ok = false
					break
				}
				shares[i] = d
			}
			if ok {
				pb.employee, pb.employer, pb.pension = shares[0], shares[1], shares[2]
			}
		}
	}

	res := newResult(e, path)
	if d, ok := findStatementDate(text); ok {
		res.StatementDate = d
	}
	if err := res.addPassbook(pb); err != nil {
		return nil, parseError(path, "%v", err)
	}
	return res, nil
}

// epfoColumns are header hints per passbook column, in matching order: a
// header cell belongs to the first key with a hint it contains.
var epfoColumns = []struct {
	key   string
	hints []string
}{
	{"employee", []string{"employee share", "employee contribution", "ee share", "ee contribution"}},
	{"employer", []string{"employer share", "employer contribution", "er share", "er contribution"}},
	{"pension", []string{"pension", "eps"}},
	{"interest", []string{"interest"}},
	{"total", []string{"total", "balance", "closing"}},
	{"uan", []string{"uan", "universal account"}},
	{"member", []string{"member id", "member_id", "memberid"}},
	{"establishment", []string{"establishment", "employer", "company"}},
	{"date", []string{"date", "as on", "period"}},
}

// epfoHeader maps the cells of row to passbook keys.
func epfoHeader(row []string) map[string]int {
	cols := make(map[string]int)
	for i, c := range row {
		c = normalizeLabel(c)
		if c == "" {
			continue
		}
	next:
		for _, col := range epfoColumns {
			if _, done := cols[col.key]; done {
				continue
			}
			for _, h := range col.hints {
				if strings.Contains(c, h) {
					cols[col.key] = i
					break next
				}
			}
		}
	}
	return cols
}

func (e EPFO) parseTable(t *table) (*Result, error) {
	var cols map[string]int
	header, ok := t.findHeader(func(row []string) bool {
		cols = epfoHeader(row)
		return len(cols) >= 2
	})
	if !ok {
		return nil, parseError(t.path, "no passbook header row")
	}
	// the last row is the most recent balance
	var row []string
	line := 0
	for i := header + 1; i < len(t.rows); i++ {
		if !isBlank(t.rows[i]) {
			row, line = t.rows[i], i+1
		}
	}
	if row == nil {
		return nil, parseError(t.path, "no passbook row")
	}
	get := func(key string) string {
		if i, ok := cols[key]; ok {
			return cell(row, i)
		}
		return ""
	}

	var a amounts
	pb := passbook{
		uan:           get("uan"),
		memberID:      get("member"),
		establishment: get("establishment"),
		employee:      a.decimal(get("employee")),
		employer:      a.decimal(get("employer")),
		pension:       a.decimal(get("pension")),
		total:         a.decimal(get("total")),
		interest:      a.decimal(get("interest")),
	}
	if a.err != nil {
		return nil, &wealth.ParseError{Path: t.path, Line: line, Reason: a.err.Error()}
	}
	res := newResult(e, t.path)
	if d, ok := cellDate(get("date")); ok {
		res.StatementDate = d
	}
	if err := res.addPassbook(pb); err != nil {
		return nil, &wealth.ParseError{Path: t.path, Line: line, Reason: err.Error()}
	}
	res.Records[len(res.Records)-1].Line = line
	return res, nil
}

// addPassbook turns a passbook into the EPF record.
func (r *Result) addPassbook(pb passbook) error {
	total := pb.total
	if total.IsZero() {
		total = pb.employee.Add(pb.employer).Add(pb.pension)
	}
	if !total.IsPositive() {
		return errNoBalance
	}
	invested := total
	if pb.interest.IsPositive() && pb.interest.LessThan(total) {
		invested = total.Sub(pb.interest)
	}
	account := pb.memberID
	if account == "" {
		account = pb.uan
	}
	if account == "" {
		account = "ACCOUNT"
	}
	r.add(wealth.HoldingRecord{
		Symbol:   "EPF " + strings.ToUpper(account),
		Name:     pb.establishment,
		Category: wealth.EPFO,
		Value:    wealth.M(total, "INR"),
		Invested: wealth.M(invested, "INR"),
	})
	return nil
}

var errNoBalance = errors.New("no EPF balance found")
