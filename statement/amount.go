package statement

import (
	"fmt"
	"strings"

	"github.com/etnz/wealth"
	"github.com/shopspring/decimal"
)

// currency markers found in statement cells.
var amountReplacer = strings.NewReplacer(
	",", "",
	"₹", "",
	"$", "",
	"Rs.", "",
	"Rs", "",
	"INR", "",
	"USD", "",
	" ", "",
	"\u00a0", "",
	"−", "-", // unicode minus
)

// ParseAmount reads a number as printed on statements: "1,23,456.78",
// "₹ 2,500", "$410.27", "(1,200.50)" for negatives, "12.5%".
// Empty cells and dashes are zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	v := strings.TrimSpace(s)
	switch v {
	case "", "-", "--", "NA", "N/A", "n/a":
		return decimal.Zero, nil
	}
	neg := false
	if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		neg = true
		v = v[1 : len(v)-1]
	}
	v = amountReplacer.Replace(v)
	v = strings.TrimSuffix(v, "%")
	v = strings.TrimPrefix(v, "+")
	if v == "" || v == "-" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// amounts parses a set of cells at once, the first failure is returned.
type amounts struct {
	err error
}

func (a *amounts) decimal(s string) decimal.Decimal {
	if a.err != nil {
		return decimal.Zero
	}
	d, err := ParseAmount(s)
	if err != nil {
		a.err = err
	}
	return d
}

func (a *amounts) quantity(s string) wealth.Quantity {
	return wealth.Q(a.decimal(s))
}

func (a *amounts) money(s, cur string) wealth.Money {
	return wealth.M(a.decimal(s), cur)
}
