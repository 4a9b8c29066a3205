package wealth

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a display ratio already multiplied by 100 (12.5 means 12.5%).
type Percent float64

// ratio returns num/den as a Percent, zero when den is zero.
func ratio(num, den decimal.Decimal) Percent {
	if den.IsZero() {
		return 0
	}
	return Percent(num.Div(den).Shift(2).Round(4).InexactFloat64())
}

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}
