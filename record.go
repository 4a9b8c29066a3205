package wealth

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Category is the asset class of a holding. Categories are never merged with
// each other.
type Category string

const (
	Equity     Category = "equity"
	MutualFund Category = "mutual_fund"
	USEquity   Category = "us_equity"
	NPS        Category = "nps"
	EPFO       Category = "epfo"
)

// Categories lists all categories in snapshot order.
var Categories = []Category{Equity, MutualFund, USEquity, NPS, EPFO}

// BaseCurrency is the reporting currency of snapshots.
const BaseCurrency = "INR"

// Currency returns the currency statements of this category are expressed in.
func (c Category) Currency() string {
	if c == USEquity {
		return "USD"
	}
	return BaseCurrency
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// ParseCategory returns the category named s.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// tolerance is the accepted gap between quantity × average cost and the
// invested amount reported by a statement.
var tolerance = decimal.New(1, -2)

// HoldingRecord is one line item parsed from a statement.
type HoldingRecord struct {
	Symbol   string   `json:"symbol,omitempty"`
	ISIN     string   `json:"isin,omitempty"`
	Name     string   `json:"name,omitempty"`
	Category Category `json:"category"`
	Source   string   `json:"source"`
	Sector   string   `json:"sector,omitempty"`

	Quantity    Quantity `json:"quantity"`
	AverageCost Money    `json:"averageCost"`
	Invested    Money    `json:"invested"`
	Price       Money    `json:"price"` // statement closing price, optional
	Value       Money    `json:"value"` // statement closing value, optional
	XIRR        Percent  `json:"xirr,omitempty"`

	Line int `json:"line,omitempty"` // 1-based row or line in the statement
}

// HasIdentity reports whether the record can be keyed.
func (r HoldingRecord) HasIdentity() bool {
	return canonical(r.Symbol) != "" || r.ISIN != ""
}

// Reconcile completes the derivable amounts of the record.
//
// A missing invested amount is quantity × average cost; a missing average
// cost is invested / quantity; a missing value is quantity × price.
// When all three of quantity, average cost and invested are given and
// disagree by more than a cent, the invested amount is kept and Reconcile
// returns false.
func (r *HoldingRecord) Reconcile() bool {
	cur := r.Category.Currency()
	r.AverageCost = r.AverageCost.In(cur)
	r.Invested = r.Invested.In(cur)
	r.Price = r.Price.In(cur)
	r.Value = r.Value.In(cur)

	consistent := true
	switch {
	case r.Invested.IsZero() && !r.AverageCost.IsZero():
		r.Invested = r.AverageCost.Mul(r.Quantity).Round()
	case r.AverageCost.IsZero() && !r.Invested.IsZero() && r.Quantity.IsPositive():
		r.AverageCost = r.Invested.Div(r.Quantity)
	case !r.Invested.IsZero() && !r.AverageCost.IsZero():
		gap := r.AverageCost.Mul(r.Quantity).Sub(r.Invested).Abs()
		consistent = !gap.Decimal().GreaterThan(tolerance)
	}
	if r.Value.IsZero() && !r.Price.IsZero() {
		r.Value = r.Price.Mul(r.Quantity).Round()
	}
	return consistent
}
