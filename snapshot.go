package wealth

import (
	"encoding/json"
	"time"

	"github.com/etnz/wealth/date"
	"github.com/shopspring/decimal"
)

// Snapshot is the consolidated portfolio produced by one run. It is
// recomputed from scratch from the statements and replaces the previous one.
type Snapshot struct {
	ID           string                     `json:"id"`
	GeneratedAt  time.Time                  `json:"generatedAt"`
	BaseCurrency string                     `json:"baseCurrency"`
	FXRates      map[string]decimal.Decimal `json:"fxRates,omitempty"`
	Categories   []CategorySection          `json:"categories"`
	FixedAssets  []FixedAsset               `json:"fixedAssets,omitempty"`
	Totals       Totals                     `json:"totals"`
	Fire         *Fire                      `json:"fire,omitempty"`
	Sources      []SourceFile               `json:"sources,omitempty"`
	Warnings     []Warning                  `json:"warnings,omitempty"`
}

// CategorySection groups the holdings of one category. Totals are in the
// category currency.
type CategorySection struct {
	Category   Category              `json:"category"`
	Currency   string                `json:"currency"`
	Holdings   []ConsolidatedHolding `json:"holdings"`
	Totals     Totals                `json:"totals"`
	Allocation Percent               `json:"allocation"` // share of the grand value
}

// Totals aggregates invested amount, current value and unrealized P&L.
type Totals struct {
	Invested   Money   `json:"invested"`
	Value      Money   `json:"value"`
	PnL        Money   `json:"pnl"`
	PnLPercent Percent `json:"pnlPercent"`
}

// add accumulates t and u, converted by rate into currency cur.
func (t Totals) add(u Totals, rate decimal.Decimal, cur string) Totals {
	t.Invested = t.Invested.Add(u.Invested.Convert(rate, cur))
	t.Value = t.Value.Add(u.Value.Convert(rate, cur))
	t.PnL = t.PnL.Add(u.PnL.Convert(rate, cur))
	return t
}

func newTotals(cur string) Totals {
	return Totals{Invested: M(0, cur), Value: M(0, cur), PnL: M(0, cur)}
}

// FixedAsset is a non statement asset declared in the configuration (EPF
// lump sum, PPF, gold, ...). Its invested amount is its value.
type FixedAsset struct {
	Name       string  `json:"name"`
	Amount     Money   `json:"amount"`
	Allocation Percent `json:"allocation"`
}

// Fire tracks the progress of the corpus towards the financial independence target.
type Fire struct {
	Target    Money   `json:"target"`
	Corpus    Money   `json:"corpus"`
	Remaining Money   `json:"remaining"`
	Progress  Percent `json:"progress"`
}

// SourceFile records a statement file that contributed to the snapshot.
type SourceFile struct {
	Path          string    `json:"path"`
	Source        string    `json:"source"`
	Broker        string    `json:"broker"`
	StatementDate date.Date `json:"statementDate"`
	Records       int       `json:"records"`
}

// Verdict is a user decision attached to a holding.
type Verdict struct {
	Verdict  string           `json:"verdict"` // BUY, HOLD or EXIT
	Risk     string           `json:"risk,omitempty"`
	Sector   string           `json:"sector,omitempty"`
	Note     string           `json:"note,omitempty"`
	Target1Y *decimal.Decimal `json:"target1y,omitempty"` // one year target price
}

// Lot is the contribution of one statement line to a consolidated holding.
type Lot struct {
	Source      string   `json:"source"`
	Quantity    Quantity `json:"quantity"`
	AverageCost Money    `json:"averageCost"`
	Invested    Money    `json:"invested"`
	Value       Money    `json:"value"`
}

// ConsolidatedHolding is one security held across all sources.
type ConsolidatedHolding struct {
	Key      string   `json:"key"`
	Symbol   string   `json:"symbol"`
	ISIN     string   `json:"isin"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Sector   string   `json:"sector"`

	Quantity    Quantity `json:"quantity"`
	AverageCost Money    `json:"averageCost"`
	Invested    Money    `json:"invested"`
	Price       Money    `json:"price"`
	Value       Money    `json:"value"`
	PnL         Money    `json:"pnl"`
	PnLPercent  Percent  `json:"pnlPercent"`
	Weight      Percent  `json:"weight"`
	XIRR        Percent  `json:"xirr"`

	Brokers []string `json:"brokers"`
	Lots    []Lot    `json:"lots"`
	Verdict *Verdict `json:"verdict"`
}

// MarshalJSON writes the holding with a stable field order, omitting empty optional fields.
func (h ConsolidatedHolding) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("key", h.Key)
	w.Optional("symbol", h.Symbol)
	w.Optional("isin", h.ISIN)
	w.Optional("name", h.Name)
	w.Append("category", h.Category)
	w.Optional("sector", h.Sector)
	w.Append("quantity", h.Quantity)
	w.Append("averageCost", h.AverageCost)
	w.Append("invested", h.Invested)
	w.Append("price", h.Price)
	w.Append("value", h.Value)
	w.Append("pnl", h.PnL)
	w.Append("pnlPercent", h.PnLPercent)
	w.Append("weight", h.Weight)
	w.Optional("xirr", h.XIRR)
	w.Append("brokers", h.Brokers)
	w.Append("lots", h.Lots)
	w.Optional("verdict", h.Verdict)
	return w.MarshalJSON()
}

func (h *ConsolidatedHolding) UnmarshalJSON(data []byte) error {
	type plain ConsolidatedHolding
	return json.Unmarshal(data, (*plain)(h))
}

// Category returns the section of category c, or nil if nothing is held in it.
func (s *Snapshot) Category(c Category) *CategorySection {
	for i := range s.Categories {
		if s.Categories[i].Category == c {
			return &s.Categories[i]
		}
	}
	return nil
}

// Holding returns the holding of category c identified by its key, ISIN or symbol.
func (s *Snapshot) Holding(c Category, id string) *ConsolidatedHolding {
	sec := s.Category(c)
	if sec == nil {
		return nil
	}
	cid := canonical(id)
	for i := range sec.Holdings {
		h := &sec.Holdings[i]
		if h.Key == id || h.ISIN == cid || canonical(h.Symbol) == cid {
			return h
		}
	}
	return nil
}

// Holdings returns the number of consolidated holdings.
func (s *Snapshot) Holdings() int {
	n := 0
	for _, sec := range s.Categories {
		n += len(sec.Holdings)
	}
	return n
}

// WarningsOf returns the warnings of a given kind.
func (s *Snapshot) WarningsOf(kind WarningKind) []Warning {
	var ws []Warning
	for _, w := range s.Warnings {
		if w.Kind == kind {
			ws = append(ws, w)
		}
	}
	return ws
}
