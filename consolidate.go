package wealth

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConsolidateOptions carries everything the engine needs beside the records.
type ConsolidateOptions struct {
	FixedAssets map[string]Money   // non statement assets in base currency
	Verdicts    map[string]Verdict // by ISIN, symbol or identity key
	Prices      PriceBook
	FXRates     map[string]decimal.Decimal // units of base currency per unit of the key currency
	FireTarget  Money
	Now         func() time.Time

	Warnings []Warning    // earlier warnings of the run, copied in the snapshot
	Sources  []SourceFile // parsed files, copied in the snapshot
}

// position accumulates the records of one identity within a category.
type position struct {
	h              ConsolidatedHolding
	brokers        map[string]bool
	statementValue Money
	statementPrice Money
	hasValue       bool
	xirrWeighted   decimal.Decimal
	xirrInvested   decimal.Decimal
}

// identityKey is "isin:<ISIN>" when an ISIN is known, "symbol:<SYMBOL>" otherwise.
func identityKey(isin, symbol string) string {
	if isin != "" {
		return "isin:" + isin
	}
	return "symbol:" + canonical(symbol)
}

// Consolidate merges holding records into a snapshot.
//
// Records sharing a category and an identity key are merged: quantities and
// invested amounts are summed exactly, the average cost is derived. Holdings
// are then priced from the price book, else from the statements, else at
// cost with a missing_price warning. Totals are computed last, from the
// final holdings.
func Consolidate(records []HoldingRecord, opts ConsolidateOptions) (*Snapshot, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	s := &Snapshot{
		GeneratedAt:  now().UTC().Truncate(time.Second),
		BaseCurrency: BaseCurrency,
		Sources:      slices.Clone(opts.Sources),
		Warnings:     slices.Clone(opts.Warnings),
	}
	if len(opts.FXRates) > 0 {
		s.FXRates = make(map[string]decimal.Decimal, len(opts.FXRates))
		for k, v := range opts.FXRates {
			s.FXRates[k] = v
		}
	}

	isins := adoptedISINs(records)
	positions := make(map[Category]map[string]*position)
	for _, r := range records {
		if reason := reject(r); reason != "" {
			s.Warnings = append(s.Warnings, Warning{Kind: SkippedRow, Source: r.Source, Line: r.Line, Message: reason})
			continue
		}
		isin := r.ISIN
		if isin == "" {
			isin = isins[r.Category][canonical(r.Symbol)]
		}
		key := identityKey(isin, r.Symbol)
		byKey := positions[r.Category]
		if byKey == nil {
			byKey = make(map[string]*position)
			positions[r.Category] = byKey
		}
		p := byKey[key]
		if p == nil {
			p = newPosition(key, isin, r.Category)
			byKey[key] = p
		}
		p.add(r)
	}

	for _, c := range Categories {
		if len(positions[c]) == 0 {
			continue
		}
		sec := CategorySection{Category: c, Currency: c.Currency(), Totals: newTotals(c.Currency())}
		keys := make([]string, 0, len(positions[c]))
		for k := range positions[c] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h, w := positions[c][k].finalize(opts.Prices)
			if w != nil {
				s.Warnings = append(s.Warnings, *w)
			}
			sec.Holdings = append(sec.Holdings, h)
		}
		sort.Slice(sec.Holdings, func(i, j int) bool {
			a, b := sec.Holdings[i], sec.Holdings[j]
			if !a.Value.Equal(b.Value) {
				return a.Value.GreaterThan(b.Value)
			}
			return a.Key < b.Key
		})
		for _, h := range sec.Holdings {
			sec.Totals.Invested = sec.Totals.Invested.Add(h.Invested)
			sec.Totals.Value = sec.Totals.Value.Add(h.Value)
			sec.Totals.PnL = sec.Totals.PnL.Add(h.PnL)
		}
		sec.Totals.PnLPercent = ratio(sec.Totals.PnL.Decimal(), sec.Totals.Invested.Decimal())
		s.Categories = append(s.Categories, sec)
	}

	if err := s.applyVerdicts(opts.Verdicts); err != nil {
		return nil, err
	}
	if err := s.total(opts.FixedAssets, opts.FireTarget); err != nil {
		return nil, err
	}
	s.ID = s.contentID()
	return s, nil
}

// reject returns why a record cannot be consolidated, or "".
func reject(r HoldingRecord) string {
	switch {
	case r.Source == "":
		return "record has no source"
	case !r.HasIdentity():
		return "record has neither symbol nor ISIN"
	case !r.Category.Valid():
		return fmt.Sprintf("record has an unknown category %q", r.Category)
	case r.Quantity.IsNegative():
		return fmt.Sprintf("negative quantity %s for %s", r.Quantity, r.Symbol)
	case r.Invested.IsNegative():
		return fmt.Sprintf("negative invested amount %s for %s", r.Invested, r.Symbol)
	}
	cur := r.Category.Currency()
	for _, m := range []Money{r.AverageCost, r.Invested, r.Price, r.Value} {
		if m.Currency() != "" && m.Currency() != cur {
			return fmt.Sprintf("amount in %s for a %s holding in %s", m.Currency(), r.Category, cur)
		}
	}
	return ""
}

// adoptedISINs maps, per category, each symbol to the ISIN that some record
// carries for it.
func adoptedISINs(records []HoldingRecord) map[Category]map[string]string {
	isins := make(map[Category]map[string]string)
	for _, r := range records {
		sym := canonical(r.Symbol)
		if r.ISIN == "" || sym == "" {
			continue
		}
		if isins[r.Category] == nil {
			isins[r.Category] = make(map[string]string)
		}
		if _, exists := isins[r.Category][sym]; !exists {
			isins[r.Category][sym] = r.ISIN
		}
	}
	return isins
}

func newPosition(key, isin string, c Category) *position {
	cur := c.Currency()
	return &position{
		h: ConsolidatedHolding{
			Key:      key,
			ISIN:     isin,
			Category: c,
			Invested: M(0, cur),
		},
		brokers:        make(map[string]bool),
		statementValue: M(0, cur),
	}
}

func (p *position) add(r HoldingRecord) {
	cur := p.h.Category.Currency()
	if p.h.Symbol == "" {
		p.h.Symbol = r.Symbol
	}
	if p.h.Name == "" {
		p.h.Name = r.Name
	}
	if p.h.Sector == "" {
		p.h.Sector = r.Sector
	}
	invested := r.Invested.In(cur)
	p.h.Quantity = p.h.Quantity.Add(r.Quantity)
	p.h.Invested = p.h.Invested.Add(invested)
	p.brokers[r.Source] = true
	if !r.Value.IsZero() {
		p.statementValue = p.statementValue.Add(r.Value.In(cur))
		p.hasValue = true
	}
	if !r.Price.IsZero() {
		p.statementPrice = r.Price.In(cur)
	}
	if r.XIRR != 0 {
		p.xirrWeighted = p.xirrWeighted.Add(decimal.NewFromFloat(float64(r.XIRR)).Mul(invested.Decimal()))
	}
	p.xirrInvested = p.xirrInvested.Add(invested.Decimal())
	p.h.Lots = append(p.h.Lots, Lot{
		Source:      r.Source,
		Quantity:    r.Quantity,
		AverageCost: r.AverageCost.In(cur),
		Invested:    invested,
		Value:       r.Value.In(cur),
	})
}

// finalize prices the position. It returns a warning when no price is known.
func (p *position) finalize(prices PriceBook) (ConsolidatedHolding, *Warning) {
	h := p.h
	cur := h.Category.Currency()
	var warning *Warning

	// amounts are kept to the minor unit so that totals add up once persisted
	h.Invested = h.Invested.Round()
	h.Lots = slices.Clone(h.Lots)
	for i := range h.Lots {
		h.Lots[i].Invested = h.Lots[i].Invested.Round()
		h.Lots[i].Value = h.Lots[i].Value.Round()
		h.Lots[i].AverageCost = h.Lots[i].AverageCost.exact()
	}

	h.AverageCost = M(0, cur)
	if h.Quantity.IsPositive() {
		h.AverageCost = h.Invested.Div(h.Quantity).Round()
	}

	if price, ok := prices.Lookup(h.Key, h.ISIN, h.Symbol); ok {
		h.Price = M(price, cur).exact()
		h.Value = h.Price.Mul(h.Quantity).Round()
	} else if p.hasValue {
		h.Value = p.statementValue.Round()
		h.Price = p.statementPrice.exact()
		if h.Price.IsZero() && h.Quantity.IsPositive() {
			h.Price = h.Value.Div(h.Quantity)
		}
	} else if !p.statementPrice.IsZero() {
		h.Price = p.statementPrice.exact()
		h.Value = h.Price.Mul(h.Quantity).Round()
	} else {
		h.Value = h.Invested
		h.Price = h.AverageCost
		warning = &Warning{
			Kind:    MissingPrice,
			Source:  h.Lots[0].Source,
			Message: fmt.Sprintf("no price for %s, valued at cost", h.display()),
		}
	}
	h.Price = h.Price.In(cur)

	h.PnL = h.Value.Sub(h.Invested)
	h.PnLPercent = ratio(h.PnL.Decimal(), h.Invested.Decimal())
	h.XIRR = ratio(p.xirrWeighted, p.xirrInvested.Shift(2))

	h.Brokers = make([]string, 0, len(p.brokers))
	for b := range p.brokers {
		h.Brokers = append(h.Brokers, b)
	}
	sort.Strings(h.Brokers)
	return h, warning
}

func (h ConsolidatedHolding) display() string {
	switch {
	case h.Symbol != "":
		return h.Symbol
	case h.Name != "":
		return h.Name
	}
	return h.ISIN
}

// applyVerdicts attaches the verdict overrides to holdings matched by ISIN,
// symbol or key. Unmatched overrides are reported and ignored.
func (s *Snapshot) applyVerdicts(verdicts map[string]Verdict) error {
	ids := make([]string, 0, len(verdicts))
	for id := range verdicts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		v := verdicts[id]
		switch v.Verdict {
		case "BUY", "HOLD", "EXIT":
		default:
			return fmt.Errorf("invalid verdict %q for %s: want BUY, HOLD or EXIT", v.Verdict, id)
		}
		matched := false
		c := canonical(id)
		for i := range s.Categories {
			for j := range s.Categories[i].Holdings {
				h := &s.Categories[i].Holdings[j]
				if h.Key == id || (h.ISIN != "" && h.ISIN == c) || canonical(h.Symbol) == c {
					v := v
					h.Verdict = &v
					if h.Sector == "" {
						h.Sector = v.Sector
					}
					matched = true
				}
			}
		}
		if !matched {
			s.Warnings = append(s.Warnings, Warning{Kind: UnmatchedOverride, Message: fmt.Sprintf("verdict for %s matches no holding", id)})
		}
	}
	return nil
}

// rate returns the number of base currency units per unit of cur.
func (s *Snapshot) rate(cur string) (decimal.Decimal, error) {
	if cur == s.BaseCurrency {
		return decimal.NewFromInt(1), nil
	}
	r, ok := s.FXRates[cur]
	if !ok || !r.IsPositive() {
		return decimal.Zero, fmt.Errorf("no exchange rate from %s to %s", cur, s.BaseCurrency)
	}
	return r, nil
}

// total computes grand totals in base currency, allocations, weights and
// FIRE progress.
func (s *Snapshot) total(fixed map[string]Money, fireTarget Money) error {
	base := s.BaseCurrency
	s.Totals = newTotals(base)
	rates := make([]decimal.Decimal, len(s.Categories))
	for i, sec := range s.Categories {
		r, err := s.rate(sec.Currency)
		if err != nil {
			return err
		}
		rates[i] = r
		s.Totals = s.Totals.add(sec.Totals, r, base)
	}

	names := make([]string, 0, len(fixed))
	for name := range fixed {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		amount := fixed[name].In(base)
		if amount.Currency() != base {
			return fmt.Errorf("fixed asset %q must be in %s, got %s", name, base, amount.Currency())
		}
		amount = amount.Round()
		s.FixedAssets = append(s.FixedAssets, FixedAsset{Name: name, Amount: amount})
		s.Totals.Invested = s.Totals.Invested.Add(amount)
		s.Totals.Value = s.Totals.Value.Add(amount)
	}
	s.Totals.Invested = s.Totals.Invested.Round()
	s.Totals.Value = s.Totals.Value.Round()
	s.Totals.PnL = s.Totals.Value.Sub(s.Totals.Invested)
	s.Totals.PnLPercent = ratio(s.Totals.PnL.Decimal(), s.Totals.Invested.Decimal())

	grand := s.Totals.Value.Decimal()
	for i := range s.Categories {
		sec := &s.Categories[i]
		sec.Allocation = ratio(sec.Totals.Value.Decimal().Mul(rates[i]), grand)
		for j := range sec.Holdings {
			h := &sec.Holdings[j]
			h.Weight = ratio(h.Value.Decimal().Mul(rates[i]), grand)
		}
	}
	for i := range s.FixedAssets {
		s.FixedAssets[i].Allocation = ratio(s.FixedAssets[i].Amount.Decimal(), grand)
	}

	if fireTarget.IsPositive() {
		target := fireTarget.In(base)
		if target.Currency() != base {
			return fmt.Errorf("FIRE target must be in %s, got %s", base, target.Currency())
		}
		f := &Fire{Target: target, Corpus: s.Totals.Value, Remaining: M(0, base)}
		f.Progress = ratio(f.Corpus.Decimal(), target.Decimal())
		if target.GreaterThan(f.Corpus) {
			f.Remaining = target.Sub(f.Corpus)
		}
		s.Fire = f
	}
	return nil
}

// contentID derives the snapshot id from its content so that the same
// statements always produce the same document.
func (s *Snapshot) contentID() string {
	payload, err := json.Marshal(struct {
		Categories  []CategorySection
		FixedAssets []FixedAsset
		Totals      Totals
		Sources     []SourceFile
		Warnings    []Warning
	}{s.Categories, s.FixedAssets, s.Totals, s.Sources, s.Warnings})
	if err != nil {
		payload = []byte(fmt.Sprint(s.Categories, s.Totals))
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, payload).String()
}
