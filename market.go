package wealth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// DefaultPricePath locates the price object in a price file.
const DefaultPricePath = "$.prices"

// PriceBook holds the latest known market price per security. Keys are
// identity keys, ISINs or symbols, in any case.
type PriceBook map[string]decimal.Decimal

// Set records the price of a security.
func (b PriceBook) Set(id string, price decimal.Decimal) {
	b[priceKey(id)] = price
}

// Lookup returns the price of the first id known to the book.
func (b PriceBook) Lookup(ids ...string) (decimal.Decimal, bool) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if p, ok := b[priceKey(id)]; ok {
			return p, true
		}
	}
	return decimal.Zero, false
}

// Merge copies all prices of o into b, o wins.
func (b PriceBook) Merge(o PriceBook) {
	for k, v := range o {
		b[k] = v
	}
}

// priceKey keeps identity keys as is and canonicalizes symbols and ISINs.
func priceKey(id string) string {
	if strings.HasPrefix(id, "isin:") || strings.HasPrefix(id, "symbol:") {
		return id
	}
	return canonical(id)
}

// LoadPrices reads a JSON price file. expr is a JSONPath expression selecting
// an object of prices indexed by key, ISIN or symbol; it defaults to DefaultPricePath.
func LoadPrices(path, expr string) (PriceBook, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	book, err := DecodePrices(content, expr)
	if err != nil {
		return nil, fmt.Errorf("cannot load prices from %s: %w", path, err)
	}
	return book, nil
}

// DecodePrices reads a price book from a JSON document.
func DecodePrices(content []byte, expr string) (PriceBook, error) {
	if expr == "" {
		expr = DefaultPricePath
	}
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	jval, err := jsonpath.Get(expr, jobj)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", expr, err)
	}
	// jsonpath may wrap a single answer in a list
	if jlist, ok := jval.([]any); ok && len(jlist) == 1 {
		jval = jlist[0]
	}
	prices, ok := jval.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%q does not select an object of prices", expr)
	}
	book := make(PriceBook, len(prices))
	for id, v := range prices {
		p, err := jsonDecimal(v)
		if err != nil {
			return nil, fmt.Errorf("invalid price for %q: %w", id, err)
		}
		book.Set(id, p)
	}
	return book, nil
}

// jsonDecimal reads a decimal from a decoded JSON value. Some APIs return
// numbers as strings, with thousands separators.
func jsonDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case json.Number:
		return decimal.NewFromString(x.String())
	case float64:
		return decimal.NewFromFloat(x), nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		s = strings.ReplaceAll(s, " ", "")
		return decimal.NewFromString(s)
	default:
		return decimal.Zero, fmt.Errorf("not a number: %v", v)
	}
}
