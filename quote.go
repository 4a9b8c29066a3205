package wealth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/wealth/logging"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// QuoteSource fetches latest prices from a JSON quote endpoint.
type QuoteSource struct {
	// URL is the endpoint template, "{symbol}" is replaced by the escaped symbol.
	URL string
	// Path is the JSONPath expression of the price in the response.
	Path    string
	Client  *http.Client  // defaults to http.DefaultClient
	Limiter *rate.Limiter // optional
	Logger  *logging.Logger
}

// NewQuoteSource returns a source limited to perSecond requests, with a daily disk cache.
func NewQuoteSource(urlTemplate, path string, perSecond float64, logger *logging.Logger) *QuoteSource {
	q := &QuoteSource{
		URL:    urlTemplate,
		Path:   path,
		Client: DailyClient(logger),
		Logger: logger,
	}
	if perSecond > 0 {
		q.Limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return q
}

// Fetch returns the prices of ids it could fetch. A failure for one id is
// a missing_price warning, only a cancelled context stops the loop.
func (q *QuoteSource) Fetch(ctx context.Context, ids []string) (PriceBook, []Warning, error) {
	logger := logging.OrSilent(q.Logger)
	client := q.Client
	if client == nil {
		client = http.DefaultClient
	}
	book := make(PriceBook)
	var warnings []Warning
	for _, id := range ids {
		if q.Limiter != nil {
			if err := q.Limiter.Wait(ctx); err != nil {
				return book, warnings, err
			}
		}
		p, err := q.quote(ctx, client, id)
		if err != nil {
			if ctx.Err() != nil {
				return book, warnings, ctx.Err()
			}
			logger.Warn().Str("id", id).Err(err).Msg("quote failed")
			warnings = append(warnings, Warning{Kind: MissingPrice, Message: fmt.Sprintf("quote for %s: %v", id, err)})
			continue
		}
		logger.Debug().Str("id", id).Str("price", p.String()).Msg("quote")
		book.Set(id, p)
	}
	return book, warnings, nil
}

func (q *QuoteSource) quote(ctx context.Context, client *http.Client, id string) (decimal.Decimal, error) {
	addr := strings.ReplaceAll(q.URL, "{symbol}", url.QueryEscape(id))
	content, err := jwget(ctx, client, addr)
	if err != nil {
		return decimal.Zero, err
	}
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return decimal.Zero, fmt.Errorf("invalid JSON: %w", err)
	}
	jval, err := jsonpath.Get(q.Path, jobj)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error parsing %q: %w", q.Path, err)
	}
	// because jsonpath is never clear about wheter it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	p, err := jsonDecimal(jval)
	if err != nil {
		return decimal.Zero, err
	}
	if !p.IsPositive() {
		return decimal.Zero, fmt.Errorf("no value to return: %v", jval)
	}
	return p, nil
}
