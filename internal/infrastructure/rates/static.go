// Package rates supplies exchange-rate tables from a static quote list.
// Quotes are held against a single base currency and re-pivoted on demand,
// so a table requested for any quoted currency carries a direct rate to
// every other quoted currency.
package rates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gosplit/internal/domain"
)

// StaticSource implements usecase.RateSource from an in-memory quote list.
type StaticSource struct {
	base   string
	quotes map[string]decimal.Decimal
}

// NewStaticSource creates a source with the built-in quote list pivoted on
// base. The built-in list covers the majors plus ILS.
func NewStaticSource(base string) (*StaticSource, error) {
	return NewStaticSourceFromSpec(base, defaultQuoteSpec)
}

// NewStaticSourceFromSpec creates a source from a quote spec: comma-separated
// "FROM/TO=RATE" entries, each quoted against the base currency.
func NewStaticSourceFromSpec(base, spec string) (*StaticSource, error) {
	base = domain.NormalizeCurrency(base)
	if !domain.SupportedCurrency(base) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCurrency, base)
	}

	quotes := map[string]decimal.Decimal{
		base: decimal.NewFromInt(1),
	}

	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		pair, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("malformed rate entry %q", entry)
		}

		from, to, ok := strings.Cut(pair, "/")
		if !ok {
			return nil, fmt.Errorf("malformed rate pair %q", pair)
		}

		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil || !rate.IsPositive() {
			return nil, fmt.Errorf("malformed rate for %q: %s", pair, value)
		}

		from = domain.NormalizeCurrency(from)
		to = domain.NormalizeCurrency(to)
		if !domain.SupportedCurrency(from) || !domain.SupportedCurrency(to) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCurrency, pair)
		}

		switch base {
		case from:
			quotes[to] = rate
		case to:
			quotes[from] = decimal.NewFromInt(1).Div(rate)
		default:
			return nil, fmt.Errorf("rate pair %q is not quoted against %s", pair, base)
		}
	}

	return &StaticSource{base: base, quotes: quotes}, nil
}

// Table returns a rate table pivoted on the requested currency. The quote
// list is re-based so every quoted currency has a direct rate from the pivot.
func (s *StaticSource) Table(ctx context.Context, pivot string, asOf time.Time) (*domain.RateTable, error) {
	pivot = domain.NormalizeCurrency(pivot)
	if !domain.SupportedCurrency(pivot) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCurrency, pivot)
	}

	pivotQuote, ok := s.quotes[pivot]
	if !ok {
		return nil, fmt.Errorf("%w: no quote for %s", domain.ErrRateUnavailable, pivot)
	}

	table := domain.NewRateTable(pivot)
	for currency, quote := range s.quotes {
		if currency == pivot {
			continue
		}
		table.SetRate(pivot, currency, quote.Div(pivotQuote))
	}

	return table, nil
}

// defaultQuoteSpec is the fallback table, quoted against USD.
const defaultQuoteSpec = "USD/EUR=0.92,USD/GBP=0.79,USD/ILS=3.65,USD/JPY=147.20,USD/CHF=0.86,USD/CAD=1.36,USD/AUD=1.52"
