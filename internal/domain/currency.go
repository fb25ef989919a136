package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RatePair identifies a directed currency pair.
type RatePair struct {
	From string
	To   string
}

// RateOrigin records which lookup path produced a rate, so a conversion
// result can be audited back to its source.
type RateOrigin string

const (
	RateIdentity     RateOrigin = "identity"
	RateDirect       RateOrigin = "direct"
	RateInverse      RateOrigin = "inverse"
	RateTriangulated RateOrigin = "triangulated"
)

// RateTable holds exchange rates for a point in time. Pivot is the currency
// used to triangulate pairs with no direct or inverse quote.
type RateTable struct {
	Pivot string
	rates map[RatePair]decimal.Decimal
}

// NewRateTable creates an empty rate table pivoting on the given currency.
func NewRateTable(pivot string) *RateTable {
	return &RateTable{
		Pivot: NormalizeCurrency(pivot),
		rates: make(map[RatePair]decimal.Decimal),
	}
}

// SetRate records the multiplicative rate from one currency to another.
func (t *RateTable) SetRate(from, to string, rate decimal.Decimal) {
	t.rates[RatePair{From: NormalizeCurrency(from), To: NormalizeCurrency(to)}] = rate
}

// Rate resolves the rate from one currency to another: direct quote first,
// then the inverse of the reverse pair, then triangulation through the pivot.
func (t *RateTable) Rate(from, to string) (decimal.Decimal, RateOrigin, error) {
	from = NormalizeCurrency(from)
	to = NormalizeCurrency(to)

	if !SupportedCurrency(from) {
		return decimal.Zero, "", fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
	}

	if !SupportedCurrency(to) {
		return decimal.Zero, "", fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}

	if from == to {
		return decimal.NewFromInt(1), RateIdentity, nil
	}

	if rate, ok := t.rates[RatePair{From: from, To: to}]; ok {
		return rate, RateDirect, nil
	}

	if reverse, ok := t.rates[RatePair{From: to, To: from}]; ok && !reverse.IsZero() {
		return decimal.NewFromInt(1).Div(reverse), RateInverse, nil
	}

	toPivot, ok := t.quote(from, t.Pivot)
	if !ok {
		return decimal.Zero, "", fmt.Errorf("%w: %s to %s", ErrRateUnavailable, from, to)
	}

	fromPivot, ok := t.quote(t.Pivot, to)
	if !ok {
		return decimal.Zero, "", fmt.Errorf("%w: %s to %s", ErrRateUnavailable, from, to)
	}

	return toPivot.Mul(fromPivot), RateTriangulated, nil
}

// Convert converts an amount between currencies. Same-currency conversion
// returns the amount unchanged without any table lookup.
func (t *RateTable) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, RateOrigin, error) {
	if NormalizeCurrency(from) == NormalizeCurrency(to) {
		if !SupportedCurrency(from) {
			return decimal.Zero, "", fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
		}

		return amount, RateIdentity, nil
	}

	rate, origin, err := t.Rate(from, to)
	if err != nil {
		return decimal.Zero, "", err
	}

	return amount.Mul(rate), origin, nil
}

// quote resolves a single leg as direct or inverse only. Triangulation never
// recurses through another pivot.
func (t *RateTable) quote(from, to string) (decimal.Decimal, bool) {
	if from == to {
		return decimal.NewFromInt(1), true
	}

	if rate, ok := t.rates[RatePair{From: from, To: to}]; ok {
		return rate, true
	}

	if reverse, ok := t.rates[RatePair{From: to, To: from}]; ok && !reverse.IsZero() {
		return decimal.NewFromInt(1).Div(reverse), true
	}

	return decimal.Zero, false
}

// rateTableJSON is the serialized form, with "FROM/TO" pair keys.
type rateTableJSON struct {
	Pivot string            `json:"pivot"`
	Rates map[string]string `json:"rates"`
}

// MarshalJSON serializes the table for caching.
func (t *RateTable) MarshalJSON() ([]byte, error) {
	out := rateTableJSON{
		Pivot: t.Pivot,
		Rates: make(map[string]string, len(t.rates)),
	}

	for pair, rate := range t.rates {
		out.Rates[pair.From+"/"+pair.To] = rate.String()
	}

	return json.Marshal(out)
}

// UnmarshalJSON restores a cached table.
func (t *RateTable) UnmarshalJSON(data []byte) error {
	var in rateTableJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	t.Pivot = in.Pivot
	t.rates = make(map[RatePair]decimal.Decimal, len(in.Rates))

	for key, value := range in.Rates {
		from, to, ok := strings.Cut(key, "/")
		if !ok {
			return fmt.Errorf("malformed rate pair %q", key)
		}

		rate, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("malformed rate for %q: %w", key, err)
		}

		t.rates[RatePair{From: from, To: to}] = rate
	}

	return nil
}
