package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidEventName = errors.New("invalid event name")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrAmountTooLarge   = errors.New("amount exceeds maximum allowed")
	ErrInvalidEmail     = errors.New("invalid email format")
)

// Validation constants
const (
	MaxEventNameLength = 255
	MinEventNameLength = 1
	MaxExpenseAmount   = "1000000000000" // 1 trillion
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"ILS": true, "CNY": true, "AUD": true, "CAD": true,
	"CHF": true, "SEK": true, "NZD": true, "KRW": true,
	"SGD": true, "NOK": true, "MXN": true, "INR": true,
	"BRL": true, "ZAR": true, "TRY": true, "HKD": true,
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// ValidateCurrency validates a currency code against the supported set.
func ValidateCurrency(currency string) error {
	if !validCurrencies[NormalizeCurrency(currency)] {
		return fmt.Errorf("%w: %s is not a supported ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// SupportedCurrency reports whether the code is in the supported set.
func SupportedCurrency(currency string) bool {
	return validCurrencies[NormalizeCurrency(currency)]
}

// ValidateEventName validates an event name.
func ValidateEventName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinEventNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidEventName)
	}

	if len(name) > MaxEventNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidEventName, MaxEventNameLength)
	}

	return nil
}

// ValidateAmount validates an expense amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: got %s", ErrInvalidAmount, amount.String())
	}

	maxAmount, _ := decimal.NewFromString(MaxExpenseAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxExpenseAmount)
	}

	return nil
}

// ValidateEmail validates email format.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
