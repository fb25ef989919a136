package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tolerance is the absolute epsilon for money comparisons: split totals must
// match the expense amount within it, and a balance within it is settled.
var Tolerance = decimal.RequireFromString("0.01")

// Participation is one member's share of responsibility and actual payment
// within one expense. Both values are non-negative.
type Participation struct {
	UserID         string
	ResponsibleFor decimal.Decimal
	Paid           decimal.Decimal
}

// Expense is a single spend belonging to one event. ExchangeRate, when set,
// is the multiplicative factor from Currency to the event's base currency,
// captured once at insertion and never recomputed retroactively.
type Expense struct {
	Amount       decimal.Decimal
	Currency     string
	Note         string
	CreatedAt    time.Time
	Participants []Participation
	ExchangeRate *decimal.Decimal
}

// ExpenseInput is a candidate expense before validation.
type ExpenseInput struct {
	Amount       decimal.Decimal
	Currency     string
	Note         string
	Participants []Participation
}

// NewExpense validates a candidate expense against its owning event and
// returns the admitted record. Checks run in order and short-circuit on the
// first failure; the returned errors quote expected vs actual totals so the
// caller can correct input without guessing. Participants contributing
// nothing (zero responsible, zero paid) are dropped from the stored record.
func NewExpense(event *Event, input ExpenseInput) (*Expense, error) {
	if err := ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(input.Participants))

	for _, p := range input.Participants {
		if !event.HasMember(p.UserID) {
			return nil, fmt.Errorf("%w: %s", ErrNotAMember, p.UserID)
		}

		if seen[p.UserID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParticipant, p.UserID)
		}
		seen[p.UserID] = true

		if p.ResponsibleFor.IsNegative() || p.Paid.IsNegative() {
			return nil, fmt.Errorf("%w: %s", ErrNegativeShare, p.UserID)
		}
	}

	totalResponsible := decimal.Zero
	totalPaid := decimal.Zero

	for _, p := range input.Participants {
		totalResponsible = totalResponsible.Add(p.ResponsibleFor)
		totalPaid = totalPaid.Add(p.Paid)
	}

	if totalResponsible.Sub(input.Amount).Abs().GreaterThan(Tolerance) {
		return nil, fmt.Errorf("%w: responsible total %s != amount %s",
			ErrResponsibleMismatch, totalResponsible.StringFixed(2), input.Amount.StringFixed(2))
	}

	if totalPaid.Sub(input.Amount).Abs().GreaterThan(Tolerance) {
		return nil, fmt.Errorf("%w: paid total %s != amount %s",
			ErrPaidMismatch, totalPaid.StringFixed(2), input.Amount.StringFixed(2))
	}

	participants := make([]Participation, 0, len(input.Participants))
	for _, p := range input.Participants {
		if p.ResponsibleFor.IsZero() && p.Paid.IsZero() {
			continue
		}

		participants = append(participants, p)
	}

	return &Expense{
		Amount:       input.Amount,
		Currency:     NormalizeCurrency(input.Currency),
		Note:         input.Note,
		CreatedAt:    time.Now().UTC(),
		Participants: participants,
	}, nil
}

// BaseRate returns the captured rate to the event base currency, or 1 when
// the expense was recorded in the base currency.
func (e *Expense) BaseRate() decimal.Decimal {
	if e.ExchangeRate == nil {
		return decimal.NewFromInt(1)
	}

	return *e.ExchangeRate
}

// BaseAmount returns the expense amount expressed in the event base currency
// using the captured rate.
func (e *Expense) BaseAmount() decimal.Decimal {
	return e.Amount.Mul(e.BaseRate())
}
