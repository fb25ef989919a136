package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Member is one participant of an event. Members are immutable once added.
type Member struct {
	UserID string
	Email  string
}

// Event is a shared-expense group: a fixed base currency, a member set, and
// an ordered expense sequence. It owns its members and expenses exclusively.
type Event struct {
	ID           string
	Name         string
	BaseCurrency string
	CreatedAt    time.Time
	Members      []Member
	Expenses     []Expense
}

// HasMember reports whether the user is a member of the event.
func (e *Event) HasMember(userID string) bool {
	for _, m := range e.Members {
		if m.UserID == userID {
			return true
		}
	}

	return false
}

// MemberByEmail resolves a member by email.
func (e *Event) MemberByEmail(email string) (Member, bool) {
	for _, m := range e.Members {
		if m.Email == email {
			return m, true
		}
	}

	return Member{}, false
}

// AddExpense appends an expense to the event.
func (e *Event) AddExpense(expense Expense) {
	e.Expenses = append(e.Expenses, expense)
}

// ExpenseAt returns the expense at a positional index.
func (e *Event) ExpenseAt(index int) (Expense, error) {
	if index < 0 || index >= len(e.Expenses) {
		return Expense{}, fmt.Errorf("%w: index %d", ErrExpenseNotFound, index)
	}

	return e.Expenses[index], nil
}

// ReplaceExpense swaps the expense at a positional index.
func (e *Event) ReplaceExpense(index int, expense Expense) error {
	if index < 0 || index >= len(e.Expenses) {
		return fmt.Errorf("%w: index %d", ErrExpenseNotFound, index)
	}

	e.Expenses[index] = expense

	return nil
}

// RemoveExpense deletes the expense at a positional index. Subsequent
// expenses shift down by one: indices are positional, not stable ids, and a
// caller holding an index across a delete must re-fetch.
func (e *Event) RemoveExpense(index int) error {
	if index < 0 || index >= len(e.Expenses) {
		return fmt.Errorf("%w: index %d", ErrExpenseNotFound, index)
	}

	e.Expenses = append(e.Expenses[:index], e.Expenses[index+1:]...)

	return nil
}

// Balances derives every member's net position in the event base currency:
// what they paid minus what they were responsible for, summed over all
// expenses, each expense contributing via its captured exchange rate.
// Members with no activity appear with an explicit zero.
func (e *Event) Balances() map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(e.Members))
	for _, m := range e.Members {
		balances[m.UserID] = decimal.Zero
	}

	for _, expense := range e.Expenses {
		rate := expense.BaseRate()
		for _, p := range expense.Participants {
			net := p.Paid.Sub(p.ResponsibleFor).Mul(rate)
			balances[p.UserID] = balances[p.UserID].Add(net)
		}
	}

	return balances
}

// TotalExpenses sums all expense amounts in the event base currency using
// each expense's captured rate.
func (e *Event) TotalExpenses() decimal.Decimal {
	total := decimal.Zero
	for _, expense := range e.Expenses {
		total = total.Add(expense.BaseAmount())
	}

	return total
}

// CheckConservation verifies that member balances sum to zero within
// tolerance. Every admitted expense has equal paid and responsible totals,
// so a violation means stored data was corrupted.
func (e *Event) CheckConservation() error {
	sum := decimal.Zero
	for _, balance := range e.Balances() {
		sum = sum.Add(balance)
	}

	if sum.Abs().GreaterThan(Tolerance) {
		return fmt.Errorf("%w: balance sum %s", ErrLedgerInconsistent, sum.String())
	}

	return nil
}
