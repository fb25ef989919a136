package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Payment is a single directed transfer that reduces outstanding debt
// between two members. It exists only as finalize output and is never
// persisted.
type Payment struct {
	FromUserID string
	ToUserID   string
	Amount     decimal.Decimal
	Currency   string
}

// Settlement is the result of finalizing an event: balances re-expressed in
// the requested currency plus the minimal transfer plan that settles them.
type Settlement struct {
	Currency       string
	TotalExpenses  decimal.Decimal
	MemberBalances map[string]decimal.Decimal
	Payments       []Payment
}

type party struct {
	userID string
	amount decimal.Decimal
}

// Settle reduces a balance vector to a minimal-size list of directed
// payments. It greedily matches the largest-magnitude debtor against the
// largest-magnitude creditor, transferring min of the two and repeating on
// the residue; ties in magnitude break on user id so output is
// deterministic. Members within Tolerance of zero are already settled and
// excluded. The greedy pairing yields at most n-1 payments for n unsettled
// members.
func Settle(balances map[string]decimal.Decimal, currency string) []Payment {
	var creditors, debtors []party

	for userID, balance := range balances {
		switch {
		case balance.GreaterThan(Tolerance):
			creditors = append(creditors, party{userID: userID, amount: balance})
		case balance.LessThan(Tolerance.Neg()):
			debtors = append(debtors, party{userID: userID, amount: balance.Neg()})
		}
	}

	sortParties(creditors)
	sortParties(debtors)

	payments := []Payment{}

	for len(creditors) > 0 && len(debtors) > 0 {
		creditor := &creditors[0]
		debtor := &debtors[0]

		transfer := decimal.Min(creditor.amount, debtor.amount)

		payments = append(payments, Payment{
			FromUserID: debtor.userID,
			ToUserID:   creditor.userID,
			Amount:     transfer,
			Currency:   currency,
		})

		creditor.amount = creditor.amount.Sub(transfer)
		debtor.amount = debtor.amount.Sub(transfer)

		if !creditor.amount.GreaterThan(Tolerance) {
			creditors = creditors[1:]
		} else {
			reposition(creditors)
		}

		if !debtor.amount.GreaterThan(Tolerance) {
			debtors = debtors[1:]
		} else {
			reposition(debtors)
		}
	}

	return payments
}

// sortParties orders by magnitude descending, user id ascending on ties.
func sortParties(parties []party) {
	sort.Slice(parties, func(i, j int) bool {
		if !parties[i].amount.Equal(parties[j].amount) {
			return parties[i].amount.GreaterThan(parties[j].amount)
		}

		return parties[i].userID < parties[j].userID
	})
}

// reposition restores sorted order after the head's amount was reduced. Only
// the head can be out of place, so one pass of sinking suffices.
func reposition(parties []party) {
	for i := 0; i+1 < len(parties); i++ {
		a, b := parties[i], parties[i+1]
		if a.amount.GreaterThan(b.amount) || (a.amount.Equal(b.amount) && a.userID < b.userID) {
			break
		}

		parties[i], parties[i+1] = b, a
	}
}
