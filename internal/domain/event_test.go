package domain_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/gosplit/internal/domain"
)

func addExpense(t *testing.T, event *domain.Event, input domain.ExpenseInput) {
	t.Helper()

	expense, err := domain.NewExpense(event, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	event.AddExpense(*expense)
}

func TestEvent_Balances(t *testing.T) {
	event := testEvent()

	// alice fronts 100; alice and bob owe 50 each.
	addExpense(t, event, domain.ExpenseInput{
		Amount:   dec("100"),
		Currency: "USD",
		Participants: []domain.Participation{
			{UserID: "alice", ResponsibleFor: dec("50"), Paid: dec("100")},
			{UserID: "bob", ResponsibleFor: dec("50")},
		},
	})

	balances := event.Balances()

	if got := balances["alice"]; !got.Equal(dec("50")) {
		t.Fatalf("alice: expected +50, got %s", got)
	}

	if got := balances["bob"]; !got.Equal(dec("-50")) {
		t.Fatalf("bob: expected -50, got %s", got)
	}

	// carol took no part but appears with an explicit zero.
	got, ok := balances["carol"]
	if !ok {
		t.Fatal("expected carol in balances")
	}

	if !got.IsZero() {
		t.Fatalf("carol: expected 0, got %s", got)
	}
}

func TestEvent_Balances_Conservation(t *testing.T) {
	event := testEvent()

	inputs := []domain.ExpenseInput{
		{
			Amount:   dec("90"),
			Currency: "USD",
			Participants: []domain.Participation{
				{UserID: "alice", ResponsibleFor: dec("30"), Paid: dec("90")},
				{UserID: "bob", ResponsibleFor: dec("30")},
				{UserID: "carol", ResponsibleFor: dec("30")},
			},
		},
		{
			Amount:   dec("33.33"),
			Currency: "USD",
			Participants: []domain.Participation{
				{UserID: "alice", ResponsibleFor: dec("11.11")},
				{UserID: "bob", ResponsibleFor: dec("11.11"), Paid: dec("33.33")},
				{UserID: "carol", ResponsibleFor: dec("11.11")},
			},
		},
		{
			Amount:   dec("7.50"),
			Currency: "USD",
			Participants: []domain.Participation{
				{UserID: "carol", ResponsibleFor: dec("7.50"), Paid: dec("3.75")},
				{UserID: "bob", Paid: dec("3.75")},
			},
		},
	}

	for _, input := range inputs {
		addExpense(t, event, input)
	}

	sum := decimal.Zero
	for _, balance := range event.Balances() {
		sum = sum.Add(balance)
	}

	if sum.Abs().GreaterThan(domain.Tolerance) {
		t.Fatalf("balances do not conserve: sum %s", sum)
	}

	if err := event.CheckConservation(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEvent_Balances_CapturedRate(t *testing.T) {
	event := testEvent()

	expense, err := domain.NewExpense(event, domain.ExpenseInput{
		Amount:   dec("100"),
		Currency: "EUR",
		Participants: []domain.Participation{
			{UserID: "alice", ResponsibleFor: dec("50"), Paid: dec("100")},
			{UserID: "bob", ResponsibleFor: dec("50")},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rate := dec("1.10")
	expense.ExchangeRate = &rate
	event.AddExpense(*expense)

	// Balances are in USD: 50 EUR net at the captured 1.10 rate.
	balances := event.Balances()
	if got := balances["alice"]; !got.Equal(dec("55")) {
		t.Fatalf("alice: expected +55, got %s", got)
	}

	if got := event.TotalExpenses(); !got.Equal(dec("110")) {
		t.Fatalf("total: expected 110, got %s", got)
	}
}

func TestEvent_CheckConservation_Corrupted(t *testing.T) {
	event := testEvent()

	// Bypass the validator to simulate a corrupted stored record.
	event.AddExpense(domain.Expense{
		Amount:   dec("100"),
		Currency: "USD",
		Participants: []domain.Participation{
			{UserID: "alice", ResponsibleFor: dec("30"), Paid: dec("100")},
		},
	})

	err := event.CheckConservation()
	if !errors.Is(err, domain.ErrLedgerInconsistent) {
		t.Fatalf("expected ErrLedgerInconsistent, got %v", err)
	}
}

func TestEvent_RemoveExpense_ShiftsIndices(t *testing.T) {
	event := testEvent()

	notes := []string{"first", "second", "third"}
	for _, note := range notes {
		addExpense(t, event, domain.ExpenseInput{
			Amount:   dec("10"),
			Currency: "USD",
			Note:     note,
			Participants: []domain.Participation{
				{UserID: "alice", ResponsibleFor: dec("10"), Paid: dec("10")},
			},
		})
	}

	if err := event.RemoveExpense(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Indices are positional: after deleting index 0, a caller still
	// holding index 1 now addresses what used to be "third". That is the
	// documented contract, not a bug.
	shifted, err := event.ExpenseAt(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if shifted.Note != "third" {
		t.Fatalf("expected stale index 1 to address %q, got %q", "third", shifted.Note)
	}

	if _, err := event.ExpenseAt(2); !errors.Is(err, domain.ErrExpenseNotFound) {
		t.Fatalf("expected ErrExpenseNotFound, got %v", err)
	}
}

func TestEvent_RemoveExpense_OutOfRange(t *testing.T) {
	event := testEvent()

	for _, index := range []int{-1, 0, 5} {
		if err := event.RemoveExpense(index); !errors.Is(err, domain.ErrExpenseNotFound) {
			t.Fatalf("index %d: expected ErrExpenseNotFound, got %v", index, err)
		}
	}
}

func TestEvent_MemberByEmail(t *testing.T) {
	event := testEvent()

	member, ok := event.MemberByEmail("bob@example.com")
	if !ok || member.UserID != "bob" {
		t.Fatalf("expected bob, got %+v ok=%v", member, ok)
	}

	if _, ok := event.MemberByEmail("nobody@example.com"); ok {
		t.Fatal("expected lookup miss")
	}
}
