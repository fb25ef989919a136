package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/gosplit/internal/domain"
)

func TestSettle_TwoMembers(t *testing.T) {
	balances := map[string]decimal.Decimal{
		"alice": dec("50"),
		"bob":   dec("-50"),
	}

	payments := domain.Settle(balances, "USD")

	if len(payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(payments))
	}

	p := payments[0]
	if p.FromUserID != "bob" || p.ToUserID != "alice" {
		t.Fatalf("expected bob->alice, got %s->%s", p.FromUserID, p.ToUserID)
	}

	if !p.Amount.Equal(dec("50")) {
		t.Fatalf("expected 50, got %s", p.Amount)
	}

	if p.Currency != "USD" {
		t.Fatalf("expected USD, got %s", p.Currency)
	}
}

func TestSettle_ThreeMembers_DeterministicTieBreak(t *testing.T) {
	// One 90 expense split evenly, paid entirely by alice. The two debtors
	// tie at 30; the smaller user id pays first.
	balances := map[string]decimal.Decimal{
		"alice": dec("60"),
		"bob":   dec("-30"),
		"carol": dec("-30"),
	}

	payments := domain.Settle(balances, "USD")

	if len(payments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(payments))
	}

	if payments[0].FromUserID != "bob" || !payments[0].Amount.Equal(dec("30")) {
		t.Fatalf("expected bob pays 30 first, got %+v", payments[0])
	}

	if payments[1].FromUserID != "carol" || !payments[1].Amount.Equal(dec("30")) {
		t.Fatalf("expected carol pays 30 second, got %+v", payments[1])
	}

	for _, p := range payments {
		if p.ToUserID != "alice" {
			t.Fatalf("expected all payments to alice, got %+v", p)
		}
	}
}

func TestSettle_AllSettled(t *testing.T) {
	balances := map[string]decimal.Decimal{
		"alice": decimal.Zero,
		"bob":   dec("0.005"),
		"carol": dec("-0.005"),
	}

	payments := domain.Settle(balances, "USD")

	if len(payments) != 0 {
		t.Fatalf("expected no payments, got %d", len(payments))
	}
}

func TestSettle_LargestAgainstLargest(t *testing.T) {
	balances := map[string]decimal.Decimal{
		"alice": dec("70"),
		"bob":   dec("30"),
		"carol": dec("-80"),
		"dave":  dec("-20"),
	}

	payments := domain.Settle(balances, "EUR")

	// carol(80) vs alice(70): 70. Then dave(20) outranks carol(10):
	// dave(20) vs bob(30): 20. Finally carol(10) vs bob(10): 10.
	want := []struct {
		from, to string
		amount   string
	}{
		{"carol", "alice", "70"},
		{"dave", "bob", "20"},
		{"carol", "bob", "10"},
	}

	if len(payments) != len(want) {
		t.Fatalf("expected %d payments, got %d: %+v", len(want), len(payments), payments)
	}

	for i, w := range want {
		p := payments[i]
		if p.FromUserID != w.from || p.ToUserID != w.to || !p.Amount.Equal(dec(w.amount)) {
			t.Fatalf("payment %d: expected %s->%s %s, got %s->%s %s",
				i, w.from, w.to, w.amount, p.FromUserID, p.ToUserID, p.Amount)
		}
	}
}

func TestSettle_PaymentsDriveBalancesToZero(t *testing.T) {
	balances := map[string]decimal.Decimal{
		"a": dec("123.45"),
		"b": dec("-23.45"),
		"c": dec("-50.00"),
		"d": dec("-50.00"),
		"e": dec("17.33"),
		"f": dec("-17.33"),
	}

	payments := domain.Settle(balances, "USD")

	residual := make(map[string]decimal.Decimal, len(balances))
	for id, b := range balances {
		residual[id] = b
	}

	for _, p := range payments {
		residual[p.FromUserID] = residual[p.FromUserID].Add(p.Amount)
		residual[p.ToUserID] = residual[p.ToUserID].Sub(p.Amount)
	}

	for id, b := range residual {
		if b.Abs().GreaterThan(domain.Tolerance) {
			t.Fatalf("member %s left with residual balance %s", id, b)
		}
	}
}

func TestSettle_Minimality(t *testing.T) {
	balances := map[string]decimal.Decimal{
		"a": dec("100"),
		"b": dec("40"),
		"c": dec("-60"),
		"d": dec("-50"),
		"e": dec("-30"),
		"f": decimal.Zero,
	}

	payments := domain.Settle(balances, "USD")

	// f is settled; five members carry balances, so at most four payments.
	if len(payments) > 4 {
		t.Fatalf("expected at most 4 payments, got %d", len(payments))
	}
}

func TestSettle_Idempotent(t *testing.T) {
	balances := map[string]decimal.Decimal{
		"a": dec("55.10"),
		"b": dec("-20.10"),
		"c": dec("-35.00"),
	}

	first := domain.Settle(balances, "USD")
	second := domain.Settle(balances, "USD")

	if len(first) != len(second) {
		t.Fatalf("expected identical plans, got %d vs %d payments", len(first), len(second))
	}

	for i := range first {
		a, b := first[i], second[i]
		if a.FromUserID != b.FromUserID || a.ToUserID != b.ToUserID || !a.Amount.Equal(b.Amount) {
			t.Fatalf("payment %d differs: %+v vs %+v", i, a, b)
		}
	}
}
