package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gosplit/internal/domain"
	"github.com/iho/gosplit/internal/infrastructure/metrics"
)

// SettlementUseCase finalizes events: it projects the balance vector into a
// target currency and reduces it to a minimal payment plan. Finalize is
// read-only and may be invoked repeatedly.
type SettlementUseCase struct {
	eventRepo EventRepository
	rates     RateSource
	locks     *eventLocks
	metrics   *metrics.Metrics
}

// NewSettlementUseCase creates a new SettlementUseCase. It shares the event
// use case's lock table so finalize never observes a half-applied mutation.
func NewSettlementUseCase(eventRepo EventRepository, rates RateSource, eventUC *EventUseCase, metrics *metrics.Metrics) *SettlementUseCase {
	return &SettlementUseCase{
		eventRepo: eventRepo,
		rates:     rates,
		locks:     eventUC.locks,
		metrics:   metrics,
	}
}

// Finalize computes the settlement summary for an event in the target
// currency. Balances and the expense total are converted first; any
// conversion failure aborts the whole operation with no partial output.
func (uc *SettlementUseCase) Finalize(ctx context.Context, eventID, targetCurrency string) (*domain.Settlement, error) {
	if err := domain.ValidateCurrency(targetCurrency); err != nil {
		return nil, err
	}
	targetCurrency = domain.NormalizeCurrency(targetCurrency)

	unlock := uc.locks.RLock(eventID)
	defer unlock()

	event, err := uc.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := event.CheckConservation(); err != nil {
		return nil, err
	}

	table, err := uc.rates.Table(ctx, event.BaseCurrency, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	balances := event.Balances()
	converted := make(map[string]decimal.Decimal, len(balances))

	for userID, balance := range balances {
		amount, _, err := table.Convert(balance, event.BaseCurrency, targetCurrency)
		if err != nil {
			return nil, err
		}

		converted[userID] = amount.Round(2)
	}

	// Each expense converts independently from its own currency. The total
	// is not derived from the balance vector.
	total := decimal.Zero

	for _, expense := range event.Expenses {
		amount, _, err := table.Convert(expense.Amount, expense.Currency, targetCurrency)
		if err != nil {
			return nil, err
		}

		total = total.Add(amount)
	}

	payments := domain.Settle(converted, targetCurrency)

	if uc.metrics != nil {
		uc.metrics.SettlementsComputed.Inc()
		uc.metrics.SettlementPayments.Observe(float64(len(payments)))
	}

	return &domain.Settlement{
		Currency:       targetCurrency,
		TotalExpenses:  total.Round(2),
		MemberBalances: converted,
		Payments:       payments,
	}, nil
}
