package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gosplit/internal/domain"
	"github.com/iho/gosplit/internal/infrastructure/metrics"
)

// EventUseCase owns the per-event ledger: member setup, the expense
// sequence, and derived balances.
type EventUseCase struct {
	txManager TransactionManager
	eventRepo EventRepository
	userRepo  UserRepository
	rates     RateSource
	idGen     IDGenerator
	locks     *eventLocks
	metrics   *metrics.Metrics
	retrier   Retrier
}

// NewEventUseCase creates a new EventUseCase.
func NewEventUseCase(
	txManager TransactionManager,
	eventRepo EventRepository,
	userRepo UserRepository,
	rates RateSource,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *EventUseCase {
	return &EventUseCase{
		txManager: txManager,
		eventRepo: eventRepo,
		userRepo:  userRepo,
		rates:     rates,
		idGen:     idGen,
		locks:     newEventLocks(),
		metrics:   metrics,
	}
}

// WithRetrier makes every event write retry on transient database errors.
func (uc *EventUseCase) WithRetrier(retrier Retrier) *EventUseCase {
	uc.retrier = retrier
	return uc
}

// CreateEventInput represents input for creating an event.
type CreateEventInput struct {
	Name         string
	BaseCurrency string
	MemberEmails []string
}

// CreateEvent resolves every member email against the user directory and
// creates the event. The base currency is fixed for the event's lifetime.
func (uc *EventUseCase) CreateEvent(ctx context.Context, input CreateEventInput) (*domain.Event, error) {
	if err := domain.ValidateEventName(input.Name); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.BaseCurrency); err != nil {
		return nil, err
	}

	members := make([]domain.Member, 0, len(input.MemberEmails))
	seen := make(map[string]bool, len(input.MemberEmails))

	for _, email := range input.MemberEmails {
		user, err := uc.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("resolving member %s: %w", email, err)
		}

		if seen[user.ID] {
			continue
		}
		seen[user.ID] = true

		members = append(members, domain.Member{UserID: user.ID, Email: user.Email})
	}

	event := &domain.Event{
		ID:           uc.idGen.Generate(),
		Name:         input.Name,
		BaseCurrency: domain.NormalizeCurrency(input.BaseCurrency),
		CreatedAt:    time.Now().UTC(),
		Members:      members,
	}

	if err := uc.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EventsCreated.Inc()
	}

	return event, nil
}

// GetEvent retrieves an event by ID.
func (uc *EventUseCase) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	unlock := uc.locks.RLock(id)
	defer unlock()

	return uc.eventRepo.GetByID(ctx, id)
}

// ListEventsInput represents input for listing events.
type ListEventsInput struct {
	Limit  int
	Offset int
}

// ListEvents lists events with pagination.
func (uc *EventUseCase) ListEvents(ctx context.Context, input ListEventsInput) ([]*domain.Event, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.eventRepo.List(ctx, limit, offset)
}

// DeleteEvent tears down an event and everything it owns.
func (uc *EventUseCase) DeleteEvent(ctx context.Context, id string) error {
	unlock := uc.locks.Lock(id)

	err := uc.eventRepo.Delete(ctx, id)

	unlock()

	if err != nil {
		return err
	}

	uc.locks.Forget(id)

	if uc.metrics != nil {
		uc.metrics.EventsDeleted.Inc()
	}

	return nil
}

// ParticipantInput is one member's share in an expense request. Members may
// be referenced by user id or by email (the upstream client submits emails).
type ParticipantInput struct {
	UserID         string
	Email          string
	ResponsibleFor decimal.Decimal
	Paid           decimal.Decimal
}

// ExpenseInput represents a candidate expense.
type ExpenseInput struct {
	Amount       decimal.Decimal
	Currency     string
	Note         string
	Participants []ParticipantInput
}

// AddExpense validates and appends an expense, capturing the exchange rate
// to the event base currency at insertion time when currencies differ. The
// returned index is the expense's position within the event.
func (uc *EventUseCase) AddExpense(ctx context.Context, eventID string, input ExpenseInput) (*domain.Expense, int, error) {
	unlock := uc.locks.Lock(eventID)
	defer unlock()

	var (
		expense *domain.Expense
		index   int
	)

	err := uc.withEventTx(ctx, eventID, func(ctx context.Context, tx Transaction, event *domain.Event) error {
		var err error

		expense, err = uc.buildExpense(ctx, event, input)
		if err != nil {
			return err
		}

		event.AddExpense(*expense)
		index = len(event.Expenses) - 1

		return uc.eventRepo.ReplaceExpenses(ctx, tx, eventID, event.Expenses)
	})
	if err != nil {
		return nil, 0, err
	}

	if uc.metrics != nil {
		uc.metrics.ExpenseOperations.WithLabelValues("add").Inc()

		amount, _ := expense.Amount.Float64()
		uc.metrics.ExpenseAmount.Observe(amount)
	}

	return expense, index, nil
}

// UpdateExpense replaces the expense at a positional index, re-validating
// the input. The captured exchange rate is refreshed only when the amount or
// currency changed; editing the note alone keeps the historical rate.
func (uc *EventUseCase) UpdateExpense(ctx context.Context, eventID string, index int, input ExpenseInput) (*domain.Expense, error) {
	unlock := uc.locks.Lock(eventID)
	defer unlock()

	var expense *domain.Expense

	err := uc.withEventTx(ctx, eventID, func(ctx context.Context, tx Transaction, event *domain.Event) error {
		previous, err := event.ExpenseAt(index)
		if err != nil {
			return err
		}

		expense, err = uc.buildExpenseKeepingRate(ctx, event, input, &previous)
		if err != nil {
			return err
		}

		if err := event.ReplaceExpense(index, *expense); err != nil {
			return err
		}

		return uc.eventRepo.ReplaceExpenses(ctx, tx, eventID, event.Expenses)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ExpenseOperations.WithLabelValues("update").Inc()
	}

	return expense, nil
}

// DeleteExpense removes the expense at a positional index. Subsequent
// indices shift down by one.
func (uc *EventUseCase) DeleteExpense(ctx context.Context, eventID string, index int) error {
	unlock := uc.locks.Lock(eventID)
	defer unlock()

	err := uc.withEventTx(ctx, eventID, func(ctx context.Context, tx Transaction, event *domain.Event) error {
		if err := event.RemoveExpense(index); err != nil {
			return err
		}

		return uc.eventRepo.ReplaceExpenses(ctx, tx, eventID, event.Expenses)
	})
	if err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.ExpenseOperations.WithLabelValues("delete").Inc()
	}

	return nil
}

// BalanceSheet is the derived net position of every member, expressed in the
// event base currency.
type BalanceSheet struct {
	EventID      string
	BaseCurrency string
	Balances     map[string]decimal.Decimal
}

// Balances derives every member's net position in the event base currency,
// recomputed from the full expense history.
func (uc *EventUseCase) Balances(ctx context.Context, eventID string) (*BalanceSheet, error) {
	unlock := uc.locks.RLock(eventID)
	defer unlock()

	event, err := uc.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := event.CheckConservation(); err != nil {
		return nil, err
	}

	return &BalanceSheet{
		EventID:      event.ID,
		BaseCurrency: event.BaseCurrency,
		Balances:     event.Balances(),
	}, nil
}

// CheckConsistency verifies conservation of money for an event: the sum of
// all member balances must be zero within tolerance.
func (uc *EventUseCase) CheckConsistency(ctx context.Context, eventID string) (bool, error) {
	unlock := uc.locks.RLock(eventID)
	defer unlock()

	event, err := uc.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return false, err
	}

	if err := event.CheckConservation(); err != nil {
		return false, err
	}

	return true, nil
}

// withEventTx loads the event under a row lock, applies fn, and commits.
// Each retry attempt runs in a fresh transaction.
func (uc *EventUseCase) withEventTx(ctx context.Context, eventID string, fn func(context.Context, Transaction, *domain.Event) error) error {
	attempt := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer tx.Rollback(txCtx)

		event, err := uc.eventRepo.GetByIDForUpdate(txCtx, tx, eventID)
		if err != nil {
			return err
		}

		if err := fn(txCtx, tx, event); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	if uc.retrier == nil {
		return attempt()
	}

	return uc.retrier.Retry(ctx, attempt)
}

// buildExpense resolves participants, validates, and captures the exchange
// rate for a fresh expense.
func (uc *EventUseCase) buildExpense(ctx context.Context, event *domain.Event, input ExpenseInput) (*domain.Expense, error) {
	return uc.buildExpenseKeepingRate(ctx, event, input, nil)
}

func (uc *EventUseCase) buildExpenseKeepingRate(ctx context.Context, event *domain.Event, input ExpenseInput, previous *domain.Expense) (*domain.Expense, error) {
	participants, err := uc.resolveParticipants(event, input.Participants)
	if err != nil {
		return nil, err
	}

	expense, err := domain.NewExpense(event, domain.ExpenseInput{
		Amount:       input.Amount,
		Currency:     input.Currency,
		Note:         input.Note,
		Participants: participants,
	})
	if err != nil {
		return nil, err
	}

	if previous != nil && previous.Currency == expense.Currency && previous.Amount.Equal(expense.Amount) {
		expense.ExchangeRate = previous.ExchangeRate
		expense.CreatedAt = previous.CreatedAt

		return expense, nil
	}

	if expense.Currency != event.BaseCurrency {
		table, err := uc.rates.Table(ctx, event.BaseCurrency, time.Now().UTC())
		if err != nil {
			return nil, err
		}

		rate, _, err := table.Rate(expense.Currency, event.BaseCurrency)
		if err != nil {
			return nil, err
		}

		expense.ExchangeRate = &rate
	}

	return expense, nil
}

// resolveParticipants maps email references onto member user ids.
func (uc *EventUseCase) resolveParticipants(event *domain.Event, inputs []ParticipantInput) ([]domain.Participation, error) {
	participants := make([]domain.Participation, 0, len(inputs))

	for _, in := range inputs {
		userID := in.UserID
		if userID == "" {
			member, ok := event.MemberByEmail(in.Email)
			if !ok {
				return nil, fmt.Errorf("%w: %s", domain.ErrNotAMember, in.Email)
			}

			userID = member.UserID
		}

		participants = append(participants, domain.Participation{
			UserID:         userID,
			ResponsibleFor: in.ResponsibleFor,
			Paid:           in.Paid,
		})
	}

	return participants, nil
}
