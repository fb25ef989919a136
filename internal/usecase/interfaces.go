package usecase

import (
	"context"
	"time"

	"github.com/iho/gosplit/internal/domain"
)

// EventRepository defines data access for events, their members, and their
// expense sequences.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Event, error)
	ReplaceExpenses(ctx context.Context, tx Transaction, eventID string, expenses []domain.Expense) error
	List(ctx context.Context, limit, offset int) ([]*domain.Event, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository defines data access for the member directory.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

// RateSource supplies an exchange-rate table pivoted on the given currency,
// valid as of the given time. Implementations backed by a network feed must
// honor the context deadline and surface domain.ErrRateUnavailable on expiry.
type RateSource interface {
	Table(ctx context.Context, pivot string, asOf time.Time) (*domain.RateTable, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient database failures. Each attempt
// must be self-contained: the operation opens and closes its own transaction.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
