package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iho/gosplit/internal/domain"
	"github.com/iho/gosplit/internal/usecase"
)

// MockEventRepository is a mock implementation of EventRepository backed by
// an in-memory map. Every method can be overridden per test via its Func
// field.
type MockEventRepository struct {
	mu     sync.RWMutex
	events map[string]*domain.Event

	CreateFunc           func(ctx context.Context, event *domain.Event) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Event, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Event, error)
	ReplaceExpensesFunc  func(ctx context.Context, tx usecase.Transaction, eventID string, expenses []domain.Expense) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Event, error)
	DeleteFunc           func(ctx context.Context, id string) error
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{
		events: make(map[string]*domain.Event),
	}
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event.ID] = cloneEvent(event)
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if event, ok := m.events[id]; ok {
		return cloneEvent(event), nil
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Event, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockEventRepository) ReplaceExpenses(ctx context.Context, tx usecase.Transaction, eventID string, expenses []domain.Expense) error {
	if m.ReplaceExpensesFunc != nil {
		return m.ReplaceExpensesFunc(ctx, tx, eventID, expenses)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[eventID]
	if !ok {
		return domain.ErrEventNotFound
	}
	event.Expenses = append([]domain.Expense(nil), expenses...)
	return nil
}

func (m *MockEventRepository) List(ctx context.Context, limit, offset int) ([]*domain.Event, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	events := make([]*domain.Event, 0, len(m.events))
	for _, event := range m.events {
		events = append(events, cloneEvent(event))
	}
	return paginate(events, limit, offset), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(m.events, id)
	return nil
}

func cloneEvent(event *domain.Event) *domain.Event {
	clone := *event
	clone.Members = append([]domain.Member(nil), event.Members...)
	clone.Expenses = append([]domain.Expense(nil), event.Expenses...)
	return &clone
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	CreateFunc     func(ctx context.Context, user *domain.User) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	ListFunc       func(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]*domain.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	return paginate(users, limit, offset), nil
}

// FixedRateSource is a RateSource serving a fixed table.
type FixedRateSource struct {
	TableFunc func(ctx context.Context, pivot string, asOf time.Time) (*domain.RateTable, error)
	Fixed     *domain.RateTable
}

func (s *FixedRateSource) Table(ctx context.Context, pivot string, asOf time.Time) (*domain.RateTable, error) {
	if s.TableFunc != nil {
		return s.TableFunc(ctx, pivot, asOf)
	}
	if s.Fixed != nil {
		return s.Fixed, nil
	}
	return domain.NewRateTable(pivot), nil
}

// MockIDGenerator is a mock implementation of IDGenerator producing
// sequential ids.
type MockIDGenerator struct {
	mu           sync.Mutex
	counter      int
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%d", m.counter)
}

// MockTransaction is a no-op transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
	Committed    bool
	RolledBack   bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.RolledBack = true
	return nil
}

// MockTransactionManager hands out no-op transactions.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}
