package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gosplit/internal/domain"
)

// UserResponse represents a directory user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// UsersFromDomain converts domain users to responses.
func UsersFromDomain(users []*domain.User) []*UserResponse {
	result := make([]*UserResponse, len(users))
	for i, u := range users {
		result[i] = UserFromDomain(u)
	}
	return result
}

// MemberResponse represents an event member.
type MemberResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// ParticipantResponse represents one member's part in an expense. Share
// duplicates ResponsibleFor for clients that predate the rename.
type ParticipantResponse struct {
	UserID         string          `json:"user_id"`
	ResponsibleFor decimal.Decimal `json:"responsible_for"`
	Share          decimal.Decimal `json:"share"`
	Paid           decimal.Decimal `json:"paid"`
}

// ExpenseResponse represents an expense in API responses. Index is the
// expense's current position within the event; it shifts when an earlier
// expense is deleted.
type ExpenseResponse struct {
	Index        int                   `json:"index"`
	Amount       decimal.Decimal       `json:"amount"`
	Currency     string                `json:"currency"`
	Note         string                `json:"note,omitempty"`
	ExchangeRate *decimal.Decimal      `json:"exchange_rate,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	Participants []ParticipantResponse `json:"participants"`
}

// ExpenseFromDomain converts a domain expense to a response.
func ExpenseFromDomain(index int, e *domain.Expense) *ExpenseResponse {
	participants := make([]ParticipantResponse, len(e.Participants))
	for i, p := range e.Participants {
		participants[i] = ParticipantResponse{
			UserID:         p.UserID,
			ResponsibleFor: p.ResponsibleFor,
			Share:          p.ResponsibleFor,
			Paid:           p.Paid,
		}
	}
	return &ExpenseResponse{
		Index:        index,
		Amount:       e.Amount,
		Currency:     e.Currency,
		Note:         e.Note,
		ExchangeRate: e.ExchangeRate,
		CreatedAt:    e.CreatedAt,
		Participants: participants,
	}
}

// EventResponse represents an event summary in list responses.
type EventResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	BaseCurrency string           `json:"base_currency"`
	CreatedAt    time.Time        `json:"created_at"`
	Members      []MemberResponse `json:"members"`
	ExpenseCount int              `json:"expense_count"`
}

// EventFromDomain converts a domain event to a summary response.
func EventFromDomain(e *domain.Event) *EventResponse {
	return &EventResponse{
		ID:           e.ID,
		Name:         e.Name,
		BaseCurrency: e.BaseCurrency,
		CreatedAt:    e.CreatedAt,
		Members:      membersFromDomain(e.Members),
		ExpenseCount: len(e.Expenses),
	}
}

// EventsFromDomain converts domain events to summary responses.
func EventsFromDomain(events []*domain.Event) []*EventResponse {
	result := make([]*EventResponse, len(events))
	for i, e := range events {
		result[i] = EventFromDomain(e)
	}
	return result
}

// EventDetailResponse represents a single event with its expenses and the
// derived per-member balance vector.
type EventDetailResponse struct {
	ID            string                     `json:"id"`
	Name          string                     `json:"name"`
	BaseCurrency  string                     `json:"base_currency"`
	CreatedAt     time.Time                  `json:"created_at"`
	Members       []MemberResponse           `json:"members"`
	Expenses      []*ExpenseResponse         `json:"expenses"`
	TotalExpenses decimal.Decimal            `json:"total_expenses"`
	Balances      map[string]decimal.Decimal `json:"balances"`
}

// EventDetailFromDomain converts a domain event to a detail response.
func EventDetailFromDomain(e *domain.Event) *EventDetailResponse {
	expenses := make([]*ExpenseResponse, len(e.Expenses))
	for i := range e.Expenses {
		expenses[i] = ExpenseFromDomain(i, &e.Expenses[i])
	}
	return &EventDetailResponse{
		ID:            e.ID,
		Name:          e.Name,
		BaseCurrency:  e.BaseCurrency,
		CreatedAt:     e.CreatedAt,
		Members:       membersFromDomain(e.Members),
		Expenses:      expenses,
		TotalExpenses: e.TotalExpenses(),
		Balances:      e.Balances(),
	}
}

func membersFromDomain(members []domain.Member) []MemberResponse {
	result := make([]MemberResponse, len(members))
	for i, m := range members {
		result[i] = MemberResponse{UserID: m.UserID, Email: m.Email}
	}
	return result
}

// ListEventsResponse wraps an event listing.
type ListEventsResponse struct {
	Events []*EventResponse `json:"events"`
	Total  int64            `json:"total"`
}

// ListUsersResponse wraps a user listing.
type ListUsersResponse struct {
	Users []*UserResponse `json:"users"`
	Total int64           `json:"total"`
}

// BalancesResponse represents the balance vector of an event.
type BalancesResponse struct {
	EventID      string                     `json:"event_id"`
	BaseCurrency string                     `json:"base_currency"`
	Balances     map[string]decimal.Decimal `json:"balances"`
}

// ConsistencyResponse reports the conservation check result.
type ConsistencyResponse struct {
	EventID    string `json:"event_id"`
	Consistent bool   `json:"consistent"`
}

// PaymentResponse represents one settlement payment.
type PaymentResponse struct {
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

// SettlementResponse represents the finalize result. Field names follow the
// upstream API; base_currency carries the requested final currency.
type SettlementResponse struct {
	BaseCurrency   string                     `json:"base_currency"`
	TotalExpenses  decimal.Decimal            `json:"total_expenses"`
	MemberBalances map[string]decimal.Decimal `json:"member_balances"`
	PaymentsNeeded []PaymentResponse          `json:"payments_needed"`
}

// SettlementFromDomain converts a domain settlement to a response.
func SettlementFromDomain(s *domain.Settlement) *SettlementResponse {
	payments := make([]PaymentResponse, len(s.Payments))
	for i, p := range s.Payments {
		payments[i] = PaymentResponse{
			FromUserID: p.FromUserID,
			ToUserID:   p.ToUserID,
			Amount:     p.Amount,
			Currency:   p.Currency,
		}
	}
	return &SettlementResponse{
		BaseCurrency:   s.Currency,
		TotalExpenses:  s.TotalExpenses,
		MemberBalances: s.MemberBalances,
		PaymentsNeeded: payments,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
