package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/gosplit/internal/usecase"
)

// RegisterUserRequest represents a request to register a directory user.
type RegisterUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterUserRequest) ToUseCaseInput() usecase.RegisterUserInput {
	return usecase.RegisterUserInput{
		Email: r.Email,
		Name:  r.Name,
	}
}

// EventMemberRequest references an event member by email.
type EventMemberRequest struct {
	Email string `json:"email"`
}

// CreateEventRequest represents a request to create an event.
type CreateEventRequest struct {
	Name         string               `json:"name"`
	BaseCurrency string               `json:"base_currency"`
	Members      []EventMemberRequest `json:"members"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEventRequest) ToUseCaseInput() usecase.CreateEventInput {
	emails := make([]string, len(r.Members))
	for i, m := range r.Members {
		emails[i] = m.Email
	}
	return usecase.CreateEventInput{
		Name:         r.Name,
		BaseCurrency: r.BaseCurrency,
		MemberEmails: emails,
	}
}

// ParticipantRequest represents one member's part in an expense. Members are
// referenced by email or user id; at least one must be set.
type ParticipantRequest struct {
	UserID         string          `json:"user_id,omitempty"`
	Email          string          `json:"email,omitempty"`
	ResponsibleFor decimal.Decimal `json:"responsible_for"`
	Paid           decimal.Decimal `json:"paid"`

	// Share is accepted as a legacy alias of responsible_for.
	Share *decimal.Decimal `json:"share,omitempty"`
}

// ExpenseRequest represents a request to add or replace an expense.
type ExpenseRequest struct {
	Amount       decimal.Decimal      `json:"amount"`
	Currency     string               `json:"currency"`
	Note         string               `json:"note,omitempty"`
	Participants []ParticipantRequest `json:"participants"`
}

// ToUseCaseInput converts to use case input.
func (r *ExpenseRequest) ToUseCaseInput() usecase.ExpenseInput {
	participants := make([]usecase.ParticipantInput, len(r.Participants))
	for i, p := range r.Participants {
		responsible := p.ResponsibleFor
		if responsible.IsZero() && p.Share != nil {
			responsible = *p.Share
		}
		participants[i] = usecase.ParticipantInput{
			UserID:         p.UserID,
			Email:          p.Email,
			ResponsibleFor: responsible,
			Paid:           p.Paid,
		}
	}
	return usecase.ExpenseInput{
		Amount:       r.Amount,
		Currency:     r.Currency,
		Note:         r.Note,
		Participants: participants,
	}
}
