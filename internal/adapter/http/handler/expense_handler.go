package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gosplit/internal/adapter/http/dto"
	"github.com/iho/gosplit/internal/domain"
	"github.com/iho/gosplit/internal/usecase"
)

// ExpenseService defines the behavior needed by ExpenseHandler.
type ExpenseService interface {
	AddExpense(ctx context.Context, eventID string, input usecase.ExpenseInput) (*domain.Expense, int, error)
	UpdateExpense(ctx context.Context, eventID string, index int, input usecase.ExpenseInput) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, eventID string, index int) error
}

// ExpenseHandler handles expense HTTP requests. Expenses are addressed by
// their position within the event; deleting one shifts later positions down.
type ExpenseHandler struct {
	eventUC ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(eventUC ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{eventUC: eventUC}
}

// Create appends an expense to an event.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	var req dto.ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	expense, index, err := h.eventUC.AddExpense(r.Context(), eventID, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add expense", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ExpenseFromDomain(index, expense))
}

// Update replaces the expense at the given position.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	index, err := parseIndexParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense index", err.Error())
		return
	}

	var req dto.ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	expense, err := h.eventUC.UpdateExpense(r.Context(), eventID, index, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update expense", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpenseFromDomain(index, expense))
}

// Delete removes the expense at the given position.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	index, err := parseIndexParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense index", err.Error())
		return
	}

	if err := h.eventUC.DeleteExpense(r.Context(), eventID, index); err != nil {
		writeError(w, mapDomainError(err), "failed to delete expense", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
