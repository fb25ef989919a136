package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gosplit/internal/adapter/http/dto"
	"github.com/iho/gosplit/internal/domain"
	"github.com/iho/gosplit/internal/usecase"
)

// EventService defines the behavior needed by EventHandler.
type EventService interface {
	CreateEvent(ctx context.Context, input usecase.CreateEventInput) (*domain.Event, error)
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	ListEvents(ctx context.Context, input usecase.ListEventsInput) ([]*domain.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	Balances(ctx context.Context, eventID string) (*usecase.BalanceSheet, error)
	CheckConsistency(ctx context.Context, eventID string) (bool, error)
}

// EventHandler handles event-related HTTP requests.
type EventHandler struct {
	eventUC EventService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventUC EventService) *EventHandler {
	return &EventHandler{eventUC: eventUC}
}

// Create creates a new event.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	event, err := h.eventUC.CreateEvent(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create event", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EventFromDomain(event))
}

// Get retrieves an event with its expenses and derived balances.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing event ID", "")
		return
	}

	event, err := h.eventUC.GetEvent(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get event", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EventDetailFromDomain(event))
}

// List lists events.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	events, err := h.eventUC.ListEvents(r.Context(), usecase.ListEventsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEventsResponse{
		Events: dto.EventsFromDomain(events),
		Total:  int64(len(events)),
	})
}

// Delete removes an event and its whole expense history.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing event ID", "")
		return
	}

	if err := h.eventUC.DeleteEvent(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete event", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Balances returns the derived balance vector for an event.
func (h *EventHandler) Balances(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing event ID", "")
		return
	}

	sheet, err := h.eventUC.Balances(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute balances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalancesResponse{
		EventID:      sheet.EventID,
		BaseCurrency: sheet.BaseCurrency,
		Balances:     sheet.Balances,
	})
}

// Consistency runs the conservation check. A ledger that fails the check is
// reported, not treated as a request error.
func (h *EventHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing event ID", "")
		return
	}

	consistent, err := h.eventUC.CheckConsistency(r.Context(), id)
	if err != nil && !errors.Is(err, domain.ErrLedgerInconsistent) {
		writeError(w, mapDomainError(err), "failed to check consistency", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyResponse{
		EventID:    id,
		Consistent: consistent,
	})
}
