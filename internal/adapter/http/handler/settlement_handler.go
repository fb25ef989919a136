package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gosplit/internal/adapter/http/dto"
	"github.com/iho/gosplit/internal/domain"
)

// SettlementService defines the behavior needed by SettlementHandler.
type SettlementService interface {
	Finalize(ctx context.Context, eventID, targetCurrency string) (*domain.Settlement, error)
}

// SettlementHandler handles finalize requests.
type SettlementHandler struct {
	settlementUC SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementUC SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementUC: settlementUC}
}

// Finalize computes the settlement plan for an event. The operation is
// read-only; repeating it returns the same plan for an unchanged event.
func (h *SettlementHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "missing event ID", "")
		return
	}

	currency := r.URL.Query().Get("final_currency")
	if currency == "" {
		writeError(w, http.StatusBadRequest, "missing final_currency parameter", "")
		return
	}

	settlement, err := h.settlementUC.Finalize(r.Context(), eventID, currency)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to finalize event", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromDomain(settlement))
}
