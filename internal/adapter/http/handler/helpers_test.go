package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gosplit/internal/adapter/http/dto"
	"github.com/iho/gosplit/internal/domain"
	"github.com/iho/gosplit/internal/usecase"
)

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}

func setChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := &chi.Context{}
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/events?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/events?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/events", nil)
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestParseIndexParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/events/evt-1/expenses/2", nil)
	req = setChiURLParam(req, "index", "2")

	index, err := parseIndexParam(req)
	if err != nil || index != 2 {
		t.Fatalf("expected index 2, got %d (%v)", index, err)
	}

	for _, raw := range []string{"-1", "abc", ""} {
		req = httptest.NewRequest(http.MethodPut, "/events/evt-1/expenses/x", nil)
		req = setChiURLParam(req, "index", raw)

		if _, err := parseIndexParam(req); err == nil {
			t.Fatalf("expected error for index %q", raw)
		}
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"event not found", domain.ErrEventNotFound, http.StatusNotFound},
		{"expense not found", domain.ErrExpenseNotFound, http.StatusNotFound},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound},
		{"email taken", usecase.ErrEmailTaken, http.StatusConflict},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"responsible mismatch", domain.ErrResponsibleMismatch, http.StatusBadRequest},
		{"not a member", domain.ErrNotAMember, http.StatusBadRequest},
		{"invalid currency", domain.ErrInvalidCurrency, http.StatusBadRequest},
		{"rate unavailable", domain.ErrRateUnavailable, http.StatusUnprocessableEntity},
		{"unknown currency", domain.ErrUnknownCurrency, http.StatusUnprocessableEntity},
		{"ledger inconsistent", domain.ErrLedgerInconsistent, http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestMapDomainError_Wrapped(t *testing.T) {
	err := errors.Join(errors.New("context"), domain.ErrExpenseNotFound)
	if got := mapDomainError(err); got != http.StatusNotFound {
		t.Fatalf("expected 404 for wrapped error, got %d", got)
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "bad request", "detail")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if resp.Error != "bad request" {
		t.Fatalf("expected error message to propagate, got %+v", resp)
	}
}
