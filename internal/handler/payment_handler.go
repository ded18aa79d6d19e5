package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"basira/backend/internal/model"
	"basira/backend/internal/service"
	"basira/backend/internal/service/stripe"
)

type PaymentHandler struct {
	svc *service.PaymentService
}

func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// writeGatewayError distinguishes the gateway refusing a request from the
// gateway being unreachable. A network failure is retryable and must not read
// as a payment rejection.
func writeGatewayError(w http.ResponseWriter, err error) {
	var apiErr *stripe.APIError
	if errors.As(err, &apiErr) {
		writeError(w, http.StatusBadRequest, "gateway_declined", apiErr.Message)
		return
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		log.Printf("gateway call failed: %v", err)
		writeError(w, http.StatusBadGateway, "gateway_unavailable", "payment gateway unreachable, retry later")
		return
	}
	writeServiceError(w, err)
}

type CreateIntentRequest struct {
	User   string  `json:"user"`
	Amount float64 `json:"amount"`
}

func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req CreateIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if req.User == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "user required")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "validation_error", "amount must be greater than 0")
		return
	}

	clientSecret, err := h.svc.CreateIntent(r.Context(), req.User, req.Amount)
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"clientSecret": clientSecret})
}

type ConfirmRequest struct {
	User          string  `json:"user"`
	PaymentIntent string  `json:"payment_intent"`
	Amount        float64 `json:"amount"`
}

func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if req.User == "" || req.PaymentIntent == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "user and payment_intent required")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "validation_error", "amount must be greater than 0")
		return
	}

	result, err := h.svc.Confirm(r.Context(), req.User, req.PaymentIntent, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPaymentNotSettled),
			errors.Is(err, model.ErrInsufficientFunds),
			errors.Is(err, model.ErrAccountNotFound),
			errors.Is(err, model.ErrReferenceInUse):
			writeServiceError(w, err)
		default:
			writeGatewayError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"new_balance": result.NewBalance,
	})
}

func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.History(r.Context(), r.URL.Query().Get("user"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
