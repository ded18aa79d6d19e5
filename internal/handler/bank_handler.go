package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"basira/backend/internal/model"
	"basira/backend/internal/service"
)

type BankHandler struct {
	svc *service.LedgerService
}

func NewBankHandler(svc *service.LedgerService) *BankHandler {
	return &BankHandler{svc: svc}
}

type InitRequest struct {
	User   string  `json:"user"`
	Budget float64 `json:"budget"`
}

// Init sets (or overwrites) the user's balance.
func (h *BankHandler) Init(w http.ResponseWriter, r *http.Request) {
	var req InitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if req.User == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "user required")
		return
	}
	if req.Budget < 0 {
		writeError(w, http.StatusBadRequest, "validation_error", "budget must not be negative")
		return
	}

	if err := h.svc.Init(r.Context(), req.User, req.Budget); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "budget set",
		"balance": req.Budget,
	})
}

// Balance returns the user's balance, creating the account with the
// configured default on first access.
func (h *BankHandler) Balance(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "user required")
		return
	}

	balance, err := h.svc.Balance(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"balance": balance})
}

type TransferRequest struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

func (h *BankHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if req.From == "" || req.To == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "from and to required")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "validation_error", "amount must be greater than 0")
		return
	}

	newBalance, err := h.svc.Transfer(r.Context(), req.From, req.To, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"new_balance": newBalance,
	})
}

func (h *BankHandler) Transfers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	transfers, err := h.svc.Transfers(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if transfers == nil {
		transfers = []model.Transfer{}
	}
	writeJSON(w, http.StatusOK, transfers)
}
