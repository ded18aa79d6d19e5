package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"basira/backend/internal/model"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorBody{Error: kind, Message: message})
}

// writeServiceError maps business errors to client-visible payloads. Anything
// unrecognized is logged and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInsufficientFunds):
		writeError(w, http.StatusBadRequest, "insufficient_funds", err.Error())
	case errors.Is(err, model.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, model.ErrItemNotFound):
		writeError(w, http.StatusNotFound, "item_not_found", err.Error())
	case errors.Is(err, model.ErrDuplicateItem):
		writeError(w, http.StatusConflict, "duplicate_item", err.Error())
	case errors.Is(err, model.ErrPaymentNotSettled):
		writeError(w, http.StatusBadRequest, "payment_not_confirmed", err.Error())
	case errors.Is(err, model.ErrReferenceInUse):
		writeError(w, http.StatusConflict, "reference_conflict", err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
