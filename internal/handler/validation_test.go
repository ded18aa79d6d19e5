package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// Validation failures are rejected before any service or database call, so
// these run without a DATABASE_URL.
func TestValidation(t *testing.T) {
	h := newTestHandler(nil, "http://gateway.invalid")

	cases := []struct {
		name   string
		method string
		path   string
		body   map[string]any
	}{
		{"add missing name", http.MethodPost, "/shopping/add", map[string]any{"price": 10.0, "user": "amira"}},
		{"add missing user", http.MethodPost, "/shopping/add", map[string]any{"name": "milk", "price": 10.0}},
		{"add non-positive price", http.MethodPost, "/shopping/add", map[string]any{"name": "milk", "price": 0.0, "user": "amira"}},
		{"add negative quantity", http.MethodPost, "/shopping/add", map[string]any{"name": "milk", "price": 10.0, "quantity": -2, "user": "amira"}},
		{"items missing user", http.MethodGet, "/shopping/items", nil},
		{"summary missing user", http.MethodGet, "/shopping/summary", nil},
		{"balance missing user", http.MethodGet, "/bank/balance", nil},
		{"init missing user", http.MethodPost, "/bank/init", map[string]any{"budget": 100.0}},
		{"init negative budget", http.MethodPost, "/bank/init", map[string]any{"user": "amira", "budget": -1.0}},
		{"transfer missing parties", http.MethodPost, "/bank/transfer", map[string]any{"amount": 10.0}},
		{"transfer non-positive amount", http.MethodPost, "/bank/transfer", map[string]any{"from": "a", "to": "b", "amount": 0.0}},
		{"create-intent missing user", http.MethodPost, "/payment/create-intent", map[string]any{"amount": 10.0}},
		{"create-intent non-positive amount", http.MethodPost, "/payment/create-intent", map[string]any{"user": "amira", "amount": -5.0}},
		{"confirm missing reference", http.MethodPost, "/payment/confirm", map[string]any{"user": "amira", "amount": 10.0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, h, tc.method, tc.path, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400 Bad Request, got %d: %s", w.Code, w.Body.String())
			}
			if body := decodeBody(t, w); body["error"] != "validation_error" {
				t.Errorf("Expected validation_error, got %v", body["error"])
			}
		})
	}
}

func TestValidation_InvalidJSON(t *testing.T) {
	h := newTestHandler(nil, "http://gateway.invalid")

	req := httptest.NewRequest(http.MethodPost, "/shopping/add", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 Bad Request, got %d", w.Code)
	}
}
