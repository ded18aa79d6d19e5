package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newFakeGateway serves just enough of the payment-intent API for the confirm
// flow: POST creates an intent, GET reports the given status for any reference.
func newFakeGateway(status string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]any{
				"id":            "pi_test_1",
				"client_secret": "pi_test_1_secret_abc",
				"status":        "requires_payment_method",
				"amount":        1000,
				"currency":      "usd",
			})
			return
		}

		parts := strings.Split(r.URL.Path, "/")
		reference := parts[len(parts)-1]
		json.NewEncoder(w).Encode(map[string]any{
			"id":       reference,
			"status":   status,
			"amount":   1000,
			"currency": "usd",
		})
	}))
}

func TestCreateIntent(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	gw := newFakeGateway("succeeded")
	defer gw.Close()
	h := newTestHandler(pool, gw.URL)

	w := doJSON(t, h, http.MethodPost, "/payment/create-intent", map[string]any{
		"user": "amira", "amount": 10.0,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["clientSecret"] != "pi_test_1_secret_abc" {
		t.Errorf("Expected client secret, got %v", body["clientSecret"])
	}
}

func TestConfirm_DebitsOnce(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	seedAccount(t, pool, "amira", 2000.0)
	gw := newFakeGateway("succeeded")
	defer gw.Close()
	h := newTestHandler(pool, gw.URL)

	confirm := map[string]any{"user": "amira", "payment_intent": "pi_abc", "amount": 20.0}

	// First confirm settles
	w := doJSON(t, h, http.MethodPost, "/payment/confirm", confirm)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["new_balance"] != 1980.0 {
		t.Errorf("Expected new_balance 1980, got %v", body["new_balance"])
	}

	// Second confirm of the same reference is a no-op success
	w = doJSON(t, h, http.MethodPost, "/payment/confirm", confirm)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 OK on duplicate confirm, got %d: %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["new_balance"] != 1980.0 {
		t.Errorf("Expected new_balance still 1980, got %v", body["new_balance"])
	}

	if balance := queryBalance(t, pool, "amira"); balance != 1980.0 {
		t.Errorf("Expected balance debited exactly once to 1980, got %.2f", balance)
	}

	var count int
	pool.QueryRow(ctx, "SELECT COUNT(*) FROM payments WHERE external_reference = 'pi_abc'").Scan(&count)
	if count != 1 {
		t.Errorf("Expected 1 payment record, got %d", count)
	}
}

func TestConfirm_ReferenceClaimedByOtherUser(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	seedAccount(t, pool, "amira", 2000.0)
	seedAccount(t, pool, "bob", 100.0)
	gw := newFakeGateway("succeeded")
	defer gw.Close()
	h := newTestHandler(pool, gw.URL)

	w := doJSON(t, h, http.MethodPost, "/payment/confirm", map[string]any{
		"user": "amira", "payment_intent": "pi_shared", "amount": 20.0,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 OK, got %d: %s", w.Code, w.Body.String())
	}

	// The same reference replayed by another account must not read as success
	w = doJSON(t, h, http.MethodPost, "/payment/confirm", map[string]any{
		"user": "bob", "payment_intent": "pi_shared", "amount": 20.0,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected status 409 Conflict, got %d: %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["error"] != "reference_conflict" {
		t.Errorf("Expected error reference_conflict, got %v", body["error"])
	}

	if balance := queryBalance(t, pool, "bob"); balance != 100.0 {
		t.Errorf("Expected bob balance unchanged at 100, got %.2f", balance)
	}

	var count int
	pool.QueryRow(ctx, "SELECT COUNT(*) FROM payments WHERE external_reference = 'pi_shared'").Scan(&count)
	if count != 1 {
		t.Errorf("Expected 1 payment record, got %d", count)
	}
}

func TestConfirm_InsufficientFunds(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	seedAccount(t, pool, "poor", 5.0)
	gw := newFakeGateway("succeeded")
	defer gw.Close()
	h := newTestHandler(pool, gw.URL)

	w := doJSON(t, h, http.MethodPost, "/payment/confirm", map[string]any{
		"user": "poor", "payment_intent": "pi_poor", "amount": 10.0,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400 Bad Request, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "insufficient_funds" {
		t.Errorf("Expected error insufficient_funds, got %v", body["error"])
	}

	// The rejected debit must not leave a payment record behind
	var count int
	pool.QueryRow(ctx, "SELECT COUNT(*) FROM payments").Scan(&count)
	if count != 0 {
		t.Errorf("Expected no payment records, got %d", count)
	}
	if balance := queryBalance(t, pool, "poor"); balance != 5.0 {
		t.Errorf("Expected balance unchanged at 5, got %.2f", balance)
	}
}

func TestConfirm_NotSettledStatus(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	seedAccount(t, pool, "amira", 100.0)
	gw := newFakeGateway("requires_payment_method")
	defer gw.Close()
	h := newTestHandler(pool, gw.URL)

	w := doJSON(t, h, http.MethodPost, "/payment/confirm", map[string]any{
		"user": "amira", "payment_intent": "pi_pending", "amount": 10.0,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400 Bad Request, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["error"] != "payment_not_confirmed" {
		t.Errorf("Expected error payment_not_confirmed, got %v", body["error"])
	}

	if balance := queryBalance(t, pool, "amira"); balance != 100.0 {
		t.Errorf("Expected balance unchanged at 100, got %.2f", balance)
	}
}

func TestConfirm_LenientStatuses(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	seedAccount(t, pool, "amira", 100.0)
	gw := newFakeGateway("processing")
	defer gw.Close()

	// Demo-mode configuration accepts non-final statuses
	h := newTestHandler(pool, gw.URL, "succeeded", "processing", "requires_capture")

	w := doJSON(t, h, http.MethodPost, "/payment/confirm", map[string]any{
		"user": "amira", "payment_intent": "pi_proc", "amount": 10.0,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if balance := queryBalance(t, pool, "amira"); balance != 90.0 {
		t.Errorf("Expected balance 90, got %.2f", balance)
	}
}

func TestConfirm_GatewayUnreachable(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	seedAccount(t, pool, "amira", 100.0)

	gw := newFakeGateway("succeeded")
	gw.Close() // gateway down

	h := newTestHandler(pool, gw.URL)

	w := doJSON(t, h, http.MethodPost, "/payment/confirm", map[string]any{
		"user": "amira", "payment_intent": "pi_net", "amount": 10.0,
	})

	// A network failure is retryable, not a payment rejection
	if w.Code != http.StatusBadGateway {
		t.Fatalf("Expected status 502 Bad Gateway, got %d: %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["error"] != "gateway_unavailable" {
		t.Errorf("Expected error gateway_unavailable, got %v", body["error"])
	}

	if balance := queryBalance(t, pool, "amira"); balance != 100.0 {
		t.Errorf("Expected balance unchanged at 100, got %.2f", balance)
	}
}

func TestConfirm_AccountNotFound(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	gw := newFakeGateway("succeeded")
	defer gw.Close()
	h := newTestHandler(pool, gw.URL)

	w := doJSON(t, h, http.MethodPost, "/payment/confirm", map[string]any{
		"user": "nobody", "payment_intent": "pi_none", "amount": 10.0,
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 Not Found, got %d", w.Code)
	}
}

func TestPaymentHistory(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	seedAccount(t, pool, "amira", 2000.0)
	gw := newFakeGateway("succeeded")
	defer gw.Close()
	h := newTestHandler(pool, gw.URL)

	doJSON(t, h, http.MethodPost, "/payment/confirm", map[string]any{"user": "amira", "payment_intent": "pi_h1", "amount": 20.0})
	doJSON(t, h, http.MethodPost, "/payment/confirm", map[string]any{"user": "amira", "payment_intent": "pi_h2", "amount": 30.0})

	w := doJSON(t, h, http.MethodGet, "/payment/history?user=amira", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 OK, got %d", w.Code)
	}

	var records []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("Failed to decode history: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 payment records, got %d", len(records))
	}
	for _, rec := range records {
		if rec["type"] != "debit" {
			t.Errorf("Expected debit record, got %v", rec["type"])
		}
	}
}
