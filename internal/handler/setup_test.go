package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"basira/backend/internal/db"
	"basira/backend/internal/handler"
	"basira/backend/internal/repository"
	"basira/backend/internal/service"
	"basira/backend/internal/service/stripe"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

const testDefaultBalance = 300.0

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("Unable to connect to database: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		t.Fatalf("Unable to ping database: %v", err)
	}

	if err := db.ApplyMigrations(context.Background(), pool, "../../migrations"); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	// Truncate tables to ensure clean state
	tables := []string{"payments", "cart_items", "transfers", "accounts"} // Order matters due to FK
	for _, table := range tables {
		_, err := pool.Exec(context.Background(), fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table))
		if err != nil {
			t.Fatalf("Failed to truncate table %s: %v", table, err)
		}
	}

	return pool
}

// newTestHandler wires the full handler chain the way main does. gatewayURL
// may point at a fake gateway; allowedStatuses defaults to succeeded-only.
func newTestHandler(pool *pgxpool.Pool, gatewayURL string, allowedStatuses ...string) *handler.Handler {
	if len(allowedStatuses) == 0 {
		allowedStatuses = []string{"succeeded"}
	}

	ledgerRepo := repository.NewLedgerRepository(pool)
	cartRepo := repository.NewCartRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	gateway := stripe.NewClient(stripe.Config{
		APIURL:    gatewayURL,
		SecretKey: "sk_test_dummy",
	})

	ledgerService := service.NewLedgerService(ledgerRepo, testDefaultBalance)
	cartService := service.NewCartService(cartRepo, ledgerRepo, testDefaultBalance)
	paymentService := service.NewPaymentService(paymentRepo, ledgerRepo, gateway, allowedStatuses)

	return handler.NewHandler(
		handler.NewShoppingHandler(cartService, ledgerService),
		handler.NewBankHandler(ledgerService),
		handler.NewPaymentHandler(paymentService),
	)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func seedAccount(t *testing.T, pool *pgxpool.Pool, user string, balance float64) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"INSERT INTO accounts (username, balance) VALUES ($1, $2)", user, balance)
	if err != nil {
		t.Fatalf("Failed to seed account %s: %v", user, err)
	}
}

func queryBalance(t *testing.T, pool *pgxpool.Pool, user string) float64 {
	t.Helper()

	var balance float64
	err := pool.QueryRow(context.Background(),
		"SELECT balance FROM accounts WHERE username = $1", user).Scan(&balance)
	if err != nil {
		t.Fatalf("Failed to query balance for %s: %v", user, err)
	}
	return balance
}
