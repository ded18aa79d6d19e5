package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"basira/backend/internal/model"
)

type LedgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// RunAtomic executes fn inside a transaction shared by every repository
// method called with the context fn receives.
func (r *LedgerRepository) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return runAtomic(ctx, r.db, fn)
}

// GetBalance returns the account balance without locking.
func (r *LedgerRepository) GetBalance(ctx context.Context, username string) (float64, error) {
	var balance float64
	err := executor(ctx, r.db).QueryRow(ctx, "SELECT balance FROM accounts WHERE username = $1", username).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// GetBalanceForUpdate locks the account row and returns its balance.
func (r *LedgerRepository) GetBalanceForUpdate(ctx context.Context, username string) (float64, error) {
	var balance float64
	err := executor(ctx, r.db).QueryRow(ctx, "SELECT balance FROM accounts WHERE username = $1 FOR UPDATE", username).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to lock account: %w", err)
	}
	return balance, nil
}

// CreateIfAbsent inserts the account with the given starting balance unless it
// already exists. Safe under concurrent first lookups for the same user.
func (r *LedgerRepository) CreateIfAbsent(ctx context.Context, username string, balance float64) error {
	_, err := executor(ctx, r.db).Exec(ctx,
		"INSERT INTO accounts (username, balance) VALUES ($1, $2) ON CONFLICT (username) DO NOTHING",
		username, balance)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// UpsertBalance sets the balance, creating the account if needed.
func (r *LedgerRepository) UpsertBalance(ctx context.Context, username string, balance float64) error {
	_, err := executor(ctx, r.db).Exec(ctx,
		"INSERT INTO accounts (username, balance) VALUES ($1, $2) ON CONFLICT (username) DO UPDATE SET balance = EXCLUDED.balance",
		username, balance)
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	return nil
}

// ApplyDelta adds delta to the balance. Callers hold the row lock and have
// already checked the result stays non-negative.
func (r *LedgerRepository) ApplyDelta(ctx context.Context, username string, delta float64) error {
	_, err := executor(ctx, r.db).Exec(ctx,
		"UPDATE accounts SET balance = balance + $1 WHERE username = $2", delta, username)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}

// CreateTransfer appends a transfer log row.
func (r *LedgerRepository) CreateTransfer(ctx context.Context, id, from, to string, amount float64) error {
	_, err := executor(ctx, r.db).Exec(ctx,
		"INSERT INTO transfers (id, from_username, to_username, amount) VALUES ($1, $2, $3, $4)",
		id, from, to, amount)
	if err != nil {
		return fmt.Errorf("failed to record transfer: %w", err)
	}
	return nil
}

// ListTransfers returns the transfer log, newest first.
func (r *LedgerRepository) ListTransfers(ctx context.Context, limit int) ([]model.Transfer, error) {
	rows, err := executor(ctx, r.db).Query(ctx,
		"SELECT id, from_username, to_username, amount, created_at FROM transfers ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	var out []model.Transfer
	for rows.Next() {
		var t model.Transfer
		var createdAt time.Time
		if err := rows.Scan(&t.ID, &t.FromUsername, &t.ToUsername, &t.Amount, &createdAt); err != nil {
			return nil, err
		}
		t.CreatedAt = createdAt
		out = append(out, t)
	}
	return out, rows.Err()
}
