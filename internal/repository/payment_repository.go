package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"basira/backend/internal/model"
)

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return runAtomic(ctx, r.db, fn)
}

// InsertRecord appends a payment record. The unique index on
// external_reference makes the reference an idempotency key: a duplicate
// confirm inserts nothing and inserted comes back false.
func (r *PaymentRepository) InsertRecord(ctx context.Context, rec *model.PaymentRecord) (inserted bool, err error) {
	tag, err := executor(ctx, r.db).Exec(ctx,
		"INSERT INTO payments (id, username, amount, external_reference, type) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (external_reference) DO NOTHING",
		rec.ID, rec.Username, rec.Amount, rec.ExternalReference, rec.Type)
	if err != nil {
		return false, fmt.Errorf("failed to insert payment record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetByReference returns the record settled under the given gateway reference.
func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*model.PaymentRecord, error) {
	var rec model.PaymentRecord
	err := executor(ctx, r.db).QueryRow(ctx,
		"SELECT id, username, amount, external_reference, type, created_at FROM payments WHERE external_reference = $1", reference).
		Scan(&rec.ID, &rec.Username, &rec.Amount, &rec.ExternalReference, &rec.Type, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get payment record: %w", err)
	}
	return &rec, nil
}

// ListRecords returns payment history, optionally scoped to a user, newest first.
func (r *PaymentRepository) ListRecords(ctx context.Context, username string) ([]model.PaymentRecord, error) {
	query := "SELECT id, username, amount, external_reference, type, created_at FROM payments"
	args := []any{}
	if username != "" {
		query += " WHERE username = $1"
		args = append(args, username)
	}
	query += " ORDER BY created_at DESC"

	rows, err := executor(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	records := []model.PaymentRecord{}
	for rows.Next() {
		var rec model.PaymentRecord
		if err := rows.Scan(&rec.ID, &rec.Username, &rec.Amount, &rec.ExternalReference, &rec.Type, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
