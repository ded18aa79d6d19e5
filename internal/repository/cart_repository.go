package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"basira/backend/internal/model"
)

type CartRepository struct {
	db *pgxpool.Pool
}

func NewCartRepository(db *pgxpool.Pool) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return runAtomic(ctx, r.db, fn)
}

// InsertItem inserts a cart line and returns its id.
func (r *CartRepository) InsertItem(ctx context.Context, item *model.CartItem) error {
	err := executor(ctx, r.db).QueryRow(ctx,
		"INSERT INTO cart_items (username, name, price, quantity, total) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at",
		item.Username, item.Name, item.Price, item.Quantity, item.Total).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrDuplicateItem
		}
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// FindOldestByName returns the oldest item with the given name, optionally
// scoped to a user. Name is a per-user key; the unscoped lookup exists for the
// remove endpoint, which does not carry a user.
func (r *CartRepository) FindOldestByName(ctx context.Context, name, username string) (*model.CartItem, error) {
	query := "SELECT id, username, name, price, quantity, total, created_at FROM cart_items WHERE name = $1"
	args := []any{name}
	if username != "" {
		query += " AND username = $2"
		args = append(args, username)
	}
	query += " ORDER BY id LIMIT 1"

	var item model.CartItem
	err := executor(ctx, r.db).QueryRow(ctx, query, args...).
		Scan(&item.ID, &item.Username, &item.Name, &item.Price, &item.Quantity, &item.Total, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return &item, nil
}

func (r *CartRepository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := executor(ctx, r.db).Exec(ctx, "DELETE FROM cart_items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrItemNotFound
	}
	return nil
}

// ListByUser returns the user's items in insertion order.
func (r *CartRepository) ListByUser(ctx context.Context, username string) ([]model.CartItem, error) {
	rows, err := executor(ctx, r.db).Query(ctx,
		"SELECT id, username, name, price, quantity, total, created_at FROM cart_items WHERE username = $1 ORDER BY id", username)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ID, &item.Username, &item.Name, &item.Price, &item.Quantity, &item.Total, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SumTotals sums price*quantity across the user's items, or across every item
// when username is empty.
func (r *CartRepository) SumTotals(ctx context.Context, username string) (float64, error) {
	query := "SELECT COALESCE(SUM(price * quantity), 0) FROM cart_items"
	args := []any{}
	if username != "" {
		query += " WHERE username = $1"
		args = append(args, username)
	}

	var total float64
	if err := executor(ctx, r.db).QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum cart: %w", err)
	}
	return total, nil
}

// DeleteAll empties the cart table. No refunds are issued.
func (r *CartRepository) DeleteAll(ctx context.Context) error {
	_, err := executor(ctx, r.db).Exec(ctx, "DELETE FROM cart_items")
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
