package service

import (
	"context"

	"basira/backend/internal/model"
	"basira/backend/internal/repository"
)

type CartService struct {
	carts          *repository.CartRepository
	accounts       *repository.LedgerRepository
	defaultBalance float64
}

func NewCartService(carts *repository.CartRepository, accounts *repository.LedgerRepository, defaultBalance float64) *CartService {
	return &CartService{carts: carts, accounts: accounts, defaultBalance: defaultBalance}
}

// AddItem inserts the item and debits price*quantity from the user's balance
// in one transaction. If the debit would overdraw the account, the whole
// transaction rolls back and no item row survives.
func (s *CartService) AddItem(ctx context.Context, user, name string, price float64, quantity int) (*model.CartItem, error) {
	// Default quantity to 1 if not provided (negatives are rejected upstream)
	if quantity == 0 {
		quantity = 1
	}

	item := &model.CartItem{
		Username: user,
		Name:     name,
		Price:    price,
		Quantity: quantity,
		Total:    price * float64(quantity),
	}

	err := s.carts.RunAtomic(ctx, func(ctx context.Context) error {
		if err := s.accounts.CreateIfAbsent(ctx, user, s.defaultBalance); err != nil {
			return err
		}

		balance, err := s.accounts.GetBalanceForUpdate(ctx, user)
		if err != nil {
			return err
		}
		if balance < item.Total {
			return model.ErrInsufficientFunds
		}

		if err := s.carts.InsertItem(ctx, item); err != nil {
			return err
		}
		return s.accounts.ApplyDelta(ctx, user, -item.Total)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem deletes the item and refunds its stored total to the owner in one
// transaction. user narrows the lookup when given; otherwise the oldest item
// with that name is removed, whoever owns it.
func (s *CartService) RemoveItem(ctx context.Context, name, user string) (*model.CartItem, error) {
	var removed *model.CartItem
	err := s.carts.RunAtomic(ctx, func(ctx context.Context) error {
		item, err := s.carts.FindOldestByName(ctx, name, user)
		if err != nil {
			return err
		}

		// Lock the owner row so the refund serializes with concurrent debits
		if _, err := s.accounts.GetBalanceForUpdate(ctx, item.Username); err != nil {
			return err
		}
		if err := s.carts.DeleteByID(ctx, item.ID); err != nil {
			return err
		}
		if err := s.accounts.ApplyDelta(ctx, item.Username, item.Total); err != nil {
			return err
		}
		removed = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// Items lists the user's cart in insertion order.
func (s *CartService) Items(ctx context.Context, user string) ([]model.CartItem, error) {
	return s.carts.ListByUser(ctx, user)
}

// Total sums price*quantity per user, or across all users when user is empty.
func (s *CartService) Total(ctx context.Context, user string) (float64, error) {
	return s.carts.SumTotals(ctx, user)
}

// Clear empties the whole cart table without refunds.
func (s *CartService) Clear(ctx context.Context) error {
	return s.carts.DeleteAll(ctx)
}
