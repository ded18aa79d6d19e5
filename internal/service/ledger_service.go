package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"basira/backend/internal/model"
	"basira/backend/internal/repository"
)

type LedgerService struct {
	accounts       *repository.LedgerRepository
	defaultBalance float64
}

func NewLedgerService(accounts *repository.LedgerRepository, defaultBalance float64) *LedgerService {
	return &LedgerService{accounts: accounts, defaultBalance: defaultBalance}
}

// Balance returns the user's balance, creating the account with the configured
// default on first access.
func (s *LedgerService) Balance(ctx context.Context, user string) (float64, error) {
	balance, err := s.accounts.GetBalance(ctx, user)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, model.ErrAccountNotFound) {
		return 0, err
	}

	// First access. CreateIfAbsent makes concurrent first lookups converge on
	// a single row, so the re-read is authoritative either way.
	if err := s.accounts.CreateIfAbsent(ctx, user, s.defaultBalance); err != nil {
		return 0, err
	}
	return s.accounts.GetBalance(ctx, user)
}

// Init sets the balance outright, creating the account if needed.
func (s *LedgerService) Init(ctx context.Context, user string, budget float64) error {
	return s.accounts.UpsertBalance(ctx, user, budget)
}

// Adjust applies balance += delta under a row lock, rejecting any delta that
// would leave the balance negative.
func (s *LedgerService) Adjust(ctx context.Context, user string, delta float64) (float64, error) {
	var newBalance float64
	err := s.accounts.RunAtomic(ctx, func(ctx context.Context) error {
		balance, err := s.accounts.GetBalanceForUpdate(ctx, user)
		if err != nil {
			return err
		}
		if balance+delta < 0 {
			return model.ErrInsufficientFunds
		}
		if err := s.accounts.ApplyDelta(ctx, user, delta); err != nil {
			return err
		}
		newBalance = balance + delta
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Transfer debits the source and credits the destination as one transaction,
// appending a transfer log row. The destination account is created with the
// default balance if it does not exist yet.
func (s *LedgerService) Transfer(ctx context.Context, from, to string, amount float64) (float64, error) {
	if from == to {
		return 0, errors.New("cannot transfer to the same account")
	}

	var newBalance float64
	err := s.accounts.RunAtomic(ctx, func(ctx context.Context) error {
		if err := s.accounts.CreateIfAbsent(ctx, to, s.defaultBalance); err != nil {
			return err
		}

		// Lock both rows in a stable order so two opposing transfers cannot
		// deadlock each other.
		first, second := from, to
		if second < first {
			first, second = second, first
		}
		balances := map[string]float64{}
		for _, user := range []string{first, second} {
			b, err := s.accounts.GetBalanceForUpdate(ctx, user)
			if err != nil {
				return err
			}
			balances[user] = b
		}

		if balances[from] < amount {
			return model.ErrInsufficientFunds
		}
		if err := s.accounts.ApplyDelta(ctx, from, -amount); err != nil {
			return err
		}
		if err := s.accounts.ApplyDelta(ctx, to, amount); err != nil {
			return err
		}
		if err := s.accounts.CreateTransfer(ctx, uuid.NewString(), from, to, amount); err != nil {
			return err
		}
		newBalance = balances[from] - amount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Transfers returns the most recent transfer log entries.
func (s *LedgerService) Transfers(ctx context.Context, limit int) ([]model.Transfer, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.accounts.ListTransfers(ctx, limit)
}
