package service

import (
	"context"

	"github.com/google/uuid"

	"basira/backend/internal/model"
	"basira/backend/internal/repository"
	"basira/backend/internal/service/stripe"
)

type PaymentService struct {
	payments *repository.PaymentRepository
	accounts *repository.LedgerRepository
	gateway  *stripe.Client
	allowed  map[string]bool
}

func NewPaymentService(payments *repository.PaymentRepository, accounts *repository.LedgerRepository, gateway *stripe.Client, allowedStatuses []string) *PaymentService {
	allowed := make(map[string]bool, len(allowedStatuses))
	for _, s := range allowedStatuses {
		allowed[s] = true
	}
	return &PaymentService{payments: payments, accounts: accounts, gateway: gateway, allowed: allowed}
}

// CreateIntent registers a payment intent with the gateway and returns the
// client secret the frontend needs to collect the payment.
func (s *PaymentService) CreateIntent(ctx context.Context, user string, amount float64) (string, error) {
	intent, err := s.gateway.CreateIntent(ctx, stripe.IntentParams{
		// Whole cents only; sub-cent remainders are truncated, not rounded
		AmountCents: int64(amount * 100),
		Currency:    "usd",
		User:        user,
	})
	if err != nil {
		return "", err
	}
	return intent.ClientSecret, nil
}

// ConfirmResult reports the outcome of a settlement.
type ConfirmResult struct {
	NewBalance float64
	Duplicate  bool
}

// Confirm settles a payment: it re-retrieves the intent from the gateway
// (client claims of success are never trusted), checks the status against the
// allowed set, then appends the payment record and debits the ledger in one
// transaction. A reference that was already settled is a no-op success; an
// insufficient balance rolls the record back along with the debit.
func (s *PaymentService) Confirm(ctx context.Context, user, reference string, amount float64) (*ConfirmResult, error) {
	intent, err := s.gateway.RetrieveIntent(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !s.allowed[intent.Status] {
		return nil, model.ErrPaymentNotSettled
	}

	result := &ConfirmResult{}
	err = s.payments.RunAtomic(ctx, func(ctx context.Context) error {
		balance, err := s.accounts.GetBalanceForUpdate(ctx, user)
		if err != nil {
			return err
		}

		inserted, err := s.payments.InsertRecord(ctx, &model.PaymentRecord{
			ID:                uuid.NewString(),
			Username:          user,
			Amount:            amount,
			ExternalReference: reference,
			Type:              model.PaymentTypeDebit,
		})
		if err != nil {
			return err
		}
		if !inserted {
			existing, err := s.payments.GetByReference(ctx, reference)
			if err != nil {
				return err
			}
			if existing.Username != user {
				return model.ErrReferenceInUse
			}
			// Already settled by this user: report the current balance,
			// debit nothing.
			result.NewBalance = balance
			result.Duplicate = true
			return nil
		}

		if balance < amount {
			return model.ErrInsufficientFunds
		}
		if err := s.accounts.ApplyDelta(ctx, user, -amount); err != nil {
			return err
		}
		result.NewBalance = balance - amount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// History lists settled payments, optionally per user.
func (s *PaymentService) History(ctx context.Context, user string) ([]model.PaymentRecord, error) {
	return s.payments.ListRecords(ctx, user)
}
