package model

import "errors"

var (
	// ErrInsufficientFunds indicates a debit would take a balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAccountNotFound indicates the account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrItemNotFound indicates no cart item matched the lookup.
	ErrItemNotFound = errors.New("item not found")
	// ErrDuplicateItem indicates the user already has an item with that name.
	ErrDuplicateItem = errors.New("item already in cart")
	// ErrPaymentNotSettled indicates the gateway reported a status outside the
	// allowed set, so no ledger mutation was applied.
	ErrPaymentNotSettled = errors.New("payment not confirmed by gateway")
	// ErrReferenceInUse indicates the gateway reference was already settled by
	// a different account.
	ErrReferenceInUse = errors.New("payment reference already settled by another account")
)
