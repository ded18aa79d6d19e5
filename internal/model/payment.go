package model

import "time"

const (
	PaymentTypeDebit  = "debit"
	PaymentTypeCredit = "credit"
)

// PaymentRecord is an append-only audit row for a settled external payment.
// ExternalReference is the gateway's payment-intent id and doubles as the
// idempotency key: confirming the same reference twice must not debit twice.
type PaymentRecord struct {
	ID                string    `json:"id"`
	Username          string    `json:"user"`
	Amount            float64   `json:"amount"`
	ExternalReference string    `json:"external_reference"`
	Type              string    `json:"type"`
	CreatedAt         time.Time `json:"created_at"`
}
