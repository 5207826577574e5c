package domain

import "time"

// Transaction is an immutable ledger entry, created exactly once when a
// payment transitions from pending to approved. Never mutated or deleted.
type Transaction struct {
	ID        string    `json:"id"`
	PaymentID string    `json:"paymentId"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}
