package domain

import "time"

// PaymentStatus enumerates moderation lifecycle states for payments.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
)

// DefaultPaymentMethod is used when the caller does not name one.
const DefaultPaymentMethod = "mobile_money"

// Payment is an administrator-attested record of funds a user claims to
// have sent. UserID and ListingID are weak references and are never
// checked for existence.
type Payment struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	ListingID       string        `json:"listingId"`
	Amount          float64       `json:"amount"`
	Reference       string        `json:"reference,omitempty"`
	Method          string        `json:"method"`
	Status          PaymentStatus `json:"status"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
	ReceivingPhone  string        `json:"receivingPhone"`
	CreatedAt       time.Time     `json:"createdAt"`
}
