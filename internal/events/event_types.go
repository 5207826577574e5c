package events

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventListingSubmitted EventType = "listing_submitted"
	EventListingValidated EventType = "listing_validated"
	EventListingRejected  EventType = "listing_rejected"
	EventListingDeleted   EventType = "listing_deleted"
	EventUserDeleted      EventType = "user_deleted"
	EventPaymentDeclared  EventType = "payment_declared"
	EventPaymentApproved  EventType = "payment_approved"
	EventPaymentRejected  EventType = "payment_rejected"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ListingSubmittedPayload payload.
type ListingSubmittedPayload struct {
	Title    string  `json:"title"`
	City     string  `json:"city"`
	Price    float64 `json:"price"`
	AuthorID string  `json:"author_id,omitempty"`
}

// ListingModeratedPayload payload for validate/reject/delete.
type ListingModeratedPayload struct {
	Status domain.ListingStatus `json:"status,omitempty"`
	Reason string               `json:"reason,omitempty"`
}

// PaymentDeclaredPayload payload.
type PaymentDeclaredPayload struct {
	UserID    string  `json:"user_id"`
	ListingID string  `json:"listing_id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
}

// PaymentModeratedPayload payload for approve/reject.
type PaymentModeratedPayload struct {
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}
