package dto

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// AdminLoginResponse returns the issued session token.
type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PaymentCreatedResponse pairs the pending payment with the instruction
// the user must follow.
type PaymentCreatedResponse struct {
	Payment     domain.Payment `json:"payment"`
	Instruction string         `json:"instruction"`
}
