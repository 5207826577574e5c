package dto

// SignupRequest registers a new user.
type SignupRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// CreatePaymentRequest declares a mobile-money payment.
type CreatePaymentRequest struct {
	UserID    string  `json:"userId"`
	ListingID string  `json:"listingId"`
	Amount    float64 `json:"amount"`
	Reference string  `json:"reference"`
	Method    string  `json:"method"`
}

// RejectRequest carries the optional moderation reason.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// AdminLoginRequest exchanges the admin secret for a session token.
type AdminLoginRequest struct {
	Secret string `json:"secret"`
}
