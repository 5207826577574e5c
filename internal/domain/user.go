package domain

import "time"

// User is the domain model for people who submit listings and payments.
// The Listings slice is informational only; deleting a listing does not
// rewrite it.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Listings  []string  `json:"listings"`
	CreatedAt time.Time `json:"createdAt"`
}
