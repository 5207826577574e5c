package domain

import "time"

// ListingStatus enumerates moderation lifecycle states for listings.
type ListingStatus string

const (
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusApproved ListingStatus = "approved"
	ListingStatusRejected ListingStatus = "rejected"
)

// MaxListingImages caps the number of stored images per listing.
const MaxListingImages = 5

// Listing is the aggregate for property advertisements submitted by users.
type Listing struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Price           float64       `json:"price"`
	City            string        `json:"city"`
	Commune         string        `json:"commune"`
	Neighborhood    string        `json:"neighborhood"`
	GuaranteeTerms  string        `json:"guaranteeTerms,omitempty"`
	Location        string        `json:"location,omitempty"`
	Images          []string      `json:"images"`
	AuthorID        string        `json:"authorId,omitempty"`
	Status          ListingStatus `json:"status"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
	PublishedAt     time.Time     `json:"publishedAt"`
}
