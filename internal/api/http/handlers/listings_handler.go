package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/repository"
	"github.com/spec-kit/marketplace-service/internal/uploads"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util"
)

// ListingsHandler serves the public listing endpoints.
type ListingsHandler struct {
	listings   repository.ListingRepository
	users      repository.UserRepository
	ingestor   uploads.Ingestor
	dispatcher events.Dispatcher
}

// NewListingsHandler constructs handler.
func NewListingsHandler(listings repository.ListingRepository, users repository.UserRepository, ingestor uploads.Ingestor, dispatcher events.Dispatcher) *ListingsHandler {
	return &ListingsHandler{listings: listings, users: users, ingestor: ingestor, dispatcher: dispatcher}
}

// Create POST /api/listings. Multipart form: text fields plus up to
// five files under "images".
func (h *ListingsHandler) Create(c *fiber.Ctx) error {
	var headers []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		headers = form.File["images"]
	}

	stored, err := h.ingestor.Ingest(headers)
	if err != nil {
		return err
	}
	paths := make([]string, 0, len(stored))
	for _, file := range stored {
		paths = append(paths, file.Path)
	}

	input := repository.ListingCreateInput{
		Title:          c.FormValue("title"),
		Description:    c.FormValue("description"),
		Price:          c.FormValue("price"),
		City:           c.FormValue("city"),
		Commune:        c.FormValue("commune"),
		Neighborhood:   c.FormValue("neighborhood"),
		GuaranteeTerms: c.FormValue("guaranteeTerms"),
		Location:       c.FormValue("location"),
		AuthorID:       c.FormValue("authorId"),
		Images:         paths,
	}

	listing, err := h.listings.Create(c.UserContext(), input)
	if err != nil {
		return err
	}

	if listing.AuthorID != "" {
		// informational link only; a missing author is not an error
		if err := h.users.AppendListing(c.UserContext(), listing.AuthorID, listing.ID); err != nil && !apperrors.IsNotFound(err) {
			return err
		}
	}

	if h.dispatcher != nil {
		_ = h.dispatcher.Publish(c.UserContext(), events.Event{
			Type:      events.EventListingSubmitted,
			SubjectID: listing.ID,
			Payload: events.ListingSubmittedPayload{
				Title:    listing.Title,
				City:     listing.City,
				Price:    listing.Price,
				AuthorID: listing.AuthorID,
			},
		})
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": listing})
}

// List GET /api/listings returns approved listings only.
func (h *ListingsHandler) List(c *fiber.Ctx) error {
	listings, err := h.listings.ListPublic(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": listings})
}

// Get GET /api/listings/:id.
func (h *ListingsHandler) Get(c *fiber.Ctx) error {
	listing, err := h.listings.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": listing})
}
