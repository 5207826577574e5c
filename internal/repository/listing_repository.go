package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/persistence"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util"
)

// FileRemover deletes a stored file by reference. Listing deletion and
// rejected submissions use it for best-effort cleanup.
type FileRemover interface {
	Remove(path string) error
}

// ListingCreateInput describes a listing submission. Price arrives as
// the raw form value and is validated here.
type ListingCreateInput struct {
	Title          string
	Description    string
	Price          string
	City           string
	Commune        string
	Neighborhood   string
	GuaranteeTerms string
	Location       string
	AuthorID       string
	Images         []string
}

// ListingRepository encapsulates listing persistence and the moderation
// state machine over status.
type ListingRepository interface {
	Create(ctx context.Context, input ListingCreateInput) (*domain.Listing, error)
	ListPublic(ctx context.Context) ([]domain.Listing, error)
	ListAll(ctx context.Context) ([]domain.Listing, error)
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	Validate(ctx context.Context, id string) (*domain.Listing, error)
	Reject(ctx context.Context, id, reason string) (*domain.Listing, error)
	Delete(ctx context.Context, id string) error
}

type listingRepository struct {
	store  persistence.RecordStore
	files  FileRemover
	logger *zap.Logger
}

// NewListingRepository instantiates the repository.
func NewListingRepository(store persistence.RecordStore, files FileRemover, logger *zap.Logger) ListingRepository {
	return &listingRepository{store: store, files: files, logger: logger}
}

// Create validates the submission and persists a new pending listing.
// On validation failure every already-ingested file is removed so no
// orphaned upload survives the request.
func (r *listingRepository) Create(ctx context.Context, input ListingCreateInput) (*domain.Listing, error) {
	price, fields := validateListingInput(input)
	if len(fields) > 0 {
		r.discardFiles(input.Images)
		return nil, apperrors.NewValidationError("invalid listing submission", fields)
	}

	images := input.Images
	if len(images) > domain.MaxListingImages {
		images = images[:domain.MaxListingImages]
	}

	listing := &domain.Listing{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Price:          price,
		City:           strings.TrimSpace(input.City),
		Commune:        strings.TrimSpace(input.Commune),
		Neighborhood:   strings.TrimSpace(input.Neighborhood),
		GuaranteeTerms: strings.TrimSpace(input.GuaranteeTerms),
		Location:       strings.TrimSpace(input.Location),
		Images:         images,
		AuthorID:       input.AuthorID,
		Status:         domain.ListingStatusPending,
		PublishedAt:    time.Now().UTC(),
	}

	err := r.store.Mutate(ctx, func(ctx context.Context) error {
		var listings []domain.Listing
		if err := r.store.Load(ctx, persistence.CollectionListings, &listings); err != nil {
			return apperrors.NewStorageError("load listings", err)
		}
		listings = append(listings, *listing)
		if err := r.store.Save(ctx, persistence.CollectionListings, listings); err != nil {
			return apperrors.NewStorageError("save listings", err)
		}
		return nil
	}, persistence.CollectionListings)
	if err != nil {
		r.discardFiles(input.Images)
		return nil, err
	}
	return listing, nil
}

func validateListingInput(input ListingCreateInput) (float64, []string) {
	var fields []string
	if len(strings.TrimSpace(input.Title)) < 3 {
		fields = append(fields, "title")
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(input.Price), 64)
	if err != nil || price < 0 {
		fields = append(fields, "price")
	}
	if len(strings.TrimSpace(input.City)) < 2 {
		fields = append(fields, "city")
	}
	if strings.TrimSpace(input.Commune) == "" {
		fields = append(fields, "commune")
	}
	if strings.TrimSpace(input.Neighborhood) == "" {
		fields = append(fields, "neighborhood")
	}
	return price, fields
}

// ListPublic returns approved listings only, in storage order.
func (r *listingRepository) ListPublic(ctx context.Context) ([]domain.Listing, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	public := make([]domain.Listing, 0, len(all))
	for _, listing := range all {
		if listing.Status == domain.ListingStatusApproved {
			public = append(public, listing)
		}
	}
	return public, nil
}

// ListAll returns every listing regardless of status.
func (r *listingRepository) ListAll(ctx context.Context) ([]domain.Listing, error) {
	var listings []domain.Listing
	if err := r.store.Load(ctx, persistence.CollectionListings, &listings); err != nil {
		return nil, apperrors.NewStorageError("load listings", err)
	}
	return listings, nil
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, apperrors.NewNotFound("listing", map[string]any{"id": id})
}

// Validate transitions a pending listing to approved. Re-validating an
// approved listing is a no-op; a rejected listing cannot come back.
func (r *listingRepository) Validate(ctx context.Context, id string) (*domain.Listing, error) {
	return r.transition(ctx, id, func(listing *domain.Listing) error {
		switch listing.Status {
		case domain.ListingStatusApproved:
			return nil
		case domain.ListingStatusRejected:
			return apperrors.NewConflict("listing already rejected", map[string]any{"id": id})
		default:
			listing.Status = domain.ListingStatusApproved
			listing.RejectionReason = ""
			return nil
		}
	})
}

// Reject moves a listing to rejected from any state, overwriting any
// previous reason.
func (r *listingRepository) Reject(ctx context.Context, id, reason string) (*domain.Listing, error) {
	return r.transition(ctx, id, func(listing *domain.Listing) error {
		listing.Status = domain.ListingStatusRejected
		listing.RejectionReason = strings.TrimSpace(reason)
		return nil
	})
}

func (r *listingRepository) transition(ctx context.Context, id string, apply func(*domain.Listing) error) (*domain.Listing, error) {
	var updated *domain.Listing
	err := r.store.Mutate(ctx, func(ctx context.Context) error {
		var listings []domain.Listing
		if err := r.store.Load(ctx, persistence.CollectionListings, &listings); err != nil {
			return apperrors.NewStorageError("load listings", err)
		}
		idx := -1
		for i := range listings {
			if listings[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apperrors.NewNotFound("listing", map[string]any{"id": id})
		}
		if err := apply(&listings[idx]); err != nil {
			return err
		}
		if err := r.store.Save(ctx, persistence.CollectionListings, listings); err != nil {
			return apperrors.NewStorageError("save listings", err)
		}
		record := listings[idx]
		updated = &record
		return nil
	}, persistence.CollectionListings)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the listing record and best-effort removes its stored
// images. A failed file removal never fails the deletion.
func (r *listingRepository) Delete(ctx context.Context, id string) error {
	var images []string
	err := r.store.Mutate(ctx, func(ctx context.Context) error {
		var listings []domain.Listing
		if err := r.store.Load(ctx, persistence.CollectionListings, &listings); err != nil {
			return apperrors.NewStorageError("load listings", err)
		}
		idx := -1
		for i := range listings {
			if listings[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apperrors.NewNotFound("listing", map[string]any{"id": id})
		}
		images = listings[idx].Images
		listings = append(listings[:idx], listings[idx+1:]...)
		if err := r.store.Save(ctx, persistence.CollectionListings, listings); err != nil {
			return apperrors.NewStorageError("save listings", err)
		}
		return nil
	}, persistence.CollectionListings)
	if err != nil {
		return err
	}

	r.discardFiles(images)
	return nil
}

func (r *listingRepository) discardFiles(paths []string) {
	if r.files == nil {
		return
	}
	for _, path := range paths {
		if err := r.files.Remove(path); err != nil {
			r.logger.Warn("remove listing image", zap.String("path", path), zap.Error(err))
		}
	}
}
