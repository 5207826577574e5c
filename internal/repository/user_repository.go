package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/persistence"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util"
)

// UserRepository encapsulates user persistence. Deleting a user never
// cascades to the listings or payments referencing it.
type UserRepository interface {
	Create(ctx context.Context, name, phone string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id string) error
	AppendListing(ctx context.Context, userID, listingID string) error
}

type userRepository struct {
	store persistence.RecordStore
}

// NewUserRepository instantiates the repository.
func NewUserRepository(store persistence.RecordStore) UserRepository {
	return &userRepository{store: store}
}

// Create registers a new user from a signup call.
func (r *userRepository) Create(ctx context.Context, name, phone string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)

	var fields []string
	if name == "" {
		fields = append(fields, "name")
	}
	if phone == "" {
		fields = append(fields, "phone")
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError("invalid signup", fields)
	}

	user := &domain.User{
		ID:        uuid.NewString(),
		Name:      name,
		Phone:     phone,
		Listings:  []string{},
		CreatedAt: time.Now().UTC(),
	}

	err := r.store.Mutate(ctx, func(ctx context.Context) error {
		var users []domain.User
		if err := r.store.Load(ctx, persistence.CollectionUsers, &users); err != nil {
			return apperrors.NewStorageError("load users", err)
		}
		users = append(users, *user)
		if err := r.store.Save(ctx, persistence.CollectionUsers, users); err != nil {
			return apperrors.NewStorageError("save users", err)
		}
		return nil
	}, persistence.CollectionUsers)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.store.Load(ctx, persistence.CollectionUsers, &users); err != nil {
		return nil, apperrors.NewStorageError("load users", err)
	}
	return users, nil
}

// Delete removes the user record. Owned listings are left untouched.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.store.Mutate(ctx, func(ctx context.Context) error {
		var users []domain.User
		if err := r.store.Load(ctx, persistence.CollectionUsers, &users); err != nil {
			return apperrors.NewStorageError("load users", err)
		}
		idx := -1
		for i := range users {
			if users[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		users = append(users[:idx], users[idx+1:]...)
		if err := r.store.Save(ctx, persistence.CollectionUsers, users); err != nil {
			return apperrors.NewStorageError("save users", err)
		}
		return nil
	}, persistence.CollectionUsers)
}

// AppendListing records a listing reference on its author. The list is
// informational and is not rewritten when the listing goes away.
func (r *userRepository) AppendListing(ctx context.Context, userID, listingID string) error {
	return r.store.Mutate(ctx, func(ctx context.Context) error {
		var users []domain.User
		if err := r.store.Load(ctx, persistence.CollectionUsers, &users); err != nil {
			return apperrors.NewStorageError("load users", err)
		}
		for i := range users {
			if users[i].ID == userID {
				users[i].Listings = append(users[i].Listings, listingID)
				if err := r.store.Save(ctx, persistence.CollectionUsers, users); err != nil {
					return apperrors.NewStorageError("save users", err)
				}
				return nil
			}
		}
		return apperrors.NewNotFound("user", map[string]any{"id": userID})
	}, persistence.CollectionUsers)
}
