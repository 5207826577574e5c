package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/marketplace-service/internal/audit"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util"
)

// Authorizer answers whether the calling context carries the
// administrator capability. The decision is opaque to this service.
type Authorizer func(ctx context.Context) bool

// ModerationService gates every admin-only operation behind the
// injected Authorizer and writes exactly one audit entry per mutating
// action.
type ModerationService struct {
	listings   repository.ListingRepository
	users      repository.UserRepository
	payments   repository.PaymentRepository
	authorize  Authorizer
	audit      *audit.Log
	dispatcher events.Dispatcher
}

// ModerationDependencies bundles collaborators for the service.
type ModerationDependencies struct {
	ListingRepo repository.ListingRepository
	UserRepo    repository.UserRepository
	PaymentRepo repository.PaymentRepository
	Authorizer  Authorizer
	AuditLog    *audit.Log
	Dispatcher  events.Dispatcher
}

// NewModerationService constructs the service.
func NewModerationService(deps ModerationDependencies) *ModerationService {
	return &ModerationService{
		listings:   deps.ListingRepo,
		users:      deps.UserRepo,
		payments:   deps.PaymentRepo,
		authorize:  deps.Authorizer,
		audit:      deps.AuditLog,
		dispatcher: deps.Dispatcher,
	}
}

func (s *ModerationService) guard(ctx context.Context) error {
	if s.authorize == nil || !s.authorize(ctx) {
		return apperrors.NewUnauthorized("administrator capability required")
	}
	return nil
}

// ValidateListing approves a pending listing.
func (s *ModerationService) ValidateListing(ctx context.Context, id string) (*domain.Listing, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	listing, err := s.listings.Validate(ctx, id)
	if err != nil {
		return nil, err
	}
	s.audit.Record("LISTING_VALIDATED", fmt.Sprintf("id=%s", id))
	s.publish(ctx, events.EventListingValidated, id, events.ListingModeratedPayload{Status: listing.Status})
	return listing, nil
}

// RejectListing rejects a listing with an optional reason.
func (s *ModerationService) RejectListing(ctx context.Context, id, reason string) (*domain.Listing, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	listing, err := s.listings.Reject(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	s.audit.Record("LISTING_REJECTED", fmt.Sprintf("id=%s reason=%q", id, listing.RejectionReason))
	s.publish(ctx, events.EventListingRejected, id, events.ListingModeratedPayload{
		Status: listing.Status,
		Reason: listing.RejectionReason,
	})
	return listing, nil
}

// DeleteListing removes a listing and its stored files.
func (s *ModerationService) DeleteListing(ctx context.Context, id string) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	if err := s.listings.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record("LISTING_DELETED", fmt.Sprintf("id=%s", id))
	s.publish(ctx, events.EventListingDeleted, id, events.ListingModeratedPayload{})
	return nil
}

// DeleteUser removes a user without cascading to owned listings.
func (s *ModerationService) DeleteUser(ctx context.Context, id string) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record("USER_DELETED", fmt.Sprintf("id=%s", id))
	s.publish(ctx, events.EventUserDeleted, id, nil)
	return nil
}

// ApprovePayment confirms a payment and its ledger transaction.
func (s *ModerationService) ApprovePayment(ctx context.Context, id string) (*domain.Payment, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	payment, tx, err := s.payments.Approve(ctx, id)
	if err != nil {
		return nil, err
	}
	details := fmt.Sprintf("id=%s amount=%.0f", id, payment.Amount)
	payload := events.PaymentModeratedPayload{Amount: payment.Amount}
	if tx != nil {
		details += fmt.Sprintf(" transaction=%s", tx.ID)
		payload.TransactionID = tx.ID
	}
	s.audit.Record("PAYMENT_APPROVED", details)
	s.publish(ctx, events.EventPaymentApproved, id, payload)
	return payment, nil
}

// RejectPayment rejects a payment with an optional reason.
func (s *ModerationService) RejectPayment(ctx context.Context, id, reason string) (*domain.Payment, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	payment, err := s.payments.Reject(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	s.audit.Record("PAYMENT_REJECTED", fmt.Sprintf("id=%s reason=%q", id, payment.RejectionReason))
	s.publish(ctx, events.EventPaymentRejected, id, events.PaymentModeratedPayload{
		Amount: payment.Amount,
		Reason: payment.RejectionReason,
	})
	return payment, nil
}

// ListListings returns every listing for the moderation view.
func (s *ModerationService) ListListings(ctx context.Context) ([]domain.Listing, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.listings.ListAll(ctx)
}

// ListUsers returns every user for the moderation view.
func (s *ModerationService) ListUsers(ctx context.Context) ([]domain.User, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// ListPayments returns every payment for the moderation view.
func (s *ModerationService) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}
	return s.payments.List(ctx)
}

func (s *ModerationService) publish(ctx context.Context, eventType events.EventType, subjectID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:      eventType,
		SubjectID: subjectID,
		Payload:   payload,
	})
}
