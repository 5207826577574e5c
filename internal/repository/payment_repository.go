package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/persistence"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util"
)

// PaymentCreateInput describes a payment declaration.
type PaymentCreateInput struct {
	UserID    string
	ListingID string
	Amount    float64
	Reference string
	Method    string
}

// PaymentRepository encapsulates payment persistence, the payment state
// machine, and the derived transaction ledger. Payments are never
// deleted.
type PaymentRepository interface {
	Create(ctx context.Context, input PaymentCreateInput) (*domain.Payment, string, error)
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	List(ctx context.Context) ([]domain.Payment, error)
	Approve(ctx context.Context, id string) (*domain.Payment, *domain.Transaction, error)
	Reject(ctx context.Context, id, reason string) (*domain.Payment, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
}

type paymentRepository struct {
	store persistence.RecordStore
	cfg   config.PaymentConfig
}

// NewPaymentRepository instantiates the repository. The receiving phone
// from cfg is snapshotted onto every created payment.
func NewPaymentRepository(store persistence.RecordStore, cfg config.PaymentConfig) PaymentRepository {
	return &paymentRepository{store: store, cfg: cfg}
}

// Create persists a new pending payment and returns it together with a
// human-readable payment instruction embedding the receiving phone.
func (r *paymentRepository) Create(ctx context.Context, input PaymentCreateInput) (*domain.Payment, string, error) {
	var fields []string
	if strings.TrimSpace(input.UserID) == "" {
		fields = append(fields, "userId")
	}
	if strings.TrimSpace(input.ListingID) == "" {
		fields = append(fields, "listingId")
	}
	if input.Amount <= 0 {
		fields = append(fields, "amount")
	}
	if len(fields) > 0 {
		return nil, "", apperrors.NewValidationError("invalid payment declaration", fields)
	}

	method := strings.TrimSpace(input.Method)
	if method == "" {
		method = r.cfg.DefaultMethod
	}
	if method == "" {
		method = domain.DefaultPaymentMethod
	}

	payment := &domain.Payment{
		ID:             uuid.NewString(),
		UserID:         input.UserID,
		ListingID:      input.ListingID,
		Amount:         input.Amount,
		Reference:      strings.TrimSpace(input.Reference),
		Method:         method,
		Status:         domain.PaymentStatusPending,
		ReceivingPhone: r.cfg.ReceivingPhone,
		CreatedAt:      time.Now().UTC(),
	}

	err := r.store.Mutate(ctx, func(ctx context.Context) error {
		var payments []domain.Payment
		if err := r.store.Load(ctx, persistence.CollectionPayments, &payments); err != nil {
			return apperrors.NewStorageError("load payments", err)
		}
		payments = append(payments, *payment)
		if err := r.store.Save(ctx, persistence.CollectionPayments, payments); err != nil {
			return apperrors.NewStorageError("save payments", err)
		}
		return nil
	}, persistence.CollectionPayments)
	if err != nil {
		return nil, "", err
	}

	instruction := fmt.Sprintf("Send %.0f via %s to %s, then wait for an administrator to confirm your payment.",
		payment.Amount, payment.Method, payment.ReceivingPhone)
	return payment, instruction, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	payments, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range payments {
		if payments[i].ID == id {
			return &payments[i], nil
		}
	}
	return nil, apperrors.NewNotFound("payment", map[string]any{"id": id})
}

func (r *paymentRepository) List(ctx context.Context) ([]domain.Payment, error) {
	var payments []domain.Payment
	if err := r.store.Load(ctx, persistence.CollectionPayments, &payments); err != nil {
		return nil, apperrors.NewStorageError("load payments", err)
	}
	return payments, nil
}

// Approve transitions a pending payment to approved and appends exactly
// one ledger transaction. Both collections stay locked for the whole
// cycle, and the transaction is saved before the payment, so an
// approved payment is never durably visible without its transaction.
// A retry after a failed payment save reuses the transaction already
// committed for this payment rather than appending a second one.
// Re-approving an approved payment is a no-op and returns a nil
// transaction.
func (r *paymentRepository) Approve(ctx context.Context, id string) (*domain.Payment, *domain.Transaction, error) {
	var (
		approved *domain.Payment
		created  *domain.Transaction
	)
	err := r.store.Mutate(ctx, func(ctx context.Context) error {
		var payments []domain.Payment
		if err := r.store.Load(ctx, persistence.CollectionPayments, &payments); err != nil {
			return apperrors.NewStorageError("load payments", err)
		}
		idx := -1
		for i := range payments {
			if payments[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apperrors.NewNotFound("payment", map[string]any{"id": id})
		}
		switch payments[idx].Status {
		case domain.PaymentStatusApproved:
			record := payments[idx]
			approved = &record
			return nil
		case domain.PaymentStatusRejected:
			return apperrors.NewConflict("payment already rejected", map[string]any{"id": id})
		}

		var transactions []domain.Transaction
		if err := r.store.Load(ctx, persistence.CollectionTransactions, &transactions); err != nil {
			return apperrors.NewStorageError("load transactions", err)
		}
		// A failed approve may have committed the transaction without
		// the payment. Reuse it so a retry converges on one ledger
		// entry per payment.
		var tx *domain.Transaction
		for i := range transactions {
			if transactions[i].PaymentID == payments[idx].ID {
				tx = &transactions[i]
				break
			}
		}
		if tx == nil {
			entry := domain.Transaction{
				ID:        uuid.NewString(),
				PaymentID: payments[idx].ID,
				Amount:    payments[idx].Amount,
				Timestamp: time.Now().UTC(),
			}
			transactions = append(transactions, entry)
			if err := r.store.Save(ctx, persistence.CollectionTransactions, transactions); err != nil {
				return apperrors.NewStorageError("save transactions", err)
			}
			tx = &entry
		}

		payments[idx].Status = domain.PaymentStatusApproved
		if err := r.store.Save(ctx, persistence.CollectionPayments, payments); err != nil {
			return apperrors.NewStorageError("save payments", err)
		}
		record := payments[idx]
		approved = &record
		entry := *tx
		created = &entry
		return nil
	}, persistence.CollectionPayments, persistence.CollectionTransactions)
	if err != nil {
		return nil, nil, err
	}
	return approved, created, nil
}

// Reject transitions a payment to rejected. No transaction is emitted
// and a prior transaction is never retroactively voided.
func (r *paymentRepository) Reject(ctx context.Context, id, reason string) (*domain.Payment, error) {
	var rejected *domain.Payment
	err := r.store.Mutate(ctx, func(ctx context.Context) error {
		var payments []domain.Payment
		if err := r.store.Load(ctx, persistence.CollectionPayments, &payments); err != nil {
			return apperrors.NewStorageError("load payments", err)
		}
		for i := range payments {
			if payments[i].ID == id {
				payments[i].Status = domain.PaymentStatusRejected
				payments[i].RejectionReason = strings.TrimSpace(reason)
				if err := r.store.Save(ctx, persistence.CollectionPayments, payments); err != nil {
					return apperrors.NewStorageError("save payments", err)
				}
				record := payments[i]
				rejected = &record
				return nil
			}
		}
		return apperrors.NewNotFound("payment", map[string]any{"id": id})
	}, persistence.CollectionPayments)
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// ListTransactions returns the full ledger.
func (r *paymentRepository) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	if err := r.store.Load(ctx, persistence.CollectionTransactions, &transactions); err != nil {
		return nil, apperrors.NewStorageError("load transactions", err)
	}
	return transactions, nil
}
