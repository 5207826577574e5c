package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/persistence"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util"
)

const testReceivingPhone = "+2250700000000"

func newPaymentRepo(t *testing.T) PaymentRepository {
	t.Helper()
	store, err := persistence.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return NewPaymentRepository(store, config.PaymentConfig{
		ReceivingPhone: testReceivingPhone,
		DefaultMethod:  "mobile_money",
	})
}

func validPaymentInput() PaymentCreateInput {
	return PaymentCreateInput{
		UserID:    "user-1",
		ListingID: "listing-1",
		Amount:    5000,
		Reference: "TX-42",
	}
}

func TestPaymentRepository_CreateSnapshotsReceivingPhone(t *testing.T) {
	repo := newPaymentRepo(t)

	payment, instruction, err := repo.Create(context.Background(), validPaymentInput())
	require.NoError(t, err)
	require.Equal(t, domain.PaymentStatusPending, payment.Status)
	require.Equal(t, testReceivingPhone, payment.ReceivingPhone)
	require.Contains(t, instruction, testReceivingPhone)
	require.Equal(t, "mobile_money", payment.Method)
}

func TestPaymentRepository_CreateValidation(t *testing.T) {
	repo := newPaymentRepo(t)

	_, _, err := repo.Create(context.Background(), PaymentCreateInput{Amount: -5})
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	require.ElementsMatch(t, []string{"userId", "listingId", "amount"}, domainErr.Details["fields"])
}

func TestPaymentRepository_ApproveAppendsExactlyOneTransaction(t *testing.T) {
	repo := newPaymentRepo(t)
	ctx := context.Background()

	payment, _, err := repo.Create(ctx, validPaymentInput())
	require.NoError(t, err)

	approved, tx, err := repo.Approve(ctx, payment.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentStatusApproved, approved.Status)
	require.NotNil(t, tx)
	require.Equal(t, payment.ID, tx.PaymentID)
	require.Equal(t, payment.Amount, tx.Amount)

	// re-approving is a no-op and never duplicates the transaction
	again, dupTx, err := repo.Approve(ctx, payment.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentStatusApproved, again.Status)
	require.Nil(t, dupTx)

	ledger, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	require.Equal(t, payment.Amount, ledger[0].Amount)
}

func TestPaymentRepository_RejectEmitsNoTransaction(t *testing.T) {
	repo := newPaymentRepo(t)
	ctx := context.Background()

	payment, _, err := repo.Create(ctx, validPaymentInput())
	require.NoError(t, err)

	rejected, err := repo.Reject(ctx, payment.ID, "no matching transfer")
	require.NoError(t, err)
	require.Equal(t, domain.PaymentStatusRejected, rejected.Status)
	require.Equal(t, "no matching transfer", rejected.RejectionReason)

	ledger, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Empty(t, ledger)
}

func TestPaymentRepository_RejectDoesNotVoidPriorTransaction(t *testing.T) {
	repo := newPaymentRepo(t)
	ctx := context.Background()

	payment, _, err := repo.Create(ctx, validPaymentInput())
	require.NoError(t, err)

	_, _, err = repo.Approve(ctx, payment.ID)
	require.NoError(t, err)

	_, err = repo.Reject(ctx, payment.ID, "charged back")
	require.NoError(t, err)

	ledger, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
}

func TestPaymentRepository_ApproveRejectedFails(t *testing.T) {
	repo := newPaymentRepo(t)
	ctx := context.Background()

	payment, _, err := repo.Create(ctx, validPaymentInput())
	require.NoError(t, err)
	_, err = repo.Reject(ctx, payment.ID, "")
	require.NoError(t, err)

	_, _, err = repo.Approve(ctx, payment.ID)
	require.Error(t, err)
	require.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestPaymentRepository_ConcurrentApprovals(t *testing.T) {
	repo := newPaymentRepo(t)
	ctx := context.Background()

	first, _, err := repo.Create(ctx, validPaymentInput())
	require.NoError(t, err)
	input := validPaymentInput()
	input.Amount = 7500
	second, _, err := repo.Create(ctx, input)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _, err := repo.Approve(ctx, id)
			require.NoError(t, err)
		}(id)
	}
	wg.Wait()

	ledger, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 2)

	var total float64
	for _, tx := range ledger {
		total += tx.Amount
	}
	require.Equal(t, 12500.0, total)
}

func TestPaymentRepository_NotFound(t *testing.T) {
	repo := newPaymentRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	require.True(t, apperrors.IsNotFound(err))
	_, _, err = repo.Approve(ctx, "missing")
	require.True(t, apperrors.IsNotFound(err))
	_, err = repo.Reject(ctx, "missing", "")
	require.True(t, apperrors.IsNotFound(err))
}

// flakySaveStore fails Save for one collection a limited number of
// times, then delegates.
type flakySaveStore struct {
	persistence.RecordStore
	failCollection string
	remaining      int
}

func (s *flakySaveStore) Save(ctx context.Context, collection string, records any) error {
	if collection == s.failCollection && s.remaining > 0 {
		s.remaining--
		return errors.New("disk full")
	}
	return s.RecordStore.Save(ctx, collection, records)
}

func TestPaymentRepository_ApproveRetryAfterFailedSaveReusesTransaction(t *testing.T) {
	inner, err := persistence.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	store := &flakySaveStore{RecordStore: inner, failCollection: persistence.CollectionPayments}
	repo := NewPaymentRepository(store, config.PaymentConfig{
		ReceivingPhone: testReceivingPhone,
		DefaultMethod:  "mobile_money",
	})
	ctx := context.Background()

	payment, _, err := repo.Create(ctx, validPaymentInput())
	require.NoError(t, err)

	// The transaction commits, then the payment save fails.
	store.remaining = 1
	_, _, err = repo.Approve(ctx, payment.ID)
	require.Error(t, err)

	stuck, err := repo.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentStatusPending, stuck.Status)

	ledger, err := repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)

	// The retry must converge on the committed transaction instead of
	// appending a second one.
	approved, tx, err := repo.Approve(ctx, payment.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentStatusApproved, approved.Status)
	require.NotNil(t, tx)
	require.Equal(t, ledger[0].ID, tx.ID)

	ledger, err = repo.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	require.Equal(t, payment.ID, ledger[0].PaymentID)
	require.Equal(t, payment.Amount, ledger[0].Amount)
}
