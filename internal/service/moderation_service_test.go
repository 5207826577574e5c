package service

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/audit"
	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/persistence"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util"
)

type moderationFixture struct {
	service   *ModerationService
	listings  repository.ListingRepository
	payments  repository.PaymentRepository
	users     repository.UserRepository
	auditPath string
}

func newModerationFixture(t *testing.T, authorize Authorizer) *moderationFixture {
	t.Helper()
	store, err := persistence.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	listings := repository.NewListingRepository(store, nil, zap.NewNop())
	users := repository.NewUserRepository(store)
	payments := repository.NewPaymentRepository(store, config.PaymentConfig{
		ReceivingPhone: "+2250700000000",
		DefaultMethod:  "mobile_money",
	})

	auditPath := filepath.Join(t.TempDir(), "audit.log")
	svc := NewModerationService(ModerationDependencies{
		ListingRepo: listings,
		UserRepo:    users,
		PaymentRepo: payments,
		Authorizer:  authorize,
		AuditLog:    audit.New(auditPath, zap.NewNop()),
		Dispatcher:  events.NewInMemoryDispatcher(),
	})
	return &moderationFixture{
		service:   svc,
		listings:  listings,
		payments:  payments,
		users:     users,
		auditPath: auditPath,
	}
}

func grantAll(context.Context) bool { return true }
func denyAll(context.Context) bool  { return false }

func (f *moderationFixture) auditLines(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(f.auditPath)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func (f *moderationFixture) createListing(t *testing.T) *domain.Listing {
	t.Helper()
	listing, err := f.listings.Create(context.Background(), repository.ListingCreateInput{
		Title:        "Studio downtown",
		Price:        "90000",
		City:         "Abidjan",
		Commune:      "Plateau",
		Neighborhood: "Centre",
	})
	require.NoError(t, err)
	return listing
}

func TestModerationService_DeniesWithoutCapability(t *testing.T) {
	fixture := newModerationFixture(t, denyAll)
	ctx := context.Background()

	listing := fixture.createListing(t)

	_, err := fixture.service.ValidateListing(ctx, listing.ID)
	require.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
	_, err = fixture.service.RejectListing(ctx, listing.ID, "spam")
	require.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
	err = fixture.service.DeleteListing(ctx, listing.ID)
	require.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
	_, err = fixture.service.ListPayments(ctx)
	require.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	// the denied action left no state change and no audit entry
	got, err := fixture.listings.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ListingStatusPending, got.Status)
	require.Empty(t, fixture.auditLines(t))
}

var auditLineFormat = regexp.MustCompile(
	`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z \| [A-Z_]+ \| .+$`)

func TestModerationService_AuditsEveryMutation(t *testing.T) {
	fixture := newModerationFixture(t, grantAll)
	ctx := context.Background()

	listing := fixture.createListing(t)
	other := fixture.createListing(t)
	user, err := fixture.users.Create(ctx, "Awa", "+225")
	require.NoError(t, err)
	payment, _, err := fixture.payments.Create(ctx, repository.PaymentCreateInput{
		UserID: user.ID, ListingID: listing.ID, Amount: 5000,
	})
	require.NoError(t, err)

	_, err = fixture.service.ValidateListing(ctx, listing.ID)
	require.NoError(t, err)
	_, err = fixture.service.RejectListing(ctx, other.ID, "duplicate")
	require.NoError(t, err)
	require.NoError(t, fixture.service.DeleteListing(ctx, other.ID))
	_, err = fixture.service.ApprovePayment(ctx, payment.ID)
	require.NoError(t, err)
	_, err = fixture.service.RejectPayment(ctx, payment.ID, "late")
	require.NoError(t, err)
	require.NoError(t, fixture.service.DeleteUser(ctx, user.ID))

	lines := fixture.auditLines(t)
	require.Len(t, lines, 6)
	for _, line := range lines {
		require.Regexp(t, auditLineFormat, line)
	}
	require.Contains(t, lines[0], "LISTING_VALIDATED")
	require.Contains(t, lines[0], listing.ID)
	require.Contains(t, lines[1], "LISTING_REJECTED")
	require.Contains(t, lines[1], `reason="duplicate"`)
	require.Contains(t, lines[2], "LISTING_DELETED")
	require.Contains(t, lines[3], "PAYMENT_APPROVED")
	require.Contains(t, lines[4], "PAYMENT_REJECTED")
	require.Contains(t, lines[5], "USER_DELETED")
}

func TestModerationService_AdminListsAndTransitions(t *testing.T) {
	fixture := newModerationFixture(t, grantAll)
	ctx := context.Background()

	listing := fixture.createListing(t)

	all, err := fixture.service.ListListings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	validated, err := fixture.service.ValidateListing(ctx, listing.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ListingStatusApproved, validated.Status)

	rejected, err := fixture.service.RejectListing(ctx, listing.ID, "owner request")
	require.NoError(t, err)
	require.Equal(t, domain.ListingStatusRejected, rejected.Status)
	require.Equal(t, "owner request", rejected.RejectionReason)
}
