package service

import (
	"context"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/repository"
)

// StatsService is a read-only projection over all repositories. No
// caching; every call reflects what the repositories currently report.
type StatsService struct {
	listings repository.ListingRepository
	users    repository.UserRepository
	payments repository.PaymentRepository
}

// NewStatsService constructs the aggregator.
func NewStatsService(listings repository.ListingRepository, users repository.UserRepository, payments repository.PaymentRepository) *StatsService {
	return &StatsService{listings: listings, users: users, payments: payments}
}

// Compute counts listings, users and payments and totals the ledger.
func (s *StatsService) Compute(ctx context.Context) (*domain.Stats, error) {
	listings, err := s.listings.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.List(ctx)
	if err != nil {
		return nil, err
	}
	transactions, err := s.payments.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}

	var revenue float64
	for _, tx := range transactions {
		revenue += tx.Amount
	}

	return &domain.Stats{
		Listings:     len(listings),
		Users:        len(users),
		Payments:     len(payments),
		TotalRevenue: revenue,
	}, nil
}
