package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartStatsWorker logs a platform snapshot on a fixed interval until
// ctx is cancelled. The snapshot reads live repository state, so a
// quiet platform logs the same numbers every tick.
func StartStatsWorker(ctx context.Context, stats *service.StatsService, logger *zap.Logger, interval time.Duration) {
	if stats == nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snapshot, err := stats.Compute(ctx)
				if err != nil {
					logger.Warn("stats snapshot failed", zap.Error(err))
					continue
				}
				logger.Info("stats snapshot",
					zap.Int("listings", snapshot.Listings),
					zap.Int("users", snapshot.Users),
					zap.Int("payments", snapshot.Payments),
					zap.Float64("revenue", snapshot.TotalRevenue))
			}
		}
	}()
}
