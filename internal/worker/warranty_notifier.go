package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/warranty-service/internal/domain"
	"github.com/spec-kit/warranty-service/internal/events"
	"github.com/spec-kit/warranty-service/internal/repository"
)

// notifyThresholds are the expiry windows, relative to the scan time,
// for which owners get a heads-up. The expired window looks back a
// bounded stretch so a product whose warranty lapsed between scans is
// still reported once. Each product gets at most one notification per
// threshold, deduped through Redis.
var notifyThresholds = []struct {
	name  string
	start time.Duration
	end   time.Duration
}{
	{"30d", 0, 30 * 24 * time.Hour},
	{"7d", 0, 7 * 24 * time.Hour},
	{"expired", -expiredLookback, 0},
}

// expiredLookback bounds the expired scan; it must stay shorter than
// dedupeTTL or keys could lapse and re-fire for the same product.
const expiredLookback = 30 * 24 * time.Hour

// dedupeTTL keeps dedupe keys alive well past the threshold window so a
// restart does not re-send old notifications.
const dedupeTTL = 45 * 24 * time.Hour

// WarrantyNotifier periodically scans for warranties nearing expiry and
// publishes warranty_expiring events for the notification handlers.
type WarrantyNotifier struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	interval   time.Duration

	// acquire claims a dedupe key, returning false when the
	// notification was already sent or the claim could not be made.
	acquire func(ctx context.Context, key string, now time.Time) bool
}

func NewWarrantyNotifier(store repository.Store, redisClient *redis.Client, dispatcher events.Dispatcher, logger *zap.Logger, interval time.Duration) *WarrantyNotifier {
	w := &WarrantyNotifier{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		interval:   interval,
	}
	w.acquire = func(ctx context.Context, key string, now time.Time) bool {
		set, err := redisClient.SetNX(ctx, key, now.Format(time.RFC3339), dedupeTTL).Result()
		if err != nil {
			// When Redis is down it is better to stay silent than to
			// spam owners on every scan.
			w.logger.Warn("dedupe check failed", zap.String("key", key), zap.Error(err))
			return false
		}
		return set
	}
	return w
}

// Run blocks until ctx is cancelled, scanning once per interval. An
// immediate first scan runs on startup.
func (w *WarrantyNotifier) Run(ctx context.Context) {
	w.logger.Info("warranty notifier started", zap.Duration("interval", w.interval))
	w.scan(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("warranty notifier stopped")
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *WarrantyNotifier) scan(ctx context.Context) {
	now := time.Now().UTC()
	for _, threshold := range notifyThresholds {
		products, err := w.store.Products().ListExpiringBetween(ctx, now.Add(threshold.start), now.Add(threshold.end))
		if err != nil {
			w.logger.Error("warranty scan failed",
				zap.String("threshold", threshold.name), zap.Error(err))
			continue
		}
		for i := range products {
			w.notify(ctx, &products[i], threshold.name, now)
		}
	}
}

func (w *WarrantyNotifier) notify(ctx context.Context, product *domain.Product, threshold string, now time.Time) {
	key := fmt.Sprintf("warranty:notify:%s:%s", product.ID, threshold)
	if !w.acquire(ctx, key, now) {
		return
	}

	_ = w.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventWarrantyExpiring,
		Timestamp: now,
		Payload: events.WarrantyExpiringPayload{
			ProductID: product.ID,
			OwnerID:   product.OwnerID,
			ExpiresAt: product.WarrantyExpiry,
			Threshold: threshold,
		},
	})
	w.logger.Info("warranty expiring notification queued",
		zap.String("product_id", product.ID),
		zap.String("threshold", threshold),
		zap.Time("expires_at", product.WarrantyExpiry))
}
