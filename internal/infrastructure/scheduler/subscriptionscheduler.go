package scheduler

import (
	"context"
	"sync"
	"time"

	subscriptionUsecases "github.com/melodia-inc/melodia/internal/application/subscription/usecases"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

// SubscriptionScheduler runs the subscription expiry sweep on a fixed
// interval. The sweep is idempotent, so overlapping runs across multiple
// instances are safe.
type SubscriptionScheduler struct {
	expireSubscriptionsUC *subscriptionUsecases.ExpireSubscriptionsUseCase
	logger                logger.Interface
	stopChan              chan struct{}
	stopOnce              sync.Once
	wg                    sync.WaitGroup
	interval              time.Duration
}

// NewSubscriptionScheduler creates a new SubscriptionScheduler.
func NewSubscriptionScheduler(
	expireSubscriptionsUC *subscriptionUsecases.ExpireSubscriptionsUseCase,
	interval time.Duration,
	logger logger.Interface,
) *SubscriptionScheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &SubscriptionScheduler{
		expireSubscriptionsUC: expireSubscriptionsUC,
		logger:                logger,
		stopChan:              make(chan struct{}),
		interval:              interval,
	}
}

// Start starts the scheduler
func (s *SubscriptionScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting subscription scheduler", "interval", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLoop(ctx)
	}()
}

// Stop stops the scheduler gracefully
func (s *SubscriptionScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping subscription scheduler")
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Infow("subscription scheduler stopped")
	})
}

func (s *SubscriptionScheduler) runLoop(ctx context.Context) {
	// Run immediately on startup to clear any backlog from downtime
	s.processExpiredSubscriptions(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("subscription scheduler stopped due to context cancellation")
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.processExpiredSubscriptions(ctx)
		}
	}
}

func (s *SubscriptionScheduler) processExpiredSubscriptions(ctx context.Context) {
	s.logger.Debugw("subscription expiry sweep started")

	startTime := time.Now()

	result, err := s.expireSubscriptionsUC.Execute(ctx)
	if err != nil {
		s.logger.Errorw("subscription expiry sweep failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if result.Expired > 0 || result.Failed > 0 {
		s.logger.Infow("subscription expiry sweep completed",
			"expired", result.Expired,
			"failed", result.Failed,
			"duration", time.Since(startTime),
		)
	} else {
		s.logger.Debugw("no expired subscriptions to process",
			"duration", time.Since(startTime),
		)
	}
}
