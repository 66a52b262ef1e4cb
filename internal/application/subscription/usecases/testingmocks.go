package usecases

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/melodia-inc/melodia/internal/domain/subscription"
	"github.com/melodia-inc/melodia/internal/domain/user"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

type mockLogger struct {
	mock.Mock
}

// newMockLogger accepts any log call so tests only assert on behavior.
func newMockLogger() *mockLogger {
	l := new(mockLogger)
	for _, method := range []string{"Debug", "Info", "Warn", "Error", "Debugw", "Infow", "Warnw", "Errorw"} {
		l.On(method, mock.Anything, mock.Anything).Maybe().Return()
	}
	return l
}

func (m *mockLogger) Debug(msg string, keysAndValues ...interface{}) { m.Called(msg, keysAndValues) }
func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  { m.Called(msg, keysAndValues) }
func (m *mockLogger) Warn(msg string, keysAndValues ...interface{})  { m.Called(msg, keysAndValues) }
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) { m.Called(msg, keysAndValues) }

func (m *mockLogger) With(keysAndValues ...interface{}) logger.Interface {
	return m
}

func (m *mockLogger) Named(name string) logger.Interface {
	return m
}

func (m *mockLogger) Debugw(msg string, keysAndValues ...interface{}) { m.Called(msg, keysAndValues) }
func (m *mockLogger) Infow(msg string, keysAndValues ...interface{})  { m.Called(msg, keysAndValues) }
func (m *mockLogger) Warnw(msg string, keysAndValues ...interface{})  { m.Called(msg, keysAndValues) }
func (m *mockLogger) Errorw(msg string, keysAndValues ...interface{}) { m.Called(msg, keysAndValues) }

type mockSubscriptionRepository struct {
	mock.Mock
}

func (m *mockSubscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
	if args.Error(0) == nil && sub.ID() == 0 {
		sub.SetID(1)
	}
	return args.Error(0)
}

func (m *mockSubscriptionRepository) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) ListByUserID(ctx context.Context, userID uint) ([]*subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*subscription.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) GetCurrentByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) ListActiveExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]*subscription.Subscription, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*subscription.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) MarkExpiredIfActive(ctx context.Context, sub *subscription.Subscription) (bool, error) {
	args := m.Called(ctx, sub)
	return args.Bool(0), args.Error(1)
}

func (m *mockSubscriptionRepository) MarkCancelledIfActive(ctx context.Context, sub *subscription.Subscription) (bool, error) {
	args := m.Called(ctx, sub)
	return args.Bool(0), args.Error(1)
}

func (m *mockSubscriptionRepository) HasActivePaid(ctx context.Context, userID uint, at time.Time) (bool, error) {
	args := m.Called(ctx, userID, at)
	return args.Bool(0), args.Error(1)
}

type mockTierRepository struct {
	mock.Mock
}

func (m *mockTierRepository) Create(ctx context.Context, tier *subscription.Tier) error {
	args := m.Called(ctx, tier)
	return args.Error(0)
}

func (m *mockTierRepository) GetByID(ctx context.Context, id uint) (*subscription.Tier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Tier), args.Error(1)
}

func (m *mockTierRepository) GetByPlan(ctx context.Context, plan string) (*subscription.Tier, error) {
	args := m.Called(ctx, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Tier), args.Error(1)
}

func (m *mockTierRepository) ListActive(ctx context.Context) ([]*subscription.Tier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*subscription.Tier), args.Error(1)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uint) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *mockUserRepository) UpdatePremium(ctx context.Context, userID uint, update user.PremiumUpdate) error {
	args := m.Called(ctx, userID, update)
	return args.Error(0)
}

type mockPremiumCache struct {
	mock.Mock
}

func (m *mockPremiumCache) Get(ctx context.Context, userID uint) (*PremiumStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PremiumStatus), args.Error(1)
}

func (m *mockPremiumCache) Set(ctx context.Context, userID uint, status *PremiumStatus) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

func (m *mockPremiumCache) Invalidate(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockExpiryNoticeSender struct {
	mock.Mock
}

func (m *mockExpiryNoticeSender) SendExpiryNotice(to, tierName string) error {
	args := m.Called(to, tierName)
	return args.Error(0)
}

// fakeTxManager runs the function inline without a database.
type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
