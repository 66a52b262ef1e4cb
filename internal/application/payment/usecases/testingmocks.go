package usecases

import (
	"context"
	"net/http"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/melodia-inc/melodia/internal/application/payment/gateway"
	subusecases "github.com/melodia-inc/melodia/internal/application/subscription/usecases"
	"github.com/melodia-inc/melodia/internal/domain/payment"
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

type mockPaymentRepository struct {
	mock.Mock
}

func (m *mockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil && p.ID() == 0 {
		p.SetID(1)
	}
	return args.Error(0)
}

func (m *mockPaymentRepository) GetByID(ctx context.Context, id uint) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *mockPaymentRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*payment.Payment, error) {
	args := m.Called(ctx, gatewayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *mockPaymentRepository) ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]*payment.Payment, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*payment.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *mockPaymentRepository) MarkSucceededIfPending(ctx context.Context, p *payment.Payment) (bool, error) {
	args := m.Called(ctx, p)
	return args.Bool(0), args.Error(1)
}

func (m *mockPaymentRepository) MarkFailedIfPending(ctx context.Context, p *payment.Payment) (bool, error) {
	args := m.Called(ctx, p)
	return args.Bool(0), args.Error(1)
}

type mockSubscriptionRepository struct {
	mock.Mock
}

func (m *mockSubscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
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

type mockReceiptSender struct {
	mock.Mock
}

func (m *mockReceiptSender) SendPaymentReceipt(to, tierName, orderID string, amount int64, premiumUntil time.Time) error {
	args := m.Called(to, tierName, orderID, amount, premiumUntil)
	return args.Error(0)
}

type mockActivator struct {
	mock.Mock
}

func (m *mockActivator) Execute(ctx context.Context, cmd subusecases.ActivateSubscriptionCommand) (*subusecases.ActivateSubscriptionResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subusecases.ActivateSubscriptionResult), args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.CreateOrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.CreateOrderResponse), args.Error(1)
}

func (m *mockGateway) VerifyCallback(req *http.Request) (*gateway.CallbackData, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.CallbackData), args.Error(1)
}

// fakeTxManager runs the function inline without a database.
type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockPremiumInvalidator struct {
	mock.Mock
}

func (m *mockPremiumInvalidator) Invalidate(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
