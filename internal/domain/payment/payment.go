package payment

import (
	"fmt"
	"math"
	"time"

	vo "github.com/melodia-inc/melodia/internal/domain/payment/valueobjects"
	"github.com/melodia-inc/melodia/internal/shared/biztime"
)

// AmountEpsilon absorbs currency rounding when comparing a gateway-reported
// amount against the recorded one. Anything beyond it is treated as a
// mismatch worth investigating, not a rounding artifact.
const AmountEpsilon = 0.01

// Payment is the aggregate for a single purchase attempt. It is created
// PENDING and transitions at most once to SUCCESS or FAILED; rows are never
// deleted.
type Payment struct {
	id             uint
	userID         uint
	tierID         uint
	amount         int64
	status         vo.PaymentStatus
	paymentMethod  vo.PaymentMethod
	gatewayOrderID string

	transactionID   *string
	ipAddress       string
	userAgent       string
	description     string
	gatewayResponse map[string]interface{}

	paidAt   *time.Time
	failedAt *time.Time

	createdAt time.Time
	updatedAt time.Time
}

func NewPayment(userID, tierID uint, amount int64, method vo.PaymentMethod, gatewayOrderID, ipAddress, userAgent, description string) (*Payment, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if tierID == 0 {
		return nil, fmt.Errorf("tier ID is required")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if !method.IsValid() {
		return nil, fmt.Errorf("invalid payment method: %s", method)
	}
	if gatewayOrderID == "" {
		return nil, fmt.Errorf("gateway order ID is required")
	}

	now := biztime.NowUTC()

	return &Payment{
		userID:         userID,
		tierID:         tierID,
		amount:         amount,
		status:         vo.PaymentStatusPending,
		paymentMethod:  method,
		gatewayOrderID: gatewayOrderID,
		ipAddress:      ipAddress,
		userAgent:      userAgent,
		description:    description,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// MarkAsSucceeded records the gateway-confirmed outcome. Calling it on an
// already successful payment is a no-op so retried callbacks stay harmless.
func (p *Payment) MarkAsSucceeded(transactionID string, gatewayResponse map[string]interface{}) error {
	if p.status == vo.PaymentStatusSuccess {
		return nil
	}
	if p.status != vo.PaymentStatusPending {
		return fmt.Errorf("cannot mark payment as succeeded with status %s", p.status)
	}

	now := biztime.NowUTC()
	p.status = vo.PaymentStatusSuccess
	p.transactionID = &transactionID
	p.gatewayResponse = gatewayResponse
	p.paidAt = &now
	p.updatedAt = now

	return nil
}

// MarkAsFailed records a gateway-reported failure. The raw payload is kept
// for audit.
func (p *Payment) MarkAsFailed(gatewayResponse map[string]interface{}) error {
	if p.status.IsTerminal() {
		return fmt.Errorf("cannot mark payment as failed with terminal status %s", p.status)
	}

	now := biztime.NowUTC()
	p.status = vo.PaymentStatusFailed
	p.gatewayResponse = gatewayResponse
	p.failedAt = &now
	p.updatedAt = now

	return nil
}

// AmountMatches compares a gateway-reported amount against the recorded one,
// tolerating AmountEpsilon of rounding.
func (p *Payment) AmountMatches(reported float64) bool {
	return math.Abs(reported-float64(p.amount)) <= AmountEpsilon
}

func (p *Payment) ID() uint {
	return p.id
}

func (p *Payment) UserID() uint {
	return p.userID
}

func (p *Payment) TierID() uint {
	return p.tierID
}

func (p *Payment) Amount() int64 {
	return p.amount
}

func (p *Payment) Status() vo.PaymentStatus {
	return p.status
}

func (p *Payment) PaymentMethod() vo.PaymentMethod {
	return p.paymentMethod
}

func (p *Payment) GatewayOrderID() string {
	return p.gatewayOrderID
}

func (p *Payment) TransactionID() *string {
	return p.transactionID
}

func (p *Payment) IPAddress() string {
	return p.ipAddress
}

func (p *Payment) UserAgent() string {
	return p.userAgent
}

func (p *Payment) Description() string {
	return p.description
}

func (p *Payment) GatewayResponse() map[string]interface{} {
	return p.gatewayResponse
}

func (p *Payment) PaidAt() *time.Time {
	return p.paidAt
}

func (p *Payment) FailedAt() *time.Time {
	return p.failedAt
}

func (p *Payment) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Payment) UpdatedAt() time.Time {
	return p.updatedAt
}

// SetID sets the payment ID after persistence (used by repository after Create)
func (p *Payment) SetID(id uint) {
	p.id = id
}

// ReconstructParams carries persisted state back into the aggregate.
type ReconstructParams struct {
	ID              uint
	UserID          uint
	TierID          uint
	Amount          int64
	Status          vo.PaymentStatus
	PaymentMethod   vo.PaymentMethod
	GatewayOrderID  string
	TransactionID   *string
	IPAddress       string
	UserAgent       string
	Description     string
	GatewayResponse map[string]interface{}
	PaidAt          *time.Time
	FailedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Reconstruct rebuilds a Payment from persistence.
func Reconstruct(params ReconstructParams) *Payment {
	return &Payment{
		id:              params.ID,
		userID:          params.UserID,
		tierID:          params.TierID,
		amount:          params.Amount,
		status:          params.Status,
		paymentMethod:   params.PaymentMethod,
		gatewayOrderID:  params.GatewayOrderID,
		transactionID:   params.TransactionID,
		ipAddress:       params.IPAddress,
		userAgent:       params.UserAgent,
		description:     params.Description,
		gatewayResponse: params.GatewayResponse,
		paidAt:          params.PaidAt,
		failedAt:        params.FailedAt,
		createdAt:       params.CreatedAt,
		updatedAt:       params.UpdatedAt,
	}
}
