package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/melodia-inc/melodia/internal/domain/payment/valueobjects"
)

func TestNewPayment(t *testing.T) {
	tests := []struct {
		name           string
		userID         uint
		tierID         uint
		amount         int64
		method         vo.PaymentMethod
		gatewayOrderID string
		wantErr        bool
	}{
		{
			name:           "valid VNPay payment",
			userID:         1,
			tierID:         2,
			amount:         99000,
			method:         vo.PaymentMethodVNPay,
			gatewayOrderID: "ORD1700000000000123",
			wantErr:        false,
		},
		{
			name:           "valid ZaloPay payment",
			userID:         7,
			tierID:         3,
			amount:         990000,
			method:         vo.PaymentMethodZaloPay,
			gatewayOrderID: "ORD1700000000000456",
			wantErr:        false,
		},
		{
			name:           "missing user ID",
			userID:         0,
			tierID:         2,
			amount:         99000,
			method:         vo.PaymentMethodVNPay,
			gatewayOrderID: "ORD1700000000000123",
			wantErr:        true,
		},
		{
			name:           "missing tier ID",
			userID:         1,
			tierID:         0,
			amount:         99000,
			method:         vo.PaymentMethodVNPay,
			gatewayOrderID: "ORD1700000000000123",
			wantErr:        true,
		},
		{
			name:           "zero amount",
			userID:         1,
			tierID:         2,
			amount:         0,
			method:         vo.PaymentMethodVNPay,
			gatewayOrderID: "ORD1700000000000123",
			wantErr:        true,
		},
		{
			name:           "negative amount",
			userID:         1,
			tierID:         2,
			amount:         -1,
			method:         vo.PaymentMethodVNPay,
			gatewayOrderID: "ORD1700000000000123",
			wantErr:        true,
		},
		{
			name:           "invalid method",
			userID:         1,
			tierID:         2,
			amount:         99000,
			method:         vo.PaymentMethod("PAYPAL"),
			gatewayOrderID: "ORD1700000000000123",
			wantErr:        true,
		},
		{
			name:           "missing gateway order ID",
			userID:         1,
			tierID:         2,
			amount:         99000,
			method:         vo.PaymentMethodVNPay,
			gatewayOrderID: "",
			wantErr:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPayment(tt.userID, tt.tierID, tt.amount, tt.method, tt.gatewayOrderID, "127.0.0.1", "test-agent", "Premium upgrade")

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, p)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, tt.userID, p.UserID())
			assert.Equal(t, tt.tierID, p.TierID())
			assert.Equal(t, tt.amount, p.Amount())
			assert.Equal(t, vo.PaymentStatusPending, p.Status())
			assert.Equal(t, tt.method, p.PaymentMethod())
			assert.Equal(t, tt.gatewayOrderID, p.GatewayOrderID())
			assert.Nil(t, p.TransactionID())
			assert.Nil(t, p.PaidAt())
			assert.Nil(t, p.FailedAt())
		})
	}
}

func TestPayment_MarkAsSucceeded(t *testing.T) {
	newPending := func(t *testing.T) *Payment {
		t.Helper()
		p, err := NewPayment(1, 2, 99000, vo.PaymentMethodVNPay, "ORD1700000000000123", "127.0.0.1", "ua", "")
		require.NoError(t, err)
		return p
	}

	t.Run("pending to success", func(t *testing.T) {
		p := newPending(t)
		response := map[string]interface{}{"vnp_ResponseCode": "00"}

		err := p.MarkAsSucceeded("VNP12345", response)

		require.NoError(t, err)
		assert.Equal(t, vo.PaymentStatusSuccess, p.Status())
		require.NotNil(t, p.TransactionID())
		assert.Equal(t, "VNP12345", *p.TransactionID())
		assert.NotNil(t, p.PaidAt())
		assert.Equal(t, response, p.GatewayResponse())
	})

	t.Run("already succeeded is a no-op", func(t *testing.T) {
		p := newPending(t)
		require.NoError(t, p.MarkAsSucceeded("VNP12345", nil))
		firstPaidAt := p.PaidAt()

		err := p.MarkAsSucceeded("VNP99999", nil)

		require.NoError(t, err)
		assert.Equal(t, "VNP12345", *p.TransactionID())
		assert.Equal(t, firstPaidAt, p.PaidAt())
	})

	t.Run("failed payment cannot succeed", func(t *testing.T) {
		p := newPending(t)
		require.NoError(t, p.MarkAsFailed(nil))

		err := p.MarkAsSucceeded("VNP12345", nil)

		assert.Error(t, err)
		assert.Equal(t, vo.PaymentStatusFailed, p.Status())
	})
}

func TestPayment_MarkAsFailed(t *testing.T) {
	t.Run("pending to failed", func(t *testing.T) {
		p, err := NewPayment(1, 2, 99000, vo.PaymentMethodZaloPay, "ORD1700000000000456", "127.0.0.1", "ua", "")
		require.NoError(t, err)
		response := map[string]interface{}{"return_code": float64(0)}

		err = p.MarkAsFailed(response)

		require.NoError(t, err)
		assert.Equal(t, vo.PaymentStatusFailed, p.Status())
		assert.NotNil(t, p.FailedAt())
		assert.Equal(t, response, p.GatewayResponse())
	})

	t.Run("terminal payment cannot fail again", func(t *testing.T) {
		p, err := NewPayment(1, 2, 99000, vo.PaymentMethodZaloPay, "ORD1700000000000456", "127.0.0.1", "ua", "")
		require.NoError(t, err)
		require.NoError(t, p.MarkAsSucceeded("ZP12345", nil))

		err = p.MarkAsFailed(nil)

		assert.Error(t, err)
		assert.Equal(t, vo.PaymentStatusSuccess, p.Status())
	})
}

func TestPayment_AmountMatches(t *testing.T) {
	p, err := NewPayment(1, 2, 99000, vo.PaymentMethodVNPay, "ORD1700000000000123", "127.0.0.1", "ua", "")
	require.NoError(t, err)

	tests := []struct {
		name     string
		reported float64
		want     bool
	}{
		{"exact", 99000, true},
		{"within epsilon above", 99000.009, true},
		{"within epsilon below", 98999.991, true},
		{"off by one", 99001, false},
		{"zero", 0, false},
		{"minor units mistakenly reported", 9900000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.AmountMatches(tt.reported))
		})
	}
}

func TestReconstruct(t *testing.T) {
	transactionID := "VNP12345"
	p, err := NewPayment(1, 2, 99000, vo.PaymentMethodVNPay, "ORD1700000000000123", "127.0.0.1", "ua", "")
	require.NoError(t, err)
	require.NoError(t, p.MarkAsSucceeded(transactionID, map[string]interface{}{"vnp_ResponseCode": "00"}))
	p.SetID(42)

	restored := Reconstruct(ReconstructParams{
		ID:              p.ID(),
		UserID:          p.UserID(),
		TierID:          p.TierID(),
		Amount:          p.Amount(),
		Status:          p.Status(),
		PaymentMethod:   p.PaymentMethod(),
		GatewayOrderID:  p.GatewayOrderID(),
		TransactionID:   p.TransactionID(),
		IPAddress:       p.IPAddress(),
		UserAgent:       p.UserAgent(),
		Description:     p.Description(),
		GatewayResponse: p.GatewayResponse(),
		PaidAt:          p.PaidAt(),
		FailedAt:        p.FailedAt(),
		CreatedAt:       p.CreatedAt(),
		UpdatedAt:       p.UpdatedAt(),
	})

	assert.Equal(t, uint(42), restored.ID())
	assert.Equal(t, vo.PaymentStatusSuccess, restored.Status())
	assert.Equal(t, transactionID, *restored.TransactionID())
	assert.Equal(t, p.GatewayResponse(), restored.GatewayResponse())
}
