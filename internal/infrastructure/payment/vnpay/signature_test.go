package vnpay

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melodia-inc/melodia/internal/application/payment/gateway"
	"github.com/melodia-inc/melodia/internal/shared/config"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

const testSecret = "VNPAYSECRETKEY123456"

func callbackParams() map[string]string {
	return map[string]string{
		"vnp_TmnCode":       "MELODIA1",
		"vnp_TxnRef":        "ORD1700000000000123",
		"vnp_Amount":        "9900000",
		"vnp_ResponseCode":  "00",
		"vnp_TransactionNo": "14422574",
		"vnp_OrderInfo":     "Melodia Premium Monthly subscription",
		"vnp_PayDate":       "20260815103000",
		"vnp_BankCode":      "NCB",
	}
}

func TestSigner_SignAndVerifyRoundTrip(t *testing.T) {
	signer := NewSigner(testSecret)

	params := callbackParams()
	params["vnp_SecureHash"] = signer.Sign(params)

	assert.True(t, signer.Verify(params))
}

func TestSigner_RejectsTamperedFields(t *testing.T) {
	signer := NewSigner(testSecret)

	base := callbackParams()
	base["vnp_SecureHash"] = signer.Sign(callbackParams())

	for field, tampered := range map[string]string{
		"vnp_Amount":       "9900001",
		"vnp_TxnRef":       "ORD1700000000000124",
		"vnp_ResponseCode": "01",
	} {
		t.Run(field, func(t *testing.T) {
			params := make(map[string]string, len(base))
			for k, v := range base {
				params[k] = v
			}
			params[field] = tampered

			assert.False(t, signer.Verify(params))
		})
	}
}

func TestSigner_RejectsWrongSecretAndMissingHash(t *testing.T) {
	signer := NewSigner(testSecret)
	other := NewSigner("DIFFERENTSECRET")

	params := callbackParams()
	params["vnp_SecureHash"] = other.Sign(callbackParams())
	assert.False(t, signer.Verify(params))

	delete(params, "vnp_SecureHash")
	assert.False(t, signer.Verify(params))
}

func TestSigner_IgnoresSecureHashTypeWhenVerifying(t *testing.T) {
	signer := NewSigner(testSecret)

	params := callbackParams()
	params["vnp_SecureHash"] = signer.Sign(callbackParams())
	params["vnp_SecureHashType"] = "HMACSHA512"

	assert.True(t, signer.Verify(params))
}

func TestHashData_SortsAndEncodes(t *testing.T) {
	data := hashData(map[string]string{
		"b":     "two words",
		"a":     "1",
		"empty": "",
	})

	assert.Equal(t, "a=1&b=two+words", data)
}

func TestGateway_CreateOrderBuildsSignedURL(t *testing.T) {
	cfg := config.VNPayConfig{
		TmnCode:    "MELODIA1",
		HashSecret: testSecret,
		URL:        "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://api.melodia.example.com/api/payments/vnpay/callback",
	}
	gw := NewGateway(cfg, logger.NewLogger())

	resp, err := gw.CreateOrder(t.Context(), gateway.CreateOrderRequest{
		OrderID:     "ORD1700000000000123",
		Amount:      99000,
		Description: "Melodia Premium Monthly subscription",
		ClientIP:    "203.0.113.5",
		UserID:      7,
	})

	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resp.PaymentURL, cfg.URL+"?"))

	// Amount travels in minor units and the URL self-verifies.
	assert.Contains(t, resp.PaymentURL, "vnp_Amount=9900000")
	assert.Contains(t, resp.PaymentURL, "vnp_TxnRef=ORD1700000000000123")

	req := httptest.NewRequest("GET", resp.PaymentURL, nil)
	query := req.URL.Query()
	params := make(map[string]string, len(query))
	for key := range query {
		params[key] = query.Get(key)
	}
	assert.True(t, NewSigner(testSecret).Verify(params))
}

func TestGateway_VerifyCallback(t *testing.T) {
	cfg := config.VNPayConfig{TmnCode: "MELODIA1", HashSecret: testSecret}
	gw := NewGateway(cfg, logger.NewLogger())
	signer := NewSigner(testSecret)

	buildURL := func(params map[string]string) string {
		signed := make(map[string]string, len(params))
		for k, v := range params {
			signed[k] = v
		}
		signed["vnp_SecureHash"] = signer.Sign(params)

		values := make([]string, 0, len(signed))
		for k, v := range signed {
			values = append(values, k+"="+strings.ReplaceAll(v, " ", "+"))
		}
		return "/api/payments/vnpay/callback?" + strings.Join(values, "&")
	}

	t.Run("valid success callback", func(t *testing.T) {
		params := callbackParams()
		delete(params, "vnp_OrderInfo")
		req := httptest.NewRequest("GET", buildURL(params), nil)

		data, err := gw.VerifyCallback(req)

		require.NoError(t, err)
		assert.Equal(t, "ORD1700000000000123", data.OrderID)
		assert.Equal(t, "14422574", data.TransactionID)
		assert.Equal(t, float64(99000), data.Amount)
		assert.True(t, data.Succeeded)
	})

	t.Run("failure response code", func(t *testing.T) {
		params := callbackParams()
		delete(params, "vnp_OrderInfo")
		params["vnp_ResponseCode"] = "24"
		req := httptest.NewRequest("GET", buildURL(params), nil)

		data, err := gw.VerifyCallback(req)

		require.NoError(t, err)
		assert.False(t, data.Succeeded)
	})

	t.Run("tampered amount", func(t *testing.T) {
		params := callbackParams()
		delete(params, "vnp_OrderInfo")
		target := buildURL(params)
		target = strings.Replace(target, "vnp_Amount=9900000", "vnp_Amount=100", 1)
		req := httptest.NewRequest("GET", target, nil)

		_, err := gw.VerifyCallback(req)

		assert.ErrorIs(t, err, gateway.ErrInvalidSignature)
	})
}
