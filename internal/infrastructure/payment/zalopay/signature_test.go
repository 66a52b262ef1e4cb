package zalopay

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melodia-inc/melodia/internal/application/payment/gateway"
	"github.com/melodia-inc/melodia/internal/shared/config"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

const (
	testKey1 = "zalopay-key1-for-orders"
	testKey2 = "zalopay-key2-for-callbacks"
)

func TestSigner_SignOrderIsDeterministic(t *testing.T) {
	signer := NewSigner(testKey1, testKey2)

	mac := signer.SignOrder("2553", "260815_ORD1700000000000123", "user_7", "99000", "1765782000000", "{}", "[]")
	again := signer.SignOrder("2553", "260815_ORD1700000000000123", "user_7", "99000", "1765782000000", "{}", "[]")

	assert.Equal(t, mac, again)
	assert.Len(t, mac, 64)
}

func TestSigner_SignOrderFieldOrderMatters(t *testing.T) {
	signer := NewSigner(testKey1, testKey2)

	mac := signer.SignOrder("2553", "260815_ORD1", "user_7", "99000", "1765782000000", "{}", "[]")
	swapped := signer.SignOrder("2553", "260815_ORD1", "user_7", "1765782000000", "99000", "{}", "[]")

	assert.NotEqual(t, mac, swapped)
}

func TestSigner_VerifyCallback(t *testing.T) {
	signer := NewSigner(testKey1, testKey2)
	data := `{"app_trans_id":"260815_ORD1700000000000123","amount":99000}`

	mac := hmacSHA256([]byte(testKey2), data)

	assert.True(t, signer.VerifyCallback(data, mac))
	assert.False(t, signer.VerifyCallback(data, ""))
	assert.False(t, signer.VerifyCallback(data+" ", mac), "single byte change must fail")
	assert.False(t, signer.VerifyCallback(data, hmacSHA256([]byte(testKey1), data)), "wrong key must fail")
}

func testGateway(t *testing.T, apiURL string) *Gateway {
	t.Helper()
	return NewGateway(config.ZaloPayConfig{
		AppID:       "2553",
		Key1:        testKey1,
		Key2:        testKey2,
		APIURL:      apiURL,
		CallbackURL: "https://api.melodia.example.com/api/payments/zalopay/callback",
	}, 0, logger.NewLogger())
}

func TestGateway_CreateOrder(t *testing.T) {
	t.Run("accepted order returns pay URL", func(t *testing.T) {
		var received map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			received = map[string]string{}
			for k := range r.Form {
				received[k] = r.FormValue(k)
			}
			fmt.Fprint(w, `{"return_code":1,"return_message":"success","order_url":"https://qcgateway.zalopay.vn/openinapp?order=abc"}`)
		}))
		defer server.Close()

		gw := testGateway(t, server.URL)
		resp, err := gw.CreateOrder(t.Context(), gateway.CreateOrderRequest{
			OrderID:     "ORD1700000000000123",
			Amount:      99000,
			Description: "Melodia Premium Monthly subscription",
			UserID:      7,
		})

		require.NoError(t, err)
		assert.Equal(t, "https://qcgateway.zalopay.vn/openinapp?order=abc", resp.PaymentURL)

		require.NotNil(t, received)
		assert.True(t, strings.HasSuffix(received["app_trans_id"], "_ORD1700000000000123"))
		assert.Equal(t, "99000", received["amount"])
		assert.Equal(t, "user_7", received["app_user"])

		signer := NewSigner(testKey1, testKey2)
		wantMac := signer.SignOrder(received["app_id"], received["app_trans_id"], received["app_user"],
			received["amount"], received["app_time"], received["embed_data"], received["item"])
		assert.Equal(t, wantMac, received["mac"])
	})

	t.Run("non-success return code fails the order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"return_code":2,"return_message":"invalid merchant"}`)
		}))
		defer server.Close()

		gw := testGateway(t, server.URL)
		_, err := gw.CreateOrder(t.Context(), gateway.CreateOrderRequest{
			OrderID: "ORD1700000000000123",
			Amount:  99000,
			UserID:  7,
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid merchant")
	})
}

func TestGateway_VerifyCallback(t *testing.T) {
	gw := testGateway(t, "http://unused.example.com")

	buildRequest := func(t *testing.T, data, mac string) *http.Request {
		t.Helper()
		body, err := json.Marshal(map[string]string{"data": data, "mac": mac})
		require.NoError(t, err)
		return httptest.NewRequest("POST", "/api/payments/zalopay/callback", strings.NewReader(string(body)))
	}

	data := `{"app_trans_id":"260815_ORD1700000000000123","amount":99000,"zp_trans_id":240815000000001,"app_user":"user_7"}`

	t.Run("valid callback", func(t *testing.T) {
		mac := hmacSHA256([]byte(testKey2), data)
		result, err := gw.VerifyCallback(buildRequest(t, data, mac))

		require.NoError(t, err)
		assert.Equal(t, "ORD1700000000000123", result.OrderID)
		assert.Equal(t, float64(99000), result.Amount)
		assert.Equal(t, "240815000000001", result.TransactionID)
		assert.True(t, result.Succeeded)
	})

	t.Run("tampered mac", func(t *testing.T) {
		mac := hmacSHA256([]byte(testKey2), data)
		tampered := "0" + mac[1:]
		if tampered == mac {
			tampered = "1" + mac[1:]
		}

		_, err := gw.VerifyCallback(buildRequest(t, data, tampered))

		assert.ErrorIs(t, err, gateway.ErrInvalidSignature)
	})

	t.Run("malformed app_trans_id", func(t *testing.T) {
		bad := `{"app_trans_id":"no-underscore","amount":99000}`
		mac := hmacSHA256([]byte(testKey2), bad)

		_, err := gw.VerifyCallback(buildRequest(t, bad, mac))

		require.Error(t, err)
		assert.NotErrorIs(t, err, gateway.ErrInvalidSignature)
	})
}
