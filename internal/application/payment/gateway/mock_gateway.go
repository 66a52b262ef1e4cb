package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// MockGateway is a test double that trusts every callback and reports the
// outcome it was configured with.
type MockGateway struct {
	shouldSucceed bool
}

func NewMockGateway(shouldSucceed bool) *MockGateway {
	return &MockGateway{
		shouldSucceed: shouldSucceed,
	}
}

func (m *MockGateway) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	return &CreateOrderResponse{
		PaymentURL: fmt.Sprintf("https://mock-gateway.example.com/pay?order=%s", req.OrderID),
	}, nil
}

func (m *MockGateway) VerifyCallback(req *http.Request) (*CallbackData, error) {
	if err := req.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	orderID := req.FormValue("order_id")
	if orderID == "" {
		return nil, fmt.Errorf("missing order_id")
	}

	amount, err := strconv.ParseFloat(req.FormValue("amount"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	return &CallbackData{
		OrderID:       orderID,
		TransactionID: fmt.Sprintf("MOCK%d", time.Now().Unix()),
		Amount:        amount,
		Succeeded:     m.shouldSucceed,
		RawData:       map[string]interface{}{"order_id": orderID},
	}, nil
}
