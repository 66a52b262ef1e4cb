package gateway

import (
	"context"
	"errors"
	"net/http"
)

// ErrInvalidSignature is returned by VerifyCallback when the payload's
// signature does not match. Callers must treat it as "reject", never as a
// transaction outcome.
var ErrInvalidSignature = errors.New("invalid gateway signature")

// Gateway abstracts one payment processor. Implementations own the wire
// format and signature scheme; callers only see order ids, VND amounts and
// a success flag.
type Gateway interface {
	// CreateOrder registers the order with the gateway and returns the URL
	// the client must be sent to. VNPay builds the URL locally; ZaloPay
	// performs an HTTP call and fails unless the gateway accepts the order.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error)

	// VerifyCallback authenticates an incoming gateway notification and
	// extracts its outcome. A payload that cannot be verified yields
	// ErrInvalidSignature; any other parse problem yields a plain error.
	// Neither means the transaction failed.
	VerifyCallback(req *http.Request) (*CallbackData, error)
}

type CreateOrderRequest struct {
	OrderID     string
	Amount      int64
	Description string
	ClientIP    string
	UserID      uint
}

type CreateOrderResponse struct {
	PaymentURL string
}

// CallbackData is the verified content of a gateway notification. Amount is
// in VND regardless of how the gateway transmits it on the wire.
type CallbackData struct {
	OrderID       string
	TransactionID string
	Amount        float64
	Succeeded     bool
	RawData       map[string]interface{}
}
