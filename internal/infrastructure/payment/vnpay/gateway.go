package vnpay

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/melodia-inc/melodia/internal/application/payment/gateway"
	"github.com/melodia-inc/melodia/internal/shared/biztime"
	"github.com/melodia-inc/melodia/internal/shared/config"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

const (
	apiVersion  = "2.1.0"
	commandPay  = "pay"
	orderType   = "other"
	localeVN    = "vn"
	currencyVND = "VND"

	// orderTTL is how long the redirect URL stays payable.
	orderTTL = 15 * time.Minute

	responseCodeSuccess = "00"
)

// Gateway implements the VNPay redirect protocol. Creating an order is a
// pure URL build; the gateway is only contacted by the user's browser.
type Gateway struct {
	cfg    config.VNPayConfig
	signer *Signer
	logger logger.Interface
}

func NewGateway(cfg config.VNPayConfig, logger logger.Interface) *Gateway {
	return &Gateway{
		cfg:    cfg,
		signer: NewSigner(cfg.HashSecret),
		logger: logger,
	}
}

func (g *Gateway) CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.CreateOrderResponse, error) {
	if req.OrderID == "" {
		return nil, fmt.Errorf("order id is required")
	}

	now := biztime.NowUTC()

	params := map[string]string{
		"vnp_Version":    apiVersion,
		"vnp_Command":    commandPay,
		"vnp_TmnCode":    g.cfg.TmnCode,
		"vnp_Locale":     localeVN,
		"vnp_CurrCode":   currencyVND,
		"vnp_TxnRef":     req.OrderID,
		"vnp_OrderInfo":  req.Description,
		"vnp_OrderType":  orderType,
		"vnp_Amount":     strconv.FormatInt(req.Amount*100, 10),
		"vnp_ReturnUrl":  g.cfg.ReturnURL,
		"vnp_IpAddr":     req.ClientIP,
		"vnp_CreateDate": biztime.FormatGatewayTimestamp(now),
		"vnp_ExpireDate": biztime.FormatGatewayTimestamp(now.Add(orderTTL)),
	}

	return &gateway.CreateOrderResponse{
		PaymentURL: g.cfg.URL + "?" + g.signer.SignedQuery(params),
	}, nil
}

// VerifyCallback authenticates the browser-delivered return parameters.
// Amount arrives in minor units (VND x 100).
func (g *Gateway) VerifyCallback(req *http.Request) (*gateway.CallbackData, error) {
	query := req.URL.Query()

	params := make(map[string]string, len(query))
	raw := make(map[string]interface{}, len(query))
	for key := range query {
		value := query.Get(key)
		params[key] = value
		raw[key] = value
	}

	if !g.signer.Verify(params) {
		return nil, gateway.ErrInvalidSignature
	}

	orderID := params["vnp_TxnRef"]
	if orderID == "" {
		return nil, fmt.Errorf("callback missing vnp_TxnRef")
	}

	minorUnits, err := strconv.ParseFloat(params["vnp_Amount"], 64)
	if err != nil {
		return nil, fmt.Errorf("callback has invalid vnp_Amount: %w", err)
	}

	return &gateway.CallbackData{
		OrderID:       orderID,
		TransactionID: params["vnp_TransactionNo"],
		Amount:        minorUnits / 100,
		Succeeded:     params["vnp_ResponseCode"] == responseCodeSuccess,
		RawData:       raw,
	}, nil
}
