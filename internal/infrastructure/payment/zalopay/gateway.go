package zalopay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/melodia-inc/melodia/internal/application/payment/gateway"
	"github.com/melodia-inc/melodia/internal/shared/biztime"
	"github.com/melodia-inc/melodia/internal/shared/config"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

const (
	returnCodeSuccess = 1

	// maxCallbackBody caps the callback payload read; real notifications
	// are well under a kilobyte.
	maxCallbackBody = 64 * 1024
)

// Gateway implements the ZaloPay app-to-app protocol. Order creation is an
// authenticated HTTP call; the gateway answers callbacks over a signed JSON
// envelope.
type Gateway struct {
	cfg    config.ZaloPayConfig
	signer *Signer
	client *http.Client
	logger logger.Interface
}

func NewGateway(cfg config.ZaloPayConfig, timeout time.Duration, logger logger.Interface) *Gateway {
	return &Gateway{
		cfg:    cfg,
		signer: NewSigner(cfg.Key1, cfg.Key2),
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type createOrderReply struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
	SubReturnCode int    `json:"sub_return_code"`
	OrderURL      string `json:"order_url"`
	ZpTransToken  string `json:"zp_trans_token"`
}

// CreateOrder registers the order with ZaloPay. The merchant transaction id
// is the order id behind the protocol-required yyMMdd prefix, which the
// callback parser strips back off.
func (g *Gateway) CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.CreateOrderResponse, error) {
	if req.OrderID == "" {
		return nil, fmt.Errorf("order id is required")
	}

	now := biztime.NowUTC()
	appTransID := biztime.GatewayDayPrefix(now) + "_" + req.OrderID
	appUser := "user_" + strconv.FormatUint(uint64(req.UserID), 10)
	amount := strconv.FormatInt(req.Amount, 10)
	appTime := strconv.FormatInt(now.UnixMilli(), 10)
	embedData := "{}"
	item := "[]"

	form := url.Values{
		"app_id":       {g.cfg.AppID},
		"app_trans_id": {appTransID},
		"app_user":     {appUser},
		"app_time":     {appTime},
		"amount":       {amount},
		"item":         {item},
		"embed_data":   {embedData},
		"description":  {req.Description},
		"bank_code":    {""},
		"callback_url": {g.cfg.CallbackURL},
		"mac":          {g.signer.SignOrder(g.cfg.AppID, appTransID, appUser, amount, appTime, embedData, item)},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("order creation call failed: %w", err)
	}
	defer resp.Body.Close()

	var reply createOrderReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("failed to decode order reply: %w", err)
	}

	if reply.ReturnCode != returnCodeSuccess {
		g.logger.Warnw("order rejected by gateway",
			"order_id", req.OrderID,
			"return_code", reply.ReturnCode,
			"return_message", reply.ReturnMessage)
		return nil, fmt.Errorf("gateway returned code %d: %s", reply.ReturnCode, reply.ReturnMessage)
	}

	return &gateway.CreateOrderResponse{
		PaymentURL: reply.OrderURL,
	}, nil
}

type callbackEnvelope struct {
	Data string `json:"data"`
	Mac  string `json:"mac"`
}

// VerifyCallback authenticates the callback envelope. The MAC covers the
// raw data string exactly as transmitted, so the inner JSON is only decoded
// after the MAC checks out. ZaloPay notifies only completed transactions.
func (g *Gateway) VerifyCallback(req *http.Request) (*gateway.CallbackData, error) {
	body, err := io.ReadAll(io.LimitReader(req.Body, maxCallbackBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read callback body: %w", err)
	}

	var envelope callbackEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode callback envelope: %w", err)
	}

	if !g.signer.VerifyCallback(envelope.Data, envelope.Mac) {
		return nil, gateway.ErrInvalidSignature
	}

	var data struct {
		AppTransID string  `json:"app_trans_id"`
		Amount     float64 `json:"amount"`
		ZpTransID  int64   `json:"zp_trans_id"`
		AppUser    string  `json:"app_user"`
	}
	if err := json.Unmarshal([]byte(envelope.Data), &data); err != nil {
		return nil, fmt.Errorf("failed to decode callback data: %w", err)
	}

	_, orderID, found := strings.Cut(data.AppTransID, "_")
	if !found || orderID == "" {
		return nil, fmt.Errorf("callback has malformed app_trans_id: %s", data.AppTransID)
	}

	raw := map[string]interface{}{
		"app_trans_id": data.AppTransID,
		"amount":       data.Amount,
		"zp_trans_id":  data.ZpTransID,
		"app_user":     data.AppUser,
	}

	return &gateway.CallbackData{
		OrderID:       orderID,
		TransactionID: strconv.FormatInt(data.ZpTransID, 10),
		Amount:        data.Amount,
		Succeeded:     true,
		RawData:       raw,
	}, nil
}
