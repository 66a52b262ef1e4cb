package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/melodia-inc/melodia/internal/application/payment/gateway"
	paymentUsecases "github.com/melodia-inc/melodia/internal/application/payment/usecases"
	"github.com/melodia-inc/melodia/internal/domain/payment"
	vo "github.com/melodia-inc/melodia/internal/domain/payment/valueobjects"
	"github.com/melodia-inc/melodia/internal/domain/subscription"
	"github.com/melodia-inc/melodia/internal/shared/logger"
	"github.com/melodia-inc/melodia/internal/shared/utils"
)

// callbackResolver matches ResolveCallbackUseCase.
type callbackResolver interface {
	Execute(ctx context.Context, cmd paymentUsecases.ResolveCallbackCommand) (*paymentUsecases.ResolveCallbackResult, error)
}

type PaymentHandler struct {
	createPaymentUC  *paymentUsecases.CreatePaymentUseCase
	resolveCallback  callbackResolver
	getStatusUC      *paymentUsecases.GetPaymentStatusUseCase
	getHistoryUC     *paymentUsecases.GetPaymentHistoryUseCase
	listTiersUC      *paymentUsecases.ListTiersUseCase
	sendReceiptUC    *paymentUsecases.SendReceiptUseCase
	gateways         map[vo.PaymentMethod]gateway.Gateway
	frontendURL      string
	logger           logger.Interface
}

func NewPaymentHandler(
	createPaymentUC *paymentUsecases.CreatePaymentUseCase,
	resolveCallback callbackResolver,
	getStatusUC *paymentUsecases.GetPaymentStatusUseCase,
	getHistoryUC *paymentUsecases.GetPaymentHistoryUseCase,
	listTiersUC *paymentUsecases.ListTiersUseCase,
	sendReceiptUC *paymentUsecases.SendReceiptUseCase,
	gateways map[vo.PaymentMethod]gateway.Gateway,
	frontendURL string,
	logger logger.Interface,
) *PaymentHandler {
	return &PaymentHandler{
		createPaymentUC: createPaymentUC,
		resolveCallback: resolveCallback,
		getStatusUC:     getStatusUC,
		getHistoryUC:    getHistoryUC,
		listTiersUC:     listTiersUC,
		sendReceiptUC:   sendReceiptUC,
		gateways:        gateways,
		frontendURL:     frontendURL,
		logger:          logger,
	}
}

type CreatePaymentRequest struct {
	TierID        uint   `json:"tier_id" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=VNPAY ZALOPAY"`
}

type CreatePaymentResponse struct {
	PaymentID  uint   `json:"payment_id"`
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"payment_url"`
	Amount     int64  `json:"amount"`
	TierName   string `json:"tier_name"`
}

type PaymentStatusResponse struct {
	OrderID       string  `json:"order_id"`
	Status        string  `json:"status"`
	Amount        int64   `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	TransactionID *string `json:"transaction_id,omitempty"`
	PaidAt        *string `json:"paid_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type TierResponse struct {
	ID           uint     `json:"id"`
	Name         string   `json:"name"`
	Plan         string   `json:"plan"`
	Price        int64    `json:"price"`
	DurationDays int      `json:"duration_days"`
	Features     []string `json:"features,omitempty"`
}

// @Summary		Create payment
// @Description	Create a pending payment order and return the gateway redirect URL
// @Tags			payments
// @Accept			json
// @Produce		json
// @Security		Bearer
// @Param			payment	body		CreatePaymentRequest							true	"Payment data"
// @Success		200		{object}	utils.APIResponse{data=CreatePaymentResponse}	"Payment created successfully"
// @Failure		400		{object}	utils.APIResponse								"Bad request"
// @Failure		401		{object}	utils.APIResponse								"Unauthorized"
// @Failure		409		{object}	utils.APIResponse								"Active subscription exists"
// @Router			/payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("failed to bind create payment request", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := paymentUsecases.CreatePaymentCommand{
		UserID:        userID.(uint),
		TierID:        req.TierID,
		PaymentMethod: req.PaymentMethod,
		ClientIP:      c.ClientIP(),
		UserAgent:     c.Request.UserAgent(),
	}

	result, err := h.createPaymentUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Errorw("failed to create payment", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	response := CreatePaymentResponse{
		PaymentID:  result.PaymentID,
		OrderID:    result.OrderID,
		PaymentURL: result.PaymentURL,
		Amount:     result.Amount,
		TierName:   result.TierName,
	}

	utils.SuccessResponse(c, http.StatusOK, "payment created successfully", response)
}

// @Summary		VNPay return
// @Description	Handle the VNPay browser return, resolve the payment and redirect to the frontend
// @Tags			payments
// @Produce		html
// @Success		302	"Redirect to frontend payment result page"
// @Router			/payments/vnpay/return [get]
func (h *PaymentHandler) VNPayReturn(c *gin.Context) {
	gw, ok := h.gateways[vo.PaymentMethodVNPay]
	if !ok {
		h.redirectResult(c, "error", url.Values{"message": {"payment method unavailable"}})
		return
	}

	result, data, err := h.resolve(c.Request.Context(), gw, c.Request)
	if err != nil {
		h.logger.Errorw("vnpay callback resolution failed", "error", err)
		h.redirectResult(c, "error", url.Values{"message": {"payment could not be processed"}})
		return
	}

	switch result.Outcome {
	case paymentUsecases.OutcomeSucceeded:
		h.mailReceipt(result.Payment)
		h.redirectResult(c, "success", vnpTerminalParams(data, false))
	case paymentUsecases.OutcomeDuplicate:
		if result.Payment != nil && result.Payment.Status() == vo.PaymentStatusSuccess {
			h.redirectResult(c, "success", vnpTerminalParams(data, false))
			return
		}
		h.redirectResult(c, "failed", vnpTerminalParams(data, true))
	case paymentUsecases.OutcomeFailed:
		h.redirectResult(c, "failed", vnpTerminalParams(data, true))
	case paymentUsecases.OutcomeRejectedInvalidSig:
		h.redirectResult(c, "error", url.Values{"message": {"invalid_signature"}})
	case paymentUsecases.OutcomeRejectedNotFound:
		h.redirectResult(c, "error", url.Values{"message": {"payment_not_found"}})
	case paymentUsecases.OutcomeRejectedAmountMismatch:
		h.redirectResult(c, "error", url.Values{"message": {"amount_mismatch"}})
	default:
		h.redirectResult(c, "error", url.Values{"message": {"payment could not be verified"}})
	}
}

// vnpTerminalParams carries the order id back to the frontend, plus the
// gateway response code on the failure path.
func vnpTerminalParams(data *gateway.CallbackData, withCode bool) url.Values {
	params := url.Values{}
	if data == nil {
		return params
	}

	params.Set("orderId", data.OrderID)
	if withCode {
		if code, ok := data.RawData["vnp_ResponseCode"].(string); ok && code != "" {
			params.Set("code", code)
		}
	}
	return params
}

// zaloPayAck is the acknowledgement shape ZaloPay expects. A non-positive
// return_code tells the gateway to retry the callback later.
type zaloPayAck struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
}

// @Summary		ZaloPay callback
// @Description	Handle the server-to-server ZaloPay callback
// @Tags			payments
// @Accept			json
// @Produce		json
// @Success		200	{object}	zaloPayAck	"Acknowledgement"
// @Router			/payments/zalopay/callback [post]
func (h *PaymentHandler) ZaloPayCallback(c *gin.Context) {
	gw, ok := h.gateways[vo.PaymentMethodZaloPay]
	if !ok {
		c.JSON(http.StatusOK, zaloPayAck{ReturnCode: 0, ReturnMessage: "payment method unavailable"})
		return
	}

	result, _, err := h.resolve(c.Request.Context(), gw, c.Request)
	if err != nil {
		h.logger.Errorw("zalopay callback resolution failed", "error", err)
		c.JSON(http.StatusOK, zaloPayAck{ReturnCode: 0, ReturnMessage: "internal error, please retry"})
		return
	}

	switch result.Outcome {
	case paymentUsecases.OutcomeSucceeded:
		h.mailReceipt(result.Payment)
		c.JSON(http.StatusOK, zaloPayAck{ReturnCode: 1, ReturnMessage: "success"})
	case paymentUsecases.OutcomeDuplicate, paymentUsecases.OutcomeFailed:
		c.JSON(http.StatusOK, zaloPayAck{ReturnCode: 1, ReturnMessage: "success"})
	case paymentUsecases.OutcomeRejectedInvalidSig:
		c.JSON(http.StatusOK, zaloPayAck{ReturnCode: -1, ReturnMessage: "invalid mac"})
	default:
		c.JSON(http.StatusOK, zaloPayAck{ReturnCode: -1, ReturnMessage: "callback rejected"})
	}
}

// resolve verifies the gateway callback and feeds the verdict to the ledger.
// A signature failure is resolved with Verified false rather than returned as
// an error, so the outcome classification stays in one place. The parsed
// callback data is nil on a signature failure.
func (h *PaymentHandler) resolve(ctx context.Context, gw gateway.Gateway, req *http.Request) (*paymentUsecases.ResolveCallbackResult, *gateway.CallbackData, error) {
	data, err := gw.VerifyCallback(req)
	if errors.Is(err, gateway.ErrInvalidSignature) {
		result, err := h.resolveCallback.Execute(ctx, paymentUsecases.ResolveCallbackCommand{Verified: false})
		return result, nil, err
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse gateway callback: %w", err)
	}

	result, err := h.resolveCallback.Execute(ctx, paymentUsecases.ResolveCallbackCommand{
		Verified:      true,
		OrderID:       data.OrderID,
		Amount:        data.Amount,
		TransactionID: data.TransactionID,
		Succeeded:     data.Succeeded,
		RawData:       data.RawData,
	})
	return result, data, err
}

func (h *PaymentHandler) redirectResult(c *gin.Context, status string, params url.Values) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("status", status)
	c.Redirect(http.StatusFound, h.frontendURL+"/payment/result?"+params.Encode())
}

// mailReceipt sends the receipt in the background. The callback response
// never waits on SMTP.
func (h *PaymentHandler) mailReceipt(p *payment.Payment) {
	if h.sendReceiptUC == nil || p == nil {
		return
	}

	paymentID := p.ID()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := h.sendReceiptUC.Execute(ctx, paymentID); err != nil {
			h.logger.Warnw("failed to send payment receipt",
				"payment_id", paymentID,
				"error", err)
		}
	}()
}

// @Summary		Get payment status
// @Description	Get the status of one of the caller's payments by order id
// @Tags			payments
// @Produce		json
// @Security		Bearer
// @Param			orderID	path		string											true	"Gateway order id"
// @Success		200		{object}	utils.APIResponse{data=PaymentStatusResponse}	"Payment status"
// @Failure		404		{object}	utils.APIResponse								"Not found"
// @Router			/payments/{orderID} [get]
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	orderID := c.Param("orderID")

	p, err := h.getStatusUC.Execute(c.Request.Context(), userID.(uint), orderID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "payment status retrieved", toPaymentStatusResponse(p))
}

// @Summary		Get payment history
// @Description	List the caller's payments, newest first
// @Tags			payments
// @Produce		json
// @Security		Bearer
// @Param			page		query		int	false	"Page number"
// @Param			page_size	query		int	false	"Page size"
// @Success		200			{object}	utils.APIResponse	"Payment history"
// @Router			/payments [get]
func (h *PaymentHandler) GetPaymentHistory(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.getHistoryUC.Execute(c.Request.Context(), paymentUsecases.GetPaymentHistoryCommand{
		UserID:   userID.(uint),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	payments := make([]PaymentStatusResponse, 0, len(result.Payments))
	for _, p := range result.Payments {
		payments = append(payments, toPaymentStatusResponse(p))
	}

	utils.SuccessResponse(c, http.StatusOK, "payment history retrieved", gin.H{
		"payments":  payments,
		"total":     result.Total,
		"page":      result.Page,
		"page_size": result.PageSize,
	})
}

// @Summary		List purchasable tiers
// @Description	List the active subscription tiers
// @Tags			tiers
// @Produce		json
// @Param			include_free	query		bool	false	"Include the free tier"
// @Success		200				{object}	utils.APIResponse{data=[]TierResponse}	"Tiers"
// @Router			/tiers [get]
func (h *PaymentHandler) ListTiers(c *gin.Context) {
	includeFree := c.Query("include_free") == "true"

	tiers, err := h.listTiersUC.Execute(c.Request.Context(), paymentUsecases.ListTiersCommand{
		IncludeFree: includeFree,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	responses := make([]TierResponse, 0, len(tiers))
	for _, tier := range tiers {
		responses = append(responses, toTierResponse(tier))
	}

	utils.SuccessResponse(c, http.StatusOK, "tiers retrieved", responses)
}

func toPaymentStatusResponse(p *payment.Payment) PaymentStatusResponse {
	resp := PaymentStatusResponse{
		OrderID:       p.GatewayOrderID(),
		Status:        p.Status().String(),
		Amount:        p.Amount(),
		PaymentMethod: p.PaymentMethod().String(),
		TransactionID: p.TransactionID(),
		CreatedAt:     p.CreatedAt().Format(time.RFC3339),
	}
	if p.PaidAt() != nil {
		paidAt := p.PaidAt().Format(time.RFC3339)
		resp.PaidAt = &paidAt
	}
	return resp
}

func toTierResponse(tier *subscription.Tier) TierResponse {
	return TierResponse{
		ID:           tier.ID(),
		Name:         tier.Name(),
		Plan:         tier.Plan().String(),
		Price:        tier.Price(),
		DurationDays: tier.DurationDays(),
		Features:     tier.Features(),
	}
}
