package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	subscriptionUsecases "github.com/melodia-inc/melodia/internal/application/subscription/usecases"
	"github.com/melodia-inc/melodia/internal/domain/subscription"
	"github.com/melodia-inc/melodia/internal/shared/logger"
	"github.com/melodia-inc/melodia/internal/shared/utils"
)

type SubscriptionHandler struct {
	getCurrentUC   *subscriptionUsecases.GetCurrentSubscriptionUseCase
	listUC         *subscriptionUsecases.ListSubscriptionsUseCase
	cancelUC       *subscriptionUsecases.CancelSubscriptionUseCase
	premiumStatusUC *subscriptionUsecases.GetPremiumStatusUseCase
	logger         logger.Interface
}

func NewSubscriptionHandler(
	getCurrentUC *subscriptionUsecases.GetCurrentSubscriptionUseCase,
	listUC *subscriptionUsecases.ListSubscriptionsUseCase,
	cancelUC *subscriptionUsecases.CancelSubscriptionUseCase,
	premiumStatusUC *subscriptionUsecases.GetPremiumStatusUseCase,
	logger logger.Interface,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		getCurrentUC:    getCurrentUC,
		listUC:          listUC,
		cancelUC:        cancelUC,
		premiumStatusUC: premiumStatusUC,
		logger:          logger,
	}
}

type SubscriptionResponse struct {
	ID                 uint    `json:"id"`
	TierID             uint    `json:"tier_id"`
	TierName           string  `json:"tier_name,omitempty"`
	Plan               string  `json:"plan,omitempty"`
	Status             string  `json:"status"`
	StartDate          string  `json:"start_date"`
	EndDate            string  `json:"end_date"`
	AutoRenew          bool    `json:"auto_renew"`
	CancelledAt        *string `json:"cancelled_at,omitempty"`
	CancellationReason string  `json:"cancellation_reason,omitempty"`
}

type CancelSubscriptionRequest struct {
	Reason string `json:"reason"`
}

// @Summary		Get current subscription
// @Description	Get the caller's currently effective subscription
// @Tags			subscriptions
// @Produce		json
// @Security		Bearer
// @Success		200	{object}	utils.APIResponse{data=SubscriptionResponse}	"Current subscription"
// @Failure		404	{object}	utils.APIResponse								"No active subscription"
// @Router			/subscriptions/current [get]
func (h *SubscriptionHandler) GetCurrent(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	result, err := h.getCurrentUC.Execute(c.Request.Context(), userID.(uint))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "current subscription retrieved",
		toSubscriptionResponse(result.Subscription, result.Tier))
}

// @Summary		List subscriptions
// @Description	List the caller's subscription history, newest first
// @Tags			subscriptions
// @Produce		json
// @Security		Bearer
// @Success		200	{object}	utils.APIResponse{data=[]SubscriptionResponse}	"Subscription history"
// @Router			/subscriptions [get]
func (h *SubscriptionHandler) List(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	entries, err := h.listUC.Execute(c.Request.Context(), userID.(uint))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	responses := make([]SubscriptionResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, toSubscriptionResponse(entry.Subscription, entry.Tier))
	}

	utils.SuccessResponse(c, http.StatusOK, "subscriptions retrieved", responses)
}

// @Summary		Cancel subscription
// @Description	Record cancellation intent; access continues until the end date
// @Tags			subscriptions
// @Accept			json
// @Produce		json
// @Security		Bearer
// @Param			id		path		int							true	"Subscription id"
// @Param			cancel	body		CancelSubscriptionRequest	false	"Cancellation reason"
// @Success		200		{object}	utils.APIResponse{data=SubscriptionResponse}	"Cancellation recorded"
// @Failure		403		{object}	utils.APIResponse								"Not the owner"
// @Failure		409		{object}	utils.APIResponse								"Not cancellable"
// @Router			/subscriptions/{id}/cancel [post]
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	subscriptionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid subscription id")
		return
	}

	var req CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	result, err := h.cancelUC.Execute(c.Request.Context(), subscriptionUsecases.CancelSubscriptionCommand{
		UserID:         userID.(uint),
		SubscriptionID: uint(subscriptionID),
		Reason:         req.Reason,
	})
	if err != nil {
		h.logger.Warnw("failed to cancel subscription",
			"error", err,
			"subscription_id", subscriptionID,
			"user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "cancellation recorded",
		toSubscriptionResponse(result.Subscription, nil))
}

// @Summary		Get premium status
// @Description	Get the caller's effective premium status
// @Tags			subscriptions
// @Produce		json
// @Security		Bearer
// @Success		200	{object}	utils.APIResponse	"Premium status"
// @Router			/subscriptions/premium-status [get]
func (h *SubscriptionHandler) GetPremiumStatus(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	status, err := h.premiumStatusUC.Execute(c.Request.Context(), userID.(uint))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "premium status retrieved", status)
}

func toSubscriptionResponse(sub *subscription.Subscription, tier *subscription.Tier) SubscriptionResponse {
	resp := SubscriptionResponse{
		ID:                 sub.ID(),
		TierID:             sub.TierID(),
		Status:             sub.Status().String(),
		StartDate:          sub.StartDate().Format(time.RFC3339),
		EndDate:            sub.EndDate().Format(time.RFC3339),
		AutoRenew:          sub.AutoRenew(),
		CancellationReason: sub.CancellationReason(),
	}
	if sub.CancelledAt() != nil {
		cancelledAt := sub.CancelledAt().Format(time.RFC3339)
		resp.CancelledAt = &cancelledAt
	}
	if tier != nil {
		resp.TierName = tier.Name()
		resp.Plan = tier.Plan().String()
	}
	return resp
}
