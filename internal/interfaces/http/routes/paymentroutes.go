package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/melodia-inc/melodia/internal/infrastructure/ratelimit"
	"github.com/melodia-inc/melodia/internal/interfaces/http/handlers"
	"github.com/melodia-inc/melodia/internal/interfaces/http/middleware"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

// PaymentRouteConfig holds dependencies for payment routes.
type PaymentRouteConfig struct {
	PaymentHandler *handlers.PaymentHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    ratelimit.Limiter
	Logger         logger.Interface
}

// SetupPaymentRoutes configures payment and tier routes. Gateway callbacks
// are unauthenticated; the signature check is their authentication.
func SetupPaymentRoutes(api *gin.RouterGroup, cfg *PaymentRouteConfig) {
	api.GET("/tiers", cfg.PaymentHandler.ListTiers)

	payments := api.Group("/payments")
	{
		payments.GET("/vnpay/return", cfg.PaymentHandler.VNPayReturn)
		payments.POST("/zalopay/callback", cfg.PaymentHandler.ZaloPayCallback)

		protected := payments.Group("")
		protected.Use(cfg.AuthMiddleware.RequireAuth())
		{
			createLimit := middleware.RateLimit(cfg.RateLimiter, ratelimit.PaymentCreationLimit, cfg.Logger)
			protected.POST("", createLimit, cfg.PaymentHandler.CreatePayment)
			protected.GET("", cfg.PaymentHandler.GetPaymentHistory)
			protected.GET("/:orderID", cfg.PaymentHandler.GetPaymentStatus)
		}
	}
}
