package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/melodia-inc/melodia/internal/interfaces/http/handlers"
	"github.com/melodia-inc/melodia/internal/interfaces/http/middleware"
)

// SubscriptionRouteConfig holds dependencies for subscription routes.
type SubscriptionRouteConfig struct {
	SubscriptionHandler *handlers.SubscriptionHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

// SetupSubscriptionRoutes configures subscription routes.
func SetupSubscriptionRoutes(api *gin.RouterGroup, cfg *SubscriptionRouteConfig) {
	subscriptions := api.Group("/subscriptions")
	subscriptions.Use(cfg.AuthMiddleware.RequireAuth())
	{
		subscriptions.GET("", cfg.SubscriptionHandler.List)
		subscriptions.GET("/current", cfg.SubscriptionHandler.GetCurrent)
		subscriptions.GET("/premium-status", cfg.SubscriptionHandler.GetPremiumStatus)
		subscriptions.POST("/:id/cancel", cfg.SubscriptionHandler.Cancel)
	}
}
