package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/melodia-inc/melodia/internal/application/payment/gateway"
	paymentUsecases "github.com/melodia-inc/melodia/internal/application/payment/usecases"
	subscriptionUsecases "github.com/melodia-inc/melodia/internal/application/subscription/usecases"
	vo "github.com/melodia-inc/melodia/internal/domain/payment/valueobjects"
	"github.com/melodia-inc/melodia/internal/infrastructure/auth"
	"github.com/melodia-inc/melodia/internal/infrastructure/cache"
	"github.com/melodia-inc/melodia/internal/infrastructure/config"
	"github.com/melodia-inc/melodia/internal/infrastructure/email"
	"github.com/melodia-inc/melodia/internal/infrastructure/payment/vnpay"
	"github.com/melodia-inc/melodia/internal/infrastructure/payment/zalopay"
	"github.com/melodia-inc/melodia/internal/infrastructure/ratelimit"
	"github.com/melodia-inc/melodia/internal/infrastructure/repository"
	"github.com/melodia-inc/melodia/internal/interfaces/http/handlers"
	"github.com/melodia-inc/melodia/internal/interfaces/http/middleware"
	"github.com/melodia-inc/melodia/internal/interfaces/http/routes"
	"github.com/melodia-inc/melodia/internal/shared/db"
	"github.com/melodia-inc/melodia/internal/shared/logger"

	_ "github.com/melodia-inc/melodia/docs"
)

// Router wires the HTTP surface: repositories, use cases, gateways and
// handlers. The expiry scheduler is wired separately in cmd so worker
// deployments can run it without the HTTP server.
type Router struct {
	engine   *gin.Engine
	expiryUC *subscriptionUsecases.ExpireSubscriptionsUseCase
	logger   logger.Interface
}

// NewRouter builds the full HTTP stack. redisClient may be nil; premium
// status lookups then skip the cache layer.
func NewRouter(cfg *config.Config, database *gorm.DB, redisClient *redis.Client, log logger.Interface) *Router {
	gin.SetMode(ginMode(cfg.Server.Mode))

	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestLogger(log.Named("http")))
	engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	// Repositories
	paymentRepo := repository.NewPaymentRepository(database)
	subscriptionRepo := repository.NewSubscriptionRepository(database)
	tierRepo := repository.NewTierRepository(database)
	userRepo := repository.NewUserRepository(database)
	txManager := db.NewTransactionManager(database)

	// Payment gateways
	gatewayTimeout := time.Duration(cfg.Payment.GatewayTimeoutSeconds) * time.Second
	gateways := map[vo.PaymentMethod]gateway.Gateway{
		vo.PaymentMethodVNPay:   vnpay.NewGateway(cfg.Payment.VNPay, log.Named("vnpay")),
		vo.PaymentMethodZaloPay: zalopay.NewGateway(cfg.Payment.ZaloPay, gatewayTimeout, log.Named("zalopay")),
	}

	// Premium status cache and rate limiter
	var premiumCache subscriptionUsecases.PremiumStatusCache
	var paymentLimiter ratelimit.Limiter
	if redisClient != nil {
		ttl := time.Duration(cfg.Subscription.PremiumCacheTTLMinutes) * time.Minute
		premiumCache = cache.NewRedisPremiumStatusCache(redisClient, ttl, log.Named("premium-cache"))
		paymentLimiter = ratelimit.NewRedisLimiter(redisClient)
	}

	// Receipt mail
	emailService := email.NewSMTPEmailService(email.SMTPConfig{
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		Username:    cfg.Email.SMTPUser,
		Password:    cfg.Email.SMTPPassword,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
	})

	// Use cases
	activateUC := subscriptionUsecases.NewActivateSubscriptionUseCase(subscriptionRepo, tierRepo, userRepo, log)
	expiryUC := subscriptionUsecases.NewExpireSubscriptionsUseCase(subscriptionRepo, userRepo, tierRepo, txManager, emailService, premiumCache, log)

	createPaymentUC := paymentUsecases.NewCreatePaymentUseCase(paymentRepo, subscriptionRepo, tierRepo, gateways, log)
	resolveCallbackUC := paymentUsecases.NewResolveCallbackUseCase(paymentRepo, activateUC, txManager, premiumCache, log)
	getStatusUC := paymentUsecases.NewGetPaymentStatusUseCase(paymentRepo, log)
	getHistoryUC := paymentUsecases.NewGetPaymentHistoryUseCase(paymentRepo, log)
	listTiersUC := paymentUsecases.NewListTiersUseCase(tierRepo, log)
	sendReceiptUC := paymentUsecases.NewSendReceiptUseCase(paymentRepo, userRepo, tierRepo, emailService, log)

	getCurrentUC := subscriptionUsecases.NewGetCurrentSubscriptionUseCase(subscriptionRepo, tierRepo, log)
	listSubscriptionsUC := subscriptionUsecases.NewListSubscriptionsUseCase(subscriptionRepo, tierRepo, log)
	cancelUC := subscriptionUsecases.NewCancelSubscriptionUseCase(subscriptionRepo, log)
	premiumStatusUC := subscriptionUsecases.NewGetPremiumStatusUseCase(userRepo, subscriptionRepo, tierRepo, premiumCache, log)

	// Middleware and handlers
	jwtService := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, log.Named("auth"))

	paymentHandler := handlers.NewPaymentHandler(
		createPaymentUC,
		resolveCallbackUC,
		getStatusUC,
		getHistoryUC,
		listTiersUC,
		sendReceiptUC,
		gateways,
		cfg.Server.FrontendURL,
		log.Named("payment-handler"),
	)
	subscriptionHandler := handlers.NewSubscriptionHandler(
		getCurrentUC,
		listSubscriptionsUC,
		cancelUC,
		premiumStatusUC,
		log.Named("subscription-handler"),
	)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group("/api")
	routes.SetupPaymentRoutes(api, &routes.PaymentRouteConfig{
		PaymentHandler: paymentHandler,
		AuthMiddleware: authMiddleware,
		RateLimiter:    paymentLimiter,
		Logger:         log.Named("ratelimit"),
	})
	routes.SetupSubscriptionRoutes(api, &routes.SubscriptionRouteConfig{
		SubscriptionHandler: subscriptionHandler,
		AuthMiddleware:      authMiddleware,
	})

	return &Router{
		engine:   engine,
		expiryUC: expiryUC,
		logger:   log,
	}
}

// Engine exposes the underlying gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// ExpireSubscriptionsUseCase exposes the expiry sweep for the scheduler.
func (r *Router) ExpireSubscriptionsUseCase() *subscriptionUsecases.ExpireSubscriptionsUseCase {
	return r.expiryUC
}

// Run starts the HTTP server on addr.
func (r *Router) Run(addr string) error {
	r.logger.Infow("starting HTTP server", "addr", addr)
	return r.engine.Run(addr)
}

func ginMode(mode string) string {
	switch mode {
	case "release", "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
