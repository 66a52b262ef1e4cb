package expire

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	subscriptionUsecases "github.com/melodia-inc/melodia/internal/application/subscription/usecases"
	"github.com/melodia-inc/melodia/internal/infrastructure/cache"
	"github.com/melodia-inc/melodia/internal/infrastructure/config"
	"github.com/melodia-inc/melodia/internal/infrastructure/database"
	"github.com/melodia-inc/melodia/internal/infrastructure/email"
	"github.com/melodia-inc/melodia/internal/infrastructure/repository"
	"github.com/melodia-inc/melodia/internal/shared/biztime"
	"github.com/melodia-inc/melodia/internal/shared/db"
	"github.com/melodia-inc/melodia/internal/shared/logger"
)

var env string

// NewCommand builds the manual expiry sweep. It runs the same job the
// scheduler runs, once, and prints the counts.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expire",
		Short: "Run one subscription expiry sweep",
		Long:  `Expire all lapsed subscriptions immediately and clear premium flags no remaining subscription backs. Safe to run alongside the scheduler.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	log := logger.NewLogger().Named("expire")

	gormDB := database.Get()
	subscriptionRepo := repository.NewSubscriptionRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)
	tierRepo := repository.NewTierRepository(gormDB)
	txManager := db.NewTransactionManager(gormDB)

	emailService := email.NewSMTPEmailService(email.SMTPConfig{
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		Username:    cfg.Email.SMTPUser,
		Password:    cfg.Email.SMTPPassword,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
	})

	// Cleared flags must not linger in the premium cache; the sweep drops
	// the affected entries when redis is reachable.
	var premiumCache subscriptionUsecases.PremiumStatusCache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warnw("redis unavailable, premium cache entries will age out by TTL", "error", err)
	} else {
		ttl := time.Duration(cfg.Subscription.PremiumCacheTTLMinutes) * time.Minute
		premiumCache = cache.NewRedisPremiumStatusCache(redisClient, ttl, log.Named("premium-cache"))
	}

	uc := subscriptionUsecases.NewExpireSubscriptionsUseCase(
		subscriptionRepo, userRepo, tierRepo, txManager, emailService, premiumCache, log)

	result, err := uc.Execute(context.Background())
	if err != nil {
		return fmt.Errorf("expiry sweep failed: %w", err)
	}

	fmt.Printf("expired %d subscription(s), %d failed\n", result.Expired, result.Failed)
	return nil
}
