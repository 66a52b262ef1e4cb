package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/melodia-inc/melodia/internal/infrastructure/ratelimit"
	"github.com/melodia-inc/melodia/internal/shared/logger"
	"github.com/melodia-inc/melodia/internal/shared/utils"
)

// RateLimit caps attempts per authenticated user. It runs after RequireAuth
// so the user id is always present; a nil limiter disables the check, which
// keeps deployments without redis working.
func RateLimit(limiter ratelimit.Limiter, limit ratelimit.Limit, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		userID, exists := c.Get("user_id")
		if !exists {
			c.Next()
			return
		}

		key := fmt.Sprintf("user:%v", userID)

		allowed, err := limiter.Allow(c.Request.Context(), key, limit)
		if err != nil {
			// The limiter is protection, not a dependency. Fail open.
			log.Warnw("rate limit check failed", "error", err, "key", key)
			c.Next()
			return
		}

		if !allowed {
			log.Warnw("rate limit exceeded", "key", key, "path", c.Request.URL.Path)
			utils.ErrorResponse(c, http.StatusTooManyRequests, "too many requests, try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
