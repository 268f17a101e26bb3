package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainerr "github.com/safiripay/payment-core/internal/domain/error"
	coreport "github.com/safiripay/payment-core/internal/domain/port/core"
	"github.com/safiripay/payment-core/internal/domain/usecase/ratelimit"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/api/dto"
	"github.com/safiripay/payment-core/internal/infrastructure/config"
)

// RateLimit middleware applies the sliding-window limiter per client IP.
// Limiter store failures fail open: an unreachable store degrades to no rate
// limiting rather than rejecting all traffic.
func RateLimit(limiter *ratelimit.Limiter, cfg config.RateLimitConfig, logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		result, err := limiter.Check(c.Request.Context(), c.ClientIP(), cfg.Limit, cfg.Window)
		if err != nil {
			logger.Warn("Rate limit check failed, allowing request", map[string]any{
				"client_ip": c.ClientIP(),
				"error":     err.Error(),
			})
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(result.ResetIn.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Code:    domainerr.ErrorCode(domainerr.ErrRateLimited),
				Message: "Too many requests",
			})
			return
		}

		c.Next()
	}
}
