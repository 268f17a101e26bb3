package routes

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/safiripay/payment-core/internal/domain/port/core"
	"github.com/safiripay/payment-core/internal/domain/usecase/ratelimit"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/api/handler"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/api/middleware"
	"github.com/safiripay/payment-core/internal/infrastructure/config"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(
	router *gin.Engine,
	paymentHandler *handler.PaymentHandler,
	healthHandler *handler.HealthHandler,
) {
	paymentRoutes := router.Group("/payments")
	{
		// POST /payments
		paymentRoutes.POST("", paymentHandler.InitiatePayment)

		// POST /payments/charge
		paymentRoutes.POST("/charge", paymentHandler.ChargeSavedMethod)

		// GET /payments/:id
		paymentRoutes.GET("/:id", paymentHandler.GetPayment)

		// POST /payments/:id/complete
		paymentRoutes.POST("/:id/complete", paymentHandler.CompletePayment)
	}

	// POST /callbacks/provider
	router.POST("/callbacks/provider", paymentHandler.ProviderCallback)

	// Operational endpoints
	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/health/providers", healthHandler.ProviderHealth)
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(
	router *gin.Engine,
	limiter *ratelimit.Limiter,
	rateCfg config.RateLimitConfig,
	logger coreport.Logger,
) {
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.RateLimit(limiter, rateCfg, logger))
}
