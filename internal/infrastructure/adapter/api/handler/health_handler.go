package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cacheport "github.com/safiripay/payment-core/internal/domain/port/cache"
	coreport "github.com/safiripay/payment-core/internal/domain/port/core"
	paymentUseCase "github.com/safiripay/payment-core/internal/domain/usecase/payment"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/api/dto"
)

// HealthHandler handles operational health endpoints
type HealthHandler struct {
	paymentService *paymentUseCase.Service
	store          cacheport.Store
	logger         coreport.Logger
}

// NewHealthHandler creates a new health handler instance
func NewHealthHandler(paymentService *paymentUseCase.Service, store cacheport.Store, logger coreport.Logger) *HealthHandler {
	return &HealthHandler{
		paymentService: paymentService,
		store:          store,
		logger:         logger,
	}
}

// Healthz handles the GET /healthz endpoint
func (h *HealthHandler) Healthz(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"cache":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ProviderHealth handles the GET /health/providers endpoint
func (h *HealthHandler) ProviderHealth(c *gin.Context) {
	verdicts := h.paymentService.HealthCheckAll(c.Request.Context())

	providers := make([]dto.ProviderHealthResponse, 0, len(verdicts))
	for provider, healthy := range verdicts {
		providers = append(providers, dto.ProviderHealthResponse{
			Provider:  string(provider),
			IsHealthy: healthy,
		})
	}

	c.JSON(http.StatusOK, gin.H{"providers": providers})
}
