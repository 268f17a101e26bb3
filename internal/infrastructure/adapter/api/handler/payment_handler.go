package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/safiripay/payment-core/internal/domain/entity"
	domainerr "github.com/safiripay/payment-core/internal/domain/error"
	coreport "github.com/safiripay/payment-core/internal/domain/port/core"
	paymentUseCase "github.com/safiripay/payment-core/internal/domain/usecase/payment"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/api/dto"
)

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	paymentService *paymentUseCase.Service
	logger         coreport.Logger
}

// NewPaymentHandler creates a new payment handler instance
func NewPaymentHandler(paymentService *paymentUseCase.Service, logger coreport.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// InitiatePayment handles the POST /payments endpoint
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	result, err := h.paymentService.InitiatePayment(c.Request.Context(), paymentUseCase.InitiateRequest{
		UserID:       req.UserID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Method:       req.Method,
		PhoneOrEmail: req.PhoneOrEmail,
		Description:  req.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, result)
}

// ChargeSavedMethod handles the POST /payments/charge endpoint
func (h *PaymentHandler) ChargeSavedMethod(c *gin.Context) {
	var req dto.ChargeSavedMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	result, err := h.paymentService.ChargeSavedMethod(c.Request.Context(), paymentUseCase.ChargeSavedMethodRequest{
		UserID:      req.UserID,
		MethodID:    req.MethodID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, result)
}

// GetPayment handles the GET /payments/:id endpoint
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	txn, err := h.paymentService.GetPaymentStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paymentToResponse(txn))
}

// CompletePayment handles the POST /payments/:id/complete endpoint
func (h *PaymentHandler) CompletePayment(c *gin.Context) {
	// Body is optional; the main account is the default target
	var req dto.CompletePaymentRequest
	_ = c.ShouldBindJSON(&req)

	accountType := entity.AccountType(req.AccountType)
	if accountType == "" {
		accountType = entity.AccountTypeMain
	}
	if accountType != entity.AccountTypeMain && accountType != entity.AccountTypeBonus {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid account type",
		})
		return
	}

	result, err := h.paymentService.CompletePaymentToWallet(c.Request.Context(), c.Param("id"), accountType)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SettlementResponse{
		PaymentID:           c.Param("id"),
		LedgerTransactionID: result.LedgerTransactionID,
		Balance:             result.Balance.Balance,
		AvailableBalance:    result.Balance.AvailableBalance,
	})
}

// ProviderCallback handles the POST /callbacks/provider endpoint
func (h *PaymentHandler) ProviderCallback(c *gin.Context) {
	var req dto.ProviderCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	status := entity.PaymentStatus(req.Status)
	if status != entity.StatusCompleted && status != entity.StatusFailed {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Status must be completed or failed",
		})
		return
	}

	txn, err := h.paymentService.UpdatePaymentStatus(
		c.Request.Context(),
		req.TransactionID,
		status,
		req.ProviderReference,
		req.FailureReason,
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paymentToResponse(txn))
}

// respondError maps domain errors to HTTP responses
func (h *PaymentHandler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case domainerr.IsValidationError(err), errors.Is(err, domainerr.ErrUnsupportedOperation):
		status = http.StatusBadRequest
		message = err.Error()
	case domainerr.IsNotFoundError(err):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, domainerr.ErrPaymentNotCompleted):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, domainerr.ErrNoProviderAvailable),
		errors.Is(err, domainerr.ErrLockAcquisitionFailed):
		status = http.StatusServiceUnavailable
		message = "Service temporarily unavailable, please try again"
	case errors.Is(err, domainerr.ErrProviderFailure):
		// Retryable, but provider internals stay internal
		status = http.StatusBadGateway
		message = "Payment provider error, please try again"
	default:
		h.logger.Error("Unhandled payment error", map[string]any{
			"error": err.Error(),
		})
	}

	c.JSON(status, dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Message: message,
	})
}

func paymentToResponse(txn *entity.PaymentTransaction) dto.PaymentResponse {
	return dto.PaymentResponse{
		TransactionID:     txn.ID,
		UserID:            txn.UserID,
		Provider:          string(txn.Provider),
		Amount:            txn.Amount,
		Currency:          txn.Currency,
		Status:            string(txn.Status),
		ProviderReference: txn.ProviderReference,
		FailureReason:     txn.FailureReason,
	}
}
