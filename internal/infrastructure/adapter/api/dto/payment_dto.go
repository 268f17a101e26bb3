package dto

// InitiatePaymentRequest is the body of POST /payments
type InitiatePaymentRequest struct {
	UserID       string `json:"userId" binding:"required"`
	Amount       string `json:"amount" binding:"required"`
	Currency     string `json:"currency" binding:"required"`
	Method       string `json:"method"`
	PhoneOrEmail string `json:"phoneOrEmail" binding:"required"`
	Description  string `json:"description"`
}

// ChargeSavedMethodRequest is the body of POST /payments/charge
type ChargeSavedMethodRequest struct {
	UserID      string `json:"userId" binding:"required"`
	MethodID    string `json:"methodId"`
	Amount      string `json:"amount" binding:"required"`
	Currency    string `json:"currency" binding:"required"`
	Description string `json:"description"`
}

// CompletePaymentRequest is the body of POST /payments/:id/complete
type CompletePaymentRequest struct {
	AccountType string `json:"accountType"`
}

// ProviderCallbackRequest is the normalized webhook body from provider
// callbacks
type ProviderCallbackRequest struct {
	TransactionID     string `json:"transactionId" binding:"required"`
	Status            string `json:"status" binding:"required"`
	ProviderReference string `json:"providerReference"`
	FailureReason     string `json:"failureReason"`
}

// PaymentResponse describes a payment transaction
type PaymentResponse struct {
	TransactionID     string `json:"transactionId"`
	UserID            string `json:"userId"`
	Provider          string `json:"provider"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	Status            string `json:"status"`
	ProviderReference string `json:"providerReference,omitempty"`
	FailureReason     string `json:"failureReason,omitempty"`
}

// SettlementResponse is returned after a successful wallet settlement
type SettlementResponse struct {
	PaymentID           string `json:"paymentId"`
	LedgerTransactionID string `json:"ledgerTransactionId"`
	Balance             string `json:"balance"`
	AvailableBalance    string `json:"availableBalance"`
}

// ProviderHealthResponse reports one provider's routing verdict
type ProviderHealthResponse struct {
	Provider  string `json:"provider"`
	IsHealthy bool   `json:"isHealthy"`
}
