package walletledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/safiripay/payment-core/internal/domain/entity"
	"github.com/safiripay/payment-core/internal/domain/port/core"
	walletport "github.com/safiripay/payment-core/internal/domain/port/wallet"
	"github.com/safiripay/payment-core/internal/infrastructure/config"
)

// HTTPClient talks to the wallet ledger service over its REST API. The ledger
// enforces idempotency keys server-side; this client only transports them.
type HTTPClient struct {
	cfg        config.LedgerConfig
	httpClient *http.Client
	logger     core.Logger
}

// NewHTTPClient creates a ledger client from configuration
func NewHTTPClient(cfg config.LedgerConfig, logger core.Logger) *HTTPClient {
	return &HTTPClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// TopUp credits a wallet through the ledger
func (c *HTTPClient) TopUp(ctx context.Context, req walletport.TopUpRequest) (*walletport.TopUpResult, error) {
	payload := map[string]any{
		"userId":         req.UserID,
		"accountType":    string(req.AccountType),
		"amount":         req.Amount,
		"currency":       req.Currency,
		"idempotencyKey": req.IdempotencyKey,
		"description":    req.Description,
		"metadata":       req.Metadata,
	}

	var res struct {
		TransactionID string               `json:"transactionId"`
		Balance       entity.WalletBalance `json:"balance"`
	}
	if err := c.postJSON(ctx, "/v1/wallets/topup", payload, &res); err != nil {
		return nil, err
	}

	return &walletport.TopUpResult{
		LedgerTransactionID: res.TransactionID,
		Balance:             res.Balance,
	}, nil
}

// Debit debits a wallet through the ledger
func (c *HTTPClient) Debit(ctx context.Context, req walletport.DebitRequest) (*walletport.DebitResult, error) {
	payload := map[string]any{
		"userId":      req.UserID,
		"amount":      req.Amount,
		"currency":    req.Currency,
		"reason":      req.Reason,
		"description": req.Description,
	}

	var res walletport.DebitResult
	if err := c.postJSON(ctx, "/v1/wallets/debit", payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetBalance reads the authoritative balance for a user and currency
func (c *HTTPClient) GetBalance(ctx context.Context, userID, currency string) (*entity.WalletBalance, error) {
	url := fmt.Sprintf("%s/v1/wallets/%s/balance?currency=%s", c.cfg.BaseURL, userID, currency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build ledger request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ledger balance request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ledger balance request failed with status %d: %s", resp.StatusCode, string(raw))
	}

	var balance entity.WalletBalance
	if err := json.NewDecoder(resp.Body).Decode(&balance); err != nil {
		return nil, fmt.Errorf("decode ledger balance response: %w", err)
	}
	return &balance, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal ledger request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("build ledger request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ledger request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ledger request failed with status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode ledger response: %w", err)
	}
	return nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
}
