package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/safiripay/payment-core/internal/domain/entity"
	"github.com/safiripay/payment-core/internal/domain/port/core"
	providerport "github.com/safiripay/payment-core/internal/domain/port/provider"
	"github.com/safiripay/payment-core/internal/infrastructure/config"
)

// MpesaAdapter drives the mobile-money rail via STK push. It does not support
// stored-instrument charges; every payment needs payer confirmation on the
// handset.
type MpesaAdapter struct {
	cfg        config.MpesaConfig
	httpClient *http.Client
	logger     core.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewMpesaAdapter creates the mobile-money adapter
func NewMpesaAdapter(cfg config.MpesaConfig, logger core.Logger) *MpesaAdapter {
	return &MpesaAdapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Name returns the provider this adapter drives
func (a *MpesaAdapter) Name() entity.Provider {
	return entity.ProviderMpesa
}

// InitiatePayment starts an STK push to the payer's phone
func (a *MpesaAdapter) InitiatePayment(ctx context.Context, req providerport.InitiateRequest) (*providerport.InitiateResponse, error) {
	token, err := a.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString([]byte(a.cfg.ShortCode + a.cfg.Passkey + timestamp))

	payload := map[string]any{
		"BusinessShortCode": a.cfg.ShortCode,
		"Password":          password,
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            req.Amount,
		"PartyA":            req.PhoneOrEmail,
		"PartyB":            a.cfg.ShortCode,
		"PhoneNumber":       req.PhoneOrEmail,
		"CallBackURL":       a.cfg.CallbackURL,
		"AccountReference":  req.TransactionID,
		"TransactionDesc":   req.Description,
	}

	var res struct {
		MerchantRequestID   string `json:"MerchantRequestID"`
		CheckoutRequestID   string `json:"CheckoutRequestID"`
		ResponseCode        string `json:"ResponseCode"`
		ResponseDescription string `json:"ResponseDescription"`
	}
	if err := a.postJSON(ctx, "/mpesa/stkpush/v1/processrequest", token, payload, &res); err != nil {
		return nil, err
	}
	if res.ResponseCode != "0" {
		return nil, fmt.Errorf("mpesa stk push rejected: %s", res.ResponseDescription)
	}

	return &providerport.InitiateResponse{
		ProviderTransactionID: res.MerchantRequestID,
		Status:                "pending",
		ContinuationToken:     res.CheckoutRequestID,
	}, nil
}

// accessToken returns a cached OAuth token, refreshing it when near expiry
func (a *MpesaAdapter) accessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.tokenExpiry) {
		return a.token, nil
	}

	url := a.cfg.BaseURL + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build mpesa token request: %w", err)
	}
	req.SetBasicAuth(a.cfg.ConsumerKey, a.cfg.ConsumerSecret)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mpesa token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("mpesa token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode mpesa token response: %w", err)
	}

	a.token = res.AccessToken
	// Tokens live an hour; refresh early
	a.tokenExpiry = time.Now().Add(50 * time.Minute)
	return a.token, nil
}

func (a *MpesaAdapter) postJSON(ctx context.Context, path, token string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mpesa request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("build mpesa request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mpesa request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mpesa request failed with status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode mpesa response: %w", err)
	}
	return nil
}
