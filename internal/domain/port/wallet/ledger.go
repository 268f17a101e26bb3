package wallet

import (
	"context"

	"github.com/safiripay/payment-core/internal/domain/entity"
)

// TopUpRequest credits a wallet through the ledger. IdempotencyKey must be
// deterministic per logical credit so redelivered requests never double-credit.
type TopUpRequest struct {
	UserID         string
	AccountType    entity.AccountType
	Amount         string
	Currency       string
	IdempotencyKey string
	Description    string
	Metadata       map[string]string
}

// TopUpResult is the ledger's answer to a top-up
type TopUpResult struct {
	LedgerTransactionID string
	Balance             entity.WalletBalance
}

// DebitRequest debits a wallet through the ledger
type DebitRequest struct {
	UserID      string
	Amount      string
	Currency    string
	Reason      string
	Description string
}

// DebitResult is the ledger's answer to a debit
type DebitResult struct {
	Success       bool
	TransactionID string
	Error         string
}

// Ledger is the authoritative balance-tracking collaborator. The core drives
// mutations through it while holding the wallet-scoped distributed lock and
// never mutates balances itself.
type Ledger interface {
	TopUp(ctx context.Context, req TopUpRequest) (*TopUpResult, error)
	Debit(ctx context.Context, req DebitRequest) (*DebitResult, error)
	// GetBalance reads the authoritative balance, used to fill the balance cache
	GetBalance(ctx context.Context, userID, currency string) (*entity.WalletBalance, error)
}
