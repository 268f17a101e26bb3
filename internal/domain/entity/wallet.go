package entity

// AccountType distinguishes wallet sub-accounts per user and currency
type AccountType string

// Wallet account types
const (
	AccountTypeMain  AccountType = "main"
	AccountTypeBonus AccountType = "bonus"
)

// WalletBalance is a cached projection of the ledger's authoritative balance
// for one (user, currency) pair. It may be momentarily stale for reads; all
// balance mutations go through the ledger under the distributed lock, never
// through this projection.
type WalletBalance struct {
	UserID           string `json:"userId"`
	Currency         string `json:"currency"`
	Balance          string `json:"balance"`
	AvailableBalance string `json:"availableBalance"`
	HeldBalance      string `json:"heldBalance"`
}

// SavedPaymentMethod is a stored instrument a provider can charge directly
type SavedPaymentMethod struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	Provider     Provider      `json:"provider"`
	Method       PaymentMethod `json:"method"`
	MaskedDetail string        `json:"maskedDetail"`
	Token        string        `json:"-"`
	IsDefault    bool          `json:"isDefault"`
}
