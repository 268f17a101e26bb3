package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/safiripay/payment-core/internal/domain/entity"
	errs "github.com/safiripay/payment-core/internal/domain/error"
	"github.com/safiripay/payment-core/internal/domain/port/core"
	"github.com/safiripay/payment-core/internal/domain/port/notify"
	"github.com/safiripay/payment-core/internal/domain/port/persistence"
	providerport "github.com/safiripay/payment-core/internal/domain/port/provider"
	walletport "github.com/safiripay/payment-core/internal/domain/port/wallet"
	"github.com/safiripay/payment-core/internal/domain/usecase/health"
	"github.com/safiripay/payment-core/internal/domain/usecase/lock"
	"github.com/safiripay/payment-core/internal/domain/usecase/readcache"
)

// Service orchestrates the payment lifecycle: provider selection, adapter
// dispatch, health recording, status tracking and wallet settlement. It never
// mutates balances itself; all credits go through the ledger while holding the
// wallet lock.
type Service struct {
	repo         persistence.PaymentRepository
	adapters     map[entity.Provider]providerport.Adapter
	routing      RoutingTable
	health       *health.Tracker
	locks        *lock.DistributedLock
	lockOpts     lock.Options
	ledger       walletport.Ledger
	balances     *readcache.WalletBalanceCache
	methods      *readcache.PaymentMethodCache
	notifier     notify.Notifier
	timeProvider core.TimeProvider
	logger       core.Logger
}

// NewService creates the orchestrator. Adapters are registered separately so
// the routing table can name providers that a given deployment leaves
// unconfigured.
func NewService(
	repo persistence.PaymentRepository,
	routing RoutingTable,
	healthTracker *health.Tracker,
	locks *lock.DistributedLock,
	lockOpts lock.Options,
	ledger walletport.Ledger,
	balances *readcache.WalletBalanceCache,
	methods *readcache.PaymentMethodCache,
	notifier notify.Notifier,
	timeProvider core.TimeProvider,
	logger core.Logger,
) *Service {
	return &Service{
		repo:         repo,
		adapters:     make(map[entity.Provider]providerport.Adapter),
		routing:      routing,
		health:       healthTracker,
		locks:        locks,
		lockOpts:     lockOpts,
		ledger:       ledger,
		balances:     balances,
		methods:      methods,
		notifier:     notifier,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// RegisterAdapter makes a provider adapter available for routing
func (s *Service) RegisterAdapter(adapter providerport.Adapter) {
	s.adapters[adapter.Name()] = adapter
}

// GetPaymentStatus returns the payment transaction by ID
func (s *Service) GetPaymentStatus(ctx context.Context, id string) (*entity.PaymentTransaction, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty payment id", errs.ErrInvalidRequest)
	}
	return s.repo.GetByID(ctx, id)
}

// UpdatePaymentStatus applies a provider-confirmed status change (webhook or
// poll). Redelivery of the same terminal status is a no-op; a conflicting
// terminal transition is rejected.
func (s *Service) UpdatePaymentStatus(
	ctx context.Context,
	id string,
	status entity.PaymentStatus,
	providerReference string,
	failureReason string,
) (*entity.PaymentTransaction, error) {
	txn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Webhook redelivery: already in the requested terminal state
	if txn.IsTerminal() && txn.Status == status {
		return txn, nil
	}

	if err := txn.SetProviderReference(providerReference); err != nil {
		return nil, err
	}

	switch status {
	case entity.StatusCompleted:
		err = txn.MarkCompleted(s.timeProvider)
	case entity.StatusFailed:
		err = txn.MarkFailed(s.timeProvider, failureReason)
	default:
		err = fmt.Errorf("%w: cannot set status %q", errs.ErrInvalidRequest, status)
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, txn); err != nil {
		return nil, fmt.Errorf("update payment %s: %w", id, err)
	}

	s.logger.Info("Payment status updated", map[string]any{
		"payment_id": txn.ID,
		"status":     txn.Status,
		"provider":   txn.Provider,
	})
	return txn, nil
}

// HealthCheckAll returns the current health verdict for every registered
// provider. Operational surface, not on the payment hot path.
func (s *Service) HealthCheckAll(ctx context.Context) map[entity.Provider]bool {
	verdicts := make(map[entity.Provider]bool, len(s.adapters))
	for name := range s.adapters {
		verdicts[name] = s.health.IsHealthy(ctx, name)
	}
	return verdicts
}

// selectProvider walks the currency's routing candidates in priority order and
// returns the first one that is configured, allows the requested method and
// has a positive health verdict. An unsupported currency is a validation
// failure; an exhausted candidate list is a transient no-provider failure.
func (s *Service) selectProvider(ctx context.Context, currency string, method entity.PaymentMethod) (providerport.Adapter, error) {
	routes := s.routing.routesFor(currency)
	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCurrency, currency)
	}

	for _, route := range routes {
		if !route.allows(method) {
			continue
		}
		adapter, configured := s.adapters[route.Provider]
		if !configured {
			continue
		}
		if !s.health.IsHealthy(ctx, route.Provider) {
			s.logger.Warn("Skipping unhealthy provider", map[string]any{
				"provider": route.Provider,
				"currency": currency,
			})
			continue
		}
		return adapter, nil
	}

	return nil, &errs.NoProviderAvailableError{Currency: strings.ToUpper(currency), Method: string(method)}
}
