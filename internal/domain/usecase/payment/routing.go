package payment

import (
	"strings"

	"github.com/safiripay/payment-core/internal/domain/entity"
)

// Route is one routing candidate: a provider and the methods it may serve
type Route struct {
	Provider entity.Provider
	Methods  []entity.PaymentMethod
}

// RoutingTable maps an ISO currency code to its ordered provider candidates.
// Order is priority: the first configured, healthy route that allows the
// requested method wins. Adding a country is a table change, not a code change.
type RoutingTable map[string][]Route

// DefaultRoutingTable returns the platform's launch-market routing.
// Mobile-money-dominant currencies try the mobile rail first and fall back to
// cards; card-dominant currencies go straight to the card rail.
func DefaultRoutingTable() RoutingTable {
	mobileFirst := []Route{
		{Provider: entity.ProviderMpesa, Methods: []entity.PaymentMethod{entity.MethodMobileMoney}},
		{Provider: entity.ProviderPaystack, Methods: []entity.PaymentMethod{entity.MethodCard}},
	}
	cardOnly := []Route{
		{Provider: entity.ProviderPaystack, Methods: []entity.PaymentMethod{entity.MethodCard}},
	}

	return RoutingTable{
		"KES": mobileFirst,
		"TZS": mobileFirst,
		"UGX": mobileFirst,
		"GHS": mobileFirst,
		"NGN": cardOnly,
		"USD": cardOnly,
		"ZAR": cardOnly,
	}
}

// Currencies returns the currencies the table can route, for config validation
// and cache invalidation
func (t RoutingTable) Currencies() []string {
	currencies := make([]string, 0, len(t))
	for currency := range t {
		currencies = append(currencies, currency)
	}
	return currencies
}

// routesFor returns the candidates for a currency, nil if unsupported
func (t RoutingTable) routesFor(currency string) []Route {
	return t[strings.ToUpper(currency)]
}

// allows reports whether the route can serve the requested method.
// MethodAuto matches any route.
func (r Route) allows(method entity.PaymentMethod) bool {
	if method == entity.MethodAuto {
		return true
	}
	for _, m := range r.Methods {
		if m == method {
			return true
		}
	}
	return false
}
