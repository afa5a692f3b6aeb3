// Package shipping computes the delivery charge for an order subtotal.
package shipping

import "github.com/eticaret/storefront/internal/config"

// Policy charges a flat cost below the free-shipping threshold. Amounts are
// minor currency units.
type Policy struct {
	FreeThreshold int64 `json:"free_threshold"`
	FlatCost      int64 `json:"flat_cost"`
}

// FromConfig builds the policy from the store settings
func FromConfig(cfg *config.Config) Policy {
	return Policy{
		FreeThreshold: cfg.Store.FreeShippingThreshold,
		FlatCost:      cfg.Store.FlatShippingCost,
	}
}

// Cost returns the shipping charge for subtotal
func (p Policy) Cost(subtotal int64) int64 {
	if subtotal >= p.FreeThreshold {
		return 0
	}
	return p.FlatCost
}

// RemainingForFree is how much more must be spent to qualify for free
// shipping, zero once qualified.
func (p Policy) RemainingForFree(subtotal int64) int64 {
	if subtotal >= p.FreeThreshold {
		return 0
	}
	return p.FreeThreshold - subtotal
}
