package shipping

import (
	"testing"

	"github.com/eticaret/storefront/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestPolicyCost(t *testing.T) {
	p := Policy{FreeThreshold: 50000, FlatCost: 2500}

	tests := []struct {
		name      string
		subtotal  int64
		cost      int64
		remaining int64
	}{
		{"below threshold", 20000, 2500, 30000},
		{"one below threshold", 49999, 2500, 1},
		{"at threshold", 50000, 0, 0},
		{"above threshold", 120000, 0, 0},
		{"empty", 0, 2500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.cost, p.Cost(tt.subtotal))
			assert.Equal(t, tt.remaining, p.RemainingForFree(tt.subtotal))
		})
	}
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{FreeShippingThreshold: 75000, FlatShippingCost: 3000}}
	p := FromConfig(cfg)
	assert.Equal(t, int64(75000), p.FreeThreshold)
	assert.Equal(t, int64(3000), p.Cost(1000))
}
