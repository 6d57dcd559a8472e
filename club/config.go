package club

import "github.com/shopspring/decimal"

// =============================================================================
// COST CONFIGURATION - Pricing and discount rules
// =============================================================================

// CostConfig holds per-category pricing plus the discount rule: a member who
// settles StreakRequired consecutive payments on time, none of them already
// discounted, earns DiscountAmount off their next billed payment.
//
// Values are mutated only through admin-or-staff operations on the Club.
// No range validation beyond non-negativity is applied.
type CostConfig struct {
	PriceA         decimal.Decimal
	PriceB         decimal.Decimal
	PriceC         decimal.Decimal
	DiscountAmount decimal.Decimal
	StreakRequired int
}

// DefaultCostConfig returns the pricing the club opens with.
func DefaultCostConfig() CostConfig {
	return CostConfig{
		PriceA:         decimal.NewFromInt(5000),
		PriceB:         decimal.NewFromInt(3000),
		PriceC:         decimal.NewFromInt(2000),
		DiscountAmount: decimal.NewFromInt(500),
		StreakRequired: 3,
	}
}

// BasePrice returns the undiscounted monthly price for a category.
func (c CostConfig) BasePrice(cat Category) decimal.Decimal {
	switch cat {
	case CategoryA:
		return c.PriceA
	case CategoryB:
		return c.PriceB
	default:
		return c.PriceC
	}
}
