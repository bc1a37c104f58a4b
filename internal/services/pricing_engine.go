package services

import (
	"errors"
	"math"

	domain "github.com/darfidda/storefront/internal/domain"
)

// ErrPricingInvalidInput signals negative amounts or discount rates outside [0, 1].
var ErrPricingInvalidInput = errors.New("pricing engine: invalid input")

// PricingEngine computes effective unit prices and deterministic cart totals.
type PricingEngine struct {
	deliveryCharge int64
}

// PricingEngineDeps bundles dependencies required to construct a PricingEngine.
type PricingEngineDeps struct {
	// DeliveryCharge is the flat delivery fee in minor currency units.
	DeliveryCharge int64
}

// NewPricingEngine wires a PricingEngine with the configured delivery charge.
func NewPricingEngine(deps PricingEngineDeps) (*PricingEngine, error) {
	if deps.DeliveryCharge < 0 {
		return nil, ErrPricingInvalidInput
	}
	return &PricingEngine{deliveryCharge: deps.DeliveryCharge}, nil
}

// DeliveryCharge returns the flat delivery fee applied to every order.
func (e *PricingEngine) DeliveryCharge() int64 {
	return e.deliveryCharge
}

// EffectivePrice returns the price a buyer pays per unit: the discounted price
// when one is set and strictly below the original, otherwise the original
// price. The result never exceeds the original price.
func (e *PricingEngine) EffectivePrice(product domain.Product) int64 {
	if product.DiscountedPrice > 0 && product.DiscountedPrice < product.OriginalPrice {
		return product.DiscountedPrice
	}
	return product.OriginalPrice
}

// ComputeTotals derives the full totals breakdown for the given lines and
// discount rate. The result depends only on line contents, never their order.
func (e *PricingEngine) ComputeTotals(lines []domain.CartLine, discountRate float64) (domain.Totals, error) {
	if discountRate < 0 || discountRate > 1 || math.IsNaN(discountRate) {
		return domain.Totals{}, ErrPricingInvalidInput
	}

	var subtotal int64
	for _, line := range lines {
		if line.UnitPrice < 0 || line.Quantity < 0 {
			return domain.Totals{}, ErrPricingInvalidInput
		}
		subtotal += line.LineTotal()
	}

	discountAmount := roundHalfUp(float64(subtotal) * discountRate)
	discountedTotal := subtotal - discountAmount

	return domain.Totals{
		Subtotal:        subtotal,
		DiscountRate:    discountRate,
		DiscountAmount:  discountAmount,
		DiscountedTotal: discountedTotal,
		DeliveryCharge:  e.deliveryCharge,
		FinalTotal:      discountedTotal + e.deliveryCharge,
	}, nil
}

func roundHalfUp(value float64) int64 {
	if value >= 0 {
		return int64(value + 0.5)
	}
	return int64(value - 0.5)
}
