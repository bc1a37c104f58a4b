package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProductStatus enumerates the availability states a catalog record may carry.
type ProductStatus string

const (
	// StatusAvailable marks a product as in stock and purchasable.
	StatusAvailable ProductStatus = "available"
	// StatusFewLeft marks a product as purchasable with low remaining stock.
	StatusFewLeft ProductStatus = "few-left"
	// StatusOutOfStock marks a product as sold out.
	StatusOutOfStock ProductStatus = "out-of-stock"
	// StatusComingSoon marks a product announced but not yet sold.
	StatusComingSoon ProductStatus = "coming-soon"
)

// NormalizeProductStatus maps the wire spellings of availability onto the
// canonical set. "low-stock" is an accepted alias for "few-left".
func NormalizeProductStatus(raw string) (ProductStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "available", "":
		return StatusAvailable, true
	case "few-left", "low-stock":
		return StatusFewLeft, true
	case "out-of-stock":
		return StatusOutOfStock, true
	case "coming-soon":
		return StatusComingSoon, true
	}
	return "", false
}

// Product is one immutable catalog record, sourced from the external document
// at startup. Prices are minor units (cents).
type Product struct {
	ID              string
	Name            string
	SKU             string
	Image           string
	OriginalPrice   int64
	DiscountedPrice int64 // 0 when absent
	Status          ProductStatus
	MegaCategory    string
	Sizes           []string
	IsNew           bool
	IsBestSeller    bool
}

// Purchasable reports whether the product can be added to a cart.
func (p Product) Purchasable() bool {
	return p.Status == StatusAvailable || p.Status == StatusFewLeft
}

// HasSizes reports whether the product requires a variant selection.
func (p Product) HasSizes() bool {
	return len(p.Sizes) > 0
}

// CartLine is one entry of the cart, keyed by product plus optional variant.
// UnitPrice is frozen at the moment the line is first created and does not
// track later catalog changes.
type CartLine struct {
	CartID    string    `json:"cartId"`
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	Variant   string    `json:"variant,omitempty"` // empty when the product has no variant
	UnitPrice int64     `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// LineTotal returns unit price times quantity.
func (l CartLine) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// CartLineID derives the composite cart key for a product and optional variant.
func CartLineID(productID, variant string) string {
	productID = strings.TrimSpace(productID)
	variant = strings.TrimSpace(variant)
	if variant == "" {
		return productID
	}
	return productID + "-" + variant
}

// Totals is the derived pricing snapshot for a cart. It is never stored;
// callers recompute it from the line set and the active discount rate.
type Totals struct {
	Subtotal        int64
	DiscountRate    float64
	DiscountAmount  int64
	DiscountedTotal int64
	DeliveryCharge  int64
	FinalTotal      int64
}

// Promotion is one entry of the static promo-code registry.
type Promotion struct {
	Code    string
	Rate    float64
	Message string
}

// FormatAmount renders minor units with exactly two decimals, e.g. 2500 -> "25.00".
func FormatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}

// AmountFromDecimal converts a decimal price (as found in the catalog document)
// to minor units, rounding half away from zero.
func AmountFromDecimal(value float64) int64 {
	if value >= 0 {
		return int64(value*100 + 0.5)
	}
	return -int64(-value*100 + 0.5)
}
