package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/darfidda/storefront/internal/domain"
	"github.com/darfidda/storefront/internal/repositories"
)

const (
	summaryHeader     = "--- Darfidda Order Details ---"
	summaryNoSize     = "no size"
	labelSubtotal     = "Subtotal"
	labelDiscount     = "Discount"
	labelAfterPromo   = "Total after discount"
	labelDelivery     = "Delivery"
	labelFinalTotal   = "Final total"
	summaryLineFormat = "%s (%s) x%d @ %s$\n"
)

// CheckoutServiceDeps bundles dependencies required to construct a CheckoutService implementation.
type CheckoutServiceDeps struct {
	Cart      CartService
	Submitter OrderSubmitter
	// Orders archives submitted orders. Optional; archive failures never fail a checkout.
	Orders repositories.OrderRepository
	Clock  func() time.Time
	// Reference generates order references. Defaults to ULIDs.
	Reference func() string
	Logger    func(context.Context, string, map[string]any)
}

type checkoutService struct {
	cart      CartService
	submitter OrderSubmitter
	orders    repositories.OrderRepository
	clock     func() time.Time
	reference func() string
	logger    func(context.Context, string, map[string]any)
}

// NewCheckoutService wires a CheckoutService over the cart and submission endpoint.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Cart == nil {
		return nil, errors.New("checkout service: cart service is required")
	}
	if deps.Submitter == nil {
		return nil, errors.New("checkout service: order submitter is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	reference := deps.Reference
	if reference == nil {
		reference = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &checkoutService{
		cart:      deps.Cart,
		submitter: deps.Submitter,
		orders:    deps.Orders,
		clock:     func() time.Time { return clock().UTC() },
		reference: reference,
		logger:    logger,
	}, nil
}

// BuildOrderSummary renders the plain-text order summary for the current cart.
// Line order follows insertion order, so the output is stable for a given cart.
func (s *checkoutService) BuildOrderSummary() (string, error) {
	lines := s.cart.Snapshot()
	if len(lines) == 0 {
		return "", ErrCheckoutEmptyCart
	}
	return renderSummary(lines, s.cart.Totals()), nil
}

// Checkout validates the customer, submits the order, archives it, and clears
// the cart. The cart is left untouched when submission fails.
func (s *checkoutService) Checkout(ctx context.Context, cmd CheckoutCommand) (CheckoutResult, error) {
	customer := domain.Customer{
		Name:    strings.TrimSpace(cmd.Customer.Name),
		Phone:   strings.TrimSpace(cmd.Customer.Phone),
		Address: strings.TrimSpace(cmd.Customer.Address),
	}
	if customer.Name == "" || customer.Phone == "" || customer.Address == "" {
		return CheckoutResult{}, ErrCheckoutInvalidCustomer
	}

	lines := s.cart.Snapshot()
	if len(lines) == 0 {
		return CheckoutResult{}, ErrCheckoutEmptyCart
	}

	totals := s.cart.Totals()
	promoCode := s.cart.PromoCode()
	summary := renderSummary(lines, totals)
	reference := s.reference()

	submission := OrderSubmission{
		Reference: reference,
		Name:      customer.Name,
		Phone:     customer.Phone,
		Address:   customer.Address,
		Message:   summary,
		PromoCode: promoCode,
		Lines:     lines,
	}
	if err := s.submitter.Submit(ctx, submission); err != nil {
		s.logger(ctx, "checkout.submission.failed", map[string]any{
			"reference": reference,
			"error":     err.Error(),
		})
		return CheckoutResult{}, fmt.Errorf("%w: %v", ErrCheckoutSubmission, err)
	}

	if s.orders != nil {
		record := domain.OrderRecord{
			Reference:   reference,
			Customer:    customer,
			Lines:       lines,
			Totals:      totals,
			PromoCode:   promoCode,
			Summary:     summary,
			SubmittedAt: s.clock(),
		}
		if err := s.orders.Insert(ctx, record); err != nil {
			s.logger(ctx, "checkout.archive.failed", map[string]any{
				"reference": reference,
				"error":     err.Error(),
			})
		}
	}

	if err := s.cart.Clear(ctx); err != nil {
		s.logger(ctx, "checkout.clear.failed", map[string]any{
			"reference": reference,
			"error":     err.Error(),
		})
	}

	s.logger(ctx, "checkout.completed", map[string]any{
		"reference":   reference,
		"final_total": totals.FinalTotal,
	})
	return CheckoutResult{
		Reference: reference,
		Summary:   summary,
		Totals:    totals,
	}, nil
}

func renderSummary(lines []domain.CartLine, totals domain.Totals) string {
	var b strings.Builder
	b.WriteString(summaryHeader)
	b.WriteString("\n")
	for _, line := range lines {
		variant := line.Variant
		if variant == "" {
			variant = summaryNoSize
		}
		fmt.Fprintf(&b, summaryLineFormat, line.Name, variant, line.Quantity, domain.FormatAmount(line.UnitPrice))
	}
	fmt.Fprintf(&b, "\n%s: %s$", labelSubtotal, domain.FormatAmount(totals.Subtotal))
	if totals.DiscountAmount > 0 {
		fmt.Fprintf(&b, "\n%s: -%s$", labelDiscount, domain.FormatAmount(totals.DiscountAmount))
	}
	fmt.Fprintf(&b, "\n%s: %s$", labelAfterPromo, domain.FormatAmount(totals.DiscountedTotal))
	fmt.Fprintf(&b, "\n%s: %s$", labelDelivery, domain.FormatAmount(totals.DeliveryCharge))
	fmt.Fprintf(&b, "\n%s: %s$", labelFinalTotal, domain.FormatAmount(totals.FinalTotal))
	return b.String()
}
