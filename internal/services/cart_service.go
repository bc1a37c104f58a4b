package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domain "github.com/darfidda/storefront/internal/domain"
	"github.com/darfidda/storefront/internal/repositories"
)

// CartServiceDeps bundles dependencies required to construct a CartService implementation.
type CartServiceDeps struct {
	Carts      repositories.CartRepository
	Catalog    CatalogService
	Pricing    *PricingEngine
	Promotions PromotionService
	Clock      func() time.Time
	Logger     func(context.Context, string, map[string]any)
}

type cartService struct {
	repo       repositories.CartRepository
	catalog    CatalogService
	pricing    *PricingEngine
	promotions PromotionService
	clock      func() time.Time
	logger     func(context.Context, string, map[string]any)

	mu        sync.Mutex
	lines     []domain.CartLine
	promo     domain.Promotion
	observers []func(CartState)
}

// NewCartService wires a CartService backed by the provided repository and services.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Carts == nil {
		return nil, ErrCartRepositoryMissing
	}
	if deps.Catalog == nil {
		return nil, ErrCartCatalogMissing
	}
	if deps.Pricing == nil {
		return nil, errors.New("cart service: pricing engine is required")
	}
	if deps.Promotions == nil {
		return nil, errors.New("cart service: promotion service is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &cartService{
		repo:       deps.Carts,
		catalog:    deps.Catalog,
		pricing:    deps.Pricing,
		promotions: deps.Promotions,
		clock:      func() time.Time { return clock().UTC() },
		logger:     logger,
	}, nil
}

// Restore hydrates the cart from durable storage. Lines that fail validation
// are dropped rather than aborting the whole restore, and the pruned snapshot
// is written back so storage converges with memory.
func (s *cartService) Restore(ctx context.Context) error {
	stored, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("cart service: restore: %w", err)
	}

	kept := make([]domain.CartLine, 0, len(stored))
	dropped := 0
	for _, line := range stored {
		if !validLine(line) {
			dropped++
			continue
		}
		line.CartID = domain.CartLineID(line.ProductID, line.Variant)
		kept = append(kept, line)
	}

	s.mu.Lock()
	s.lines = kept
	s.promo = domain.Promotion{}
	s.mu.Unlock()

	if dropped > 0 {
		s.logger(ctx, "cart.restore.pruned", map[string]any{"dropped": dropped, "kept": len(kept)})
		s.persist(ctx)
	}

	s.logger(ctx, "cart.restored", map[string]any{"lines": len(kept)})
	s.notify()
	return nil
}

// AddLine adds one unit of the product, merging into an existing line when the
// product and variant already sit in the cart. The unit price is frozen when
// the line is first created.
func (s *cartService) AddLine(ctx context.Context, productID, variant string) (domain.CartLine, error) {
	productID = strings.TrimSpace(productID)
	variant = strings.TrimSpace(variant)
	if productID == "" {
		return domain.CartLine{}, fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}

	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		return domain.CartLine{}, err
	}
	if !product.Purchasable() {
		return domain.CartLine{}, fmt.Errorf("%w: %q has status %s", ErrCartProductUnavailable, productID, product.Status)
	}
	if product.HasSizes() {
		if variant == "" {
			return domain.CartLine{}, fmt.Errorf("%w: size selection is required for %q", ErrCartInvalidInput, productID)
		}
		if !containsFold(product.Sizes, variant) {
			return domain.CartLine{}, fmt.Errorf("%w: unknown size %q for %q", ErrCartInvalidInput, variant, productID)
		}
	} else if variant != "" {
		return domain.CartLine{}, fmt.Errorf("%w: %q has no size variants", ErrCartInvalidInput, productID)
	}

	cartID := domain.CartLineID(productID, variant)

	s.mu.Lock()
	var result domain.CartLine
	merged := false
	for i := range s.lines {
		if s.lines[i].CartID == cartID {
			s.lines[i].Quantity++
			result = s.lines[i]
			merged = true
			break
		}
	}
	if !merged {
		result = domain.CartLine{
			CartID:    cartID,
			ProductID: productID,
			Name:      product.Name,
			Variant:   variant,
			UnitPrice: s.pricing.EffectivePrice(product),
			Quantity:  1,
			AddedAt:   s.clock(),
		}
		s.lines = append(s.lines, result)
	}
	s.mu.Unlock()

	s.logger(ctx, "cart.line.added", map[string]any{
		"cart_id":  cartID,
		"merged":   merged,
		"quantity": result.Quantity,
	})
	s.persist(ctx)
	s.notify()
	return result, nil
}

// RemoveLine deletes the identified line. Removing an absent line is a no-op.
func (s *cartService) RemoveLine(ctx context.Context, cartID string) error {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return fmt.Errorf("%w: cart id is required", ErrCartInvalidInput)
	}

	s.mu.Lock()
	removed := false
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.CartID == cartID {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	s.lines = kept
	s.mu.Unlock()

	if !removed {
		return nil
	}

	s.logger(ctx, "cart.line.removed", map[string]any{"cart_id": cartID})
	s.persist(ctx)
	s.notify()
	return nil
}

// Clear empties the cart, resets the promotion, and erases the storage slot.
func (s *cartService) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.lines = nil
	s.promo = domain.Promotion{}
	s.mu.Unlock()

	if err := s.repo.Erase(ctx); err != nil {
		s.logger(ctx, "cart.erase.failed", map[string]any{"error": err.Error()})
	}
	s.logger(ctx, "cart.cleared", nil)
	s.notify()
	return nil
}

// ApplyPromoCode resolves the submitted code. An unknown code resets any
// previously applied discount before reporting the error.
func (s *cartService) ApplyPromoCode(ctx context.Context, code string) (domain.Promotion, error) {
	promo, err := s.promotions.Resolve(ctx, code)
	if err != nil {
		s.mu.Lock()
		s.promo = domain.Promotion{}
		s.mu.Unlock()
		s.notify()
		return domain.Promotion{}, err
	}

	s.mu.Lock()
	s.promo = promo
	s.mu.Unlock()
	s.notify()
	return promo, nil
}

// Snapshot returns a copy of the current cart lines.
func (s *cartService) Snapshot() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// ItemCount returns the total unit count across all lines.
func (s *cartService) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// Totals computes the current totals breakdown including any applied promotion.
func (s *cartService) Totals() domain.Totals {
	s.mu.Lock()
	lines := make([]domain.CartLine, len(s.lines))
	copy(lines, s.lines)
	rate := s.promo.Rate
	s.mu.Unlock()

	totals, err := s.pricing.ComputeTotals(lines, rate)
	if err != nil {
		// Stored lines are validated on entry, so this only trips on a
		// corrupted discount rate. Fall back to an undiscounted view.
		totals, _ = s.pricing.ComputeTotals(lines, 0)
	}
	return totals
}

// PromoCode returns the currently applied promo code, empty when none.
func (s *cartService) PromoCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promo.Code
}

// State assembles the full read-only view of the cart. Lines, count, totals,
// and promo code are captured under a single lock acquisition so they all
// describe the same instant.
func (s *cartService) State() CartState {
	s.mu.Lock()
	lines := make([]domain.CartLine, len(s.lines))
	copy(lines, s.lines)
	rate := s.promo.Rate
	code := s.promo.Code
	s.mu.Unlock()

	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	totals, err := s.pricing.ComputeTotals(lines, rate)
	if err != nil {
		totals, _ = s.pricing.ComputeTotals(lines, 0)
	}
	return CartState{
		Lines:     lines,
		ItemCount: count,
		Totals:    totals,
		PromoCode: code,
	}
}

// OnChange registers an observer invoked after every successful mutation.
func (s *cartService) OnChange(fn func(CartState)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// persist writes the current snapshot through to durable storage. A write
// failure is logged but does not roll back the in-memory mutation.
func (s *cartService) persist(ctx context.Context) {
	snapshot := s.Snapshot()
	if err := s.repo.Save(ctx, snapshot); err != nil {
		s.logger(ctx, "cart.persist.failed", map[string]any{"error": err.Error()})
	}
}

func (s *cartService) notify() {
	state := s.State()
	s.mu.Lock()
	observers := make([]func(CartState), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()
	for _, fn := range observers {
		fn(state)
	}
}

func validLine(line domain.CartLine) bool {
	if strings.TrimSpace(line.ProductID) == "" {
		return false
	}
	if line.Quantity <= 0 {
		return false
	}
	if line.UnitPrice < 0 {
		return false
	}
	return true
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), target) {
			return true
		}
	}
	return false
}
