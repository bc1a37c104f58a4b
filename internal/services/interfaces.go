package services

import (
	"context"
	"errors"

	domain "github.com/darfidda/storefront/internal/domain"
)

var (
	// ErrCatalogRepositoryMissing indicates the catalog service was constructed without a repository.
	ErrCatalogRepositoryMissing = errors.New("catalog service: repository is required")
	// ErrCatalogLoad indicates the catalogue document could not be fetched or validated.
	ErrCatalogLoad = errors.New("catalog service: load failed")
	// ErrCatalogNotLoaded is returned when the catalogue is queried before a successful load.
	ErrCatalogNotLoaded = errors.New("catalog service: catalogue not loaded")
	// ErrCatalogProductNotFound is returned when no product matches the requested identifier.
	ErrCatalogProductNotFound = errors.New("catalog service: product not found")

	// ErrPromotionInvalidCode is returned when the submitted code matches no known promotion.
	ErrPromotionInvalidCode = errors.New("promotion service: invalid code")

	// ErrCartRepositoryMissing indicates the cart service was constructed without persistence.
	ErrCartRepositoryMissing = errors.New("cart service: repository is required")
	// ErrCartCatalogMissing indicates the cart service was constructed without a catalogue.
	ErrCartCatalogMissing = errors.New("cart service: catalog service is required")
	// ErrCartInvalidInput signals bad request data such as a blank product identifier.
	ErrCartInvalidInput = errors.New("cart service: invalid input")
	// ErrCartProductUnavailable is returned when the product cannot be added to the cart.
	ErrCartProductUnavailable = errors.New("cart service: product unavailable")

	// ErrCheckoutEmptyCart is returned when checkout is attempted with no cart lines.
	ErrCheckoutEmptyCart = errors.New("checkout service: cart is empty")
	// ErrCheckoutInvalidCustomer signals missing customer contact details.
	ErrCheckoutInvalidCustomer = errors.New("checkout service: invalid customer details")
	// ErrCheckoutSubmission wraps failures while delivering the order to the submission endpoint.
	ErrCheckoutSubmission = errors.New("checkout service: submission failed")
)

// CatalogService exposes the immutable product catalogue loaded at startup.
type CatalogService interface {
	// Load fetches and validates the catalogue. It must succeed before queries are served.
	Load(ctx context.Context) error
	Products(ctx context.Context) ([]domain.Product, error)
	ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
	FindByID(ctx context.Context, productID string) (domain.Product, error)
}

// PromotionService resolves submitted promo codes to discount rates.
type PromotionService interface {
	Resolve(ctx context.Context, code string) (domain.Promotion, error)
}

// CartState is the read-only view handed to change observers and API handlers.
type CartState struct {
	Lines     []domain.CartLine
	ItemCount int
	Totals    domain.Totals
	PromoCode string
}

// CartService owns the single mutable cart, including promo state and persistence.
type CartService interface {
	// Restore hydrates the cart from durable storage, dropping malformed lines.
	Restore(ctx context.Context) error
	AddLine(ctx context.Context, productID, variant string) (domain.CartLine, error)
	// RemoveLine deletes the identified line. Removing an absent line is a no-op.
	RemoveLine(ctx context.Context, cartID string) error
	Clear(ctx context.Context) error
	ApplyPromoCode(ctx context.Context, code string) (domain.Promotion, error)
	Snapshot() []domain.CartLine
	ItemCount() int
	Totals() domain.Totals
	PromoCode() string
	State() CartState
	// OnChange registers an observer invoked after every successful mutation.
	OnChange(fn func(CartState))
}

// OrderSubmission is the payload delivered to the external order endpoint.
// PromoCode carries the normalised applied code, empty when none, and Lines
// carries the structured cart alongside the rendered summary in Message.
type OrderSubmission struct {
	Reference string
	Name      string
	Phone     string
	Address   string
	Message   string
	PromoCode string
	Lines     []domain.CartLine
}

// OrderSubmitter delivers a composed order to the external endpoint.
type OrderSubmitter interface {
	Submit(ctx context.Context, order OrderSubmission) error
}

// CheckoutCommand carries the customer details collected on the checkout form.
type CheckoutCommand struct {
	Customer domain.Customer
}

// CheckoutResult reports the submitted order back to the caller.
type CheckoutResult struct {
	Reference string
	Summary   string
	Totals    domain.Totals
}

// CheckoutService composes the order summary, submits it, and clears the cart on success.
type CheckoutService interface {
	Checkout(ctx context.Context, cmd CheckoutCommand) (CheckoutResult, error)
	// BuildOrderSummary renders the deterministic plain-text order summary for the current cart.
	BuildOrderSummary() (string, error)
}
