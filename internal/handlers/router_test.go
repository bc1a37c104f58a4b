package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/darfidda/storefront/internal/domain"
	"github.com/darfidda/storefront/internal/repositories/memory"
	"github.com/darfidda/storefront/internal/services"
)

type fixedCatalogRepository struct {
	products []domain.Product
}

func (s *fixedCatalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products, nil
}

type recordingSubmitter struct {
	submissions []services.OrderSubmission
	err         error
}

func (s *recordingSubmitter) Submit(ctx context.Context, order services.OrderSubmission) error {
	if s.err != nil {
		return s.err
	}
	s.submissions = append(s.submissions, order)
	return nil
}

type fixture struct {
	router    chi.Router
	cart      services.CartService
	submitter *recordingSubmitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products: &fixedCatalogRepository{products: []domain.Product{
			{
				ID:              "tshirt-01",
				Name:            "Classic Tee",
				OriginalPrice:   2500,
				DiscountedPrice: 1999,
				Status:          domain.StatusAvailable,
				MegaCategory:    "men",
				Sizes:           []string{"S", "M", "L"},
			},
			{
				ID:            "mug-02",
				Name:          "Logo Mug",
				OriginalPrice: 1250,
				Status:        domain.StatusFewLeft,
				MegaCategory:  "accessories",
			},
		}},
	})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	if err := catalog.Load(context.Background()); err != nil {
		t.Fatalf("catalog load: %v", err)
	}

	pricing, err := services.NewPricingEngine(services.PricingEngineDeps{DeliveryCharge: 1000})
	if err != nil {
		t.Fatalf("NewPricingEngine: %v", err)
	}

	promotions, err := services.NewPromotionService(services.PromotionServiceDeps{
		Codes: []domain.Promotion{
			{Code: "DARFIDDA10", Rate: 0.10, Message: "Promo code applied! You get 10% off."},
			{Code: "WELCOMENEW", Rate: 0.20, Message: "Welcome! You get 20% off your first order."},
		},
	})
	if err != nil {
		t.Fatalf("NewPromotionService: %v", err)
	}

	cart, err := services.NewCartService(services.CartServiceDeps{
		Carts:      memory.NewCartRepository(),
		Catalog:    catalog,
		Pricing:    pricing,
		Promotions: promotions,
		Clock:      func() time.Time { return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewCartService: %v", err)
	}

	submitter := &recordingSubmitter{}
	checkout, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Cart:      cart,
		Submitter: submitter,
		Reference: func() string { return "ORDER-1" },
	})
	if err != nil {
		t.Fatalf("NewCheckoutService: %v", err)
	}

	router := NewRouter(
		WithProductRoutes(NewCatalogHandlers(catalog).Routes),
		WithCartRoutes(NewCartHandlers(cart).Routes),
		WithCheckoutRoutes(NewCheckoutHandlers(checkout).Routes),
	)

	return &fixture{router: router, cart: cart, submitter: submitter}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUnknownRouteReturnsJSON(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/nothing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var payload map[string]any
	decodeBody(t, rec, &payload)
	if payload["error"] != "route_not_found" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestListProducts(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/products", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Products []map[string]any `json:"products"`
	}
	decodeBody(t, rec, &payload)
	if len(payload.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(payload.Products))
	}

	rec = f.do(t, http.MethodGet, "/api/v1/products?category=men", nil)
	decodeBody(t, rec, &payload)
	if len(payload.Products) != 1 {
		t.Fatalf("expected 1 men product, got %d", len(payload.Products))
	}
}

func TestGetProduct(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/products/mug-02", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload map[string]any
	decodeBody(t, rec, &payload)
	if payload["name"] != "Logo Mug" {
		t.Fatalf("unexpected product: %v", payload)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/products/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", rec.Code)
	}
}

func TestCartLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/cart/items", map[string]string{
		"productId": "tshirt-01",
		"variant":   "M",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var cart cartResponse
	decodeBody(t, rec, &cart)
	if cart.ItemCount != 1 || len(cart.Lines) != 1 {
		t.Fatalf("unexpected cart: %+v", cart)
	}
	if cart.Lines[0].UnitPrice != 1999 {
		t.Fatalf("expected discounted unit price, got %d", cart.Lines[0].UnitPrice)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/cart/items", map[string]string{
		"productId": "tshirt-01",
		"variant":   "M",
	})
	decodeBody(t, rec, &cart)
	if cart.ItemCount != 2 || len(cart.Lines) != 1 {
		t.Fatalf("expected merged line, got %+v", cart)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/cart", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	decodeBody(t, rec, &cart)
	if cart.Totals.FinalTotal != 2*1999+1000 {
		t.Fatalf("unexpected final total %d", cart.Totals.FinalTotal)
	}

	rec = f.do(t, http.MethodDelete, "/api/v1/cart/items/tshirt-01-M", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	decodeBody(t, rec, &cart)
	if cart.ItemCount != 0 {
		t.Fatalf("expected empty cart after removal, got %+v", cart)
	}
}

func TestAddItemValidationErrors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/cart/items", map[string]string{"productId": "ghost"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown product, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/cart/items", map[string]string{"productId": "tshirt-01"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing size, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/cart/items", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing body, got %d", rec.Code)
	}
}

func TestApplyPromotionOverHTTP(t *testing.T) {
	f := newFixture(t)

	f.do(t, http.MethodPost, "/api/v1/cart/items", map[string]string{"productId": "mug-02"})

	rec := f.do(t, http.MethodPost, "/api/v1/cart/promotion", map[string]string{"code": "darfidda10"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var promo promotionResponse
	decodeBody(t, rec, &promo)
	if promo.Code != "DARFIDDA10" || promo.Rate != 0.10 {
		t.Fatalf("unexpected promotion: %+v", promo)
	}
	if promo.Message != "Promo code applied! You get 10% off." {
		t.Fatalf("expected registry message, got %q", promo.Message)
	}
	if promo.Totals.DiscountAmount != 125 {
		t.Fatalf("expected discount 125, got %d", promo.Totals.DiscountAmount)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/cart/promotion", map[string]string{"code": "NOPE"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for invalid code, got %d", rec.Code)
	}
	if f.cart.PromoCode() != "" {
		t.Fatal("expected invalid code to reset promotion")
	}
}

func TestCheckoutOverHTTP(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/checkout", map[string]string{
		"name": "Amina K", "phone": "+212600000000", "address": "12 Rue Example",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for empty cart, got %d", rec.Code)
	}

	f.do(t, http.MethodPost, "/api/v1/cart/items", map[string]string{"productId": "mug-02"})

	rec = f.do(t, http.MethodGet, "/api/v1/checkout/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 summary, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/checkout", map[string]string{
		"name": "Amina K", "phone": "", "address": "12 Rue Example",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing phone, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/checkout", map[string]string{
		"name": "Amina K", "phone": "+212600000000", "address": "12 Rue Example",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var result checkoutResponse
	decodeBody(t, rec, &result)
	if result.Reference != "ORDER-1" {
		t.Fatalf("unexpected reference %q", result.Reference)
	}
	if len(f.submitter.submissions) != 1 {
		t.Fatalf("expected one submission, got %d", len(f.submitter.submissions))
	}
	if f.cart.ItemCount() != 0 {
		t.Fatal("expected cart cleared after checkout")
	}
}
