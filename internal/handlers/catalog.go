package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/darfidda/storefront/internal/domain"
	"github.com/darfidda/storefront/internal/platform/httpx"
	"github.com/darfidda/storefront/internal/services"
)

// CatalogHandlers exposes the read-only product catalogue endpoints.
type CatalogHandlers struct {
	catalog services.CatalogService
}

// NewCatalogHandlers constructs handlers serving the loaded catalogue.
func NewCatalogHandlers(catalog services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// Routes wires the /products endpoints onto the provided router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listProducts)
	r.Get("/{productId}", h.getProduct)
}

type productPayload struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	SKU             string   `json:"sku,omitempty"`
	Image           string   `json:"image,omitempty"`
	OriginalPrice   int64    `json:"originalPrice"`
	DiscountedPrice int64    `json:"discountedPrice,omitempty"`
	Status          string   `json:"status"`
	MegaCategory    string   `json:"megaCategory,omitempty"`
	Sizes           []string `json:"sizes,omitempty"`
	IsNew           bool     `json:"isNew,omitempty"`
	IsBestSeller    bool     `json:"isBestSeller,omitempty"`
	Purchasable     bool     `json:"purchasable"`
}

type productListResponse struct {
	Products []productPayload `json:"products"`
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	category := r.URL.Query().Get("category")
	products, err := h.catalog.ProductsByCategory(ctx, category)
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}

	payload := productListResponse{Products: make([]productPayload, 0, len(products))}
	for _, product := range products {
		payload.Products = append(payload.Products, buildProductPayload(product))
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	product, err := h.catalog.FindByID(ctx, chi.URLParam(r, "productId"))
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildProductPayload(product))
}

func (h *CatalogHandlers) writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCatalogProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCatalogNotLoaded):
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalogue has not been loaded", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_server_error", "internal server error", http.StatusInternalServerError))
	}
}

func buildProductPayload(product domain.Product) productPayload {
	return productPayload{
		ID:              product.ID,
		Name:            product.Name,
		SKU:             product.SKU,
		Image:           product.Image,
		OriginalPrice:   product.OriginalPrice,
		DiscountedPrice: product.DiscountedPrice,
		Status:          string(product.Status),
		MegaCategory:    product.MegaCategory,
		Sizes:           product.Sizes,
		IsNew:           product.IsNew,
		IsBestSeller:    product.IsBestSeller,
		Purchasable:     product.Purchasable(),
	}
}
