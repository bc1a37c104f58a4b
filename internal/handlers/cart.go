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

const maxCartBodySize = 16 * 1024

// CartHandlers exposes the cart endpoints backed by the single-session cart service.
type CartHandlers struct {
	carts services.CartService
}

// NewCartHandlers constructs handlers over the cart service.
func NewCartHandlers(carts services.CartService) *CartHandlers {
	return &CartHandlers{carts: carts}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Post("/items", h.addItem)
	r.Delete("/items/{cartItemId}", h.removeItem)
	r.Post("/promotion", h.applyPromotion)
}

type cartLinePayload struct {
	CartID    string `json:"cartId"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Variant   string `json:"variant,omitempty"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal int64  `json:"lineTotal"`
}

type totalsPayload struct {
	Subtotal        int64   `json:"subtotal"`
	DiscountRate    float64 `json:"discountRate"`
	DiscountAmount  int64   `json:"discountAmount"`
	DiscountedTotal int64   `json:"discountedTotal"`
	DeliveryCharge  int64   `json:"deliveryCharge"`
	FinalTotal      int64   `json:"finalTotal"`
}

type cartResponse struct {
	Lines     []cartLinePayload `json:"lines"`
	ItemCount int               `json:"itemCount"`
	Totals    totalsPayload     `json:"totals"`
	PromoCode string            `json:"promoCode,omitempty"`
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Variant   string `json:"variant"`
}

type applyPromotionRequest struct {
	Code string `json:"code"`
}

type promotionResponse struct {
	Code    string        `json:"code"`
	Rate    float64       `json:"rate"`
	Message string        `json:"message"`
	Totals  totalsPayload `json:"totals"`
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartResponse(h.carts.State()))
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req addItemRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	if _, err := h.carts.AddLine(ctx, req.ProductID, req.Variant); err != nil {
		h.writeCartError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, buildCartResponse(h.carts.State()))
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	if err := h.carts.RemoveLine(ctx, chi.URLParam(r, "cartItemId")); err != nil {
		h.writeCartError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, buildCartResponse(h.carts.State()))
}

func (h *CartHandlers) applyPromotion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req applyPromotionRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	promo, err := h.carts.ApplyPromoCode(ctx, req.Code)
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}

	totals := h.carts.Totals()
	writeJSONResponse(w, http.StatusOK, promotionResponse{
		Code:    promo.Code,
		Rate:    promo.Rate,
		Message: promo.Message,
		Totals:  buildTotalsPayload(totals),
	})
}

func (h *CartHandlers) writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCatalogProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCartProductUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("product_unavailable", "product cannot be purchased", http.StatusConflict))
	case errors.Is(err, services.ErrPromotionInvalidCode):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_promo_code", "promo code is not valid", http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrCatalogNotLoaded):
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalogue has not been loaded", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_server_error", "internal server error", http.StatusInternalServerError))
	}
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		return
	}
	httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
}

func buildCartResponse(state services.CartState) cartResponse {
	resp := cartResponse{
		Lines:     make([]cartLinePayload, 0, len(state.Lines)),
		ItemCount: state.ItemCount,
		Totals:    buildTotalsPayload(state.Totals),
		PromoCode: state.PromoCode,
	}
	for _, line := range state.Lines {
		resp.Lines = append(resp.Lines, cartLinePayload{
			CartID:    line.CartID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Variant:   line.Variant,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal(),
		})
	}
	return resp
}

func buildTotalsPayload(totals domain.Totals) totalsPayload {
	return totalsPayload{
		Subtotal:        totals.Subtotal,
		DiscountRate:    totals.DiscountRate,
		DiscountAmount:  totals.DiscountAmount,
		DiscountedTotal: totals.DiscountedTotal,
		DeliveryCharge:  totals.DeliveryCharge,
		FinalTotal:      totals.FinalTotal,
	}
}
