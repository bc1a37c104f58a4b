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

const maxCheckoutBodySize = 32 * 1024

// CheckoutHandlers exposes the order summary and checkout submission endpoints.
type CheckoutHandlers struct {
	checkout services.CheckoutService
}

// NewCheckoutHandlers constructs handlers over the checkout service.
func NewCheckoutHandlers(checkout services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{checkout: checkout}
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/summary", h.getSummary)
	r.Post("/", h.submit)
}

type checkoutRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type checkoutResponse struct {
	Reference string        `json:"reference"`
	Summary   string        `json:"summary"`
	Totals    totalsPayload `json:"totals"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

func (h *CheckoutHandlers) getSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
		return
	}

	summary, err := h.checkout.BuildOrderSummary()
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, summaryResponse{Summary: summary})
}

func (h *CheckoutHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req checkoutRequest
	if err := decodeJSONBody(r, maxCheckoutBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	result, err := h.checkout.Checkout(ctx, services.CheckoutCommand{
		Customer: domain.Customer{
			Name:    req.Name,
			Phone:   req.Phone,
			Address: req.Address,
		},
	})
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, checkoutResponse{
		Reference: result.Reference,
		Summary:   result.Summary,
		Totals:    buildTotalsPayload(result.Totals),
	})
}

func (h *CheckoutHandlers) writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCheckoutEmptyCart):
		httpx.WriteError(ctx, w, httpx.NewError("cart_empty", "cart is empty; add products before checkout", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutInvalidCustomer):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "name, phone, and address are required", http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutSubmission):
		httpx.WriteError(ctx, w, httpx.NewError("submission_failed", "order could not be delivered; try again", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_server_error", "internal server error", http.StatusInternalServerError))
	}
}
