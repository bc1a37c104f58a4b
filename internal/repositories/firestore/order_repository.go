package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/darfidda/storefront/internal/domain"
	pfirestore "github.com/darfidda/storefront/internal/platform/firestore"
)

// OrderRepository archives submitted orders as Firestore documents keyed by order reference.
type OrderRepository struct {
	provider   *pfirestore.Provider
	collection string
}

type orderDocument struct {
	Reference   string             `firestore:"reference"`
	Customer    customerDocument   `firestore:"customer"`
	Lines       []cartLineDocument `firestore:"lines"`
	Totals      totalsDocument     `firestore:"totals"`
	PromoCode   string             `firestore:"promoCode,omitempty"`
	Summary     string             `firestore:"summary"`
	SubmittedAt time.Time          `firestore:"submittedAt"`
}

type customerDocument struct {
	Name    string `firestore:"name"`
	Phone   string `firestore:"phone"`
	Address string `firestore:"address"`
}

type totalsDocument struct {
	Subtotal        int64   `firestore:"subtotal"`
	DiscountRate    float64 `firestore:"discountRate"`
	DiscountAmount  int64   `firestore:"discountAmount"`
	DiscountedTotal int64   `firestore:"discountedTotal"`
	DeliveryCharge  int64   `firestore:"deliveryCharge"`
	FinalTotal      int64   `firestore:"finalTotal"`
}

// NewOrderRepository constructs a Firestore-backed order archive.
func NewOrderRepository(provider *pfirestore.Provider, collection string) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return nil, errors.New("order repository: collection is required")
	}
	return &OrderRepository{
		provider:   provider,
		collection: collection,
	}, nil
}

// Insert writes the order record under its reference.
func (r *OrderRepository) Insert(ctx context.Context, order domain.OrderRecord) error {
	if r == nil || r.provider == nil {
		return errors.New("order repository not initialised")
	}

	reference := strings.TrimSpace(order.Reference)
	if reference == "" {
		return errors.New("order repository: reference is required")
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}

	doc := orderDocument{
		Reference: reference,
		Customer: customerDocument{
			Name:    order.Customer.Name,
			Phone:   order.Customer.Phone,
			Address: order.Customer.Address,
		},
		Lines: make([]cartLineDocument, 0, len(order.Lines)),
		Totals: totalsDocument{
			Subtotal:        order.Totals.Subtotal,
			DiscountRate:    order.Totals.DiscountRate,
			DiscountAmount:  order.Totals.DiscountAmount,
			DiscountedTotal: order.Totals.DiscountedTotal,
			DeliveryCharge:  order.Totals.DeliveryCharge,
			FinalTotal:      order.Totals.FinalTotal,
		},
		PromoCode:   order.PromoCode,
		Summary:     order.Summary,
		SubmittedAt: order.SubmittedAt.UTC(),
	}
	for _, line := range order.Lines {
		doc.Lines = append(doc.Lines, cartLineDocument{
			CartID:    line.CartID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Variant:   line.Variant,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			AddedAt:   line.AddedAt.UTC(),
		})
	}

	if _, err := client.Collection(r.collection).Doc(reference).Create(ctx, doc); err != nil {
		return pfirestore.WrapError("order repository: insert", err)
	}
	return nil
}
