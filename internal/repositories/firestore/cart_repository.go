package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/darfidda/storefront/internal/domain"
	pfirestore "github.com/darfidda/storefront/internal/platform/firestore"
)

// CartRepository persists the durable cart slot as a single Firestore document.
type CartRepository struct {
	provider   *pfirestore.Provider
	collection string
	storageKey string
}

type cartDocument struct {
	Lines     []cartLineDocument `firestore:"lines"`
	UpdatedAt time.Time          `firestore:"updatedAt"`
}

type cartLineDocument struct {
	CartID    string    `firestore:"cartId"`
	ProductID string    `firestore:"productId"`
	Name      string    `firestore:"name"`
	Variant   string    `firestore:"variant,omitempty"`
	UnitPrice int64     `firestore:"unitPrice"`
	Quantity  int       `firestore:"quantity"`
	AddedAt   time.Time `firestore:"addedAt"`
}

// NewCartRepository constructs a Firestore-backed cart slot stored under collection/storageKey.
func NewCartRepository(provider *pfirestore.Provider, collection, storageKey string) (*CartRepository, error) {
	if provider == nil {
		return nil, errors.New("cart repository requires firestore provider")
	}
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return nil, errors.New("cart repository: collection is required")
	}
	storageKey = strings.TrimSpace(storageKey)
	if storageKey == "" {
		return nil, errors.New("cart repository: storage key is required")
	}
	return &CartRepository{
		provider:   provider,
		collection: collection,
		storageKey: storageKey,
	}, nil
}

// Load reads the cart slot document. A missing document yields an empty slice.
func (r *CartRepository) Load(ctx context.Context) ([]domain.CartLine, error) {
	if r == nil || r.provider == nil {
		return nil, errors.New("cart repository not initialised")
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, err := client.Collection(r.collection).Doc(r.storageKey).Get(ctx)
	if err != nil {
		wrapped := pfirestore.WrapError("cart repository: load", err)
		var repoErr *pfirestore.Error
		if errors.As(wrapped, &repoErr) && repoErr.IsNotFound() {
			return []domain.CartLine{}, nil
		}
		return nil, wrapped
	}

	var doc cartDocument
	if err := snapshot.DataTo(&doc); err != nil {
		return nil, pfirestore.WrapError("cart repository: decode", err)
	}

	lines := make([]domain.CartLine, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		lines = append(lines, domain.CartLine{
			CartID:    line.CartID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Variant:   line.Variant,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			AddedAt:   line.AddedAt.UTC(),
		})
	}
	return lines, nil
}

// Save replaces the cart slot document with the provided snapshot.
func (r *CartRepository) Save(ctx context.Context, lines []domain.CartLine) error {
	if r == nil || r.provider == nil {
		return errors.New("cart repository not initialised")
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}

	doc := cartDocument{
		Lines:     make([]cartLineDocument, 0, len(lines)),
		UpdatedAt: time.Now().UTC(),
	}
	for _, line := range lines {
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

	if _, err := client.Collection(r.collection).Doc(r.storageKey).Set(ctx, doc); err != nil {
		return pfirestore.WrapError("cart repository: save", err)
	}
	return nil
}

// Erase deletes the cart slot document. Deleting a missing document is not an error.
func (r *CartRepository) Erase(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return errors.New("cart repository not initialised")
	}

	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}

	if _, err := client.Collection(r.collection).Doc(r.storageKey).Delete(ctx); err != nil {
		wrapped := pfirestore.WrapError("cart repository: erase", err)
		var repoErr *pfirestore.Error
		if errors.As(wrapped, &repoErr) && repoErr.IsNotFound() {
			return nil
		}
		return wrapped
	}
	return nil
}
