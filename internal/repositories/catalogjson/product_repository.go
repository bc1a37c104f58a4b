package catalogjson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	domain "github.com/darfidda/storefront/internal/domain"
)

const maxDocumentBytes = 8 << 20

// ProductRepository reads the product catalogue from a static JSON document,
// served either from the local filesystem or over HTTP.
type ProductRepository struct {
	source string
	client *http.Client
}

type productDocument struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	SKU             string   `json:"sku"`
	Image           string   `json:"image"`
	OriginalPrice   float64  `json:"originalPrice"`
	DiscountedPrice *float64 `json:"discountedPrice"`
	Status          string   `json:"status"`
	MegaCategory    string   `json:"megaCategory"`
	Sizes           []string `json:"sizes"`
	IsNew           bool     `json:"isNew"`
	IsBestSeller    bool     `json:"isBestSeller"`
}

// NewProductRepository constructs a repository reading from the given source.
// A source starting with http:// or https:// is fetched over the network,
// anything else is treated as a filesystem path.
func NewProductRepository(source string, timeout time.Duration) (*ProductRepository, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, errors.New("catalog repository: source is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ProductRepository{
		source: source,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// ListProducts fetches and decodes the catalogue document.
func (r *ProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if r == nil {
		return nil, errors.New("catalog repository not initialised")
	}

	raw, err := r.fetch(ctx)
	if err != nil {
		return nil, err
	}

	var docs []productDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("catalog repository: decode %s: %w", r.source, err)
	}

	products := make([]domain.Product, 0, len(docs))
	for i, doc := range docs {
		product, err := doc.toDomain()
		if err != nil {
			return nil, fmt.Errorf("catalog repository: entry %d: %w", i, err)
		}
		products = append(products, product)
	}
	return products, nil
}

func (r *ProductRepository) fetch(ctx context.Context) ([]byte, error) {
	if strings.HasPrefix(r.source, "http://") || strings.HasPrefix(r.source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.source, nil)
		if err != nil {
			return nil, fmt.Errorf("catalog repository: build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := r.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("catalog repository: fetch %s: %w", r.source, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("catalog repository: fetch %s: unexpected status %d", r.source, resp.StatusCode)
		}
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
		if err != nil {
			return nil, fmt.Errorf("catalog repository: read %s: %w", r.source, err)
		}
		return raw, nil
	}

	raw, err := os.ReadFile(r.source)
	if err != nil {
		return nil, fmt.Errorf("catalog repository: read %s: %w", r.source, err)
	}
	return raw, nil
}

func (d productDocument) toDomain() (domain.Product, error) {
	id := strings.TrimSpace(d.ID)
	if id == "" {
		return domain.Product{}, errors.New("product id is required")
	}
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return domain.Product{}, fmt.Errorf("product %s: name is required", id)
	}
	if d.OriginalPrice <= 0 {
		return domain.Product{}, fmt.Errorf("product %s: original price must be positive", id)
	}
	original := domain.AmountFromDecimal(d.OriginalPrice)

	status, ok := domain.NormalizeProductStatus(d.Status)
	if !ok {
		return domain.Product{}, fmt.Errorf("product %s: unknown status %q", id, d.Status)
	}

	var discounted int64
	if d.DiscountedPrice != nil {
		if *d.DiscountedPrice < 0 {
			return domain.Product{}, fmt.Errorf("product %s: negative discounted price", id)
		}
		discounted = domain.AmountFromDecimal(*d.DiscountedPrice)
		if discounted > original {
			return domain.Product{}, fmt.Errorf("product %s: discounted price exceeds original price", id)
		}
	}

	sizes := make([]string, 0, len(d.Sizes))
	for _, size := range d.Sizes {
		if trimmed := strings.TrimSpace(size); trimmed != "" {
			sizes = append(sizes, trimmed)
		}
	}

	return domain.Product{
		ID:              id,
		Name:            name,
		SKU:             strings.TrimSpace(d.SKU),
		Image:           strings.TrimSpace(d.Image),
		OriginalPrice:   original,
		DiscountedPrice: discounted,
		Status:          status,
		MegaCategory:    strings.TrimSpace(d.MegaCategory),
		Sizes:           sizes,
		IsNew:           d.IsNew,
		IsBestSeller:    d.IsBestSeller,
	}, nil
}
