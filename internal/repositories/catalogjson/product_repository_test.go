package catalogjson

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	domain "github.com/darfidda/storefront/internal/domain"
)

const sampleCatalog = `[
  {
    "id": "tshirt-01",
    "name": "Classic Tee",
    "sku": "TS-01",
    "image": "images/tshirt-01.jpg",
    "originalPrice": 25.00,
    "discountedPrice": 19.99,
    "status": "available",
    "megaCategory": "men",
    "sizes": ["S", "M", "L"],
    "isNew": true
  },
  {
    "id": "mug-02",
    "name": "Logo Mug",
    "originalPrice": 12.50,
    "status": "low-stock",
    "megaCategory": "accessories",
    "isBestSeller": true
  }
]`

func TestListProductsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	repo, err := NewProductRepository(path, time.Second)
	if err != nil {
		t.Fatalf("NewProductRepository: %v", err)
	}

	products, err := repo.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	first := products[0]
	if first.ID != "tshirt-01" || first.OriginalPrice != 2500 || first.DiscountedPrice != 1999 {
		t.Fatalf("unexpected first product: %+v", first)
	}
	if first.Status != domain.StatusAvailable || !first.HasSizes() {
		t.Fatalf("unexpected first product status/sizes: %+v", first)
	}

	second := products[1]
	if second.Status != domain.StatusFewLeft {
		t.Fatalf("expected low-stock alias to normalise, got %q", second.Status)
	}
	if second.DiscountedPrice != 0 {
		t.Fatalf("expected absent discounted price to be zero, got %d", second.DiscountedPrice)
	}
}

func TestListProductsFromHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleCatalog))
	}))
	defer server.Close()

	repo, err := NewProductRepository(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewProductRepository: %v", err)
	}

	products, err := repo.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
}

func TestListProductsHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	repo, err := NewProductRepository(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewProductRepository: %v", err)
	}

	if _, err := repo.ListProducts(context.Background()); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestListProductsRejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"missing id":              `[{"name": "No ID", "originalPrice": 5, "status": "available"}]`,
		"missing name":            `[{"id": "x", "originalPrice": 5, "status": "available"}]`,
		"unknown status":          `[{"id": "x", "name": "X", "originalPrice": 5, "status": "backorder"}]`,
		"negative price":          `[{"id": "x", "name": "X", "originalPrice": -5, "status": "available"}]`,
		"zero original price":     `[{"id": "x", "name": "X", "originalPrice": 0, "status": "available"}]`,
		"discount above original": `[{"id": "x", "name": "X", "originalPrice": 10.00, "discountedPrice": 15.00, "status": "available"}]`,
		"negative discounted":     `[{"id": "x", "name": "X", "originalPrice": 10.00, "discountedPrice": -1, "status": "available"}]`,
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "products.json")
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("%s: write fixture: %v", name, err)
		}
		repo, err := NewProductRepository(path, time.Second)
		if err != nil {
			t.Fatalf("%s: NewProductRepository: %v", name, err)
		}
		if _, err := repo.ListProducts(context.Background()); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestNewProductRepositoryRequiresSource(t *testing.T) {
	if _, err := NewProductRepository("  ", time.Second); err == nil || !strings.Contains(err.Error(), "source") {
		t.Fatalf("expected source error, got %v", err)
	}
}
