package submission

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "github.com/darfidda/storefront/internal/domain"
	"github.com/darfidda/storefront/internal/services"
)

func testOrder() services.OrderSubmission {
	return services.OrderSubmission{
		Reference: "ORDER-1",
		Name:      "Amina K",
		Phone:     "+212600000000",
		Address:   "12 Rue Example, Casablanca",
		Message:   "--- Darfidda Order Details ---\nLogo Mug (no size) x1 @ 12.50$",
		PromoCode: "DARFIDDA10",
		Lines: []domain.CartLine{
			{CartID: "mug-02", ProductID: "mug-02", Name: "Logo Mug", UnitPrice: 1250, Quantity: 1},
		},
	}
}

func TestSubmitPostsFormFields(t *testing.T) {
	var gotContentType string
	var gotForm map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		gotForm = map[string]string{
			"order_reference": r.PostFormValue("order_reference"),
			"name":            r.PostFormValue("name"),
			"phone":           r.PostFormValue("phone"),
			"address":         r.PostFormValue("address"),
			"message":         r.PostFormValue("message"),
			"promo_code":      r.PostFormValue("promo_code"),
			"cart":            r.PostFormValue("cart"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	submitter, err := NewFormSubmitter(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewFormSubmitter: %v", err)
	}

	order := testOrder()
	if err := submitter.Submit(context.Background(), order); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if gotContentType != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", gotContentType)
	}
	if gotForm["order_reference"] != order.Reference || gotForm["name"] != order.Name {
		t.Fatalf("unexpected form fields: %v", gotForm)
	}
	if gotForm["message"] != order.Message {
		t.Fatalf("expected summary in message field, got %q", gotForm["message"])
	}
	if gotForm["promo_code"] != "DARFIDDA10" {
		t.Fatalf("expected promo code field, got %q", gotForm["promo_code"])
	}

	var cartLines []domain.CartLine
	if err := json.Unmarshal([]byte(gotForm["cart"]), &cartLines); err != nil {
		t.Fatalf("decode cart field: %v (%s)", err, gotForm["cart"])
	}
	if len(cartLines) != 1 || cartLines[0].CartID != "mug-02" || cartLines[0].Quantity != 1 {
		t.Fatalf("unexpected cart field contents: %+v", cartLines)
	}
}

func TestSubmitEmptyPromoAndCart(t *testing.T) {
	var gotPromo, gotCart string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		gotPromo = r.PostFormValue("promo_code")
		gotCart = r.PostFormValue("cart")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	submitter, err := NewFormSubmitter(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewFormSubmitter: %v", err)
	}

	order := testOrder()
	order.PromoCode = ""
	order.Lines = nil
	if err := submitter.Submit(context.Background(), order); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if gotPromo != "" {
		t.Fatalf("expected empty promo code field, got %q", gotPromo)
	}
	if gotCart != "[]" {
		t.Fatalf("expected empty cart array, got %q", gotCart)
	}
}

func TestSubmitNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rejected", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	submitter, err := NewFormSubmitter(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewFormSubmitter: %v", err)
	}

	if err := submitter.Submit(context.Background(), testOrder()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestNewFormSubmitterValidation(t *testing.T) {
	if _, err := NewFormSubmitter("", time.Second); err == nil {
		t.Fatal("expected error for blank endpoint")
	}
	if _, err := NewFormSubmitter("ftp://example.com", time.Second); err == nil {
		t.Fatal("expected error for non-http scheme")
	}
}
