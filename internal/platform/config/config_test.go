package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithEnvFile(""), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Cart.Backend != "memory" {
		t.Fatalf("expected memory cart backend, got %q", cfg.Cart.Backend)
	}
	if cfg.Cart.StorageKey != "darfidda_cart" {
		t.Fatalf("unexpected storage key %q", cfg.Cart.StorageKey)
	}
	if cfg.Pricing.DeliveryCharge != 1000 {
		t.Fatalf("expected delivery charge of 1000 minor units, got %d", cfg.Pricing.DeliveryCharge)
	}
	if entry := cfg.Promotions.Codes["DARFIDDA10"]; entry.Rate != 0.10 {
		t.Fatalf("expected DARFIDDA10 rate 0.10, got %v", entry.Rate)
	}
	if entry := cfg.Promotions.Codes["DARFIDDA10"]; entry.Message != "Promo code applied! You get 10% off." {
		t.Fatalf("unexpected DARFIDDA10 message %q", entry.Message)
	}
	if entry := cfg.Promotions.Codes["WELCOMENEW"]; entry.Rate != 0.20 {
		t.Fatalf("expected WELCOMENEW rate 0.20, got %v", entry.Rate)
	}
	if entry := cfg.Promotions.Codes["WELCOMENEW"]; entry.Message == "" {
		t.Fatal("expected WELCOMENEW to carry a message")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	cfg, err := Load(
		WithEnvFile(""),
		WithoutSystemEnv(),
		WithEnvMap(map[string]string{
			"STORE_SERVER_PORT":             "9090",
			"STORE_SERVER_READ_TIMEOUT":     "5s",
			"STORE_CATALOG_SOURCE":          "https://cdn.example.com/products.json",
			"STORE_CART_BACKEND":            "firestore",
			"STORE_FIRESTORE_PROJECT_ID":    "darfidda-dev",
			"STORE_PRICING_DELIVERY_CHARGE": "7.50",
			"STORE_PROMOTION_CODES":         "summer15=0.15|Summer sale! You get 15% off.",
			"STORE_SUBMISSION_ENDPOINT":     "https://formspree.io/f/abc123",
		}),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port override, got %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("expected read timeout override, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Catalog.Source != "https://cdn.example.com/products.json" {
		t.Fatalf("unexpected catalog source %q", cfg.Catalog.Source)
	}
	if cfg.Cart.Backend != "firestore" {
		t.Fatalf("expected firestore backend, got %q", cfg.Cart.Backend)
	}
	if cfg.Pricing.DeliveryCharge != 750 {
		t.Fatalf("expected delivery charge 750, got %d", cfg.Pricing.DeliveryCharge)
	}
	if entry := cfg.Promotions.Codes["SUMMER15"]; entry.Rate != 0.15 {
		t.Fatalf("expected uppercased code SUMMER15 with rate 0.15, got %v", entry.Rate)
	}
	if entry := cfg.Promotions.Codes["SUMMER15"]; entry.Message != "Summer sale! You get 15% off." {
		t.Fatalf("unexpected SUMMER15 message %q", entry.Message)
	}
	if cfg.Submission.Endpoint != "https://formspree.io/f/abc123" {
		t.Fatalf("unexpected submission endpoint %q", cfg.Submission.Endpoint)
	}
}

func TestLoadFirestoreBackendRequiresProject(t *testing.T) {
	_, err := Load(
		WithEnvFile(""),
		WithoutSystemEnv(),
		WithEnvMap(map[string]string{
			"STORE_CART_BACKEND": "firestore",
		}),
	)
	if err == nil {
		t.Fatal("expected validation error for missing project id")
	}

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if !strings.Contains(validation.Error(), "Firestore.ProjectID") {
		t.Fatalf("expected Firestore.ProjectID in error, got %q", validation.Error())
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	_, err := Load(
		WithEnvFile(""),
		WithoutSystemEnv(),
		WithEnvMap(map[string]string{
			"STORE_CART_BACKEND": "redis",
		}),
	)
	if err == nil {
		t.Fatal("expected validation error for unknown backend")
	}

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
}

func TestLoadIgnoresMalformedPromotionEntries(t *testing.T) {
	cfg, err := Load(
		WithEnvFile(""),
		WithoutSystemEnv(),
		WithEnvMap(map[string]string{
			"STORE_PROMOTION_CODES": "good=0.10|Nice one.;broken;toohigh=1.5|Too much.;empty=;nomsg=0.30",
		}),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Promotions.Codes) != 2 {
		t.Fatalf("expected two valid promotions, got %v", cfg.Promotions.Codes)
	}
	if entry := cfg.Promotions.Codes["GOOD"]; entry.Rate != 0.10 || entry.Message != "Nice one." {
		t.Fatalf("unexpected GOOD entry %+v", entry)
	}
	if entry := cfg.Promotions.Codes["NOMSG"]; entry.Rate != 0.30 || entry.Message != "" {
		t.Fatalf("expected message-less entry to parse, got %+v", entry)
	}
}
