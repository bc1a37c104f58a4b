package domain

import "testing"

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{1000, "10.00"},
		{2500, "25.00"},
		{4550, "45.50"},
		{-150, "-1.50"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.amount); got != tc.want {
			t.Fatalf("FormatAmount(%d) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestAmountFromDecimal(t *testing.T) {
	cases := []struct {
		value float64
		want  int64
	}{
		{0, 0},
		{25.00, 2500},
		{0.335, 34},
		{19.99, 1999},
		{-1.50, -150},
	}
	for _, tc := range cases {
		if got := AmountFromDecimal(tc.value); got != tc.want {
			t.Fatalf("AmountFromDecimal(%v) = %d, want %d", tc.value, got, tc.want)
		}
	}
}

func TestCartLineID(t *testing.T) {
	if got := CartLineID("p1", ""); got != "p1" {
		t.Fatalf("expected bare product id, got %q", got)
	}
	if got := CartLineID(" p1 ", " M "); got != "p1-M" {
		t.Fatalf("expected trimmed composite id, got %q", got)
	}
}

func TestNormalizeProductStatus(t *testing.T) {
	cases := map[string]ProductStatus{
		"available":    StatusAvailable,
		"few-left":     StatusFewLeft,
		"low-stock":    StatusFewLeft,
		"out-of-stock": StatusOutOfStock,
		"coming-soon":  StatusComingSoon,
		" Available ":  StatusAvailable,
	}
	for raw, want := range cases {
		got, ok := NormalizeProductStatus(raw)
		if !ok || got != want {
			t.Fatalf("NormalizeProductStatus(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}
	if _, ok := NormalizeProductStatus("backorder"); ok {
		t.Fatalf("expected unknown status to be rejected")
	}
}
