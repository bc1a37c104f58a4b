package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/darfidda/storefront/internal/domain"
	"github.com/darfidda/storefront/internal/services"
)

const maxErrorBodyBytes = 2048

// FormSubmitter delivers orders to an external form endpoint as an
// application/x-www-form-urlencoded POST.
type FormSubmitter struct {
	endpoint string
	client   *http.Client
}

// NewFormSubmitter constructs a submitter posting to the given endpoint.
func NewFormSubmitter(endpoint string, timeout time.Duration) (*FormSubmitter, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("form submitter: endpoint is required")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("form submitter: invalid endpoint %q", endpoint)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &FormSubmitter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Submit posts the order fields to the endpoint. Any non-2xx response is an error.
func (s *FormSubmitter) Submit(ctx context.Context, order services.OrderSubmission) error {
	if s == nil || s.client == nil {
		return errors.New("form submitter not initialised")
	}

	lines := order.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	cartJSON, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("form submitter: encode cart: %w", err)
	}

	form := url.Values{}
	form.Set("order_reference", order.Reference)
	form.Set("name", order.Name)
	form.Set("phone", order.Phone)
	form.Set("address", order.Address)
	form.Set("message", order.Message)
	form.Set("promo_code", order.PromoCode)
	form.Set("cart", string(cartJSON))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("form submitter: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("form submitter: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("form submitter: endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
