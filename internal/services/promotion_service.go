package services

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/darfidda/storefront/internal/domain"
)

// PromotionServiceDeps bundles dependencies required to construct a PromotionService implementation.
type PromotionServiceDeps struct {
	// Codes is the static promo registry. Each entry carries the code, its
	// fractional discount rate, and the confirmation message shown on match.
	Codes  []domain.Promotion
	Logger func(context.Context, string, map[string]any)
}

type promotionService struct {
	codes  map[string]domain.Promotion
	logger func(context.Context, string, map[string]any)
}

// NewPromotionService wires a PromotionService over the configured registry.
func NewPromotionService(deps PromotionServiceDeps) (PromotionService, error) {
	if len(deps.Codes) == 0 {
		return nil, fmt.Errorf("promotion service: at least one code is required")
	}
	codes := make(map[string]domain.Promotion, len(deps.Codes))
	for _, entry := range deps.Codes {
		normalized := strings.ToUpper(strings.TrimSpace(entry.Code))
		if normalized == "" || entry.Rate <= 0 || entry.Rate > 1 {
			return nil, fmt.Errorf("promotion service: invalid entry %q=%v", entry.Code, entry.Rate)
		}
		if _, exists := codes[normalized]; exists {
			return nil, fmt.Errorf("promotion service: duplicate code %q", normalized)
		}
		message := strings.TrimSpace(entry.Message)
		if message == "" {
			message = fmt.Sprintf("Promo code applied! You get %d%% off.", int(entry.Rate*100+0.5))
		}
		codes[normalized] = domain.Promotion{Code: normalized, Rate: entry.Rate, Message: message}
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &promotionService{codes: codes, logger: logger}, nil
}

// Resolve matches the submitted code against the registry. Matching is exact
// after trimming surrounding whitespace and uppercasing, and the returned
// message is the registry entry's own text.
func (s *promotionService) Resolve(ctx context.Context, code string) (domain.Promotion, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	entry, ok := s.codes[normalized]
	if !ok {
		s.logger(ctx, "promotion.rejected", map[string]any{"code": normalized})
		return domain.Promotion{}, fmt.Errorf("%w: %q", ErrPromotionInvalidCode, normalized)
	}

	s.logger(ctx, "promotion.applied", map[string]any{"code": entry.Code, "rate": entry.Rate})
	return entry, nil
}
