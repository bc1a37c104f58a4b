package memory

import (
	"context"
	"sync"

	domain "github.com/darfidda/storefront/internal/domain"
)

// CartRepository keeps the cart slot in process memory. Useful for local
// development and tests where no Firestore instance is available.
type CartRepository struct {
	mu    sync.Mutex
	lines []domain.CartLine
	saved bool
}

// NewCartRepository constructs an empty in-memory cart slot.
func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

// Load returns a copy of the stored cart lines.
func (r *CartRepository) Load(ctx context.Context) ([]domain.CartLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.saved {
		return []domain.CartLine{}, nil
	}
	return cloneLines(r.lines), nil
}

// Save replaces the stored cart lines with a copy of the snapshot.
func (r *CartRepository) Save(ctx context.Context, lines []domain.CartLine) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = cloneLines(lines)
	r.saved = true
	return nil
}

// Erase removes the cart slot.
func (r *CartRepository) Erase(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
	r.saved = false
	return nil
}

func cloneLines(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return out
}
