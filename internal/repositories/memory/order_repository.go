package memory

import (
	"context"
	"sync"

	domain "github.com/darfidda/storefront/internal/domain"
)

// OrderRepository archives submitted orders in process memory.
type OrderRepository struct {
	mu     sync.Mutex
	orders []domain.OrderRecord
}

// NewOrderRepository constructs an empty in-memory order archive.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// Insert appends the order record to the archive.
func (r *OrderRepository) Insert(ctx context.Context, order domain.OrderRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, order)
	return nil
}

// Orders returns a copy of the archived records, oldest first.
func (r *OrderRepository) Orders() []domain.OrderRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.OrderRecord, len(r.orders))
	copy(out, r.orders)
	return out
}
