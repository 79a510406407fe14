package orders

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemRepo — входящие заявки в памяти, для storage.driver=memory и тестов.
type MemRepo struct {
	mu     sync.RWMutex
	orders []Order
}

func NewMemRepo() *MemRepo { return &MemRepo{} }

func (r *MemRepo) Create(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.CreatedAt = time.Now()
	r.orders = append(r.orders, *o)
	return nil
}

func (r *MemRepo) OrderByID(_ context.Context, id uuid.UUID) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemRepo) List(_ context.Context, status Status, limit int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var res []Order
	for _, o := range slices.Backward(r.orders) {
		if status != "" && o.Status != status {
			continue
		}
		res = append(res, o)
		if limit > 0 && len(res) == limit {
			break
		}
	}
	return res, nil
}

func (r *MemRepo) MarkProcessed(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			now := time.Now()
			r.orders[i].Status = StatusProcessed
			r.orders[i].ProcessedAt = &now
			return nil
		}
	}
	return ErrNotFound
}
