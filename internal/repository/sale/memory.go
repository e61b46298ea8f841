package sale

import (
	"context"
	"sort"
	"sync"

	"saas-pos/internal/domain"
)

type memoryRepo struct {
	mu    sync.Mutex
	sales []domain.Sale
	seen  map[string]struct{}
}

// NewMemory returns a process-local Repository.
func NewMemory() Repository {
	return &memoryRepo{seen: make(map[string]struct{})}
}

func (r *memoryRepo) Record(_ context.Context, s domain.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[s.InvoiceID]; ok {
		return nil
	}
	r.seen[s.InvoiceID] = struct{}{}
	r.sales = append(r.sales, s)
	return nil
}

func (r *memoryRepo) ListByBranch(_ context.Context, branchID string, limit int) ([]domain.Sale, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	r.mu.Lock()
	out := make([]domain.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		if s.BranchID == branchID {
			out = append(out, s)
		}
	}
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].InvoiceID < out[j].InvoiceID
		}
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
