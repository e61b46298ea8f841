package sale

import (
	"context"

	"saas-pos/internal/domain"
)

// DefaultListLimit applies when ListByBranch is called with limit <= 0.
const DefaultListLimit = 50

// Repository is the terminal's journal of completed sales.
type Repository interface {
	// Record stores s. Recording the same invoice twice is a no-op.
	Record(ctx context.Context, s domain.Sale) error
	// ListByBranch returns the newest sales first.
	ListByBranch(ctx context.Context, branchID string, limit int) ([]domain.Sale, error)
}
