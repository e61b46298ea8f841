package sale

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"saas-pos/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Record(ctx context.Context, s domain.Sale) error {
	const q = `
INSERT INTO sales (id, invoice_id, branch_id, number, total, completed_at)
VALUES ($1::uuid, $2, $3, $4, $5::numeric, $6)
ON CONFLICT (invoice_id) DO NOTHING
`
	tag, err := r.pool.Exec(ctx, q, uuid.NewString(), s.InvoiceID, s.BranchID, s.Number, s.Total, s.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert sale %s: %w", s.InvoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Info("sale already recorded", zap.String("invoice_id", s.InvoiceID))
	}
	return nil
}

func (r *postgresRepo) ListByBranch(ctx context.Context, branchID string, limit int) ([]domain.Sale, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	const q = `
SELECT invoice_id, branch_id, number, total::text, completed_at
FROM sales
WHERE branch_id = $1
ORDER BY completed_at DESC, invoice_id
LIMIT $2
`
	rows, err := r.pool.Query(ctx, q, branchID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Sale, error) {
		var s domain.Sale
		err := row.Scan(&s.InvoiceID, &s.BranchID, &s.Number, &s.Total, &s.CompletedAt)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan sales: %w", err)
	}
	return out, nil
}
