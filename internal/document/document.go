// Package document hands rendered invoices to the operator.
package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"saas-pos/internal/domain"
	"saas-pos/internal/service/cart"
)

// FileOpener saves documents under Dir. With no Dir there is nowhere to show
// a document and Open reports cart.ErrPopupBlocked.
type FileOpener struct {
	Dir    string
	Logger *zap.Logger
}

func (o FileOpener) Open(ctx context.Context, invoiceID string, doc *domain.Document) error {
	if strings.TrimSpace(o.Dir) == "" {
		return cart.ErrPopupBlocked
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}
	path := filepath.Join(o.Dir, fileName(invoiceID, doc))
	if err := os.WriteFile(path, doc.Content, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if o.Logger != nil {
		o.Logger.Info("invoice document saved", zap.String("invoice_id", invoiceID), zap.String("path", path))
	}
	return nil
}

// fileName keeps only the base of a server-suggested name.
func fileName(invoiceID string, doc *domain.Document) string {
	if doc.Filename != nil {
		name := filepath.Base(filepath.Clean("/" + *doc.Filename))
		if name != "/" && name != "." {
			return name
		}
	}
	return fmt.Sprintf("invoice-%s.pdf", invoiceID)
}
