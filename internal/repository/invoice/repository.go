package invoice

import (
	"context"

	"saas-pos/internal/domain"
)

type IssueInput struct {
	DocType domain.DocType     `json:"docType"`
	Mode    domain.InvoiceMode `json:"mode"`
}

// VariantInternal is the only PDF rendering this terminal requests.
const VariantInternal = "internal"

type PDFOptions struct {
	Variant string
}

// Repository is the remote invoice service of a branch.
type Repository interface {
	Issue(ctx context.Context, branchID, invoiceID string, in IssueInput) error
	GetPDF(ctx context.Context, branchID, invoiceID string, opts PDFOptions) (*domain.Document, error)
	Get(ctx context.Context, branchID, invoiceID string) (*domain.Invoice, error)
}
