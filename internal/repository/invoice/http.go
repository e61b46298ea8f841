package invoice

import (
	"context"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"saas-pos/internal/apiclient"
	"saas-pos/internal/domain"
)

type httpRepo struct {
	client *apiclient.Client
	logger *zap.Logger
}

// NewHTTP returns a Repository backed by the branch REST API.
func NewHTTP(client *apiclient.Client, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &httpRepo{client: client, logger: logger}
}

func (r *httpRepo) Issue(ctx context.Context, branchID, invoiceID string, in IssueInput) error {
	_, err := r.client.Send(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   apiclient.Path("branches", branchID, "invoices", invoiceID, "issue"),
		Body:   in,
	})
	return err
}

func (r *httpRepo) GetPDF(ctx context.Context, branchID, invoiceID string, opts PDFOptions) (*domain.Document, error) {
	variant := opts.Variant
	if variant == "" {
		variant = VariantInternal
	}
	resp, err := r.client.Send(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   apiclient.Path("branches", branchID, "invoices", invoiceID, "pdf"),
		Query:  url.Values{"variant": {variant}},
		Accept: "application/pdf",
	})
	if err != nil {
		return nil, err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	return &domain.Document{
		Content:     resp.Body,
		ContentType: contentType,
		Filename:    FilenameFromDisposition(resp.Header.Get("Content-Disposition")),
	}, nil
}

func (r *httpRepo) Get(ctx context.Context, branchID, invoiceID string) (*domain.Invoice, error) {
	resp, err := r.client.Send(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   apiclient.Path("branches", branchID, "invoices", invoiceID),
	})
	if err != nil {
		return nil, err
	}
	inv, err := ParseInvoice(resp.Body)
	if err != nil {
		r.logger.Error("invoice repo: malformed invoice response",
			zap.String("branch_id", branchID),
			zap.String("invoice_id", invoiceID),
			zap.Error(err),
		)
		return nil, err
	}
	return inv, nil
}

// FilenameFromDisposition extracts the suggested name from a
// Content-Disposition header. The extended filename* form wins over filename;
// mime.ParseMediaType already folds it into the "filename" parameter.
func FilenameFromDisposition(header string) *string {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return nil
	}
	name := strings.TrimSpace(params["filename"])
	if name == "" {
		return nil
	}
	return &name
}
