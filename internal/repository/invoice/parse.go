package invoice

import (
	"fmt"

	"saas-pos/internal/domain"
	"saas-pos/internal/wire"
)

// ParseInvoice validates a full invoice payload. Lines repeating a productId
// are dropped.
func ParseInvoice(data []byte) (*domain.Invoice, error) {
	obj, err := wire.Decode("invoice", data)
	if err != nil {
		return nil, err
	}
	r := wire.NewReader("invoice", obj)
	inv := domain.Invoice{
		ID:              r.String("id"),
		TenantID:        r.String("tenantId"),
		BranchID:        r.String("branchId"),
		OrderID:         r.String("orderId"),
		CustomerID:      r.OptString("customerId"),
		Number:          r.String("number"),
		DisplayNumber:   r.OptString("displayNumber"),
		IssuedAt:        r.OptTime("issuedAt"),
		CustomerName:    r.OptString("customerName"),
		CustomerTaxID:   r.OptString("customerTaxId"),
		CustomerAddress: r.OptString("customerAddress"),
		Subtotal:        r.Money("subtotal"),
		NetSubtotal:     r.Money("netSubtotal"),
		TaxTotal:        r.Money("taxTotal"),
		Total:           r.Money("total"),
	}
	mode := r.String("mode")
	docType := r.String("docType")
	status := r.String("status")
	rawLines := r.Objects("lines")
	if err := r.Err(); err != nil {
		return nil, err
	}

	switch m := domain.InvoiceMode(mode); m {
	case domain.InvoiceModeInternal, domain.InvoiceModeARCA:
		inv.Mode = m
	default:
		return nil, &wire.ParseError{Entity: "invoice", Field: "mode", Reason: fmt.Sprintf("unknown value %q", mode)}
	}
	dt, err := domain.ParseDocType(docType)
	if err != nil || string(dt) != docType {
		return nil, &wire.ParseError{Entity: "invoice", Field: "docType", Reason: fmt.Sprintf("unknown value %q", docType)}
	}
	inv.DocType = dt
	switch s := domain.InvoiceStatus(status); s {
	case domain.InvoiceStatusDraft, domain.InvoiceStatusIssued:
		inv.Status = s
	default:
		return nil, &wire.ParseError{Entity: "invoice", Field: "status", Reason: fmt.Sprintf("unknown value %q", status)}
	}

	seen := make(map[string]struct{}, len(rawLines))
	inv.Lines = make([]domain.InvoiceLine, 0, len(rawLines))
	for i, raw := range rawLines {
		line, err := lineFromObject(raw)
		if err != nil {
			r.Nest(fmt.Sprintf("lines[%d]", i), err)
			return nil, r.Err()
		}
		if _, dup := seen[line.ProductID]; dup {
			continue
		}
		seen[line.ProductID] = struct{}{}
		inv.Lines = append(inv.Lines, line)
	}
	return &inv, nil
}

func lineFromObject(obj wire.Object) (domain.InvoiceLine, error) {
	r := wire.NewReader("invoice line", obj)
	line := domain.InvoiceLine{
		ProductID:   r.String("productId"),
		Description: r.Text("description"),
		Quantity:    r.Quantity("quantity"),
		UnitPrice:   r.Money("unitPrice"),
		NetTotal:    r.Money("netTotal"),
		GrossTotal:  r.Money("grossTotal"),
		VATRate:     r.Money("vatRate"),
		VATAmount:   r.Money("vatAmount"),
	}
	if err := r.Err(); err != nil {
		return domain.InvoiceLine{}, err
	}
	return line, nil
}
