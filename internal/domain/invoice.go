package domain

import (
	"fmt"
	"strings"
	"time"
)

// DocType is the fiscal document category of an invoice.
type DocType string

const (
	DocTypeA DocType = "A"
	DocTypeB DocType = "B"
)

// DefaultDocType is used when no selection has been made.
const DefaultDocType = DocTypeB

// ParseDocType accepts "A" or "B" in any case.
func ParseDocType(s string) (DocType, error) {
	switch DocType(strings.ToUpper(strings.TrimSpace(s))) {
	case DocTypeA:
		return DocTypeA, nil
	case DocTypeB:
		return DocTypeB, nil
	}
	return "", fmt.Errorf("unknown doc type %q", s)
}

// RequiresCustomer reports whether the doc type can only be issued to an
// identified customer.
func (d DocType) RequiresCustomer() bool {
	return d == DocTypeA
}

type InvoiceMode string

const (
	InvoiceModeInternal InvoiceMode = "INTERNAL"
	// InvoiceModeARCA is recognised on the wire but never sent by this terminal.
	InvoiceModeARCA InvoiceMode = "ARCA"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "DRAFT"
	InvoiceStatusIssued InvoiceStatus = "ISSUED"
)

// Invoice is the full invoice entity. Customer snapshot fields are frozen at
// issuance.
type Invoice struct {
	ID              string        `json:"id"`
	TenantID        string        `json:"tenantId"`
	BranchID        string        `json:"branchId"`
	OrderID         string        `json:"orderId"`
	CustomerID      *string       `json:"customerId"`
	Number          string        `json:"number"`
	DisplayNumber   *string       `json:"displayNumber"`
	Mode            InvoiceMode   `json:"mode"`
	DocType         DocType       `json:"docType"`
	Status          InvoiceStatus `json:"status"`
	IssuedAt        *time.Time    `json:"issuedAt"`
	CustomerName    *string       `json:"customerName"`
	CustomerTaxID   *string       `json:"customerTaxId"`
	CustomerAddress *string       `json:"customerAddress"`
	Subtotal        string        `json:"subtotal"`
	NetSubtotal     string        `json:"netSubtotal"`
	TaxTotal        string        `json:"taxTotal"`
	Total           string        `json:"total"`
	Lines           []InvoiceLine `json:"lines"`
}

type InvoiceLine struct {
	ProductID   string `json:"productId"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	NetTotal    string `json:"netTotal"`
	GrossTotal  string `json:"grossTotal"`
	VATRate     string `json:"vatRate"`
	VATAmount   string `json:"vatAmount"`
}

// Document is a rendered invoice file.
type Document struct {
	Content     []byte
	ContentType string
	// Filename is the server-suggested name, nil when none was given.
	Filename *string
}
