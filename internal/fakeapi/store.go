// Package fakeapi is an in-memory stand-in for the branch API used by tests
// and local development.
package fakeapi

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"saas-pos/internal/domain"
	"saas-pos/internal/seed"
)

// CartStatusCheckedOut marks a cart converted into an invoice.
const CartStatusCheckedOut = "CHECKED_OUT"

// TenantID is reported on every entity.
const TenantID = "demo-tenant"

var (
	vatRate    = decimal.RequireFromString("21")
	vatDivisor = decimal.RequireFromString("1.21")
)

// apiError is rendered as {"message": msg} with the given status.
type apiError struct {
	status int
	msg    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%d %s", e.status, e.msg)
}

func notFound(format string, args ...any) error {
	return &apiError{status: http.StatusNotFound, msg: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) error {
	return &apiError{status: http.StatusConflict, msg: fmt.Sprintf(format, args...)}
}

func notImplemented(format string, args ...any) error {
	return &apiError{status: http.StatusNotImplemented, msg: fmt.Sprintf(format, args...)}
}

type Options struct {
	// Catalog defaults to seed.Catalog().
	Catalog []seed.Product
	// PDFEnabled switches invoice rendering on; when off the PDF endpoint
	// answers 501.
	PDFEnabled bool
	// Token, when set, is required as a bearer credential.
	Token string
	Now   func() time.Time
}

// Store keeps carts and invoices per branch.
type Store struct {
	mu         sync.Mutex
	catalog    map[string]seed.Product
	branches   map[string]*branch
	pdfEnabled bool
	token      string
	now        func() time.Time
}

type branch struct {
	currentID  string
	carts      map[string]*domain.Cart
	invoices   map[string]*domain.Invoice
	lastNumber int
}

func NewStore(opts Options) *Store {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = seed.Catalog()
	}
	s := &Store{
		catalog:    make(map[string]seed.Product, len(catalog)),
		branches:   make(map[string]*branch),
		pdfEnabled: opts.PDFEnabled,
		token:      opts.Token,
		now:        opts.Now,
	}
	for _, p := range catalog {
		s.catalog[p.ID] = p
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// SetPDFEnabled toggles invoice rendering at runtime.
func (s *Store) SetPDFEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pdfEnabled = enabled
}

func (s *Store) branchLocked(id string) *branch {
	b, ok := s.branches[id]
	if !ok {
		b = &branch{
			carts:    make(map[string]*domain.Cart),
			invoices: make(map[string]*domain.Invoice),
		}
		s.branches[id] = b
	}
	return b
}

// CurrentCart returns the branch's draft cart. With create set a missing
// draft is created; otherwise a missing draft is a 404.
func (s *Store) CurrentCart(branchID string, create bool, customerID *string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.branchLocked(branchID)
	if c, ok := b.carts[b.currentID]; ok && c.IsDraft() {
		return c.Clone(), nil
	}
	if !create {
		return nil, notFound("branch %s has no current cart", branchID)
	}
	c := &domain.Cart{
		ID:         uuid.NewString(),
		TenantID:   TenantID,
		BranchID:   branchID,
		CustomerID: customerID,
		Status:     domain.CartStatusDraft,
		Items:      []domain.CartItem{},
	}
	recalculate(c)
	b.carts[c.ID] = c
	b.currentID = c.ID
	return c.Clone(), nil
}

func (s *Store) Cart(branchID, cartID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.cartLocked(branchID, cartID)
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// Expire drops a cart as if the server had garbage collected it.
func (s *Store) Expire(branchID, cartID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.branchLocked(branchID)
	delete(b.carts, cartID)
	if b.currentID == cartID {
		b.currentID = ""
	}
}

func (s *Store) cartLocked(branchID, cartID string) (*domain.Cart, error) {
	c, ok := s.branchLocked(branchID).carts[cartID]
	if !ok {
		return nil, notFound("cart %s not found", cartID)
	}
	return c, nil
}

func (s *Store) draftLocked(branchID, cartID string) (*domain.Cart, error) {
	c, err := s.cartLocked(branchID, cartID)
	if err != nil {
		return nil, err
	}
	if !c.IsDraft() {
		return nil, conflict("cart %s is %s and can no longer be edited", cartID, c.Status)
	}
	return c, nil
}

// AddItem adds qty units of productID, merging with an existing line.
func (s *Store) AddItem(branchID, cartID, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.draftLocked(branchID, cartID)
	if err != nil {
		return err
	}
	p, ok := s.catalog[productID]
	if !ok {
		return notFound("product %s not found", productID)
	}
	if qty == 0 {
		return nil
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += qty
			recalculate(c)
			return nil
		}
	}
	c.Items = append(c.Items, domain.CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Code:      p.Code,
		Quantity:  qty,
		UnitPrice: p.UnitPrice,
	})
	recalculate(c)
	return nil
}

// SetQuantity replaces a line's quantity; zero removes the line.
func (s *Store) SetQuantity(branchID, cartID, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.draftLocked(branchID, cartID)
	if err != nil {
		return err
	}
	for i := range c.Items {
		if c.Items[i].ProductID != productID {
			continue
		}
		if qty == 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		} else {
			c.Items[i].Quantity = qty
		}
		recalculate(c)
		return nil
	}
	return notFound("product %s is not in cart %s", productID, cartID)
}

func (s *Store) RemoveItem(branchID, cartID, productID string) error {
	return s.SetQuantity(branchID, cartID, productID, 0)
}

// Checkout finalizes a draft cart into a draft invoice.
func (s *Store) Checkout(branchID, cartID string, customerID *string) (*domain.CheckoutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.draftLocked(branchID, cartID)
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, conflict("cart %s is empty", cartID)
	}
	if customerID != nil {
		c.CustomerID = customerID
	}
	c.Status = CartStatusCheckedOut

	b := s.branchLocked(branchID)
	b.lastNumber++
	if b.currentID == c.ID {
		b.currentID = ""
	}
	inv := invoiceFromCart(c, fmt.Sprintf("0001-%08d", b.lastNumber))
	b.invoices[inv.ID] = inv

	return &domain.CheckoutResult{
		Cart: *c.Clone(),
		Invoice: domain.CheckoutInvoice{
			ID:     inv.ID,
			Number: inv.Number,
			Status: string(inv.Status),
			Total:  inv.Total,
		},
	}, nil
}

func invoiceFromCart(c *domain.Cart, number string) *domain.Invoice {
	inv := &domain.Invoice{
		ID:         uuid.NewString(),
		TenantID:   c.TenantID,
		BranchID:   c.BranchID,
		OrderID:    c.ID,
		CustomerID: c.CustomerID,
		Number:     number,
		Mode:       domain.InvoiceModeInternal,
		DocType:    domain.DefaultDocType,
		Status:     domain.InvoiceStatusDraft,
		Lines:      make([]domain.InvoiceLine, 0, len(c.Items)),
	}
	gross, net, vat := decimal.Zero, decimal.Zero, decimal.Zero
	for _, it := range c.Items {
		lineGross := decimal.RequireFromString(it.LineTotal)
		lineNet := lineGross.Div(vatDivisor).Round(2)
		lineVAT := lineGross.Sub(lineNet)
		gross = gross.Add(lineGross)
		net = net.Add(lineNet)
		vat = vat.Add(lineVAT)
		inv.Lines = append(inv.Lines, domain.InvoiceLine{
			ProductID:   it.ProductID,
			Description: it.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			NetTotal:    lineNet.StringFixed(2),
			GrossTotal:  lineGross.StringFixed(2),
			VATRate:     vatRate.StringFixed(2),
			VATAmount:   lineVAT.StringFixed(2),
		})
	}
	inv.Subtotal = gross.StringFixed(2)
	inv.NetSubtotal = net.StringFixed(2)
	inv.TaxTotal = vat.StringFixed(2)
	inv.Total = gross.StringFixed(2)
	return inv
}

// Issue moves a draft invoice to ISSUED and assigns its display number.
func (s *Store) Issue(branchID, invoiceID string, docType domain.DocType, mode domain.InvoiceMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.branchLocked(branchID).invoices[invoiceID]
	if !ok {
		return notFound("invoice %s not found", invoiceID)
	}
	if inv.Status != domain.InvoiceStatusDraft {
		return conflict("invoice %s is already issued", invoiceID)
	}
	if mode != domain.InvoiceModeInternal {
		return notImplemented("%s issuance is not available", mode)
	}
	if docType.RequiresCustomer() && inv.CustomerID == nil {
		return conflict("doc type %s requires a customer", docType)
	}

	issuedAt := s.now().UTC()
	display := fmt.Sprintf("%s %s", docType, inv.Number)
	inv.DocType = docType
	inv.Mode = mode
	inv.Status = domain.InvoiceStatusIssued
	inv.IssuedAt = &issuedAt
	inv.DisplayNumber = &display
	if inv.CustomerID != nil {
		name := "Customer " + *inv.CustomerID
		inv.CustomerName = &name
	}
	return nil
}

func (s *Store) Invoice(branchID, invoiceID string) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.branchLocked(branchID).invoices[invoiceID]
	if !ok {
		return nil, notFound("invoice %s not found", invoiceID)
	}
	out := *inv
	out.Lines = append([]domain.InvoiceLine(nil), inv.Lines...)
	return &out, nil
}

// PDF renders a placeholder document and its suggested filename.
func (s *Store) PDF(branchID, invoiceID, variant string) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.branchLocked(branchID).invoices[invoiceID]
	if !ok {
		return nil, "", notFound("invoice %s not found", invoiceID)
	}
	if !strings.EqualFold(variant, "internal") {
		return nil, "", notImplemented("pdf variant %q is not available", variant)
	}
	if !s.pdfEnabled {
		return nil, "", notImplemented("pdf rendering is not available")
	}
	body := fmt.Sprintf("%%PDF-1.4\n%% invoice %s total %s\n%%%%EOF\n", inv.Number, inv.Total)
	return []byte(body), fmt.Sprintf("invoice-%s.pdf", inv.Number), nil
}

// recalculate derives line and cart totals. Prices include 21% VAT.
func recalculate(c *domain.Cart) {
	total := decimal.Zero
	for i := range c.Items {
		line := decimal.RequireFromString(c.Items[i].UnitPrice).Mul(decimal.NewFromInt(int64(c.Items[i].Quantity)))
		c.Items[i].LineTotal = line.StringFixed(2)
		total = total.Add(line)
	}
	tax := total.Sub(total.Div(vatDivisor)).Round(2)
	c.Subtotal = total.StringFixed(2)
	c.DiscountTotal = decimal.Zero.StringFixed(2)
	c.TaxTotal = tax.StringFixed(2)
	c.Total = total.StringFixed(2)
}
