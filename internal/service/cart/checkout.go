package cart

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"saas-pos/internal/domain"
	cartrepo "saas-pos/internal/repository/cart"
	invoicerepo "saas-pos/internal/repository/invoice"
)

// preflight validates a checkout without touching the network.
func preflight(c *domain.Cart, docType domain.DocType, customerID *string) error {
	switch {
	case c.IsEmpty():
		return &ValidationError{Key: KeyEmptyCart}
	case !c.IsDraft():
		return &ValidationError{Key: KeyCartNotEditable}
	case docType.RequiresCustomer() && customerID == nil:
		return &ValidationError{Key: KeyDocTypeARequiresCustomer}
	}
	return nil
}

// Checkout converts the loaded cart into an issued invoice and prepares the
// next sale. It returns an error only when the sale did not happen; failures
// after the server accepted the checkout are notified and logged but never
// undo it.
func (s *Service) Checkout(ctx context.Context) error {
	var (
		c        *domain.Cart
		rejected error
	)
	docType := s.session.DocType()
	customerID := s.session.Customer()
	s.apply(func() bool {
		if s.checkoutPending {
			rejected = &ValidationError{Key: KeyCheckoutInProgress}
			return false
		}
		c = s.cart.Clone()
		if rejected = preflight(c, docType, customerID); rejected != nil {
			return false
		}
		s.checkoutPending = true
		return true
	})
	if rejected != nil {
		return s.fail("checkout", rejected, KeyConflict)
	}
	defer s.apply(func() bool {
		s.checkoutPending = false
		return true
	})

	log := s.logger.With(
		zap.String("branch_id", s.branchID()),
		zap.String("cart_id", c.ID),
		zap.String("doc_type", string(docType)),
	)

	res, err := s.carts.Checkout(ctx, s.branchID(), c.ID, cartrepo.CheckoutInput{CustomerID: customerID})
	if err != nil {
		return s.fail("checkout", err, KeyConflict)
	}
	inv := res.Invoice
	log = log.With(zap.String("invoice_id", inv.ID))
	log.Info("cart checked out", zap.String("number", inv.Number), zap.String("total", inv.Total))
	s.apply(func() bool {
		s.ensure.stop()
		s.refresh.stop()
		s.refetch.stop()
		s.cart = res.Cart.Clone()
		return true
	})

	err = s.invoices.Issue(ctx, s.branchID(), inv.ID, invoicerepo.IssueInput{
		DocType: docType,
		Mode:    domain.InvoiceModeInternal,
	})
	if err != nil {
		s.report("issue invoice", err, KeyConflict, "")
	} else {
		log.Info("invoice issued")
	}

	sale := domain.Sale{
		InvoiceID:   inv.ID,
		Number:      inv.Number,
		Total:       inv.Total,
		BranchID:    s.branchID(),
		CompletedAt: s.now().UTC(),
	}
	s.apply(func() bool {
		s.lastSale = &sale
		s.view = ViewSuccess
		return true
	})
	if s.sales != nil {
		if err := s.sales.Record(context.WithoutCancel(ctx), sale); err != nil {
			log.Error("record sale", zap.Error(err))
		}
	}

	if err := s.openInvoice(ctx, inv.ID); err != nil {
		s.report("open invoice", err, KeyConflict, LevelWarning)
	}

	s.session.ResetSelection()

	if err := s.EnsureCart(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("prefetch next cart", zap.Error(err))
	}
	return nil
}

func (s *Service) openInvoice(ctx context.Context, invoiceID string) error {
	doc, err := s.invoices.GetPDF(ctx, s.branchID(), invoiceID, invoicerepo.PDFOptions{Variant: invoicerepo.VariantInternal})
	if err != nil {
		return err
	}
	return s.opener.Open(ctx, invoiceID, doc)
}
