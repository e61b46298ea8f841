package cart

import (
	"context"
	"sync"

	"saas-pos/internal/domain"
	cartrepo "saas-pos/internal/repository/cart"
	invoicerepo "saas-pos/internal/repository/invoice"
)

type stubCarts struct {
	mu sync.Mutex

	postCurrent   []*domain.Cart
	postCalls     int
	postErr       error
	getFn         func(ctx context.Context, cartID string) (*domain.Cart, error)
	getCart       *domain.Cart
	getErr        error
	getCalls      int
	mutateFn      func(ctx context.Context) error
	mutateErr     error
	lastAdd       cartrepo.AddItemInput
	lastUpdate    cartrepo.UpdateItemInput
	lastProductID string
	lastCartID    string
	removeCalls   int
	checkoutFn    func(ctx context.Context) (*domain.CheckoutResult, error)
	checkoutRes   *domain.CheckoutResult
	checkoutErr   error
	checkoutCalls int
	lastCheckout  cartrepo.CheckoutInput
}

func (s *stubCarts) GetCurrent(_ context.Context, _ string) (*domain.Cart, error) {
	return nil, nil
}

// PostCurrent returns postCurrent in order, repeating the last entry.
func (s *stubCarts) PostCurrent(_ context.Context, _ string, _ *cartrepo.CreateCartInput) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.postCalls
	s.postCalls++
	if s.postErr != nil {
		return nil, s.postErr
	}
	if len(s.postCurrent) == 0 {
		return nil, nil
	}
	if idx >= len(s.postCurrent) {
		idx = len(s.postCurrent) - 1
	}
	return s.postCurrent[idx].Clone(), nil
}

func (s *stubCarts) Get(ctx context.Context, _, cartID string) (*domain.Cart, error) {
	s.mu.Lock()
	s.getCalls++
	fn := s.getFn
	c, err := s.getCart.Clone(), s.getErr
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, cartID)
	}
	return c, err
}

func (s *stubCarts) mutate(ctx context.Context, cartID, productID string) error {
	s.mu.Lock()
	s.lastCartID = cartID
	s.lastProductID = productID
	fn, err := s.mutateFn, s.mutateErr
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return err
}

func (s *stubCarts) AddItem(ctx context.Context, _, cartID string, in cartrepo.AddItemInput) error {
	s.mu.Lock()
	s.lastAdd = in
	s.mu.Unlock()
	return s.mutate(ctx, cartID, in.ProductID)
}

func (s *stubCarts) UpdateItemQty(ctx context.Context, _, cartID, productID string, in cartrepo.UpdateItemInput) error {
	s.mu.Lock()
	s.lastUpdate = in
	s.mu.Unlock()
	return s.mutate(ctx, cartID, productID)
}

func (s *stubCarts) RemoveItem(ctx context.Context, _, cartID, productID string) error {
	s.mu.Lock()
	s.removeCalls++
	s.mu.Unlock()
	return s.mutate(ctx, cartID, productID)
}

func (s *stubCarts) Checkout(ctx context.Context, _, cartID string, in cartrepo.CheckoutInput) (*domain.CheckoutResult, error) {
	s.mu.Lock()
	s.checkoutCalls++
	s.lastCartID = cartID
	s.lastCheckout = in
	fn, res, err := s.checkoutFn, s.checkoutRes, s.checkoutErr
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return res, err
}

func (s *stubCarts) calls() (post, get, checkout int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.postCalls, s.getCalls, s.checkoutCalls
}

type stubInvoices struct {
	mu         sync.Mutex
	issueErr   error
	issueCalls int
	lastIssue  invoicerepo.IssueInput
	lastID     string
	pdf        *domain.Document
	pdfErr     error
	pdfCalls   int
	lastPDF    invoicerepo.PDFOptions
}

func (s *stubInvoices) Issue(_ context.Context, _, invoiceID string, in invoicerepo.IssueInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issueCalls++
	s.lastID = invoiceID
	s.lastIssue = in
	return s.issueErr
}

func (s *stubInvoices) GetPDF(_ context.Context, _, _ string, opts invoicerepo.PDFOptions) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pdfCalls++
	s.lastPDF = opts
	if s.pdfErr != nil {
		return nil, s.pdfErr
	}
	if s.pdf == nil {
		return &domain.Document{Content: []byte("%PDF-1.4"), ContentType: "application/pdf"}, nil
	}
	return s.pdf, nil
}

func (s *stubInvoices) Get(_ context.Context, _, _ string) (*domain.Invoice, error) {
	return nil, domain.ErrNotFound
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *recordingNotifier) Notify(notice Notice) {
	n.mu.Lock()
	n.notices = append(n.notices, notice)
	n.mu.Unlock()
}

func (n *recordingNotifier) all() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice(nil), n.notices...)
}

func (n *recordingNotifier) keys() []Key {
	var out []Key
	for _, notice := range n.all() {
		out = append(out, notice.Key)
	}
	return out
}

type stubOpener struct {
	mu      sync.Mutex
	err     error
	calls   int
	lastID  string
	lastDoc *domain.Document
}

func (o *stubOpener) Open(_ context.Context, invoiceID string, doc *domain.Document) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	o.lastID = invoiceID
	o.lastDoc = doc
	return o.err
}

type stubSales struct {
	mu        sync.Mutex
	recorded  []domain.Sale
	recordErr error
}

func (s *stubSales) Record(_ context.Context, sale domain.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recordErr != nil {
		return s.recordErr
	}
	s.recorded = append(s.recorded, sale)
	return nil
}

func (s *stubSales) ListByBranch(_ context.Context, _ string, _ int) ([]domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Sale(nil), s.recorded...), nil
}

func strPtr(v string) *string {
	return &v
}
