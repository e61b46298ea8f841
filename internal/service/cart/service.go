// Package cart keeps the terminal's draft cart in step with the branch API and
// runs the checkout protocol.
package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"saas-pos/internal/domain"
	cartrepo "saas-pos/internal/repository/cart"
	invoicerepo "saas-pos/internal/repository/invoice"
	salerepo "saas-pos/internal/repository/sale"
	"saas-pos/internal/session"
)

type cartRepo interface {
	PostCurrent(ctx context.Context, branchID string, in *cartrepo.CreateCartInput) (*domain.Cart, error)
	Get(ctx context.Context, branchID, cartID string) (*domain.Cart, error)
	AddItem(ctx context.Context, branchID, cartID string, in cartrepo.AddItemInput) error
	UpdateItemQty(ctx context.Context, branchID, cartID, productID string, in cartrepo.UpdateItemInput) error
	RemoveItem(ctx context.Context, branchID, cartID, productID string) error
	Checkout(ctx context.Context, branchID, cartID string, in cartrepo.CheckoutInput) (*domain.CheckoutResult, error)
}

type invoiceRepo interface {
	Issue(ctx context.Context, branchID, invoiceID string, in invoicerepo.IssueInput) error
	GetPDF(ctx context.Context, branchID, invoiceID string, opts invoicerepo.PDFOptions) (*domain.Document, error)
}

type saleRecorder interface {
	Record(ctx context.Context, sale domain.Sale) error
}

// Notifier shows notices to the operator.
type Notifier interface {
	Notify(n Notice)
}

// Opener hands a rendered invoice to a viewer. It returns ErrPopupBlocked when
// no viewer could be opened.
type Opener interface {
	Open(ctx context.Context, invoiceID string, doc *domain.Document) error
}

type Deps struct {
	Carts    cartrepo.Repository
	Invoices invoicerepo.Repository
	Session  *session.Session
	Notifier Notifier
	Opener   Opener
	// Sales is optional; completed sales are not journaled when nil.
	Sales  salerepo.Repository
	Logger *zap.Logger
	Now    func() time.Time
}

type Service struct {
	carts    cartRepo
	invoices invoiceRepo
	session  *session.Session
	notifier Notifier
	opener   Opener
	sales    saleRecorder
	logger   *zap.Logger
	now      func() time.Time

	mu              sync.Mutex
	cart            *domain.Cart
	err             error
	pending         map[string]int
	checkoutPending bool
	view            View
	lastSale        *domain.Sale
	ensure          slot
	refresh         slot
	refetch         slot
	subs            map[int]func(State)
	nextSub         int
}

func New(d Deps) *Service {
	s := &Service{
		carts:    d.Carts,
		invoices: d.Invoices,
		session:  d.Session,
		notifier: d.Notifier,
		opener:   d.Opener,
		logger:   d.Logger,
		now:      d.Now,
		pending:  make(map[string]int),
		view:     ViewCart,
		subs:     make(map[int]func(State)),
	}
	if d.Sales != nil {
		s.sales = d.Sales
	}
	if s.notifier == nil {
		s.notifier = discardNotifier{}
	}
	if s.opener == nil {
		s.opener = blockedOpener{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) branchID() string {
	return s.session.BranchID
}

// State returns a snapshot of the orchestrator state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every change. fn may be
// called from any goroutine and must not block.
func (s *Service) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// apply runs fn under the lock and publishes a snapshot when fn reports a
// change.
func (s *Service) apply(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	subs := make([]func(State), 0, len(s.subs))
	for _, f := range s.subs {
		subs = append(subs, f)
	}
	s.mu.Unlock()
	for _, f := range subs {
		f(snap)
	}
}

func (s *Service) snapshotLocked() State {
	st := State{
		Cart:            s.cart.Clone(),
		Loading:         s.ensure.busy() || s.refresh.busy(),
		Err:             s.err,
		Pending:         make(map[string]bool, len(s.pending)),
		CheckoutPending: s.checkoutPending,
		View:            s.view,
	}
	for id, n := range s.pending {
		if n > 0 {
			st.Pending[id] = true
		}
	}
	if s.lastSale != nil {
		sale := *s.lastSale
		st.LastSale = &sale
	}
	return st
}

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}

type blockedOpener struct{}

func (blockedOpener) Open(context.Context, string, *domain.Document) error {
	return ErrPopupBlocked
}
