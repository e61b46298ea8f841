package cart

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saas-pos/internal/apiclient"
	"saas-pos/internal/domain"
	"saas-pos/internal/logging"
	cartrepo "saas-pos/internal/repository/cart"
	"saas-pos/internal/session"
	"saas-pos/internal/wire"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	carts    *stubCarts
	invoices *stubInvoices
	notifier *recordingNotifier
	opener   *stubOpener
	sales    *stubSales
	session  *session.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		carts:    &stubCarts{},
		invoices: &stubInvoices{},
		notifier: &recordingNotifier{},
		opener:   &stubOpener{},
		sales:    &stubSales{},
		session:  session.New("b1"),
	}
	f.svc = New(Deps{
		Carts:    f.carts,
		Invoices: f.invoices,
		Session:  f.session,
		Notifier: f.notifier,
		Opener:   f.opener,
		Sales:    f.sales,
		Logger:   logging.Nop(),
		Now:      func() time.Time { return fixedNow },
	})
	return f
}

func draftCart(id string) *domain.Cart {
	return &domain.Cart{
		ID:            id,
		TenantID:      "t1",
		BranchID:      "b1",
		Status:        domain.CartStatusDraft,
		Subtotal:      "20.00",
		DiscountTotal: "0.00",
		TaxTotal:      "3.47",
		Total:         "20.00",
		Items: []domain.CartItem{
			{ProductID: "p1", Name: "Mate", Quantity: 2, UnitPrice: "10.00", LineTotal: "20.00"},
		},
	}
}

func emptyCart(id string) *domain.Cart {
	c := draftCart(id)
	c.Items = nil
	c.Subtotal, c.TaxTotal, c.Total = "0.00", "0.00", "0.00"
	return c
}

func checkoutResult(cartID string) *domain.CheckoutResult {
	c := draftCart(cartID)
	c.Status = "CHECKED_OUT"
	return &domain.CheckoutResult{
		Cart: *c,
		Invoice: domain.CheckoutInvoice{
			ID:     "inv-1",
			Number: "0001-00000042",
			Status: "DRAFT",
			Total:  "20.00",
		},
	}
}

func statusErr(code int, message string) error {
	return &apiclient.Error{StatusCode: code, Message: message, Method: http.MethodPost, Path: "/test"}
}

func TestEnsureCartIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.carts.postCurrent = []*domain.Cart{emptyCart("c1")}
	ctx := context.Background()

	require.NoError(t, f.svc.EnsureCart(ctx))
	first := f.svc.State().Cart.ID
	require.NoError(t, f.svc.EnsureCart(ctx))

	st := f.svc.State()
	assert.Equal(t, first, st.Cart.ID)
	assert.False(t, st.Loading)
	assert.Nil(t, st.Err)
	assert.Equal(t, ViewCart, st.View)
	post, _, _ := f.carts.calls()
	assert.Equal(t, 2, post)
}

func TestEnsureCartFailureIsKeptInState(t *testing.T) {
	f := newFixture(t)
	f.carts.postErr = statusErr(http.StatusInternalServerError, "")

	err := f.svc.EnsureCart(context.Background())
	require.Error(t, err)

	st := f.svc.State()
	assert.Nil(t, st.Cart)
	assert.Equal(t, err, st.Err)
	assert.False(t, st.Loading)
}

func TestEnsureCartDiscardsSupersededResponse(t *testing.T) {
	f := newFixture(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	slowPost := &blockingPost{stubCarts: f.carts, entered: entered, release: release, first: draftCart("stale"), rest: draftCart("fresh"), calls: &calls}
	f.svc.carts = slowPost

	errA := make(chan error, 1)
	go func() { errA <- f.svc.EnsureCart(context.Background()) }()
	<-entered
	assert.True(t, f.svc.State().Loading)

	require.NoError(t, f.svc.EnsureCart(context.Background()))
	close(release)
	assert.ErrorIs(t, <-errA, context.Canceled)

	st := f.svc.State()
	assert.Equal(t, "fresh", st.Cart.ID)
	assert.False(t, st.Loading)
	assert.Empty(t, f.notifier.all())
}

// blockingPost holds the first PostCurrent until release is closed.
type blockingPost struct {
	*stubCarts
	entered, release chan struct{}
	first, rest      *domain.Cart
	calls            *int32
}

func (b *blockingPost) PostCurrent(ctx context.Context, branchID string, in *cartrepo.CreateCartInput) (*domain.Cart, error) {
	if atomic.AddInt32(b.calls, 1) == 1 {
		close(b.entered)
		<-b.release
		return b.first.Clone(), nil
	}
	return b.rest.Clone(), nil
}

func TestRefreshCartDiscardsSupersededResponse(t *testing.T) {
	f := newFixture(t)
	f.carts.postCurrent = []*domain.Cart{draftCart("c1")}
	ctx := context.Background()
	require.NoError(t, f.svc.EnsureCart(ctx))

	stale := draftCart("c1")
	stale.Items[0].Quantity = 1
	fresh := draftCart("c1")
	fresh.Items[0].Quantity = 5
	entered := make(chan struct{})
	release := make(chan struct{})
	var n int32
	f.carts.getFn = func(_ context.Context, _ string) (*domain.Cart, error) {
		if atomic.AddInt32(&n, 1) == 1 {
			close(entered)
			<-release
			return stale.Clone(), nil
		}
		return fresh.Clone(), nil
	}

	errA := make(chan error, 1)
	go func() { errA <- f.svc.RefreshCart(ctx) }()
	<-entered

	require.NoError(t, f.svc.RefreshCart(ctx))
	close(release)
	assert.ErrorIs(t, <-errA, context.Canceled)

	st := f.svc.State()
	assert.Equal(t, 5, st.Cart.Items[0].Quantity)
	assert.False(t, st.Loading)
	assert.Nil(t, st.Err)
	assert.Empty(t, f.notifier.all())
}

func TestRefreshCartRecoversFromNotFound(t *testing.T) {
	f := newFixture(t)
	f.carts.postCurrent = []*domain.Cart{draftCart("c1"), emptyCart("c2")}
	ctx := context.Background()
	require.NoError(t, f.svc.EnsureCart(ctx))

	f.carts.getErr = statusErr(http.StatusNotFound, "cart not found")
	require.NoError(t, f.svc.RefreshCart(ctx))

	st := f.svc.State()
	require.NotNil(t, st.Cart)
	assert.Equal(t, "c2", st.Cart.ID)
	assert.Nil(t, st.Err)
	assert.Empty(t, f.notifier.all())
}

func TestRefreshCartWithoutCartEnsures(t *testing.T) {
	f := newFixture(t)
	f.carts.postCurrent = []*domain.Cart{emptyCart("c1")}

	require.NoError(t, f.svc.RefreshCart(context.Background()))

	post, get, _ := f.carts.calls()
	assert.Equal(t, 1, post)
	assert.Equal(t, 0, get)
	assert.Equal(t, "c1", f.svc.State().Cart.ID)
}

func TestNormalizeQuantity(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{-5, 0},
		{-0.5, 0},
		{0, 0},
		{0.999, 0},
		{1, 1},
		{1.9, 1},
		{42.0001, 42},
		{math.NaN(), 0},
		{math.Inf(1), math.MaxInt32},
		{math.Inf(-1), 0},
		{3e10, math.MaxInt32},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeQuantity(tt.in), "NormalizeQuantity(%v)", tt.in)
	}
}

func TestUpdateItemQtySubmitsNormalizedQuantity(t *testing.T) {
	f := newFixture(t)
	f.carts.postCurrent = []*domain.Cart{draftCart("c1")}
	f.carts.getCart = emptyCart("c1")
	ctx := context.Background()
	require.NoError(t, f.svc.EnsureCart(ctx))

	require.NoError(t, f.svc.UpdateItemQty(ctx, "p1", -5))

	assert.Equal(t, 0, f.carts.lastUpdate.Quantity)
	assert.Equal(t, "c1", f.carts.lastCartID)
	assert.Equal(t, "p1", f.carts.lastProductID)
	assert.True(t, f.svc.State().Cart.IsEmpty())
}

func TestAddItemLoadsCartFirstAndRefetches(t *testing.T) {
	f := newFixture(t)
	f.carts.postCurrent = []*domain.Cart{emptyCart("c1")}
	f.carts.getCart = draftCart("c1")

	require.NoError(t, f.svc.AddItem(context.Background(), " p1 ", 2.7))

	assert.Equal(t, "p1", f.carts.lastAdd.ProductID)
	assert.Equal(t, 2, f.carts.lastAdd.Quantity)
	assert.Equal(t, "c1", f.carts.lastCartID)
	item, ok := f.svc.State().Cart.Item("p1")
	require.True(t, ok)
	assert.Equal(t, 2, item.Quantity)
}

func TestMutationsClearPending(t *testing.T) {
	tests := []struct {
		name string
		err  error
		run  func(ctx context.Context, s *Service) error
	}{
		{"add ok", nil, func(ctx context.Context, s *Service) error { return s.AddItem(ctx, "p1", 1) }},
		{"add fails", errors.New("boom"), func(ctx context.Context, s *Service) error { return s.AddItem(ctx, "p1", 1) }},
		{"update ok", nil, func(ctx context.Context, s *Service) error { return s.UpdateItemQty(ctx, "p1", 3) }},
		{"update fails", statusErr(http.StatusConflict, ""), func(ctx context.Context, s *Service) error { return s.UpdateItemQty(ctx, "p1", 3) }},
		{"remove ok", nil, func(ctx context.Context, s *Service) error { return s.RemoveItem(ctx, "p1") }},
		{"remove cancelled", context.Canceled, func(ctx context.Context, s *Service) error { return s.RemoveItem(ctx, "p1") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.carts.postCurrent = []*domain.Cart{draftCart("c1")}
			f.carts.getCart = draftCart("c1")
			ctx := context.Background()
			require.NoError(t, f.svc.EnsureCart(ctx))

			var pendingDuringCall bool
			f.carts.mutateFn = func(context.Context) error {
				pendingDuringCall = f.svc.State().IsPending("p1")
				return tt.err
			}

			err := tt.run(ctx, f.svc)
			if tt.err == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
			assert.True(t, pendingDuringCall)
			assert.False(t, f.svc.State().IsPending("p1"))
			assert.Empty(t, f.svc.State().Pending)
		})
	}
}

func TestMutationFailureNotifiesOnce(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantKey Key
		wantMsg string
	}{
		{"conflict with message", statusErr(http.StatusConflict, "cart already checked out"), KeyCartNotEditable, "cart already checked out"},
		{"conflict without message", statusErr(http.StatusConflict, ""), KeyCartNotEditable, defaultMessages[KeyCartNotEditable]},
		{"unauthorized", statusErr(http.StatusUnauthorized, "token expired"), KeyUnauthorized, defaultMessages[KeyUnauthorized]},
		{"forbidden", statusErr(http.StatusForbidden, ""), KeyForbidden, defaultMessages[KeyForbidden]},
		{"not found", statusErr(http.StatusNotFound, "no such product"), KeyGeneric, defaultMessages[KeyGeneric]},
		{"transport", errors.New("connection reset"), KeyGeneric, defaultMessages[KeyGeneric]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.carts.postCurrent = []*domain.Cart{draftCart("c1")}
			require.NoError(t, f.svc.EnsureCart(context.Background()))
			f.carts.mutateErr = tt.err

			err := f.svc.AddItem(context.Background(), "p1", 1)
			require.Error(t, err)
			assert.Equal(t, tt.err, err)

			notices := f.notifier.all()
			require.Len(t, notices, 1)
			assert.Equal(t, tt.wantKey, notices[0].Key)
			assert.Equal(t, tt.wantMsg, notices[0].Message)
			assert.Equal(t, LevelError, notices[0].Level)
			_, get, _ := f.carts.calls()
			assert.Equal(t, 0, get)
		})
	}
}

func TestMutationCancelledIsSilent(t *testing.T) {
	f := newFixture(t)
	f.carts.postCurrent = []*domain.Cart{draftCart("c1")}
	require.NoError(t, f.svc.EnsureCart(context.Background()))
	f.carts.mutateErr = context.Canceled

	err := f.svc.AddItem(context.Background(), "p1", 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.notifier.all())
}

func TestMutationMalformedRefetchIsSilent(t *testing.T) {
	f := newFixture(t)
	f.carts.postCurrent = []*domain.Cart{draftCart("c1")}
	require.NoError(t, f.svc.EnsureCart(context.Background()))
	f.carts.getErr = &wire.ParseError{Entity: "cart", Field: "id", Reason: "is required"}

	err := f.svc.AddItem(context.Background(), "p1", 1)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	assert.Empty(t, f.notifier.all())
	assert.Equal(t, "c1", f.svc.State().Cart.ID)
}

func TestMutationRequiresProductID(t *testing.T) {
	f := newFixture(t)

	err := f.svc.AddItem(context.Background(), "  ", 1)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, KeyProductRequired, ve.Key)

	post, _, _ := f.carts.calls()
	assert.Equal(t, 0, post)
	notices := f.notifier.all()
	require.Len(t, notices, 1)
	assert.Equal(t, LevelWarning, notices[0].Level)
	assert.Equal(t, KeyProductRequired, notices[0].Key)
	assert.Empty(t, f.svc.State().Pending)
}

func TestMutationRefetchSuperseded(t *testing.T) {
	f := newFixture(t)
	f.carts.postCurrent = []*domain.Cart{draftCart("c1")}
	ctx := context.Background()
	require.NoError(t, f.svc.EnsureCart(ctx))

	stale := draftCart("c1")
	stale.Items[0].Quantity = 1
	fresh := draftCart("c1")
	fresh.Items[0].Quantity = 5
	entered := make(chan struct{})
	release := make(chan struct{})
	var n int32
	f.carts.getFn = func(_ context.Context, _ string) (*domain.Cart, error) {
		if atomic.AddInt32(&n, 1) == 1 {
			close(entered)
			<-release
			return stale.Clone(), nil
		}
		return fresh.Clone(), nil
	}

	errA := make(chan error, 1)
	go func() { errA <- f.svc.UpdateItemQty(ctx, "p1", 1) }()
	<-entered

	require.NoError(t, f.svc.UpdateItemQty(ctx, "p1", 5))
	close(release)
	assert.NoError(t, <-errA)

	st := f.svc.State()
	assert.Equal(t, 5, st.Cart.Items[0].Quantity)
	assert.Nil(t, st.Err)
	assert.False(t, st.IsPending("p1"))
	assert.Empty(t, f.notifier.all())
}

func TestOverlappingEditsKeepPending(t *testing.T) {
	f := newFixture(t)
	f.carts.postCurrent = []*domain.Cart{draftCart("c1")}
	f.carts.getCart = draftCart("c1")
	ctx := context.Background()
	require.NoError(t, f.svc.EnsureCart(ctx))

	entered := make(chan struct{})
	release := make(chan struct{})
	var n int32
	f.carts.mutateFn = func(_ context.Context) error {
		if atomic.AddInt32(&n, 1) == 1 {
			close(entered)
			<-release
		}
		return nil
	}

	errA := make(chan error, 1)
	go func() { errA <- f.svc.AddItem(ctx, "p1", 1) }()
	<-entered
	assert.True(t, f.svc.State().IsPending("p1"))

	require.NoError(t, f.svc.AddItem(ctx, "p1", 1))
	// The first edit is still in flight.
	assert.True(t, f.svc.State().IsPending("p1"))

	close(release)
	require.NoError(t, <-errA)
	assert.False(t, f.svc.State().IsPending("p1"))
	assert.Empty(t, f.svc.State().Pending)
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t)
	f.carts.postCurrent = []*domain.Cart{draftCart("c1")}

	var got []State
	cancel := f.svc.Subscribe(func(st State) { got = append(got, st) })
	require.NoError(t, f.svc.EnsureCart(context.Background()))

	require.Len(t, got, 2)
	assert.True(t, got[0].Loading)
	assert.Nil(t, got[0].Cart)
	assert.False(t, got[1].Loading)
	assert.Equal(t, "c1", got[1].Cart.ID)

	got[1].Cart.Items[0].Quantity = 99
	assert.Equal(t, 2, f.svc.State().Cart.Items[0].Quantity)

	cancel()
	require.NoError(t, f.svc.EnsureCart(context.Background()))
	assert.Len(t, got, 2)
}

func TestNoticeFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   Key
		silent bool
	}{
		{"nil", nil, "", true},
		{"cancelled", context.Canceled, "", true},
		{"wrapped cancel", errors.Join(errors.New("GET /x"), context.Canceled), "", true},
		{"malformed", &wire.ParseError{Entity: "cart"}, "", true},
		{"validation", &ValidationError{Key: KeyEmptyCart}, KeyEmptyCart, false},
		{"popup", ErrPopupBlocked, KeyPopupBlocked, false},
		{"conflict", statusErr(http.StatusConflict, ""), KeyConflict, false},
		{"not implemented", statusErr(http.StatusNotImplemented, ""), KeyNotImplemented, false},
		{"unauthorized", statusErr(http.StatusUnauthorized, ""), KeyUnauthorized, false},
		{"forbidden", statusErr(http.StatusForbidden, ""), KeyForbidden, false},
		{"server", statusErr(http.StatusBadGateway, ""), KeyGeneric, false},
		{"deadline", context.DeadlineExceeded, KeyGeneric, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := noticeFor(tt.err, KeyConflict)
			assert.Equal(t, !tt.silent, ok)
			assert.Equal(t, tt.want, n.Key)
			if ok {
				assert.NotEmpty(t, n.Message)
			}
		})
	}
}
