package cart

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"saas-pos/internal/apiclient"
	"saas-pos/internal/domain"
)

// EnsureCart loads the branch's draft cart, creating one when none exists.
// A call superseded by a newer EnsureCart returns context.Canceled and leaves
// the state untouched.
func (s *Service) EnsureCart(ctx context.Context) error {
	return s.fetch(ctx, &s.ensure, "ensure cart", func(ctx context.Context) (*domain.Cart, error) {
		return s.carts.PostCurrent(ctx, s.branchID(), nil)
	})
}

// RefreshCart re-reads the loaded cart. An expired cart is replaced by a new
// current cart; with no cart loaded it behaves as EnsureCart.
func (s *Service) RefreshCart(ctx context.Context) error {
	cartID := s.loadedID()
	if cartID == "" {
		return s.EnsureCart(ctx)
	}
	return s.fetch(ctx, &s.refresh, "refresh cart", func(ctx context.Context) (*domain.Cart, error) {
		return s.getOrRecreate(ctx, cartID)
	})
}

// StartNewSale leaves the success view and loads a fresh draft cart.
func (s *Service) StartNewSale(ctx context.Context) error {
	s.apply(func() bool {
		s.view = ViewCart
		s.lastSale = nil
		return true
	})
	return s.EnsureCart(ctx)
}

func (s *Service) loadedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return ""
	}
	return s.cart.ID
}

func (s *Service) getOrRecreate(ctx context.Context, cartID string) (*domain.Cart, error) {
	c, err := s.carts.Get(ctx, s.branchID(), cartID)
	if apiclient.IsNotFound(err) {
		s.logger.Info("cart expired, creating a new one",
			zap.String("branch_id", s.branchID()),
			zap.String("cart_id", cartID),
		)
		return s.carts.PostCurrent(ctx, s.branchID(), nil)
	}
	return c, err
}

// fetch runs get as the latest fetch of its kind and commits the result only
// if nothing superseded it in the meantime.
func (s *Service) fetch(ctx context.Context, sl *slot, op string, get func(context.Context) (*domain.Cart, error)) error {
	var c *call
	s.apply(func() bool {
		c = sl.start(ctx)
		return true
	})

	cart, err := get(c.ctx)
	if err == nil && cart == nil {
		err = errors.New(op + ": empty response")
	}

	var result error
	s.apply(func() bool {
		cancelled := errors.Is(c.ctx.Err(), context.Canceled)
		sl.done(c)
		switch {
		case cancelled:
			result = context.Canceled
		case err != nil:
			s.err = err
			result = err
		default:
			s.cart = cart
			s.err = nil
		}
		return true
	})

	switch {
	case result == nil:
		s.logger.Debug(op,
			zap.String("branch_id", s.branchID()),
			zap.String("cart_id", cart.ID),
			zap.Int("items", len(cart.Items)),
		)
	case errors.Is(result, context.Canceled):
		s.logger.Debug(op+" superseded", zap.String("branch_id", s.branchID()))
	case !errors.Is(result, domain.ErrMalformedResponse):
		s.logger.Warn(op+" failed", zap.String("branch_id", s.branchID()), zap.Error(result))
	}
	return result
}
