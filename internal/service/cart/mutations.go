package cart

import (
	"context"
	"errors"
	"math"
	"strings"

	"saas-pos/internal/domain"
	cartrepo "saas-pos/internal/repository/cart"
)

// NormalizeQuantity clamps a requested quantity to max(0, floor(q)) within
// the int32 range. NaN becomes 0.
func NormalizeQuantity(q float64) int {
	switch {
	case math.IsNaN(q), q <= 0:
		return 0
	case q >= math.MaxInt32:
		return math.MaxInt32
	}
	return int(math.Floor(q))
}

func (s *Service) AddItem(ctx context.Context, productID string, qty float64) error {
	return s.mutate(ctx, "add item", productID, func(ctx context.Context, cartID, productID string) error {
		return s.carts.AddItem(ctx, s.branchID(), cartID, cartrepo.AddItemInput{
			ProductID: productID,
			Quantity:  NormalizeQuantity(qty),
		})
	})
}

func (s *Service) UpdateItemQty(ctx context.Context, productID string, qty float64) error {
	return s.mutate(ctx, "update item", productID, func(ctx context.Context, cartID, productID string) error {
		return s.carts.UpdateItemQty(ctx, s.branchID(), cartID, productID, cartrepo.UpdateItemInput{
			Quantity: NormalizeQuantity(qty),
		})
	})
}

func (s *Service) RemoveItem(ctx context.Context, productID string) error {
	return s.mutate(ctx, "remove item", productID, func(ctx context.Context, cartID, productID string) error {
		return s.carts.RemoveItem(ctx, s.branchID(), cartID, productID)
	})
}

// mutate marks productID pending for the duration of send and re-fetches the
// whole cart once send succeeds. Failures are notified once and returned.
func (s *Service) mutate(ctx context.Context, op, productID string, send func(ctx context.Context, cartID, productID string) error) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return s.fail(op, &ValidationError{Key: KeyProductRequired}, KeyCartNotEditable)
	}

	s.apply(func() bool {
		s.pending[productID]++
		return true
	})
	defer s.apply(func() bool {
		s.pending[productID]--
		if s.pending[productID] <= 0 {
			delete(s.pending, productID)
		}
		return true
	})

	cartID := s.loadedID()
	if cartID == "" {
		if err := s.EnsureCart(ctx); err != nil {
			return s.fail(op, err, KeyCartNotEditable)
		}
		cartID = s.loadedID()
	}

	if err := send(ctx, cartID, productID); err != nil {
		return s.fail(op, err, KeyCartNotEditable)
	}

	err := s.fetch(ctx, &s.refetch, "refetch cart", func(ctx context.Context) (*domain.Cart, error) {
		return s.getOrRecreate(ctx, cartID)
	})
	if err != nil {
		// A newer mutation's refetch replaced ours; the change itself landed.
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			return nil
		}
		return s.fail(op, err, KeyCartNotEditable)
	}
	return nil
}
