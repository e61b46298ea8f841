package cart

import (
	"context"

	"saas-pos/internal/domain"
)

// CreateCartInput is the optional body of a get-or-create call.
type CreateCartInput struct {
	CustomerID *string `json:"customerId,omitempty"`
}

type AddItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type UpdateItemInput struct {
	Quantity int `json:"quantity"`
}

type CheckoutInput struct {
	CustomerID *string `json:"customerId,omitempty"`
}

// Repository is the remote cart service of a branch.
type Repository interface {
	GetCurrent(ctx context.Context, branchID string) (*domain.Cart, error)
	PostCurrent(ctx context.Context, branchID string, in *CreateCartInput) (*domain.Cart, error)
	Get(ctx context.Context, branchID, cartID string) (*domain.Cart, error)
	AddItem(ctx context.Context, branchID, cartID string, in AddItemInput) error
	UpdateItemQty(ctx context.Context, branchID, cartID, productID string, in UpdateItemInput) error
	RemoveItem(ctx context.Context, branchID, cartID, productID string) error
	Checkout(ctx context.Context, branchID, cartID string, in CheckoutInput) (*domain.CheckoutResult, error)
}
