package cart

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"saas-pos/internal/apiclient"
	"saas-pos/internal/domain"
)

type httpRepo struct {
	client *apiclient.Client
	logger *zap.Logger
}

// NewHTTP returns a Repository backed by the branch REST API.
func NewHTTP(client *apiclient.Client, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &httpRepo{client: client, logger: logger}
}

func (r *httpRepo) GetCurrent(ctx context.Context, branchID string) (*domain.Cart, error) {
	return r.fetchCart(ctx, http.MethodGet, apiclient.Path("branches", branchID, "carts", "current"), nil)
}

func (r *httpRepo) PostCurrent(ctx context.Context, branchID string, in *CreateCartInput) (*domain.Cart, error) {
	var body any
	if in != nil {
		body = in
	}
	return r.fetchCart(ctx, http.MethodPost, apiclient.Path("branches", branchID, "carts", "current"), body)
}

func (r *httpRepo) Get(ctx context.Context, branchID, cartID string) (*domain.Cart, error) {
	return r.fetchCart(ctx, http.MethodGet, apiclient.Path("branches", branchID, "carts", cartID), nil)
}

func (r *httpRepo) AddItem(ctx context.Context, branchID, cartID string, in AddItemInput) error {
	_, err := r.client.Send(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   apiclient.Path("branches", branchID, "carts", cartID, "items"),
		Body:   in,
	})
	return err
}

func (r *httpRepo) UpdateItemQty(ctx context.Context, branchID, cartID, productID string, in UpdateItemInput) error {
	_, err := r.client.Send(ctx, apiclient.Request{
		Method: http.MethodPatch,
		Path:   apiclient.Path("branches", branchID, "carts", cartID, "items", productID),
		Body:   in,
	})
	return err
}

func (r *httpRepo) RemoveItem(ctx context.Context, branchID, cartID, productID string) error {
	_, err := r.client.Send(ctx, apiclient.Request{
		Method: http.MethodDelete,
		Path:   apiclient.Path("branches", branchID, "carts", cartID, "items", productID),
	})
	return err
}

func (r *httpRepo) Checkout(ctx context.Context, branchID, cartID string, in CheckoutInput) (*domain.CheckoutResult, error) {
	resp, err := r.client.Send(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   apiclient.Path("branches", branchID, "carts", cartID, "checkout"),
		Body:   in,
	})
	if err != nil {
		return nil, err
	}
	res, err := ParseCheckout(resp.Body)
	if err != nil {
		r.logger.Error("cart repo: malformed checkout response",
			zap.String("branch_id", branchID),
			zap.String("cart_id", cartID),
			zap.Error(err),
		)
		return nil, err
	}
	return res, nil
}

func (r *httpRepo) fetchCart(ctx context.Context, method, path string, body any) (*domain.Cart, error) {
	resp, err := r.client.Send(ctx, apiclient.Request{Method: method, Path: path, Body: body})
	if err != nil {
		return nil, err
	}
	c, err := ParseCart(resp.Body)
	if err != nil {
		r.logger.Error("cart repo: malformed cart response", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return c, nil
}
