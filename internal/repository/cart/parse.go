package cart

import (
	"fmt"

	"saas-pos/internal/domain"
	"saas-pos/internal/wire"
)

// ParseCart validates a cart payload. Items repeating a productId are dropped.
func ParseCart(data []byte) (*domain.Cart, error) {
	obj, err := wire.Decode("cart", data)
	if err != nil {
		return nil, err
	}
	return cartFromObject(obj)
}

// ParseCheckout validates a checkout payload; both the cart and the invoice
// must be well formed.
func ParseCheckout(data []byte) (*domain.CheckoutResult, error) {
	obj, err := wire.Decode("checkout", data)
	if err != nil {
		return nil, err
	}
	r := wire.NewReader("checkout", obj)
	cartObj := r.Object("cart")
	invObj := r.Object("invoice")
	if err := r.Err(); err != nil {
		return nil, err
	}

	c, err := cartFromObject(cartObj)
	if err != nil {
		r.Nest("cart", err)
		return nil, r.Err()
	}
	inv, err := checkoutInvoiceFromObject(invObj)
	if err != nil {
		r.Nest("invoice", err)
		return nil, r.Err()
	}
	return &domain.CheckoutResult{Cart: *c, Invoice: *inv}, nil
}

func cartFromObject(obj wire.Object) (*domain.Cart, error) {
	r := wire.NewReader("cart", obj)
	c := domain.Cart{
		ID:            r.String("id"),
		TenantID:      r.String("tenantId"),
		BranchID:      r.String("branchId"),
		CustomerID:    r.OptString("customerId"),
		Status:        r.String("status"),
		Subtotal:      r.Money("subtotal"),
		DiscountTotal: r.Money("discountTotal"),
		TaxTotal:      r.Money("taxTotal"),
		Total:         r.Money("total"),
	}
	rawItems := r.Objects("items")
	if err := r.Err(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rawItems))
	c.Items = make([]domain.CartItem, 0, len(rawItems))
	for i, raw := range rawItems {
		item, err := cartItemFromObject(raw)
		if err != nil {
			r.Nest(fmt.Sprintf("items[%d]", i), err)
			return nil, r.Err()
		}
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		c.Items = append(c.Items, item)
	}
	return &c, nil
}

func cartItemFromObject(obj wire.Object) (domain.CartItem, error) {
	r := wire.NewReader("cart item", obj)
	item := domain.CartItem{
		ProductID: r.String("productId"),
		Name:      r.String("name"),
		Code:      r.Text("code"),
		Quantity:  r.Quantity("quantity"),
		UnitPrice: r.Money("unitPrice"),
		LineTotal: r.Money("lineTotal"),
	}
	if err := r.Err(); err != nil {
		return domain.CartItem{}, err
	}
	return item, nil
}

func checkoutInvoiceFromObject(obj wire.Object) (*domain.CheckoutInvoice, error) {
	r := wire.NewReader("checkout invoice", obj)
	inv := domain.CheckoutInvoice{
		ID:       r.String("id"),
		Number:   r.String("number"),
		Status:   r.String("status"),
		IssuedAt: r.OptTime("issuedAt"),
		Total:    r.Money("total"),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return &inv, nil
}
