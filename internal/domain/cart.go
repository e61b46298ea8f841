package domain

import "time"

// CartStatusDraft marks the single editable cart of a branch.
const CartStatusDraft = "DRAFT"

// Cart is the server's view of a branch sale in progress. Money fields are
// decimal strings exactly as received.
type Cart struct {
	ID            string     `json:"id"`
	TenantID      string     `json:"tenantId"`
	BranchID      string     `json:"branchId"`
	CustomerID    *string    `json:"customerId"`
	Status        string     `json:"status"`
	Subtotal      string     `json:"subtotal"`
	DiscountTotal string     `json:"discountTotal"`
	TaxTotal      string     `json:"taxTotal"`
	Total         string     `json:"total"`
	Items         []CartItem `json:"items"`
}

type CartItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	LineTotal string `json:"lineTotal"`
}

func (c *Cart) IsDraft() bool {
	return c != nil && c.Status == CartStatusDraft
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Item returns the line for productID, if any.
func (c *Cart) Item(productID string) (CartItem, bool) {
	if c == nil {
		return CartItem{}, false
	}
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}

// Clone returns a deep copy so callers can hold a snapshot safely.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	if c.CustomerID != nil {
		id := *c.CustomerID
		out.CustomerID = &id
	}
	out.Items = append([]CartItem(nil), c.Items...)
	return &out
}

// CheckoutInvoice is the invoice stub returned by a cart checkout.
type CheckoutInvoice struct {
	ID       string     `json:"id"`
	Number   string     `json:"number"`
	Status   string     `json:"status"`
	IssuedAt *time.Time `json:"issuedAt"`
	Total    string     `json:"total"`
}

// CheckoutResult pairs the finalized cart with its draft invoice.
type CheckoutResult struct {
	Cart    Cart            `json:"cart"`
	Invoice CheckoutInvoice `json:"invoice"`
}
