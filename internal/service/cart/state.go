package cart

import "saas-pos/internal/domain"

type View string

const (
	ViewCart    View = "cart"
	ViewSuccess View = "success"
)

// State is a copy of the orchestrator state; callers may keep and read it
// freely.
type State struct {
	Cart    *domain.Cart
	Loading bool
	// Err is the last cart fetch failure, cleared by the next successful fetch.
	Err             error
	Pending         map[string]bool
	CheckoutPending bool
	View            View
	LastSale        *domain.Sale
}

func (st State) IsPending(productID string) bool {
	return st.Pending[productID]
}
