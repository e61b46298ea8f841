package domain

import "time"

// Sale summarizes a completed checkout.
type Sale struct {
	InvoiceID   string    `json:"invoiceId"`
	Number      string    `json:"number"`
	Total       string    `json:"total"`
	BranchID    string    `json:"branchId"`
	CompletedAt time.Time `json:"completedAt"`
}
