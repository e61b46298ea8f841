// Package session holds the operator's selections for one terminal.
package session

import (
	"strings"
	"sync"

	"saas-pos/internal/domain"
)

// Session is safe for concurrent use. The zero value is not usable; call New.
type Session struct {
	BranchID string

	mu         sync.RWMutex
	customerID *string
	docType    domain.DocType
	cartOpen   bool
}

func New(branchID string) *Session {
	return &Session{BranchID: branchID, docType: domain.DefaultDocType}
}

// SelectCustomer sets the customer the next sale is billed to. A blank id
// clears the selection.
func (s *Session) SelectCustomer(id string) {
	id = strings.TrimSpace(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		s.customerID = nil
		return
	}
	s.customerID = &id
}

func (s *Session) ClearCustomer() {
	s.mu.Lock()
	s.customerID = nil
	s.mu.Unlock()
}

// Customer returns a copy of the selected customer id, or nil.
func (s *Session) Customer() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.customerID == nil {
		return nil
	}
	id := *s.customerID
	return &id
}

func (s *Session) SetDocType(d domain.DocType) {
	s.mu.Lock()
	s.docType = d
	s.mu.Unlock()
}

func (s *Session) DocType() domain.DocType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docType
}

func (s *Session) SetCartOpen(open bool) {
	s.mu.Lock()
	s.cartOpen = open
	s.mu.Unlock()
}

func (s *Session) CartOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartOpen
}

// ResetSelection forgets the customer and restores the default doc type.
func (s *Session) ResetSelection() {
	s.mu.Lock()
	s.customerID = nil
	s.docType = domain.DefaultDocType
	s.mu.Unlock()
}
