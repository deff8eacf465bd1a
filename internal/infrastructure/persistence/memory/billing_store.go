package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/frontdesk/backend/internal/domain/billing"
	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentStore is an append-only in-memory billing.PaymentRepository
type PaymentStore struct {
	mu       sync.RWMutex
	payments []billing.Payment
	// FailAppend makes Append fail with the given error.
	FailAppend error
}

// NewPaymentStore creates an empty PaymentStore
func NewPaymentStore() *PaymentStore {
	return &PaymentStore{}
}

// Append inserts a payment; a second payment for a stay is a conflict
func (s *PaymentStore) Append(_ context.Context, p *billing.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAppend != nil {
		return shared.NewPersistenceError("append payment", s.FailAppend)
	}
	for _, existing := range s.payments {
		if existing.StayID == p.StayID {
			return shared.NewConflictError("PAYMENT_EXISTS", "Stay already has a payment")
		}
	}
	s.payments = append(s.payments, *p)
	return nil
}

// FindByID returns a payment by ID
func (s *PaymentStore) FindByID(_ context.Context, id uuid.UUID) (*billing.Payment, error) {
	return s.find(func(p *billing.Payment) bool { return p.ID == id })
}

// FindByStayID returns the payment of a stay
func (s *PaymentStore) FindByStayID(_ context.Context, stayID uuid.UUID) (*billing.Payment, error) {
	return s.find(func(p *billing.Payment) bool { return p.StayID == stayID })
}

// FindByRoom lists a room's payments, newest first
func (s *PaymentStore) FindByRoom(_ context.Context, roomID uuid.UUID) ([]billing.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]billing.Payment, 0)
	for _, p := range s.payments {
		if p.RoomID == roomID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// All returns every stored payment in append order
func (s *PaymentStore) All() []billing.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]billing.Payment(nil), s.payments...)
}

func (s *PaymentStore) find(match func(*billing.Payment) bool) (*billing.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.payments {
		if match(&s.payments[i]) {
			p := s.payments[i]
			return &p, nil
		}
	}
	return nil, shared.NewNotFoundError("PAYMENT_NOT_FOUND", "Payment not found")
}

// ChargeStore is an in-memory billing.ServiceChargeRepository
type ChargeStore struct {
	mu      sync.RWMutex
	charges []billing.ServiceCharge
}

// NewChargeStore creates an empty ChargeStore
func NewChargeStore() *ChargeStore {
	return &ChargeStore{}
}

// Create stores a charge
func (s *ChargeStore) Create(_ context.Context, c *billing.ServiceCharge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charges = append(s.charges, *c)
	return nil
}

// FindByID returns a charge by ID
func (s *ChargeStore) FindByID(_ context.Context, id uuid.UUID) (*billing.ServiceCharge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.charges {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, shared.NewNotFoundError("CHARGE_NOT_FOUND", "Service charge not found")
}

// Delete removes a charge
func (s *ChargeStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.charges {
		if c.ID == id {
			s.charges = append(s.charges[:i], s.charges[i+1:]...)
			return nil
		}
	}
	return shared.NewNotFoundError("CHARGE_NOT_FOUND", "Service charge not found")
}

// FindByStay lists a stay's charges in insertion order
func (s *ChargeStore) FindByStay(_ context.Context, stayID uuid.UUID) ([]billing.ServiceCharge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]billing.ServiceCharge, 0)
	for _, c := range s.charges {
		if c.StayID == stayID {
			out = append(out, c)
		}
	}
	return out, nil
}

// DeleteByStay removes all charges of a stay
func (s *ChargeStore) DeleteByStay(_ context.Context, stayID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.charges[:0]
	for _, c := range s.charges {
		if c.StayID != stayID {
			kept = append(kept, c)
		}
	}
	s.charges = kept
	return nil
}

// Catalog is an in-memory billing.CatalogRepository
type Catalog struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]billing.CatalogEntry
}

// NewCatalog creates a catalog with the given entries
func NewCatalog(entries ...billing.CatalogEntry) *Catalog {
	c := &Catalog{entries: make(map[uuid.UUID]billing.CatalogEntry)}
	for _, e := range entries {
		c.entries[e.ID] = e
	}
	return c
}

// Lookup returns an active entry
func (c *Catalog) Lookup(_ context.Context, serviceID uuid.UUID) (*billing.CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[serviceID]
	if !ok || !e.IsActive {
		return nil, shared.NewNotFoundError("SERVICE_NOT_FOUND", "Service not found")
	}
	return &e, nil
}

// Create adds an entry
func (c *Catalog) Create(_ context.Context, e *billing.CatalogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[e.ID] = *e
	return nil
}

// Save replaces an entry
func (c *Catalog) Save(_ context.Context, e *billing.CatalogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[e.ID]; !ok {
		return shared.NewNotFoundError("SERVICE_NOT_FOUND", "Service not found")
	}
	c.entries[e.ID] = *e
	return nil
}

// FindAll lists entries ordered by name
func (c *Catalog) FindAll(_ context.Context, activeOnly bool) ([]billing.CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]billing.CatalogEntry, 0, len(c.entries))
	for _, e := range c.entries {
		if activeOnly && !e.IsActive {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

var (
	_ billing.PaymentRepository       = (*PaymentStore)(nil)
	_ billing.ServiceChargeRepository = (*ChargeStore)(nil)
	_ billing.CatalogRepository       = (*Catalog)(nil)
)
