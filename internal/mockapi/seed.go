package mockapi

import (
	"time"

	"github.com/stockdesk-app/stockdesk/internal/api"
)

// SeedDemo loads a small dataset for local development.
func (s *Server) SeedDemo() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	for _, c := range []api.Container{
		{Name: "Main warehouse", Location: "Back room"},
		{Name: "Shop floor", Location: "Front"},
	} {
		c.ID = s.id()
		c.CreatedAt = now
		s.containers[c.ID] = c
	}

	for _, p := range []api.Product{
		{Name: "House blend 1kg", SKU: "CF-001", Unit: "bag", Price: 1850, Cost: 1100, Stock: 42},
		{Name: "Single origin 250g", SKU: "CF-014", Unit: "bag", Price: 1200, Cost: 750, Stock: 17},
		{Name: "Paper cups 8oz", SKU: "SP-201", Unit: "box", Price: 900, Cost: 520, Stock: 6},
	} {
		p.ID = s.id()
		p.CreatedAt = now
		p.UpdatedAt = now
		s.products[p.ID] = p
	}

	for _, c := range []api.Contact{
		{Type: api.ContactCustomer, Name: "Corner Deli", Phone: "555-0141"},
		{Type: api.ContactCustomer, Name: "Harbor Hotel", Email: "purchasing@harborhotel.example"},
		{Type: api.ContactSupplier, Name: "Roastery Import Co", Email: "orders@roastery.example"},
	} {
		c.ID = s.id()
		c.CreatedAt = now
		c.UpdatedAt = now
		s.contacts[c.ID] = c
	}
}
