package mockapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/stockdesk-app/stockdesk/internal/api"
)

func (s *Server) listPayments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind := api.PaymentType(r.URL.Query().Get("type"))
	contactID, _ := strconv.ParseInt(r.URL.Query().Get("contact_id"), 10, 64)

	out := make([]api.Payment, 0, len(s.payments))

	for _, p := range s.payments {
		if kind != "" && p.Type != kind {
			continue
		}

		if contactID != 0 && p.ContactID != contactID {
			continue
		}

		out = append(out, p)
	}

	sortByID(out)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createPayment(w http.ResponseWriter, r *http.Request) {
	var params api.PaymentParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if params.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	if params.Type != api.PaymentIn && params.Type != api.PaymentOut {
		writeError(w, http.StatusBadRequest, "unknown payment type")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contact, ok := s.contacts[params.ContactID]
	if !ok {
		writeError(w, http.StatusBadRequest, "contact does not exist")
		return
	}

	now := time.Now().UTC()
	p := api.Payment{
		ID:            s.id(),
		Type:          params.Type,
		Amount:        params.Amount,
		Method:        params.Method,
		ContactID:     params.ContactID,
		TransactionID: params.TransactionID,
		Date:          params.Date,
		Notes:         params.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.payments[p.ID] = p

	// A payment in settles what the contact owes; a payment out settles what
	// the business owes.
	if p.Type == api.PaymentIn {
		contact.Balance -= p.Amount
	} else {
		contact.Balance += p.Amount
	}

	contact.UpdatedAt = now
	s.contacts[contact.ID] = contact

	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var patch api.PaymentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}

	if patch.Amount != nil {
		if *patch.Amount <= 0 {
			writeError(w, http.StatusBadRequest, "amount must be positive")
			return
		}

		p.Amount = *patch.Amount
	}

	if patch.Method != nil {
		p.Method = *patch.Method
	}

	if patch.Date != nil {
		p.Date = *patch.Date
	}

	if patch.Notes != nil {
		p.Notes = *patch.Notes
	}

	p.UpdatedAt = time.Now().UTC()
	s.payments[id] = p

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payments[id]; !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}

	delete(s.payments, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind := api.ContactType(r.URL.Query().Get("type"))

	out := make([]api.Contact, 0, len(s.contacts))

	for _, c := range s.contacts {
		if kind != "" && c.Type != kind {
			continue
		}

		out = append(out, c)
	}

	sortByID(out)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createContact(w http.ResponseWriter, r *http.Request) {
	var params api.ContactParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if params.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if params.Type != api.ContactCustomer && params.Type != api.ContactSupplier {
		writeError(w, http.StatusBadRequest, "unknown contact type")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	c := api.Contact{
		ID:        s.id(),
		Type:      params.Type,
		Name:      params.Name,
		Phone:     params.Phone,
		Email:     params.Email,
		Address:   params.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.contacts[c.ID] = c

	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) updateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var patch api.ContactPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[id]
	if !ok {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		c.Name = *patch.Name
	}

	if patch.Phone != nil {
		c.Phone = *patch.Phone
	}

	if patch.Email != nil {
		c.Email = *patch.Email
	}

	if patch.Address != nil {
		c.Address = *patch.Address
	}

	c.UpdatedAt = time.Now().UTC()
	s.contacts[id] = c

	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contacts[id]; !ok {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}

	for _, t := range s.transactions {
		if t.ContactID == id {
			writeError(w, http.StatusConflict, "contact has transactions and cannot be deleted")
			return
		}
	}

	delete(s.contacts, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listProducts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]api.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}

	sortByID(out)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) listContainers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]api.Container, 0, len(s.containers))
	for _, c := range s.containers {
		out = append(out, c)
	}

	sortByID(out)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind := api.TransactionKind(r.URL.Query().Get("kind"))

	out := make([]api.Transaction, 0, len(s.transactions))

	for _, t := range s.transactions {
		if kind != "" && t.Kind != kind {
			continue
		}

		out = append(out, t)
	}

	sortByID(out)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	writeJSON(w, http.StatusOK, t)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var params api.TransactionParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(params.Items) == 0 {
		writeError(w, http.StatusBadRequest, "transaction needs at least one item")
		return
	}

	if params.Kind != api.TransactionSale && params.Kind != api.TransactionPurchase {
		writeError(w, http.StatusBadRequest, "unknown transaction kind")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contact, ok := s.contacts[params.ContactID]
	if !ok {
		writeError(w, http.StatusBadRequest, "contact does not exist")
		return
	}

	var total int64

	for _, it := range params.Items {
		if it.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, "item quantity must be positive")
			return
		}

		if _, ok := s.products[it.ProductID]; !ok {
			writeError(w, http.StatusBadRequest, "product does not exist")
			return
		}

		total += it.Quantity * it.UnitPrice
	}

	total = total - params.Discount + params.Tax

	now := time.Now().UTC()
	t := api.Transaction{
		ID:          s.id(),
		Kind:        params.Kind,
		ContactID:   params.ContactID,
		ContainerID: params.ContainerID,
		Items:       params.Items,
		Total:       total,
		Discount:    params.Discount,
		Tax:         params.Tax,
		Paid:        params.Paid,
		Notes:       params.Notes,
		Date:        params.Date,
		CreatedAt:   now,
	}
	s.transactions[t.ID] = t

	// Move stock and the contact's outstanding balance.
	for _, it := range t.Items {
		p := s.products[it.ProductID]
		if t.Kind == api.TransactionSale {
			p.Stock -= it.Quantity
		} else {
			p.Stock += it.Quantity
		}

		p.UpdatedAt = now
		s.products[it.ProductID] = p
	}

	outstanding := total - t.Paid
	if t.Kind == api.TransactionSale {
		contact.Balance += outstanding
	} else {
		contact.Balance -= outstanding
	}

	contact.UpdatedAt = now
	s.contacts[contact.ID] = contact

	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	// Reverse the derived state the transaction produced.
	for _, it := range t.Items {
		if p, ok := s.products[it.ProductID]; ok {
			if t.Kind == api.TransactionSale {
				p.Stock += it.Quantity
			} else {
				p.Stock -= it.Quantity
			}

			s.products[it.ProductID] = p
		}
	}

	if contact, ok := s.contacts[t.ContactID]; ok {
		outstanding := t.Total - t.Paid
		if t.Kind == api.TransactionSale {
			contact.Balance -= outstanding
		} else {
			contact.Balance += outstanding
		}

		s.contacts[t.ContactID] = contact
	}

	delete(s.transactions, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listInventoryLogs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	productID, _ := strconv.ParseInt(r.URL.Query().Get("product_id"), 10, 64)

	out := make([]api.InventoryLog, 0, len(s.logs))

	for _, l := range s.logs {
		if productID != 0 && l.ProductID != productID {
			continue
		}

		out = append(out, l)
	}

	sortByID(out)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createInventoryLog(w http.ResponseWriter, r *http.Request) {
	var params api.InventoryLogParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if params.Delta == 0 {
		writeError(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	if params.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[params.ProductID]
	if !ok {
		writeError(w, http.StatusBadRequest, "product does not exist")
		return
	}

	now := time.Now().UTC()
	l := api.InventoryLog{
		ID:          s.id(),
		ProductID:   params.ProductID,
		ContainerID: params.ContainerID,
		Delta:       params.Delta,
		Reason:      params.Reason,
		CreatedAt:   now,
	}
	s.logs[l.ID] = l

	p.Stock += l.Delta
	p.UpdatedAt = now
	s.products[p.ID] = p

	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) deleteInventoryLog(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.logs[id]
	if !ok {
		writeError(w, http.StatusNotFound, "inventory log not found")
		return
	}

	// Reverting a log reverts its stock movement.
	if p, ok := s.products[l.ProductID]; ok {
		p.Stock -= l.Delta
		s.products[p.ID] = p
	}

	delete(s.logs, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]api.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}

	sortByID(out)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getSettings(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, s.settings)
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var settings api.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = settings
	writeJSON(w, http.StatusOK, s.settings)
}

func (s *Server) dashboard(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var summary api.Summary

	for _, t := range s.transactions {
		if t.Kind == api.TransactionSale {
			summary.SalesTotal += t.Total
		} else {
			summary.PurchasesTotal += t.Total
		}
	}

	for _, p := range s.payments {
		if p.Type == api.PaymentIn {
			summary.PaymentsIn += p.Amount
		} else {
			summary.PaymentsOut += p.Amount
		}
	}

	for _, p := range s.products {
		summary.StockValue += p.Stock * p.Cost
	}

	summary.ContactCount = int64(len(s.contacts))
	summary.ProductCount = int64(len(s.products))

	writeJSON(w, http.StatusOK, summary)
}

type ider interface {
	CacheID() int64
}

func sortByID[T ider](items []T) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CacheID() < items[j].CacheID()
	})
}
