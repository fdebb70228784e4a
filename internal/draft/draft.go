package draft

import (
	"errors"
	"strings"
	"time"
)

// ErrStorage marks failures of the durable draft storage. Drafts are the only
// copy of unsaved work, so callers must be able to tell a lost write apart
// from any other failure.
var ErrStorage = errors.New("draft storage failure")

// Kind represents the type of transaction a draft is for.
type Kind string

const (
	KindSale     Kind = "sale"
	KindPurchase Kind = "purchase"
)

// Draft is a locally persisted, not-yet-submitted transaction form.
type Draft struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Label     string    `json:"label"`
	Payload   Payload   `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LineItem is a single product line on an in-progress transaction.
type LineItem struct {
	ProductID int64  `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"` // cents
	Notes     string `json:"notes,omitempty"`
}

// Payload is the in-progress transaction form state.
// Monetary amounts are in cents.
type Payload struct {
	Date          time.Time  `json:"date"`
	ContactID     int64      `json:"contact_id"`
	ContainerID   int64      `json:"container_id,omitempty"`
	Items         []LineItem `json:"items"`
	Discount      int64      `json:"discount"`
	Tax           int64      `json:"tax"`
	Paid          int64      `json:"paid"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// Empty reports whether the payload carries nothing worth persisting:
// no counterparty, no line items and no non-blank notes.
func (p Payload) Empty() bool {
	return p.ContactID == 0 && len(p.Items) == 0 && strings.TrimSpace(p.Notes) == ""
}

// Total returns the payable amount for the payload.
func (p Payload) Total() int64 {
	var sum int64
	for _, it := range p.Items {
		sum += it.Quantity * it.UnitPrice
	}

	return sum - p.Discount + p.Tax
}

// PayloadPatch is a partial payload. Nil fields are left untouched by Merge.
type PayloadPatch struct {
	Date          *time.Time  `json:"date,omitempty"`
	ContactID     *int64      `json:"contact_id,omitempty"`
	ContainerID   *int64      `json:"container_id,omitempty"`
	Items         *[]LineItem `json:"items,omitempty"`
	Discount      *int64      `json:"discount,omitempty"`
	Tax           *int64      `json:"tax,omitempty"`
	Paid          *int64      `json:"paid,omitempty"`
	PaymentMethod *string     `json:"payment_method,omitempty"`
	Notes         *string     `json:"notes,omitempty"`
}

// AsPatch returns a patch carrying every field of p. Auto-save writes whole
// form snapshots, so its updates go through the same merge path as partial
// edits.
func (p Payload) AsPatch() PayloadPatch {
	items := make([]LineItem, len(p.Items))
	copy(items, p.Items)

	return PayloadPatch{
		Date:          &p.Date,
		ContactID:     &p.ContactID,
		ContainerID:   &p.ContainerID,
		Items:         &items,
		Discount:      &p.Discount,
		Tax:           &p.Tax,
		Paid:          &p.Paid,
		PaymentMethod: &p.PaymentMethod,
		Notes:         &p.Notes,
	}
}

// Merge applies the patch to p and returns the result. Fields absent from the
// patch keep their current value.
func (p Payload) Merge(patch PayloadPatch) Payload {
	if patch.Date != nil {
		p.Date = *patch.Date
	}

	if patch.ContactID != nil {
		p.ContactID = *patch.ContactID
	}

	if patch.ContainerID != nil {
		p.ContainerID = *patch.ContainerID
	}

	if patch.Items != nil {
		items := make([]LineItem, len(*patch.Items))
		copy(items, *patch.Items)
		p.Items = items
	}

	if patch.Discount != nil {
		p.Discount = *patch.Discount
	}

	if patch.Tax != nil {
		p.Tax = *patch.Tax
	}

	if patch.Paid != nil {
		p.Paid = *patch.Paid
	}

	if patch.PaymentMethod != nil {
		p.PaymentMethod = *patch.PaymentMethod
	}

	if patch.Notes != nil {
		p.Notes = *patch.Notes
	}

	return p
}
