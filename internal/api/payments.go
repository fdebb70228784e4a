package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// PaymentType distinguishes money received from money sent.
type PaymentType string

const (
	PaymentIn  PaymentType = "in"
	PaymentOut PaymentType = "out"
)

// Payment is a recorded payment against a contact or transaction.
// Amount is in cents.
type Payment struct {
	ID            int64       `json:"id"`
	Type          PaymentType `json:"type"`
	Amount        int64       `json:"amount"`
	Method        string      `json:"method"`
	ContactID     int64       `json:"contact_id"`
	TransactionID int64       `json:"transaction_id,omitempty"`
	Date          time.Time   `json:"date"`
	Notes         string      `json:"notes,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (p Payment) CacheID() int64 { return p.ID }

type PaymentParams struct {
	Type          PaymentType `json:"type"`
	Amount        int64       `json:"amount"`
	Method        string      `json:"method"`
	ContactID     int64       `json:"contact_id"`
	TransactionID int64       `json:"transaction_id,omitempty"`
	Date          time.Time   `json:"date"`
	Notes         string      `json:"notes,omitempty"`
}

// PaymentPatch is a partial payment update; nil fields stay untouched.
type PaymentPatch struct {
	Amount *int64     `json:"amount,omitempty"`
	Method *string    `json:"method,omitempty"`
	Date   *time.Time `json:"date,omitempty"`
	Notes  *string    `json:"notes,omitempty"`
}

type PaymentFilter struct {
	Type      PaymentType
	ContactID int64
}

func (f PaymentFilter) query() string {
	q := url.Values{}

	if f.Type != "" {
		q.Set("type", string(f.Type))
	}

	if f.ContactID != 0 {
		q.Set("contact_id", strconv.FormatInt(f.ContactID, 10))
	}

	if len(q) == 0 {
		return ""
	}

	return "?" + q.Encode()
}

func (c *Client) ListPayments(ctx context.Context, filter PaymentFilter) ([]Payment, error) {
	var out []Payment
	if err := c.do(ctx, http.MethodGet, "/api/v1/payments"+filter.query(), nil, &out, "list payments"); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) CreatePayment(ctx context.Context, params PaymentParams) (Payment, error) {
	var out Payment
	if err := c.do(ctx, http.MethodPost, "/api/v1/payments", params, &out, "record payment"); err != nil {
		return Payment{}, err
	}

	return out, nil
}

func (c *Client) UpdatePayment(ctx context.Context, id int64, patch PaymentPatch) (Payment, error) {
	var out Payment

	path := fmt.Sprintf("/api/v1/payments/%d", id)
	if err := c.do(ctx, http.MethodPatch, path, patch, &out, "update payment"); err != nil {
		return Payment{}, err
	}

	return out, nil
}

func (c *Client) DeletePayment(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/v1/payments/%d", id)

	return c.do(ctx, http.MethodDelete, path, nil, nil, "delete payment")
}
