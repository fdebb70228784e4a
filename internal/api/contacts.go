package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ContactType distinguishes customers from suppliers.
type ContactType string

const (
	ContactCustomer ContactType = "customer"
	ContactSupplier ContactType = "supplier"
)

// Contact is a customer or supplier. Balance is the outstanding amount in
// cents, positive when the contact owes the business.
type Contact struct {
	ID        int64       `json:"id"`
	Type      ContactType `json:"type"`
	Name      string      `json:"name"`
	Phone     string      `json:"phone,omitempty"`
	Email     string      `json:"email,omitempty"`
	Address   string      `json:"address,omitempty"`
	Balance   int64       `json:"balance"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (c Contact) CacheID() int64 { return c.ID }

type ContactParams struct {
	Type    ContactType `json:"type"`
	Name    string      `json:"name"`
	Phone   string      `json:"phone,omitempty"`
	Email   string      `json:"email,omitempty"`
	Address string      `json:"address,omitempty"`
}

type ContactPatch struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
}

func (c *Client) ListContacts(ctx context.Context, kind ContactType) ([]Contact, error) {
	path := "/api/v1/contacts"
	if kind != "" {
		path += "?type=" + url.QueryEscape(string(kind))
	}

	var out []Contact
	if err := c.do(ctx, http.MethodGet, path, nil, &out, "list contacts"); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) CreateContact(ctx context.Context, params ContactParams) (Contact, error) {
	var out Contact
	if err := c.do(ctx, http.MethodPost, "/api/v1/contacts", params, &out, "create contact"); err != nil {
		return Contact{}, err
	}

	return out, nil
}

func (c *Client) UpdateContact(ctx context.Context, id int64, patch ContactPatch) (Contact, error) {
	var out Contact

	path := fmt.Sprintf("/api/v1/contacts/%d", id)
	if err := c.do(ctx, http.MethodPatch, path, patch, &out, "update contact"); err != nil {
		return Contact{}, err
	}

	return out, nil
}

func (c *Client) DeleteContact(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/v1/contacts/%d", id)

	return c.do(ctx, http.MethodDelete, path, nil, nil, "delete contact")
}
