package api

import (
	"context"
	"net/http"
	"time"
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) CacheID() int64 { return u.ID }

type Settings struct {
	BusinessName string `json:"business_name"`
	Currency     string `json:"currency"`
	TaxRate      int64  `json:"tax_rate"` // basis points
}

// Summary is the dashboard aggregate view. All totals are in cents.
type Summary struct {
	SalesTotal     int64 `json:"sales_total"`
	PurchasesTotal int64 `json:"purchases_total"`
	PaymentsIn     int64 `json:"payments_in"`
	PaymentsOut    int64 `json:"payments_out"`
	StockValue     int64 `json:"stock_value"`
	DraftCount     int64 `json:"-"` // filled in locally, not by the server
	ContactCount   int64 `json:"contact_count"`
	ProductCount   int64 `json:"product_count"`
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/api/v1/users", nil, &out, "list users"); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) GetSettings(ctx context.Context) (Settings, error) {
	var out Settings
	if err := c.do(ctx, http.MethodGet, "/api/v1/settings", nil, &out, "fetch settings"); err != nil {
		return Settings{}, err
	}

	return out, nil
}

func (c *Client) UpdateSettings(ctx context.Context, settings Settings) (Settings, error) {
	var out Settings
	if err := c.do(ctx, http.MethodPut, "/api/v1/settings", settings, &out, "update settings"); err != nil {
		return Settings{}, err
	}

	return out, nil
}

func (c *Client) GetSummary(ctx context.Context) (Summary, error) {
	var out Summary
	if err := c.do(ctx, http.MethodGet, "/api/v1/dashboard", nil, &out, "fetch dashboard summary"); err != nil {
		return Summary{}, err
	}

	return out, nil
}
