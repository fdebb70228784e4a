package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// TransactionKind mirrors the draft kinds: a sale to a customer or a
// purchase from a supplier.
type TransactionKind string

const (
	TransactionSale     TransactionKind = "sale"
	TransactionPurchase TransactionKind = "purchase"
)

type TransactionItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}

// Transaction is a completed sale or purchase. Amounts are in cents.
type Transaction struct {
	ID          int64             `json:"id"`
	Kind        TransactionKind   `json:"kind"`
	ContactID   int64             `json:"contact_id"`
	ContainerID int64             `json:"container_id,omitempty"`
	Items       []TransactionItem `json:"items"`
	Total       int64             `json:"total"`
	Discount    int64             `json:"discount"`
	Tax         int64             `json:"tax"`
	Paid        int64             `json:"paid"`
	Notes       string            `json:"notes,omitempty"`
	Date        time.Time         `json:"date"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (t Transaction) CacheID() int64 { return t.ID }

type TransactionParams struct {
	Kind        TransactionKind   `json:"kind"`
	ContactID   int64             `json:"contact_id"`
	ContainerID int64             `json:"container_id,omitempty"`
	Items       []TransactionItem `json:"items"`
	Discount    int64             `json:"discount"`
	Tax         int64             `json:"tax"`
	Paid        int64             `json:"paid"`
	Notes       string            `json:"notes,omitempty"`
	Date        time.Time         `json:"date"`
}

func (c *Client) ListTransactions(ctx context.Context, kind TransactionKind) ([]Transaction, error) {
	path := "/api/v1/transactions"
	if kind != "" {
		path += "?kind=" + url.QueryEscape(string(kind))
	}

	var out []Transaction
	if err := c.do(ctx, http.MethodGet, path, nil, &out, "list transactions"); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	var out Transaction

	path := fmt.Sprintf("/api/v1/transactions/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, "fetch transaction"); err != nil {
		return Transaction{}, err
	}

	return out, nil
}

func (c *Client) CreateTransaction(ctx context.Context, params TransactionParams) (Transaction, error) {
	var out Transaction
	if err := c.do(ctx, http.MethodPost, "/api/v1/transactions", params, &out, "record transaction"); err != nil {
		return Transaction{}, err
	}

	return out, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/v1/transactions/%d", id)

	return c.do(ctx, http.MethodDelete, path, nil, nil, "delete transaction")
}

// InventoryLog is a manual stock adjustment outside of a transaction.
type InventoryLog struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	ContainerID int64     `json:"container_id,omitempty"`
	Delta       int64     `json:"delta"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}

func (l InventoryLog) CacheID() int64 { return l.ID }

type InventoryLogParams struct {
	ProductID   int64  `json:"product_id"`
	ContainerID int64  `json:"container_id,omitempty"`
	Delta       int64  `json:"delta"`
	Reason      string `json:"reason"`
}

func (c *Client) ListInventoryLogs(ctx context.Context, productID int64) ([]InventoryLog, error) {
	path := "/api/v1/inventory-logs"
	if productID != 0 {
		path += fmt.Sprintf("?product_id=%d", productID)
	}

	var out []InventoryLog
	if err := c.do(ctx, http.MethodGet, path, nil, &out, "list inventory logs"); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) CreateInventoryLog(ctx context.Context, params InventoryLogParams) (InventoryLog, error) {
	var out InventoryLog
	if err := c.do(ctx, http.MethodPost, "/api/v1/inventory-logs", params, &out, "record stock adjustment"); err != nil {
		return InventoryLog{}, err
	}

	return out, nil
}

func (c *Client) DeleteInventoryLog(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/v1/inventory-logs/%d", id)

	return c.do(ctx, http.MethodDelete, path, nil, nil, "delete stock adjustment")
}
