package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Product is a catalog item. Price and Cost are in cents; Stock is tracked
// in the product's unit across all containers.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku,omitempty"`
	Unit      string    `json:"unit"`
	Price     int64     `json:"price"`
	Cost      int64     `json:"cost"`
	Stock     int64     `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p Product) CacheID() int64 { return p.ID }

// Container is a storage location products live in.
type Container struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	Capacity  int64     `json:"capacity,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Container) CacheID() int64 { return c.ID }

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, http.MethodGet, "/api/v1/products", nil, &out, "list products"); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (Product, error) {
	var out Product

	path := fmt.Sprintf("/api/v1/products/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, "fetch product"); err != nil {
		return Product{}, err
	}

	return out, nil
}

func (c *Client) ListContainers(ctx context.Context) ([]Container, error) {
	var out []Container
	if err := c.do(ctx, http.MethodGet, "/api/v1/containers", nil, &out, "list containers"); err != nil {
		return nil, err
	}

	return out, nil
}
