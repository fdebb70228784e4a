// Package catalog is the read-through cache for products and containers.
// Catalog rows feed the draft editor's line items; they are not mutated
// optimistically here, but stock-moving services invalidate the product view.
package catalog

import (
	"context"
	"fmt"

	"github.com/stockdesk-app/stockdesk/internal/api"
	"github.com/stockdesk-app/stockdesk/internal/cache"
)

type API interface {
	ListProducts(ctx context.Context) ([]api.Product, error)
	ListContainers(ctx context.Context) ([]api.Container, error)
}

type Service struct {
	api        API
	products   *cache.Collection[api.Product]
	containers *cache.Collection[api.Container]
}

func NewService(apiClient API) *Service {
	return &Service{
		api:        apiClient,
		products:   cache.NewCollection[api.Product](),
		containers: cache.NewCollection[api.Container](),
	}
}

// ProductsView exposes the product cache so stock-moving mutations
// (transactions, inventory adjustments) can mark it stale.
func (s *Service) ProductsView() cache.View {
	return s.products
}

func (s *Service) Products(ctx context.Context) ([]api.Product, error) {
	if s.products.NeedsFetch() {
		items, err := s.api.ListProducts(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching products: %w", err)
		}

		s.products.SetAll(items)
	}

	return s.products.Items(), nil
}

func (s *Service) Product(id int64) (api.Product, bool) {
	return s.products.Get(id)
}

func (s *Service) Containers(ctx context.Context) ([]api.Container, error) {
	if s.containers.NeedsFetch() {
		items, err := s.api.ListContainers(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching containers: %w", err)
		}

		s.containers.SetAll(items)
	}

	return s.containers.Items(), nil
}
