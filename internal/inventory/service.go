// Package inventory handles manual stock adjustments (spoilage, recounts,
// transfers) as optimistic mutations over the inventory log.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stockdesk-app/stockdesk/internal/api"
	"github.com/stockdesk-app/stockdesk/internal/cache"
	"github.com/stockdesk-app/stockdesk/internal/optimistic"
)

var ErrInvalid = errors.New("invalid stock adjustment")

type API interface {
	ListInventoryLogs(ctx context.Context, productID int64) ([]api.InventoryLog, error)
	CreateInventoryLog(ctx context.Context, params api.InventoryLogParams) (api.InventoryLog, error)
	DeleteInventoryLog(ctx context.Context, id int64) error
}

type Service struct {
	api  API
	logs *cache.Collection[api.InventoryLog]

	// related carries the product catalog and dashboard views; every
	// adjustment moves stock, so both go stale on success.
	related []cache.View
}

func NewService(apiClient API, related ...cache.View) *Service {
	return &Service{
		api:     apiClient,
		logs:    cache.NewCollection[api.InventoryLog](),
		related: related,
	}
}

func (s *Service) List(ctx context.Context) ([]api.InventoryLog, error) {
	if s.logs.NeedsFetch() {
		items, err := s.api.ListInventoryLogs(ctx, 0)
		if err != nil {
			return nil, fmt.Errorf("fetching inventory logs: %w", err)
		}

		s.logs.SetAll(items)
	}

	return s.logs.Items(), nil
}

func (s *Service) Adjust(ctx context.Context, params api.InventoryLogParams) (api.InventoryLog, error) {
	if params.Delta == 0 {
		return api.InventoryLog{}, fmt.Errorf("%w: delta must be non-zero", ErrInvalid)
	}

	if strings.TrimSpace(params.Reason) == "" {
		return api.InventoryLog{}, fmt.Errorf("%w: reason is required", ErrInvalid)
	}

	provisional := api.InventoryLog{
		ID:          optimistic.TempID(),
		ProductID:   params.ProductID,
		ContainerID: params.ContainerID,
		Delta:       params.Delta,
		Reason:      params.Reason,
		CreatedAt:   time.Now(),
	}

	return optimistic.Create(ctx, s.logs, provisional,
		func(ctx context.Context) (api.InventoryLog, error) {
			return s.api.CreateInventoryLog(ctx, params)
		},
		s.related...,
	)
}

func (s *Service) Revert(ctx context.Context, id int64) error {
	return optimistic.Delete(ctx, s.logs, id,
		func(ctx context.Context) error {
			return s.api.DeleteInventoryLog(ctx, id)
		},
		s.related...,
	)
}
