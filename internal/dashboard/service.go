// Package dashboard caches the remote summary aggregates shown on the home
// screen. Mutating services register the summary as a related view so it
// refetches after any money- or stock-moving operation.
package dashboard

import (
	"context"
	"fmt"

	"github.com/stockdesk-app/stockdesk/internal/api"
	"github.com/stockdesk-app/stockdesk/internal/cache"
)

type API interface {
	GetSummary(ctx context.Context) (api.Summary, error)
}

type Service struct {
	api     API
	summary *cache.Value[api.Summary]
}

func NewService(apiClient API) *Service {
	return &Service{
		api:     apiClient,
		summary: cache.NewValue[api.Summary](),
	}
}

// View exposes the summary for invalidation by mutating services.
func (s *Service) View() cache.View {
	return s.summary
}

func (s *Service) Summary(ctx context.Context) (api.Summary, error) {
	if s.summary.NeedsFetch() {
		fresh, err := s.api.GetSummary(ctx)
		if err != nil {
			return api.Summary{}, fmt.Errorf("fetching summary: %w", err)
		}

		s.summary.Set(fresh)
	}

	got, _ := s.summary.Get()

	return got, nil
}
