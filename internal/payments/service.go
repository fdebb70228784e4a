// Package payments keeps a cached view of recorded payments and applies
// mutations optimistically: the UI sees the change immediately, a failed
// remote call rolls the cache back to its pre-mutation snapshot.
package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stockdesk-app/stockdesk/internal/api"
	"github.com/stockdesk-app/stockdesk/internal/cache"
	"github.com/stockdesk-app/stockdesk/internal/optimistic"
)

// ErrInvalid marks client-side validation failures, rejected before the
// cache or the network is touched.
var ErrInvalid = errors.New("invalid payment")

// API is the slice of the backend client this service needs.
type API interface {
	ListPayments(ctx context.Context, filter api.PaymentFilter) ([]api.Payment, error)
	CreatePayment(ctx context.Context, params api.PaymentParams) (api.Payment, error)
	UpdatePayment(ctx context.Context, id int64, patch api.PaymentPatch) (api.Payment, error)
	DeletePayment(ctx context.Context, id int64) error
}

type Service struct {
	api      API
	payments *cache.Collection[api.Payment]

	// related views (dashboard summary, contact balances) marked stale
	// whenever a payment mutation settles.
	related []cache.View
}

func NewService(apiClient API, related ...cache.View) *Service {
	return &Service{
		api:      apiClient,
		payments: cache.NewCollection[api.Payment](),
		related:  related,
	}
}

// List returns the cached payments, fetching when the cache is unloaded or
// stale.
func (s *Service) List(ctx context.Context) ([]api.Payment, error) {
	if s.payments.NeedsFetch() {
		items, err := s.api.ListPayments(ctx, api.PaymentFilter{})
		if err != nil {
			return nil, fmt.Errorf("fetching payments: %w", err)
		}

		s.payments.SetAll(items)
	}

	return s.payments.Items(), nil
}

func (s *Service) Create(ctx context.Context, params api.PaymentParams) (api.Payment, error) {
	if params.Amount <= 0 {
		return api.Payment{}, fmt.Errorf("%w: amount must be positive", ErrInvalid)
	}

	if params.ContactID == 0 {
		return api.Payment{}, fmt.Errorf("%w: contact is required", ErrInvalid)
	}

	now := time.Now()
	provisional := api.Payment{
		ID:            optimistic.TempID(),
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

	return optimistic.Create(ctx, s.payments, provisional,
		func(ctx context.Context) (api.Payment, error) {
			return s.api.CreatePayment(ctx, params)
		},
		s.related...,
	)
}

func (s *Service) Update(ctx context.Context, id int64, patch api.PaymentPatch) (api.Payment, error) {
	if patch.Amount != nil && *patch.Amount <= 0 {
		return api.Payment{}, fmt.Errorf("%w: amount must be positive", ErrInvalid)
	}

	merge := func(p api.Payment) api.Payment {
		if patch.Amount != nil {
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

		p.UpdatedAt = time.Now()

		return p
	}

	return optimistic.Update(ctx, s.payments, id, merge,
		func(ctx context.Context) (api.Payment, error) {
			return s.api.UpdatePayment(ctx, id, patch)
		},
		s.related...,
	)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return optimistic.Delete(ctx, s.payments, id,
		func(ctx context.Context) error {
			return s.api.DeletePayment(ctx, id)
		},
		s.related...,
	)
}
