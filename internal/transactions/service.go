// Package transactions manages the cached sale/purchase history and the
// hand-off from a local draft to a recorded transaction.
package transactions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stockdesk-app/stockdesk/internal/api"
	"github.com/stockdesk-app/stockdesk/internal/cache"
	"github.com/stockdesk-app/stockdesk/internal/draft"
	"github.com/stockdesk-app/stockdesk/internal/optimistic"
)

var ErrInvalid = errors.New("invalid transaction")

type API interface {
	ListTransactions(ctx context.Context, kind api.TransactionKind) ([]api.Transaction, error)
	CreateTransaction(ctx context.Context, params api.TransactionParams) (api.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
}

// Drafts is the slice of the draft store Submit needs to retire a draft
// once its transaction is recorded.
type Drafts interface {
	Delete(ctx context.Context, id string) error
}

type Service struct {
	api          API
	drafts       Drafts
	transactions *cache.Collection[api.Transaction]
	related      []cache.View
}

func NewService(apiClient API, drafts Drafts, related ...cache.View) *Service {
	return &Service{
		api:          apiClient,
		drafts:       drafts,
		transactions: cache.NewCollection[api.Transaction](),
		related:      related,
	}
}

func (s *Service) List(ctx context.Context) ([]api.Transaction, error) {
	if s.transactions.NeedsFetch() {
		items, err := s.api.ListTransactions(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("fetching transactions: %w", err)
		}

		s.transactions.SetAll(items)
	}

	return s.transactions.Items(), nil
}

// Submit records the draft as a transaction. The draft is deleted only after
// the server accepts; a rejected submit leaves it intact for another try.
func (s *Service) Submit(ctx context.Context, d draft.Draft) (api.Transaction, error) {
	if len(d.Payload.Items) == 0 {
		return api.Transaction{}, fmt.Errorf("%w: needs at least one item", ErrInvalid)
	}

	if d.Payload.ContactID == 0 {
		return api.Transaction{}, fmt.Errorf("%w: contact is required", ErrInvalid)
	}

	params := api.TransactionParams{
		Kind:        api.TransactionKind(d.Kind),
		ContactID:   d.Payload.ContactID,
		ContainerID: d.Payload.ContainerID,
		Items:       toItems(d.Payload.Items),
		Discount:    d.Payload.Discount,
		Tax:         d.Payload.Tax,
		Paid:        d.Payload.Paid,
		Notes:       d.Payload.Notes,
		Date:        d.Payload.Date,
	}

	provisional := api.Transaction{
		ID:          optimistic.TempID(),
		Kind:        params.Kind,
		ContactID:   params.ContactID,
		ContainerID: params.ContainerID,
		Items:       params.Items,
		Total:       d.Payload.Total(),
		Discount:    params.Discount,
		Tax:         params.Tax,
		Paid:        params.Paid,
		Notes:       params.Notes,
		Date:        params.Date,
		CreatedAt:   time.Now(),
	}

	recorded, err := optimistic.Create(ctx, s.transactions, provisional,
		func(ctx context.Context) (api.Transaction, error) {
			return s.api.CreateTransaction(ctx, params)
		},
		s.related...,
	)
	if err != nil {
		return api.Transaction{}, err
	}

	// The transaction is already recorded remotely; losing the draft delete
	// costs a stale draft, not data, so log and move on.
	if err := s.drafts.Delete(ctx, d.ID); err != nil {
		slog.Error("failed to delete submitted draft", "draft_id", d.ID, "error", err)
	}

	return recorded, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return optimistic.Delete(ctx, s.transactions, id,
		func(ctx context.Context) error {
			return s.api.DeleteTransaction(ctx, id)
		},
		s.related...,
	)
}

func toItems(items []draft.LineItem) []api.TransactionItem {
	out := make([]api.TransactionItem, len(items))
	for i, it := range items {
		out[i] = api.TransactionItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}

	return out
}
