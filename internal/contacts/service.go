// Package contacts manages the cached customer/supplier list with the same
// optimistic mutation contract as payments.
package contacts

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

var ErrInvalid = errors.New("invalid contact")

type API interface {
	ListContacts(ctx context.Context, kind api.ContactType) ([]api.Contact, error)
	CreateContact(ctx context.Context, params api.ContactParams) (api.Contact, error)
	UpdateContact(ctx context.Context, id int64, patch api.ContactPatch) (api.Contact, error)
	DeleteContact(ctx context.Context, id int64) error
}

type Service struct {
	api      API
	contacts *cache.Collection[api.Contact]
	related  []cache.View
}

func NewService(apiClient API, related ...cache.View) *Service {
	return &Service{
		api:      apiClient,
		contacts: cache.NewCollection[api.Contact](),
		related:  related,
	}
}

// View exposes the contact cache for invalidation by services whose
// mutations move contact balances.
func (s *Service) View() cache.View {
	return s.contacts
}

func (s *Service) List(ctx context.Context) ([]api.Contact, error) {
	if s.contacts.NeedsFetch() {
		items, err := s.api.ListContacts(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("fetching contacts: %w", err)
		}

		s.contacts.SetAll(items)
	}

	return s.contacts.Items(), nil
}

// ListByType filters the cached list client-side.
func (s *Service) ListByType(ctx context.Context, kind api.ContactType) ([]api.Contact, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]api.Contact, 0, len(all))

	for _, c := range all {
		if c.Type == kind {
			out = append(out, c)
		}
	}

	return out, nil
}

func (s *Service) Get(id int64) (api.Contact, bool) {
	return s.contacts.Get(id)
}

func (s *Service) Create(ctx context.Context, params api.ContactParams) (api.Contact, error) {
	if strings.TrimSpace(params.Name) == "" {
		return api.Contact{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}

	now := time.Now()
	provisional := api.Contact{
		ID:        optimistic.TempID(),
		Type:      params.Type,
		Name:      params.Name,
		Phone:     params.Phone,
		Email:     params.Email,
		Address:   params.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return optimistic.Create(ctx, s.contacts, provisional,
		func(ctx context.Context) (api.Contact, error) {
			return s.api.CreateContact(ctx, params)
		},
		s.related...,
	)
}

func (s *Service) Update(ctx context.Context, id int64, patch api.ContactPatch) (api.Contact, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return api.Contact{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}

	merge := func(c api.Contact) api.Contact {
		if patch.Name != nil {
			c.Name = *patch.Name
		}

		if patch.Phone != nil {
			c.Phone = *patch.Phone
		}

		if patch.Email != nil {
			c.Email = *patch.Email
		}

		if patch.Address != nil {
			c.Address = *patch.Address
		}

		c.UpdatedAt = time.Now()

		return c
	}

	return optimistic.Update(ctx, s.contacts, id, merge,
		func(ctx context.Context) (api.Contact, error) {
			return s.api.UpdateContact(ctx, id, patch)
		},
		s.related...,
	)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return optimistic.Delete(ctx, s.contacts, id,
		func(ctx context.Context) error {
			return s.api.DeleteContact(ctx, id)
		},
		s.related...,
	)
}
