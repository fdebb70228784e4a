package draft

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=storage_mock.go -package=draft

// Storage persists the whole draft collection under a single namespace key.
// It is read once when the store is constructed and written after every
// mutation.
type Storage interface {
	Load(ctx context.Context) ([]Draft, error)
	Persist(ctx context.Context, drafts []Draft) error
}

// Store owns the collection of in-progress transaction drafts. All access
// goes through its methods; mutations are durable before they return, and a
// failed write leaves both memory and storage at the pre-mutation state so a
// retry replays the same operation instead of compounding it.
type Store struct {
	mu      sync.Mutex
	storage Storage
	drafts  []Draft

	// now is stubbed in tests.
	now func() time.Time
}

func NewStore(ctx context.Context, storage Storage) (*Store, error) {
	drafts, err := storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: loading drafts: %w", ErrStorage, err)
	}

	return &Store{
		storage: storage,
		drafts:  drafts,
		now:     time.Now,
	}, nil
}

const labelDateFormat = "Jan 2, 2006 3:04 PM"

// Save creates a new draft with a fresh id. When label is empty it is
// generated from the kind and the creation time.
func (s *Store) Save(ctx context.Context, kind Kind, payload Payload, label string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if label == "" {
		label = fmt.Sprintf("Draft %s - %s", kind, now.Format(labelDateFormat))
	}

	d := Draft{
		ID:        uuid.NewString(),
		Kind:      kind,
		Label:     label,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.commit(ctx, append(s.clone(), d)); err != nil {
		return Draft{}, err
	}

	return d, nil
}

// Update merges the patch into the draft's payload and bumps UpdatedAt.
// An unknown id is a benign no-op: the UI may tear down while a debounced
// save for a deleted draft is still pending.
func (s *Store) Update(ctx context.Context, id string, patch PayloadPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.drafts {
		if s.drafts[i].ID != id {
			continue
		}

		candidate := s.clone()
		candidate[i].Payload = candidate[i].Payload.Merge(patch)
		candidate[i].UpdatedAt = s.now()

		return s.commit(ctx, candidate)
	}

	return nil
}

// Delete removes the draft with the given id; no-op if absent.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.drafts {
		if s.drafts[i].ID != id {
			continue
		}

		candidate := s.clone()

		return s.commit(ctx, append(candidate[:i], candidate[i+1:]...))
	}

	return nil
}

// Get returns the draft with the given id.
func (s *Store) Get(id string) (Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.drafts {
		if d.ID == id {
			return d, true
		}
	}

	return Draft{}, false
}

// List returns drafts in insertion order. An empty kind returns everything.
// Callers wanting recency order sort by UpdatedAt themselves.
func (s *Store) List(kind Kind) []Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Draft, 0, len(s.drafts))

	for _, d := range s.drafts {
		if kind != "" && d.Kind != kind {
			continue
		}

		out = append(out, d)
	}

	return out
}

// ClearOld evicts every draft created strictly before now-maxAge. A draft
// created exactly at the cutoff is retained. Intended to run once at startup.
func (s *Store) ClearOld(ctx context.Context, maxAge time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)

	kept := make([]Draft, 0, len(s.drafts))

	for _, d := range s.drafts {
		if d.CreatedAt.Before(cutoff) {
			continue
		}

		kept = append(kept, d)
	}

	if len(kept) == len(s.drafts) {
		return nil
	}

	return s.commit(ctx, kept)
}

func (s *Store) clone() []Draft {
	return append([]Draft(nil), s.drafts...)
}

// commit writes the candidate collection to storage and installs it in
// memory only once the write has succeeded.
func (s *Store) commit(ctx context.Context, drafts []Draft) error {
	if err := s.storage.Persist(ctx, drafts); err != nil {
		return fmt.Errorf("%w: persisting drafts: %w", ErrStorage, err)
	}

	s.drafts = drafts

	return nil
}
