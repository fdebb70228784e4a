package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stockdesk-app/stockdesk/internal/draft"
)

// namespace is the fixed key the whole draft collection is serialized under.
const namespace = "transaction_drafts"

// Store persists the draft collection as a single JSON blob in the local
// SQLite key-value table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Load(ctx context.Context) ([]draft.Draft, error) {
	query := `SELECT value FROM kv_store WHERE namespace = ?`

	var blob []byte

	err := s.db.QueryRowContext(ctx, query, namespace).Scan(&blob)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("reading drafts: %w", err)
	}

	var drafts []draft.Draft
	if err := json.Unmarshal(blob, &drafts); err != nil {
		return nil, fmt.Errorf("decoding drafts: %w", err)
	}

	return drafts, nil
}

func (s *Store) Persist(ctx context.Context, drafts []draft.Draft) error {
	blob, err := json.Marshal(drafts)
	if err != nil {
		return fmt.Errorf("encoding drafts: %w", err)
	}

	query := `
		INSERT INTO kv_store (namespace, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, namespace, blob, time.Now().UTC()); err != nil {
		return fmt.Errorf("writing drafts: %w", err)
	}

	return nil
}
