package store_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk-app/stockdesk/internal/database"
	"github.com/stockdesk-app/stockdesk/internal/draft"
	"github.com/stockdesk-app/stockdesk/internal/draft/store"
)

func newTestDB(t *testing.T) *store.Store {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "stockdesk.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return store.New(db)
}

func TestStore_LoadEmpty(t *testing.T) {
	s := newTestDB(t)

	drafts, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestStore_PersistOverwritesNamespace(t *testing.T) {
	s := newTestDB(t)
	ctx := context.Background()

	first := []draft.Draft{{ID: "a", Kind: draft.KindSale}}
	require.NoError(t, s.Persist(ctx, first))

	second := []draft.Draft{{ID: "b", Kind: draft.KindPurchase}}
	require.NoError(t, s.Persist(ctx, second))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

// Replaying a mutation sequence against a fresh store must leave durable
// storage holding exactly what the in-memory collection holds.
func TestStore_RoundTrip(t *testing.T) {
	storage := newTestDB(t)
	ctx := context.Background()

	svc, err := draft.NewStore(ctx, storage)
	require.NoError(t, err)

	d1, err := svc.Save(ctx, draft.KindSale, draft.Payload{
		Date:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		ContactID: 4,
		Items:     []draft.LineItem{{ProductID: 2, Quantity: 3, UnitPrice: 1200}},
	}, "counter sale")
	require.NoError(t, err)

	d2, err := svc.Save(ctx, draft.KindPurchase, draft.Payload{Notes: "restock beans"}, "")
	require.NoError(t, err)

	paid := int64(3600)
	require.NoError(t, svc.Update(ctx, d1.ID, draft.PayloadPatch{Paid: &paid}))
	require.NoError(t, svc.Delete(ctx, d2.ID))

	// A second store constructed from the same storage sees the same state.
	reloaded, err := draft.NewStore(ctx, storage)
	require.NoError(t, err)

	want, err := json.Marshal(svc.List(""))
	require.NoError(t, err)

	got, err := json.Marshal(reloaded.List(""))
	require.NoError(t, err)

	assert.JSONEq(t, string(want), string(got))

	fromDisk, ok := reloaded.Get(d1.ID)
	require.True(t, ok)
	assert.Equal(t, int64(3600), fromDisk.Payload.Paid)
	assert.Equal(t, "counter sale", fromDisk.Label)
}
