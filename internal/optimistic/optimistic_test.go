package optimistic_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk-app/stockdesk/internal/cache"
	"github.com/stockdesk-app/stockdesk/internal/optimistic"
)

type payment struct {
	ID     int64
	Amount int64
	Method string
	Notes  string
}

func (p payment) CacheID() int64 { return p.ID }

func seeded(items ...payment) *cache.Collection[payment] {
	c := cache.NewCollection[payment]()
	c.SetAll(items)

	return c
}

func TestTempID(t *testing.T) {
	a := optimistic.TempID()
	b := optimistic.TempID()

	assert.Negative(t, a)
	assert.Negative(t, b)
	assert.NotEqual(t, a, b)
}

func TestCreate_Success(t *testing.T) {
	col := seeded(payment{ID: 1, Amount: 100})
	summary := cache.NewValue[int64]()
	summary.Set(100)

	provisional := payment{ID: optimistic.TempID(), Amount: 50}

	var observedDuringCall []payment

	created, err := optimistic.Create(context.Background(), col, provisional,
		func(context.Context) (payment, error) {
			// Concurrent reads between apply and resolution see the
			// optimistic state.
			observedDuringCall = col.Items()
			return payment{ID: 2, Amount: 50}, nil
		},
		summary,
	)
	require.NoError(t, err)
	assert.Equal(t, int64(2), created.ID)

	require.Len(t, observedDuringCall, 2)
	assert.Equal(t, provisional.ID, observedDuringCall[0].ID)

	// Provisional record reconciled with the authoritative one.
	items := col.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)

	// The mutated collection and derived views are due for refetch.
	assert.True(t, col.NeedsFetch())
	assert.True(t, summary.NeedsFetch())
}

func TestCreate_FailureRollsBack(t *testing.T) {
	col := seeded(payment{ID: 1, Amount: 100, Method: "cash"})
	before := col.Items()

	provisional := payment{ID: optimistic.TempID(), Amount: 50}

	_, err := optimistic.Create(context.Background(), col, provisional,
		func(context.Context) (payment, error) {
			return payment{}, errors.New("422: amount exceeds balance")
		},
	)
	require.Error(t, err)

	// Deep-equal to the pre-mutation state, not merely the same length.
	assert.Equal(t, before, col.Items())
	assert.False(t, col.NeedsFetch(), "failed mutation does not mark the cache stale")
}

func TestUpdate_MergePreservesAbsentFields(t *testing.T) {
	col := seeded(payment{ID: 1, Amount: 100, Method: "cash", Notes: "deposit"})

	updated, err := optimistic.Update(context.Background(), col, 1,
		func(p payment) payment {
			p.Amount = 250 // partial update: only the amount changes
			return p
		},
		func(context.Context) (payment, error) {
			got, ok := col.Get(1)
			require.True(t, ok)
			assert.Equal(t, int64(250), got.Amount)
			assert.Equal(t, "cash", got.Method, "fields outside the patch survive")
			assert.Equal(t, "deposit", got.Notes)

			return payment{ID: 1, Amount: 250, Method: "cash", Notes: "deposit"}, nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(250), updated.Amount)
}

func TestUpdate_FailureRollsBack(t *testing.T) {
	col := seeded(payment{ID: 1, Amount: 100, Method: "cash"})
	before := col.Items()

	_, err := optimistic.Update(context.Background(), col, 1,
		func(p payment) payment {
			p.Amount = 999
			return p
		},
		func(context.Context) (payment, error) {
			return payment{}, errors.New("connection reset")
		},
	)
	require.Error(t, err)
	assert.Equal(t, before, col.Items())
}

func TestDelete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		col := seeded(payment{ID: 1}, payment{ID: 2})

		err := optimistic.Delete(context.Background(), col, 2,
			func(context.Context) error {
				// Optimistic removal is visible while the call is in flight.
				assert.Equal(t, 1, col.Len())
				return nil
			},
		)
		require.NoError(t, err)

		assert.Equal(t, 1, col.Len())
		assert.True(t, col.NeedsFetch())
	})

	t.Run("FailureRestores", func(t *testing.T) {
		col := seeded(payment{ID: 1}, payment{ID: 2})
		before := col.Items()

		err := optimistic.Delete(context.Background(), col, 2,
			func(context.Context) error { return errors.New("500") },
		)
		require.Error(t, err)
		assert.Equal(t, before, col.Items())
	})
}
