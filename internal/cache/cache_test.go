package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk-app/stockdesk/internal/cache"
)

type rec struct {
	ID   int64
	Name string
}

func (r rec) CacheID() int64 { return r.ID }

func TestCollection_ReadThroughFlags(t *testing.T) {
	c := cache.NewCollection[rec]()

	assert.True(t, c.NeedsFetch(), "fresh collection needs a fetch")

	c.SetAll([]rec{{ID: 1, Name: "a"}})
	assert.False(t, c.NeedsFetch())

	c.Invalidate()
	assert.True(t, c.NeedsFetch(), "invalidated collection refetches")

	c.SetAll([]rec{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
	assert.False(t, c.NeedsFetch())
	assert.Equal(t, 2, c.Len())
}

func TestCollection_SnapshotIsImmutable(t *testing.T) {
	c := cache.NewCollection[rec]()
	c.SetAll([]rec{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})

	snap := c.Snapshot()

	c.Remove(1)
	c.Prepend(rec{ID: 3, Name: "c"})

	// The snapshot is unaffected by later mutations.
	require.Len(t, snap, 2)
	assert.Equal(t, rec{ID: 1, Name: "a"}, snap[0])

	c.Restore(snap)
	assert.Equal(t, snap, c.Items())
}

func TestCollection_Mutations(t *testing.T) {
	c := cache.NewCollection[rec]()
	c.SetAll([]rec{{ID: 1, Name: "a"}})

	c.Prepend(rec{ID: -5, Name: "provisional"})
	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(-5), items[0].ID)

	// Reconcile the provisional record in place.
	c.Replace(-5, rec{ID: 7, Name: "authoritative"})
	got, ok := c.Get(7)
	require.True(t, ok)
	assert.Equal(t, "authoritative", got.Name)
	assert.Equal(t, int64(7), c.Items()[0].ID, "position preserved")

	c.Upsert(rec{ID: 7, Name: "renamed"})
	got, _ = c.Get(7)
	assert.Equal(t, "renamed", got.Name)

	c.Upsert(rec{ID: 9, Name: "new"})
	assert.Equal(t, 3, c.Len())

	c.Remove(9)
	c.Remove(9) // absent id is a no-op
	assert.Equal(t, 2, c.Len())
}

func TestValue(t *testing.T) {
	v := cache.NewValue[rec]()

	_, ok := v.Get()
	assert.False(t, ok)
	assert.True(t, v.NeedsFetch())

	v.Set(rec{ID: 1, Name: "summary"})

	got, ok := v.Get()
	require.True(t, ok)
	assert.Equal(t, "summary", got.Name)
	assert.False(t, v.NeedsFetch())

	v.Invalidate()
	assert.True(t, v.NeedsFetch())

	// Stale values stay readable until the refetch lands.
	got, ok = v.Get()
	assert.True(t, ok)
	assert.Equal(t, "summary", got.Name)
}
