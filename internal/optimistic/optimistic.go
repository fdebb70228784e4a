// Package optimistic applies create/update/delete mutations against a remote
// resource while keeping the local cache responsive: the change lands in the
// cache before the remote call resolves, and a failed call restores the
// exact pre-mutation snapshot. Overlapping mutations against the same record
// are deliberately not serialized; disabling controls during a pending
// mutation is the caller's concern.
package optimistic

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/stockdesk-app/stockdesk/internal/cache"
)

var tempSeq atomic.Int64

// TempID returns a locally unique placeholder id for a provisional record.
// Negative so it can never collide with a server-assigned id.
func TempID() int64 {
	return -(time.Now().UnixNano() + tempSeq.Add(1))
}

// Create prepends the provisional record, issues the remote call, and on
// success swaps the placeholder for the authoritative record and marks the
// collection plus any related views stale. On failure the collection is
// restored to its pre-mutation snapshot and the error is returned untouched.
func Create[T cache.Record](
	ctx context.Context,
	col *cache.Collection[T],
	provisional T,
	call func(context.Context) (T, error),
	related ...cache.View,
) (T, error) {
	snap := col.Snapshot()
	col.Prepend(provisional)

	created, err := call(ctx)
	if err != nil {
		col.Restore(snap)

		var zero T

		return zero, err
	}

	col.Replace(provisional.CacheID(), created)
	invalidate(col, related)

	return created, nil
}

// Update applies merge to the cached record (merge must preserve fields the
// partial update does not carry), issues the remote call, and reconciles
// with the server's record on success.
func Update[T cache.Record](
	ctx context.Context,
	col *cache.Collection[T],
	id int64,
	merge func(T) T,
	call func(context.Context) (T, error),
	related ...cache.View,
) (T, error) {
	snap := col.Snapshot()

	if current, ok := col.Get(id); ok {
		col.Replace(id, merge(current))
	}

	updated, err := call(ctx)
	if err != nil {
		col.Restore(snap)

		var zero T

		return zero, err
	}

	col.Replace(id, updated)
	invalidate(col, related)

	return updated, nil
}

// Delete removes the record immediately and restores it if the remote call
// fails.
func Delete[T cache.Record](
	ctx context.Context,
	col *cache.Collection[T],
	id int64,
	call func(context.Context) error,
	related ...cache.View,
) error {
	snap := col.Snapshot()
	col.Remove(id)

	if err := call(ctx); err != nil {
		col.Restore(snap)
		return err
	}

	invalidate(col, related)

	return nil
}

func invalidate[T cache.Record](col *cache.Collection[T], related []cache.View) {
	col.Invalidate()

	for _, v := range related {
		v.Invalidate()
	}
}
