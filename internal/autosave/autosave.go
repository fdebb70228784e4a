// Package autosave bridges a rapidly changing form to the draft store:
// writes happen only after the input has been quiet for a full debounce
// window, and a pending write can always be flushed or cancelled explicitly.
package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/stockdesk-app/stockdesk/internal/draft"
)

//go:generate mockgen -source=autosave.go -destination=store_mock.go -package=autosave

// Store is the subset of the draft store the coordinator writes through.
type Store interface {
	Save(ctx context.Context, kind draft.Kind, payload draft.Payload, label string) (draft.Draft, error)
	Update(ctx context.Context, id string, patch draft.PayloadPatch) error
}

const writeTimeout = 5 * time.Second

// Coordinator debounces payload snapshots into draft writes. The first write
// creates the draft; every later one updates it. Arm, Flush and Cancel are
// safe to call from any goroutine.
type Coordinator struct {
	store  Store
	kind   draft.Kind
	window time.Duration

	// onError is invoked for failed background writes. Background saves are
	// otherwise silent. May be nil.
	onError func(error)

	mu      sync.Mutex
	timer   *time.Timer
	pending *draft.Payload
	draftID string

	// gen identifies the snapshot a timer was armed for. A timer that fires
	// but loses the mutex race to a newer Arm must not flush the fresh
	// snapshot before its own window has run.
	gen uint64
}

func New(store Store, kind draft.Kind, window time.Duration, onError func(error)) *Coordinator {
	return &Coordinator{
		store:   store,
		kind:    kind,
		window:  window,
		onError: onError,
	}
}

// Arm records the snapshot as pending and restarts the debounce window,
// discarding any previously pending write. Empty payloads are suppressed so
// drafts with no useful content never reach storage.
func (c *Coordinator) Arm(payload draft.Payload) {
	if payload.Empty() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = &payload
	c.gen++

	if c.timer != nil {
		c.timer.Stop()
	}

	gen := c.gen
	c.timer = time.AfterFunc(c.window, func() { c.fire(gen) })
}

// Flush writes any pending snapshot immediately. The explicit "save now"
// path for teardown.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.flushLocked(ctx)
}

// Cancel drops the pending snapshot and timer without side effects.
// Idempotent.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	c.pending = nil
}

// Attach resumes auto-saving into an existing draft instead of creating a
// new one on the first write.
func (c *Coordinator) Attach(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.draftID = id
}

// DraftID returns the id of the draft established by the first write, or ""
// if nothing has been written yet.
func (c *Coordinator) DraftID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.draftID
}

func (c *Coordinator) fire(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	c.mu.Lock()

	// A newer snapshot re-armed the window after this timer already fired;
	// its own timer owns the pending write now.
	if gen != c.gen {
		c.mu.Unlock()
		return
	}

	err := c.flushLocked(ctx)
	onError := c.onError
	c.mu.Unlock()

	if err != nil && onError != nil {
		onError(err)
	}
}

func (c *Coordinator) flushLocked(ctx context.Context) error {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	if c.pending == nil {
		return nil
	}

	payload := *c.pending
	c.pending = nil

	if c.draftID == "" {
		d, err := c.store.Save(ctx, c.kind, payload, "")
		if err != nil {
			// Keep the snapshot so an explicit Flush can retry.
			c.pending = &payload
			return err
		}

		c.draftID = d.ID

		return nil
	}

	if err := c.store.Update(ctx, c.draftID, payload.AsPatch()); err != nil {
		c.pending = &payload
		return err
	}

	return nil
}
