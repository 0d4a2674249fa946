// Package controller exposes each entity collection to the UI behind a
// uniform state machine: a snapshot of items plus loading and error flags,
// and verbs that drive the transport gateway. Calls may overlap; only the
// newest call's result is committed. Mutation verbs apply optimistically and
// roll back to the pre-mutation record on failure.
package controller

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"

	"fleetops/internal/apierr"
	"fleetops/internal/gateway"
	"fleetops/internal/models"
)

// Snapshot is the view-facing state of a collection controller. Items is a
// copy; mutating it does not affect the controller.
type Snapshot[T any] struct {
	Items   []T
	Total   int
	Loading bool
	Err     string
}

// Collection is the state machine shared by every entity controller.
type Collection[T any] struct {
	api  *gateway.Client
	path string
	idOf func(T) string

	mu      sync.Mutex
	items   []T
	total   int
	loading bool
	errMsg  string
	seq     uint64
}

func newCollection[T any](api *gateway.Client, path string, idOf func(T) string) *Collection[T] {
	return &Collection[T]{api: api, path: path, idOf: idOf}
}

// Snapshot returns the current state.
func (c *Collection[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return Snapshot[T]{Items: items, Total: c.total, Loading: c.loading, Err: c.errMsg}
}

// FetchList loads a page of the collection. query carries the filter, sort,
// and pagination parameters understood by the list endpoint.
func (c *Collection[T]) FetchList(ctx context.Context, query url.Values) error {
	return c.fetchList(ctx, c.path, query)
}

func (c *Collection[T]) fetchList(ctx context.Context, path string, query url.Values) error {
	seq := c.begin()
	var page models.PaginatedResponse[T]
	if err := c.api.Get(ctx, path, query, &page); err != nil {
		c.fail(ctx, seq, err)
		return err
	}
	c.commit(ctx, seq, page.Data, page.Total)
	return nil
}

// FetchOne loads a single record and refreshes it in the local items if a
// list has already been fetched.
func (c *Collection[T]) FetchOne(ctx context.Context, id string) (T, error) {
	var out T
	if err := c.api.Get(ctx, c.path+"/"+id, nil, &out); err != nil {
		c.surface(err)
		return out, err
	}
	c.updateItem(id, out)
	return out, nil
}

// begin marks a new in-flight list call and returns its sequence number.
// Only the holder of the newest sequence may commit, so overlapping calls
// resolve last-call-wins regardless of arrival order.
func (c *Collection[T]) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.loading = true
	c.errMsg = ""
	return c.seq
}

func (c *Collection[T]) commit(ctx context.Context, seq uint64, items []T, total int) {
	if ctx.Err() != nil {
		// Owning view is gone; never apply a result after teardown.
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return
	}
	c.items = items
	c.total = total
	c.loading = false
}

func (c *Collection[T]) fail(ctx context.Context, seq uint64, err error) {
	if ctx.Err() != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return
	}
	c.loading = false
	// Unauthorized was already handled globally by the gateway; it never
	// shows up as a data error. Prior items stay untouched either way.
	if apierr.KindOf(err) != apierr.Unauthorized {
		c.errMsg = apierr.Message(err)
	}
}

// surface records a mutation failure without touching items or loading.
func (c *Collection[T]) surface(err error) {
	if apierr.KindOf(err) == apierr.Unauthorized {
		return
	}
	c.mu.Lock()
	c.errMsg = apierr.Message(err)
	c.mu.Unlock()
}

// item returns a copy of the record with the given id from local state.
func (c *Collection[T]) item(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if c.idOf(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// updateItem replaces the record with the given id in place, appending it
// when absent.
func (c *Collection[T]) updateItem(id string, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		if c.idOf(it) == id {
			c.items[i] = item
			return
		}
	}
	c.items = append(c.items, item)
	c.total++
}

// removeItem drops the record with the given id from local state.
func (c *Collection[T]) removeItem(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		if c.idOf(it) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			if c.total > 0 {
				c.total--
			}
			return
		}
	}
}

// decodeEntity converts a push-frame payload (typically map[string]any from
// JSON) into a typed record.
func decodeEntity[T any](data any) (T, error) {
	var out T
	raw, err := json.Marshal(data)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}
