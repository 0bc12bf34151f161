// Package resource mediates between list views and the API for one entity
// type at a time: fetching, paging, mutating with a refresh afterwards, and
// classifying every failure.
package resource

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/naveenspark/nksadmin/pkg/domain"
)

// Entity is anything with a server-assigned id.
type Entity interface {
	EntityID() string
}

// API is the remote side of a controller. D is the draft payload type.
type API[T Entity, D any] interface {
	List(ctx context.Context, f Filter) ([]T, error)
	Create(ctx context.Context, draft D) (T, error)
	Update(ctx context.Context, id string, draft D) (T, error)
	Delete(ctx context.Context, id string) error
}

// Filter narrows a list. Category is sent to the server; the rest is
// applied locally by the controller's match function.
type Filter struct {
	Category string
	Search   string
	Roles    []string
	Period   domain.Period
}

// Confirmation is issued by RequestRemove and must be passed back to
// ConfirmRemove before a delete is sent.
type Confirmation struct {
	ID    string
	Token string
}

// Option configures a Controller.
type Option[T Entity] func(*options[T])

type options[T Entity] struct {
	log      zerolog.Logger
	match    func(T, Filter) bool
	pageSize int
}

// WithLogger sets the logger for classified failures.
func WithLogger[T Entity](l zerolog.Logger) Option[T] {
	return func(o *options[T]) { o.log = l }
}

// WithMatch sets the local filter used by Visible.
func WithMatch[T Entity](fn func(T, Filter) bool) Option[T] {
	return func(o *options[T]) { o.match = fn }
}

// WithPageSize sets rows per page. Zero disables paging.
func WithPageSize[T Entity](n int) Option[T] {
	return func(o *options[T]) { o.pageSize = n }
}

// Controller holds the list snapshot for one entity type.
type Controller[T Entity, D any] struct {
	api      API[T, D]
	log      zerolog.Logger
	match    func(T, Filter) bool
	pageSize int

	flight singleflight.Group

	mu      sync.Mutex
	items   []T
	filter  Filter
	gen     uint64
	loading bool
	lastErr *Error
	page    int
	pending *Confirmation
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a controller over api.
func New[T Entity, D any](api API[T, D], opts ...Option[T]) *Controller[T, D] {
	o := options[T]{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller[T, D]{
		api:      api,
		log:      o.log,
		match:    o.match,
		pageSize: o.pageSize,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// List fetches the entities matching f and replaces the snapshot. On
// failure the previous snapshot is kept. A result that arrives after a
// newer List (or Cancel) is dropped and ErrSuperseded is returned.
func (c *Controller[T, D]) List(ctx context.Context, f Filter) ([]T, error) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.loading = true
	c.filter = f
	c.mu.Unlock()

	ctx, stop := c.bind(ctx)
	defer stop()
	items, err := c.api.List(ctx, f)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return nil, &Error{Op: "list", Kind: KindCanceled, Message: "request canceled", Err: ErrSuperseded}
	}
	c.loading = false
	if err != nil {
		e := Classify("list", err)
		c.lastErr = e
		c.logFailure(e)
		return nil, e
	}
	c.items = items
	c.lastErr = nil
	c.clampPageLocked()
	return clone(items), nil
}

// Refresh repeats the last List with the same filter.
func (c *Controller[T, D]) Refresh(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	f := c.filter
	c.mu.Unlock()
	return c.List(ctx, f)
}

// Create sends draft and refreshes the list. At most one create runs at a time.
func (c *Controller[T, D]) Create(ctx context.Context, draft D) (T, error) {
	return c.mutate(ctx, "create", "", func(ctx context.Context) (T, error) {
		return c.api.Create(ctx, draft)
	})
}

// Update replaces the entity id with draft and refreshes the list.
func (c *Controller[T, D]) Update(ctx context.Context, id string, draft D) (T, error) {
	return c.mutate(ctx, "update", id, func(ctx context.Context) (T, error) {
		return c.api.Update(ctx, id, draft)
	})
}

// RequestRemove starts the confirmation step for deleting id. Nothing is
// sent until ConfirmRemove is called with the returned Confirmation.
// A new request replaces any earlier pending one.
func (c *Controller[T, D]) RequestRemove(id string) (Confirmation, error) {
	if id == "" {
		return Confirmation{}, Classify("remove", ErrNotLoaded)
	}
	conf := Confirmation{ID: id, Token: uuid.NewString()}
	c.mu.Lock()
	c.pending = &conf
	c.mu.Unlock()
	return conf, nil
}

// PendingRemoval returns the confirmation awaiting an answer, if any.
func (c *Controller[T, D]) PendingRemoval() (Confirmation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Confirmation{}, false
	}
	return *c.pending, true
}

// CancelRemove drops the pending confirmation.
func (c *Controller[T, D]) CancelRemove() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

// ConfirmRemove deletes the entity named by conf and refreshes the list.
// conf must be the one most recently returned by RequestRemove.
func (c *Controller[T, D]) ConfirmRemove(ctx context.Context, conf Confirmation) error {
	c.mu.Lock()
	if c.pending == nil || *c.pending != conf {
		c.mu.Unlock()
		return &Error{Op: "remove", Kind: KindValidation, Message: "Nothing to delete.", Err: ErrNoPendingRemoval}
	}
	c.pending = nil
	c.mu.Unlock()

	_, err := c.mutate(ctx, "remove", conf.ID, func(ctx context.Context) (T, error) {
		var zero T
		return zero, c.api.Delete(ctx, conf.ID)
	})
	return err
}

// Cancel aborts in-flight requests and discards their results. The
// controller stays usable.
func (c *Controller[T, D]) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel()
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.gen++
	c.loading = false
	c.pending = nil
}

// Snapshot returns the last successfully listed entities.
func (c *Controller[T, D]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.items)
}

// Get returns the snapshot entry with the given id.
func (c *Controller[T, D]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if it.EntityID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// SetFilter changes the local filter without fetching and resets to page 0.
func (c *Controller[T, D]) SetFilter(f Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
	c.page = 0
}

// Visible returns the snapshot after the local filter.
func (c *Controller[T, D]) Visible() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibleLocked()
}

// Page returns the visible entities on the current page.
func (c *Controller[T, D]) Page() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	vis := c.visibleLocked()
	if c.pageSize <= 0 {
		return vis
	}
	start := c.page * c.pageSize
	if start >= len(vis) {
		return nil
	}
	end := min(start+c.pageSize, len(vis))
	return vis[start:end]
}

// PageIndex returns the zero-based current page.
func (c *Controller[T, D]) PageIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// SetPage moves to page n, clamped to the valid range.
func (c *Controller[T, D]) SetPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = n
	c.clampPageLocked()
}

// PageCount is at least 1.
func (c *Controller[T, D]) PageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageCountLocked()
}

// Loading reports whether the latest List is still in flight.
func (c *Controller[T, D]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LastError returns the most recent failure, cleared by a successful List.
func (c *Controller[T, D]) LastError() *Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// mutate runs call at most once per op and id concurrently. Concurrent
// duplicates share the first call's result. Success and not-found both
// trigger a refresh.
func (c *Controller[T, D]) mutate(ctx context.Context, op, id string, call func(context.Context) (T, error)) (T, error) {
	ctx, stop := c.bind(ctx)
	defer stop()

	v, err, _ := c.flight.Do(op+":"+id, func() (any, error) {
		out, err := call(ctx)
		if err != nil {
			e := Classify(op, err)
			c.mu.Lock()
			c.lastErr = e
			c.mu.Unlock()
			c.logFailure(e)
			if e.Kind == KindNotFound {
				c.Refresh(ctx) //nolint:errcheck // recorded in lastErr
			}
			return out, e
		}
		c.log.Debug().Str("op", op).Str("id", id).Msg("mutation ok")
		c.Refresh(ctx) //nolint:errcheck // recorded in lastErr
		return out, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// bind derives a request context that ends with either ctx or Cancel.
func (c *Controller[T, D]) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	c.mu.Lock()
	base := c.ctx
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(base, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (c *Controller[T, D]) logFailure(e *Error) {
	ev := c.log.Info()
	if e.Kind == KindServer || e.Kind == KindSessionExpired {
		ev = c.log.Warn()
	}
	if errors.Is(e, ErrSuperseded) || e.Kind == KindCanceled {
		ev = c.log.Debug()
	}
	ev.Str("op", e.Op).Stringer("kind", e.Kind).Int("status", e.Status).Err(e.Err).Msg("request failed")
}

func (c *Controller[T, D]) visibleLocked() []T {
	if c.match == nil {
		return clone(c.items)
	}
	out := make([]T, 0, len(c.items))
	for _, it := range c.items {
		if c.match(it, c.filter) {
			out = append(out, it)
		}
	}
	return out
}

func (c *Controller[T, D]) pageCountLocked() int {
	if c.pageSize <= 0 {
		return 1
	}
	n := len(c.visibleLocked())
	return max(1, (n+c.pageSize-1)/c.pageSize)
}

func (c *Controller[T, D]) clampPageLocked() {
	c.page = max(0, min(c.page, c.pageCountLocked()-1))
}

func clone[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
