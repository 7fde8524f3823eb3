package live

import (
	"context"
	"log"
	"sync"

	"nutriapp/internal/domain"

	"github.com/google/uuid"
)

// Snapshot is one delivery of a live query result
type Snapshot[T any] struct {
	Value T
	Err   error
}

// Query loads the current result of a live query
type Query[T any] func(ctx context.Context) (T, error)

// MetricsRecorder receives subscription lifecycle and delivery counts
type MetricsRecorder interface {
	SubscriptionOpened(query string)
	SubscriptionClosed(query string)
	SnapshotDelivered(query string, err error)
}

type noopRecorder struct{}

func (noopRecorder) SubscriptionOpened(string)       {}
func (noopRecorder) SubscriptionClosed(string)       {}
func (noopRecorder) SnapshotDelivered(string, error) {}

// entry is the registry's view of one subscription
type entry struct {
	tables map[domain.Table]struct{}
	dirty  chan struct{}
}

// mark flags the entry for a re-run without blocking
func (e *entry) mark() {
	select {
	case e.dirty <- struct{}{}:
	default:
		// Already pending, the next run sees this change too
	}
}

// Registry tracks live subscriptions and fans out table change notifications
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	metrics MetricsRecorder
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		metrics: noopRecorder{},
	}
}

// SetMetrics installs a recorder. Call before the first Watch.
func (r *Registry) SetMetrics(m MetricsRecorder) {
	if m == nil {
		m = noopRecorder{}
	}
	r.metrics = m
}

// Notify marks every subscription reading any of tables as dirty
func (r *Registry) Notify(tables ...domain.Table) {
	if len(tables) == 0 {
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		for _, t := range tables {
			if _, ok := e.tables[t]; ok {
				e.mark()
				break
			}
		}
	}
}

// Count returns the number of active subscriptions
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) add(id string, e *entry) {
	r.mu.Lock()
	r.entries[id] = e
	r.mu.Unlock()
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

// Subscription is an active live query
type Subscription[T any] struct {
	id     string
	name   string
	ch     chan Snapshot[T]
	cancel context.CancelFunc
	done   chan struct{}
}

// ID returns the subscription's unique identifier
func (s *Subscription[T]) ID() string {
	return s.id
}

// Name returns the query name given to Watch
func (s *Subscription[T]) Name() string {
	return s.name
}

// C returns the snapshot channel. It is closed when the subscription ends.
func (s *Subscription[T]) C() <-chan Snapshot[T] {
	return s.ch
}

// Done is closed once the subscription goroutine has exited
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Close stops the subscription and waits for its goroutine to exit
func (s *Subscription[T]) Close() {
	s.cancel()
	<-s.done
}

// Watch starts a live query. The first snapshot reflects the state at
// subscription time; later ones follow each Notify touching tables.
func Watch[T any](ctx context.Context, r *Registry, name string, query Query[T], tables ...domain.Table) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)

	sub := &Subscription[T]{
		id:     uuid.NewString(),
		name:   name,
		ch:     make(chan Snapshot[T]),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	e := &entry{
		tables: make(map[domain.Table]struct{}, len(tables)),
		dirty:  make(chan struct{}, 1),
	}
	for _, t := range tables {
		e.tables[t] = struct{}{}
	}
	// Initial snapshot
	e.mark()

	r.add(sub.id, e)
	r.metrics.SubscriptionOpened(name)

	go sub.run(ctx, r, e, query)
	return sub
}

func (s *Subscription[T]) run(ctx context.Context, r *Registry, e *entry, query Query[T]) {
	defer func() {
		r.remove(s.id)
		r.metrics.SubscriptionClosed(s.name)
		close(s.ch)
		close(s.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.dirty:
		}

		value, err := query(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Printf("Live query %s failed: %v", s.name, err)
		}

		select {
		case s.ch <- Snapshot[T]{Value: value, Err: err}:
			r.metrics.SnapshotDelivered(s.name, err)
		case <-ctx.Done():
			return
		}
	}
}
