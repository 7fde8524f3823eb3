package live

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"nutriapp/internal/domain"
)

const waitTimeout = 2 * time.Second

// counterQuery returns a query reporting the current value of n
func counterQuery(n *atomic.Int64) Query[int64] {
	return func(ctx context.Context) (int64, error) {
		return n.Load(), nil
	}
}

// next reads one snapshot or fails the test
func next[T any](t *testing.T, sub *Subscription[T]) Snapshot[T] {
	t.Helper()
	select {
	case snap, ok := <-sub.C():
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return snap
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for snapshot")
	}
	return Snapshot[T]{}
}

// expectNone fails if a snapshot arrives within a short window
func expectNone[T any](t *testing.T, sub *Subscription[T]) {
	t.Helper()
	select {
	case snap := <-sub.C():
		t.Fatalf("unexpected snapshot: %+v", snap)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatchDeliversInitialSnapshot(t *testing.T) {
	reg := NewRegistry()
	var n atomic.Int64
	n.Store(7)

	sub := Watch(context.Background(), reg, "counter", counterQuery(&n), domain.TableIngredients)
	defer sub.Close()

	snap := next(t, sub)
	if snap.Err != nil {
		t.Fatalf("unexpected error: %v", snap.Err)
	}
	if snap.Value != 7 {
		t.Errorf("expected 7, got %d", snap.Value)
	}
	if sub.ID() == "" {
		t.Error("expected subscription id")
	}
}

func TestNotifyRedeliversToDependentQueries(t *testing.T) {
	reg := NewRegistry()
	var n atomic.Int64

	ingredients := Watch(context.Background(), reg, "ingredients", counterQuery(&n), domain.TableIngredients)
	defer ingredients.Close()
	recipes := Watch(context.Background(), reg, "recipes", counterQuery(&n), domain.TableRecipes)
	defer recipes.Close()

	next(t, ingredients)
	next(t, recipes)

	n.Store(1)
	reg.Notify(domain.TableIngredients)

	t.Run("dependent subscription sees change", func(t *testing.T) {
		snap := next(t, ingredients)
		if snap.Value != 1 {
			t.Errorf("expected 1, got %d", snap.Value)
		}
	})

	t.Run("unrelated subscription stays quiet", func(t *testing.T) {
		expectNone(t, recipes)
	})
}

func TestNotifyMatchesAnyTable(t *testing.T) {
	reg := NewRegistry()
	var n atomic.Int64

	sub := Watch(context.Background(), reg, "join", counterQuery(&n),
		domain.TableRecipeIngredients, domain.TableIngredients)
	defer sub.Close()
	next(t, sub)

	tests := []struct {
		name   string
		tables []domain.Table
	}{
		{"first table", []domain.Table{domain.TableRecipeIngredients}},
		{"second table", []domain.Table{domain.TableIngredients}},
		{"mixed with unrelated", []domain.Table{domain.TableRecipes, domain.TableIngredients}},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n.Store(int64(i + 10))
			reg.Notify(tt.tables...)
			snap := next(t, sub)
			if snap.Value != int64(i+10) {
				t.Errorf("expected %d, got %d", i+10, snap.Value)
			}
		})
	}
}

func TestNotificationsCoalesce(t *testing.T) {
	reg := NewRegistry()
	var n atomic.Int64

	sub := Watch(context.Background(), reg, "counter", counterQuery(&n), domain.TableIngredients)
	defer sub.Close()
	next(t, sub)

	// Consumer is not reading while many writes land
	for i := 1; i <= 20; i++ {
		n.Store(int64(i))
		reg.Notify(domain.TableIngredients)
	}

	// Notifications collapse: the latest value arrives within a couple of
	// reads and no backlog of twenty snapshots follows.
	var last int64
	for i := 0; i < 3 && last != 20; i++ {
		last = next(t, sub).Value
	}
	if last != 20 {
		t.Fatalf("expected latest value 20, got %d", last)
	}

	select {
	case snap := <-sub.C():
		if snap.Value != 20 {
			t.Fatalf("expected trailing snapshot to be 20, got %d", snap.Value)
		}
		expectNone(t, sub)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestQueryErrorIsDelivered(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("boom")

	sub := Watch(context.Background(), reg, "failing", func(ctx context.Context) (int, error) {
		return 0, boom
	}, domain.TableRecipes)
	defer sub.Close()

	snap := next(t, sub)
	if !errors.Is(snap.Err, boom) {
		t.Fatalf("expected boom, got %v", snap.Err)
	}
}

func TestCloseStopsRedelivery(t *testing.T) {
	reg := NewRegistry()
	var n atomic.Int64

	sub := Watch(context.Background(), reg, "counter", counterQuery(&n), domain.TableIngredients)
	next(t, sub)

	if reg.Count() != 1 {
		t.Fatalf("expected 1 subscription, got %d", reg.Count())
	}

	sub.Close()

	if reg.Count() != 0 {
		t.Errorf("expected 0 subscriptions after close, got %d", reg.Count())
	}
	if _, ok := <-sub.C(); ok {
		t.Error("expected closed channel")
	}

	// Notifying after close must not panic or block
	reg.Notify(domain.TableIngredients)
}

func TestContextCancelEndsSubscription(t *testing.T) {
	reg := NewRegistry()
	var n atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())

	sub := Watch(ctx, reg, "counter", counterQuery(&n), domain.TableIngredients)
	next(t, sub)
	cancel()

	select {
	case <-sub.Done():
	case <-time.After(waitTimeout):
		t.Fatal("subscription did not stop after cancel")
	}
	if reg.Count() != 0 {
		t.Errorf("expected 0 subscriptions, got %d", reg.Count())
	}
}

type countingRecorder struct {
	opened, closed, delivered atomic.Int64
}

func (c *countingRecorder) SubscriptionOpened(string)       { c.opened.Add(1) }
func (c *countingRecorder) SubscriptionClosed(string)       { c.closed.Add(1) }
func (c *countingRecorder) SnapshotDelivered(string, error) { c.delivered.Add(1) }

func TestMetricsRecorder(t *testing.T) {
	reg := NewRegistry()
	rec := &countingRecorder{}
	reg.SetMetrics(rec)
	var n atomic.Int64

	sub := Watch(context.Background(), reg, "counter", counterQuery(&n), domain.TableIngredients)
	next(t, sub)
	reg.Notify(domain.TableIngredients)
	next(t, sub)
	sub.Close()

	if rec.opened.Load() != 1 || rec.closed.Load() != 1 {
		t.Errorf("expected 1 open and 1 close, got %d/%d", rec.opened.Load(), rec.closed.Load())
	}
	if rec.delivered.Load() != 2 {
		t.Errorf("expected 2 deliveries, got %d", rec.delivered.Load())
	}
}
