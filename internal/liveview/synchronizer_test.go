package liveview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"printdesk-be/internal/metrics"
	"printdesk-be/internal/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu         sync.Mutex
	orders     []order.Order
	subOrders  map[string][]order.SubOrder
	listErr    error
	failSubFor map[string]bool

	listAllCalls     int
	listCreatorCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		subOrders:  map[string][]order.SubOrder{},
		failSubFor: map[string]bool{},
	}
}

func (f *fakeStore) ListOrders(ctx context.Context) ([]order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listAllCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]order.Order(nil), f.orders...), nil
}

func (f *fakeStore) ListOrdersByCreator(ctx context.Context, userID string) ([]order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCreatorCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []order.Order
	for _, o := range f.orders {
		if o.CreatedBy == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSubOrders(ctx context.Context, orderID string) ([]order.SubOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSubFor[orderID] {
		return nil, errors.New("sub-order store unavailable")
	}
	return append([]order.SubOrder(nil), f.subOrders[orderID]...), nil
}

func (f *fakeStore) setListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeStore) addOrder(o order.Order, subs ...order.SubOrder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, o)
	f.subOrders[o.ID] = subs
}

// fakeSource hands out a shared tick channel driven by the test.
type fakeSource struct {
	ticks chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{ticks: make(chan struct{}, 1)}
}

func (f *fakeSource) Subscribe(ctx context.Context) (<-chan struct{}, func(), error) {
	return f.ticks, func() {}, nil
}

func (f *fakeSource) tick() {
	f.ticks <- struct{}{}
}

var staff = order.Actor{ID: "staff-1", Role: order.RoleTeam}

func waitViews(t *testing.T, sub *Subscription) []order.View {
	t.Helper()
	select {
	case views := <-sub.Views():
		return views
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestSynchronizer_InitialSnapshot(t *testing.T) {
	store := newFakeStore()
	store.addOrder(order.Order{ID: "order-1", CreatedBy: "client-1", Status: order.StatusPending},
		order.SubOrder{ID: "sub-1", OrderID: "order-1", Quantity: 10},
		order.SubOrder{ID: "sub-2", OrderID: "order-1", Quantity: 5},
	)

	syncer := NewSynchronizer(store, newFakeSource(), &metrics.SyncMetrics{})

	sub, err := syncer.Subscribe(context.Background(), staff)
	require.NoError(t, err)
	defer sub.Close()

	views := waitViews(t, sub)
	require.Len(t, views, 1)
	assert.Equal(t, "order-1", views[0].ID)
	assert.Equal(t, 2, views[0].ItemCount)
	assert.Equal(t, 15, views[0].TotalQuantity)
	assert.False(t, views[0].Degraded)
}

func TestSynchronizer_ClientScope(t *testing.T) {
	store := newFakeStore()
	store.addOrder(order.Order{ID: "order-1", CreatedBy: "client-1"})
	store.addOrder(order.Order{ID: "order-2", CreatedBy: "client-2"})

	syncer := NewSynchronizer(store, newFakeSource(), nil)

	sub, err := syncer.Subscribe(context.Background(), order.Actor{ID: "client-1", Role: order.RoleClient})
	require.NoError(t, err)
	defer sub.Close()

	views := waitViews(t, sub)
	require.Len(t, views, 1)
	assert.Equal(t, "order-1", views[0].ID)
}

func TestSynchronizer_DegradedOrderStaysListed(t *testing.T) {
	store := newFakeStore()
	store.addOrder(order.Order{ID: "order-ok", CreatedBy: "client-1"},
		order.SubOrder{ID: "sub-1", Quantity: 3})
	store.addOrder(order.Order{ID: "order-bad", CreatedBy: "client-1"})
	store.failSubFor["order-bad"] = true

	m := &metrics.SyncMetrics{}
	syncer := NewSynchronizer(store, newFakeSource(), m)

	sub, err := syncer.Subscribe(context.Background(), staff)
	require.NoError(t, err)
	defer sub.Close()

	views := waitViews(t, sub)
	require.Len(t, views, 2)

	byID := map[string]order.View{}
	for _, v := range views {
		byID[v.ID] = v
	}

	assert.False(t, byID["order-ok"].Degraded)
	assert.True(t, byID["order-bad"].Degraded)
	assert.Zero(t, byID["order-bad"].ItemCount)
	assert.EqualValues(t, 1, m.DegradedOrders.Load())
}

func TestSynchronizer_TickRefreshesSnapshot(t *testing.T) {
	store := newFakeStore()
	store.addOrder(order.Order{ID: "order-1", CreatedBy: "client-1"})

	source := newFakeSource()
	syncer := NewSynchronizer(store, source, nil)

	sub, err := syncer.Subscribe(context.Background(), staff)
	require.NoError(t, err)
	defer sub.Close()

	first := waitViews(t, sub)
	require.Len(t, first, 1)

	store.addOrder(order.Order{ID: "order-2", CreatedBy: "client-2"})
	source.tick()

	second := waitViews(t, sub)
	assert.Len(t, second, 2)
}

func TestSynchronizer_PassErrorKeepsSubscriptionAlive(t *testing.T) {
	store := newFakeStore()
	store.setListErr(errors.New("db down"))

	source := newFakeSource()
	m := &metrics.SyncMetrics{}
	syncer := NewSynchronizer(store, source, m)

	sub, err := syncer.Subscribe(context.Background(), staff)
	require.NoError(t, err)
	defer sub.Close()

	// The failed pass publishes nothing.
	select {
	case views := <-sub.Views():
		t.Fatalf("unexpected snapshot after failed pass: %v", views)
	case <-time.After(100 * time.Millisecond):
	}

	store.setListErr(nil)
	store.addOrder(order.Order{ID: "order-1", CreatedBy: "client-1"})
	source.tick()

	views := waitViews(t, sub)
	assert.Len(t, views, 1)
	assert.GreaterOrEqual(t, m.PassErrors.Load(), uint64(1))
}

func TestSynchronizer_CloseStopsLoop(t *testing.T) {
	store := newFakeStore()
	syncer := NewSynchronizer(store, newFakeSource(), nil)

	sub, err := syncer.Subscribe(context.Background(), staff)
	require.NoError(t, err)

	sub.Close()

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription loop did not stop")
	}
}

func TestPublishLatest_ReplacesUnconsumedSnapshot(t *testing.T) {
	ch := make(chan []order.View, 1)

	publishLatest(ch, []order.View{{Order: order.Order{ID: "stale"}}})
	publishLatest(ch, []order.View{{Order: order.Order{ID: "fresh"}}})

	got := <-ch
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].ID)
}
