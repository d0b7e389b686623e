package liveview

import (
	"context"
	"time"

	"printdesk-be/internal/logger"
	"printdesk-be/internal/metrics"
	"printdesk-be/internal/order"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Store is the read side the synchronizer joins over. order.Repository
// satisfies it.
type Store interface {
	ListOrders(ctx context.Context) ([]order.Order, error)
	ListOrdersByCreator(ctx context.Context, userID string) ([]order.Order, error)
	ListSubOrders(ctx context.Context, orderID string) ([]order.SubOrder, error)
}

const (
	defaultFetchLimit   = 8
	defaultFetchTimeout = 5 * time.Second
)

// Synchronizer turns change notifications into coherent, fully-populated
// snapshots of aggregated order views.
type Synchronizer struct {
	store        Store
	source       ChangeSource
	metrics      *metrics.SyncMetrics
	fetchLimit   int
	fetchTimeout time.Duration
}

func NewSynchronizer(store Store, source ChangeSource, m *metrics.SyncMetrics) *Synchronizer {
	if m == nil {
		m = &metrics.SyncMetrics{}
	}
	return &Synchronizer{
		store:        store,
		source:       source,
		metrics:      m,
		fetchLimit:   defaultFetchLimit,
		fetchTimeout: defaultFetchTimeout,
	}
}

// Subscription is one live consumer feed. Snapshots are published whole:
// a consumer never observes a half-aggregated list.
type Subscription struct {
	views  chan []order.View
	cancel context.CancelFunc
	done   chan struct{}
}

// Views yields the latest snapshot. Only the newest snapshot is retained;
// a slow consumer skips intermediate states, never sees partial ones.
func (s *Subscription) Views() <-chan []order.View {
	return s.views
}

// Close tears the subscription down. In-flight sub-fetches are cancelled;
// Close does not wait for them.
func (s *Subscription) Close() {
	s.cancel()
}

// Done is closed once the subscription loop has fully stopped.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Subscribe starts a live feed scoped to the actor: staff see every order,
// clients only their own. The feed runs until Close or ctx cancellation;
// no pass error terminates it.
func (s *Synchronizer) Subscribe(ctx context.Context, actor order.Actor) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	ticks, stop, err := s.source.Subscribe(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription{
		views:  make(chan []order.View, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go s.run(ctx, actor, ticks, stop, sub)
	return sub, nil
}

func (s *Synchronizer) run(ctx context.Context, actor order.Actor, ticks <-chan struct{}, stop func(), sub *Subscription) {
	defer close(sub.done)
	defer stop()

	log := logger.L().With(
		zap.String("layer", "liveview"),
		zap.String("actor_id", actor.ID),
		zap.String("role", string(actor.Role)),
	)

	// Initial snapshot before the first change arrives.
	s.pass(ctx, actor, sub, log)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			s.pass(ctx, actor, sub, log)
		}
	}
}

// pass performs one full synchronization: list the visible orders, join
// each with its sub-order set concurrently, aggregate, publish atomically.
// Passes are serialized per subscription by construction (single loop).
func (s *Synchronizer) pass(ctx context.Context, actor order.Actor, sub *Subscription, log *zap.Logger) {
	if ctx.Err() != nil {
		return
	}

	timer := metrics.StartTimer()

	orders, err := s.listVisible(ctx, actor)
	if err != nil {
		// Keep the previous snapshot; the subscription stays alive and the
		// next change retries.
		s.metrics.PassErrors.Inc()
		log.Warn("sync pass failed to list orders", zap.Error(err))
		return
	}

	views := make([]order.View, len(orders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fetchLimit)

	for i, o := range orders {
		i, o := i, o
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, s.fetchTimeout)
			defer cancel()

			subs, err := s.store.ListSubOrders(fetchCtx, o.ID)
			if err != nil {
				// Per-order degradation: the order stays in the list with an
				// empty sub-order set instead of sinking the whole pass.
				s.metrics.DegradedOrders.Inc()
				log.Warn("sub-order fetch failed, order degraded",
					zap.String("order_id", o.ID),
					zap.Error(err),
				)
				v := order.Aggregate(o, nil)
				v.Degraded = true
				views[i] = v
				return nil
			}

			views[i] = order.Aggregate(o, subs)
			return nil
		})
	}

	// Workers only return nil; Wait is for completion, not errors.
	_ = g.Wait()

	if ctx.Err() != nil {
		return
	}

	publishLatest(sub.views, views)
	s.metrics.ObservePass(timer.Duration())
}

func (s *Synchronizer) listVisible(ctx context.Context, actor order.Actor) ([]order.Order, error) {
	if actor.IsStaff() {
		return s.store.ListOrders(ctx)
	}
	return s.store.ListOrdersByCreator(ctx, actor.ID)
}

// publishLatest replaces any unconsumed snapshot so the channel always
// holds the newest complete list.
func publishLatest(ch chan []order.View, views []order.View) {
	for {
		select {
		case ch <- views:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
