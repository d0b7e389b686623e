package liveview

import (
	"context"

	"printdesk-be/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel carries order-change notifications between the write path and
// every live subscription.
const Channel = "orders.changed"

// ChangeSource delivers a tick for every upstream change batch. Ticks carry
// no payload: a pass always re-reads the full visible set.
type ChangeSource interface {
	// Subscribe returns a tick channel and a stop function. The channel is
	// closed after stop is called or ctx is cancelled.
	Subscribe(ctx context.Context) (<-chan struct{}, func(), error)
}

// RedisSource adapts redis pub/sub to ChangeSource and doubles as the
// write-side publisher.
type RedisSource struct {
	rdb *redis.Client
}

func NewRedisSource(rdb *redis.Client) *RedisSource {
	return &RedisSource{rdb: rdb}
}

// PublishOrderChanged implements order.ChangePublisher. Publishing is best
// effort: a missed event only delays the next repaint until the following
// change.
func (s *RedisSource) PublishOrderChanged(ctx context.Context, orderID string) {
	if err := s.rdb.Publish(ctx, Channel, orderID).Err(); err != nil {
		logger.FromCtx(ctx).Warn("failed to publish order change",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	}
}

func (s *RedisSource) Subscribe(ctx context.Context) (<-chan struct{}, func(), error) {
	sub := s.rdb.Subscribe(ctx, Channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	// Buffer of one coalesces bursts: a change arriving mid-pass queues
	// exactly one follow-up pass.
	ticks := make(chan struct{}, 1)

	go func() {
		defer close(ticks)
		for range sub.Channel() {
			select {
			case ticks <- struct{}{}:
			default:
			}
		}
	}()

	stop := func() { _ = sub.Close() }
	return ticks, stop, nil
}
