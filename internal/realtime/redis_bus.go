package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/keyurgolani/BabyNest-sub006/internal"
)

// RedisBus publishes updates on a Redis channel and forwards everything
// received on that channel into a local Hub, so every server instance sees
// updates computed by any of them. Invalidations travel on a sibling channel.
type RedisBus struct {
	log               internal.Logger
	rdb               *goredis.Client
	channel           string
	invalidateChannel string
	local             *Hub
	cancel            context.CancelFunc
	done              chan struct{}
}

func NewRedisBus(ctx context.Context, addr, channel string, log internal.Logger) (*RedisBus, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	if channel == "" {
		channel = "sweetspot.predictions"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRedisBus(ctx, rdb, channel, log)
}

func newRedisBus(ctx context.Context, rdb *goredis.Client, channel string, log internal.Logger) (*RedisBus, error) {
	fwdCtx, cancel := context.WithCancel(ctx)
	b := &RedisBus{
		log:               log.With("component", "redis_bus", "channel", channel),
		rdb:               rdb,
		channel:           channel,
		invalidateChannel: channel + ".invalidate",
		local:             NewHub(),
		cancel:            cancel,
		done:              make(chan struct{}),
	}

	sub := rdb.Subscribe(fwdCtx, b.channel, b.invalidateChannel)
	if _, err := sub.Receive(fwdCtx); err != nil {
		cancel()
		_ = sub.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}
	go b.forward(fwdCtx, sub)
	return b, nil
}

func (b *RedisBus) forward(ctx context.Context, sub *goredis.PubSub) {
	defer close(b.done)
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Channel == b.invalidateChannel {
				b.local.invalidate(msg.Payload)
				continue
			}
			var u Update
			if err := json.Unmarshal([]byte(msg.Payload), &u); err != nil {
				b.log.Warnw("dropping malformed update", "error", err)
				continue
			}
			_ = b.local.Publish(ctx, u)
		}
	}
}

func (b *RedisBus) Publish(ctx context.Context, u Update) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, babyID string) (<-chan Update, func()) {
	return b.local.Subscribe(ctx, babyID)
}

func (b *RedisBus) PublishInvalidation(ctx context.Context, babyID string) error {
	return b.rdb.Publish(ctx, b.invalidateChannel, babyID).Err()
}

func (b *RedisBus) OnInvalidate(fn func(babyID string)) {
	b.local.OnInvalidate(fn)
}

func (b *RedisBus) Close() error {
	b.cancel()
	<-b.done
	_ = b.local.Close()
	return b.rdb.Close()
}

var _ Bus = (*Hub)(nil)
var _ Bus = (*RedisBus)(nil)
