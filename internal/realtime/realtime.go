// ABOUTME: Realtime delivery of message insert events.
// ABOUTME: In-process broker for a single device; Redis pub/sub across devices.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/harperreed/levelup/internal/models"
	"github.com/redis/go-redis/v9"
)

// Channel delivers message insert events to subscribers. Delivery is
// best-effort and at most once.
type Channel interface {
	Publish(ctx context.Context, m *models.ChatMessage) error
	Subscribe(ctx context.Context, fn func(*models.ChatMessage)) (func(), error)
	Close() error
}

// Broker is an in-process Channel.
type Broker struct {
	mu     sync.RWMutex
	subs   map[int]func(*models.ChatMessage)
	nextID int
	closed bool
}

// NewBroker returns an empty in-process broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]func(*models.ChatMessage))}
}

// Publish delivers m to every subscriber on the calling goroutine.
func (b *Broker) Publish(_ context.Context, m *models.ChatMessage) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("publish: broker closed")
	}
	fns := make([]func(*models.ChatMessage), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(m)
	}
	return nil
}

// Subscribe registers fn until the returned func is called.
func (b *Broker) Subscribe(_ context.Context, fn func(*models.ChatMessage)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("subscribe: broker closed")
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}, nil
}

// Close drops every subscriber.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[int]func(*models.ChatMessage))
	return nil
}

// DefaultRedisChannel is the pub/sub channel carrying message inserts.
const DefaultRedisChannel = "levelup:messages:insert"

// RedisChannel publishes message inserts over Redis pub/sub.
type RedisChannel struct {
	client  *redis.Client
	channel string
}

// NewRedisChannel connects to Redis at addr.
func NewRedisChannel(ctx context.Context, addr, channel string) (*RedisChannel, error) {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisChannel{client: client, channel: channel}, nil
}

// Publish sends m as JSON to the pub/sub channel.
func (r *RedisChannel) Publish(ctx context.Context, m *models.ChatMessage) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Subscribe starts a goroutine delivering decoded messages to fn until the
// returned func is called or ctx is done. Undecodable payloads are skipped.
func (r *RedisChannel) Subscribe(ctx context.Context, fn func(*models.ChatMessage)) (func(), error) {
	ps := r.client.Subscribe(ctx, r.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	go func() {
		ch := ps.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var m models.ChatMessage
				if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
					continue
				}
				fn(&m)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = ps.Close()
		})
	}, nil
}

// Close closes the Redis client.
func (r *RedisChannel) Close() error {
	return r.client.Close()
}
