package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel auth events travel on.
const Channel = "realtime:auth"

// RedisBroker fans auth events out to every instance through Redis pub/sub.
// Each instance runs Run to deliver what it receives to its own hub.
type RedisBroker struct {
	rdb *redis.Client
	hub *Hub
}

func NewRedisBroker(rdb *redis.Client, hub *Hub) *RedisBroker {
	return &RedisBroker{rdb: rdb, hub: hub}
}

// Publish sends the event to all instances. If Redis is unreachable the event is
// still delivered to local connections.
func (b *RedisBroker) Publish(ctx context.Context, userID string, event domain.AuthEvent) error {
	payload, err := json.Marshal(Message{Type: MsgAuth, Event: event, UserID: userID})
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		b.hub.Deliver(userID, event)
		return fmt.Errorf("publish %s: %w", event, err)
	}
	return nil
}

// Run subscribes and delivers until ctx is cancelled. The returned channel is closed
// once the subscription is confirmed.
func (b *RedisBroker) Run(ctx context.Context) (<-chan struct{}, error) {
	sub := b.rdb.Subscribe(ctx, Channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", Channel, err)
	}

	ready := make(chan struct{})
	close(ready)

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var msg Message
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					logger.Warn("bad realtime payload", "error", err)
					continue
				}
				if msg.UserID == "" || msg.Event == "" {
					continue
				}
				b.hub.Deliver(msg.UserID, msg.Event)
			}
		}
	}()
	return ready, nil
}
