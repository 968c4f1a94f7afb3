package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"courier-dispatch/internal/core/docstore"
	"courier-dispatch/internal/features/dispatch/ports"
)

const notifyChannelPrefix = "dispatch:notify:"

// NotifyChannel is the pub/sub channel a courier's device listens on.
func NotifyChannel(courierID string) string {
	return notifyChannelPrefix + courierID
}

// RedisNotifier implements ports.Notifier over Redis pub/sub. Delivery is
// fire-and-forget; an offline courier simply misses the message.
type RedisNotifier struct {
	bus docstore.Broadcaster
}

// NewRedisNotifier creates a new RedisNotifier.
func NewRedisNotifier(bus docstore.Broadcaster) *RedisNotifier {
	return &RedisNotifier{bus: bus}
}

// Notify publishes n on the courier's channel.
func (n *RedisNotifier) Notify(ctx context.Context, courierID string, msg ports.Notification) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	return n.bus.Publish(ctx, NotifyChannel(courierID), payload)
}
