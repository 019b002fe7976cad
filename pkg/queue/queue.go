// Package queue is a thin NATS wrapper for delivery task nudges. Messages
// are fast-path hints, not the durable queue: a lost message only delays a
// task until the next scheduler sweep picks it up from the database.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

type Bus struct {
	nc *nats.Conn
}

func NewBus(nc *nats.Conn) *Bus {
	return &Bus{nc: nc}
}

// PublishDelivery publishes a task nudge on the channel subject.
func (b *Bus) PublishDelivery(_ context.Context, t Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding delivery task: %w", err)
	}
	if err := b.nc.Publish(DeliverySubject(t.Channel), data); err != nil {
		return fmt.Errorf("publishing delivery task: %w", err)
	}
	return nil
}

// SubscribeDelivery subscribes to one channel's tasks in a queue group so
// that concurrent workers split the stream instead of duplicating it.
func (b *Bus) SubscribeDelivery(channel string, handler func(Task)) (*nats.Subscription, error) {
	sub, err := b.nc.QueueSubscribe(DeliverySubject(channel), "delivery-workers", func(msg *nats.Msg) {
		t, err := decodeTask(msg.Data)
		if err != nil {
			// Dropped, not fatal: the sweep re-dispatches the row.
			slog.Warn("discarding malformed delivery task",
				"subject", msg.Subject, "err", err)
			return
		}
		handler(t)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s tasks: %w", channel, err)
	}
	return sub, nil
}

func decodeTask(data []byte) (Task, error) {
	var t Task
	if err := json.Unmarshal(data, &t); err != nil {
		return Task{}, fmt.Errorf("decoding delivery task: %w", err)
	}
	return t, nil
}
