// Package delivery runs the asynchronous side of notifications: executing
// delivery tasks, retrying with backoff, sweeping the schedule and sending
// daily digests. The delivery_logs table is the durable queue; NATS messages
// only shortcut the next poll.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/paneworks/glassdesk_backend/internal/model"
	"github.com/paneworks/glassdesk_backend/internal/store"
	"github.com/paneworks/glassdesk_backend/pkg/observability"
	"github.com/paneworks/glassdesk_backend/pkg/queue"
)

type Dispatcher struct {
	notifications store.Notifications
	deliveries    store.Deliveries
	senders       map[model.Channel]Sender
	schedule      Schedule
	publish       func(ctx context.Context, t queue.Task) error
	metrics       *observability.DeliveryMetrics
	taskTimeout   time.Duration
	sweepBatch    int
	now           func() time.Time
}

type Config struct {
	Schedule    Schedule
	TaskTimeout time.Duration
	SweepBatch  int
	// Metrics may be nil; attempts then go unrecorded.
	Metrics *observability.DeliveryMetrics
}

func NewDispatcher(
	notifications store.Notifications,
	deliveries store.Deliveries,
	bus *queue.Bus,
	cfg Config,
	senders ...Sender,
) *Dispatcher {
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 5 * time.Minute
	}
	if cfg.SweepBatch <= 0 {
		cfg.SweepBatch = 100
	}
	if cfg.Schedule == (Schedule{}) {
		cfg.Schedule = DefaultSchedule()
	}
	byChannel := make(map[model.Channel]Sender, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}
	d := &Dispatcher{
		notifications: notifications,
		deliveries:    deliveries,
		senders:       byChannel,
		schedule:      cfg.Schedule,
		metrics:       cfg.Metrics,
		taskTimeout:   cfg.TaskTimeout,
		sweepBatch:    cfg.SweepBatch,
		now:           time.Now,
	}
	if bus != nil {
		d.publish = bus.PublishDelivery
	} else {
		d.publish = func(context.Context, queue.Task) error { return nil }
	}
	return d
}

// Execute runs one delivery attempt. Claiming is first and atomic, so a
// duplicate nudge or a racing worker finds nothing to do. Every attempt ends
// with an outcome written back to the log row; the attempt itself runs under
// a hard timeout so a hung provider cannot wedge the worker.
func (d *Dispatcher) Execute(ctx context.Context, deliveryID uuid.UUID) error {
	claimed, ok, err := d.deliveries.Claim(ctx, deliveryID)
	if err != nil {
		return fmt.Errorf("claim delivery %s: %w", deliveryID, err)
	}
	if !ok {
		// Already handled, not yet due, or out of attempts.
		return nil
	}

	n, err := d.notifications.Get(ctx, claimed.NotificationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			msg := fmt.Sprintf("load notification: %v", err)
			return d.record(ctx, claimed, model.DeliveryFailedPermanent, &msg, nil, nil)
		}
		// Transient load failure. Leave the claim in flight; ReapStale
		// re-arms it once the task timeout passes.
		return fmt.Errorf("load notification %s: %w", claimed.NotificationID, err)
	}

	sender, ok := d.senders[claimed.Channel]
	if !ok {
		msg := fmt.Sprintf("no sender for channel %s", claimed.Channel)
		return d.record(ctx, claimed, model.DeliveryFailedPermanent, &msg, nil, nil)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, d.taskTimeout)
	started := d.now()
	res := sender.Send(attemptCtx, n, claimed)
	cancel()
	d.metrics.RecordAttempt(ctx, string(claimed.Channel), res.Outcome.String(), time.Since(started))

	switch res.Outcome {
	case OutcomeSent:
		if err := d.record(ctx, claimed, model.DeliverySent, nil, res.Cost, nil); err != nil {
			return err
		}
		if err := d.notifications.SetChannelSent(ctx, n.ID, claimed.Channel); err != nil {
			slog.Warn("flag channel sent failed", "notification_id", n.ID, "channel", claimed.Channel, "err", err)
		}
		slog.Info("delivery sent",
			"delivery_id", claimed.ID, "channel", claimed.Channel, "attempt", claimed.AttemptNumber)
		return nil

	case OutcomeRetryable:
		msg := res.Err.Error()
		if claimed.AttemptNumber >= claimed.AttemptCap {
			slog.Warn("delivery exhausted",
				"delivery_id", claimed.ID, "channel", claimed.Channel, "attempts", claimed.AttemptNumber, "err", res.Err)
			return d.record(ctx, claimed, model.DeliveryFailedPermanent, &msg, nil, nil)
		}
		next := d.now().Add(d.schedule.Delay(claimed.AttemptNumber))
		slog.Info("delivery retry scheduled",
			"delivery_id", claimed.ID, "channel", claimed.Channel,
			"attempt", claimed.AttemptNumber, "next_attempt_at", next, "err", res.Err)
		return d.record(ctx, claimed, model.DeliveryPendingRetry, &msg, nil, &next)

	default:
		var msg *string
		if res.Err != nil {
			m := res.Err.Error()
			msg = &m
		}
		slog.Info("delivery closed",
			"delivery_id", claimed.ID, "channel", claimed.Channel,
			"status", res.Outcome.status(), "err", res.Err)
		return d.record(ctx, claimed, res.Outcome.status(), msg, res.Cost, nil)
	}
}

func (d *Dispatcher) record(ctx context.Context, claimed *model.DeliveryLog, status model.DeliveryStatus, errMsg *string, cost *float64, next *time.Time) error {
	if err := d.deliveries.RecordOutcome(ctx, claimed.ID, status, errMsg, cost, next); err != nil {
		return fmt.Errorf("record outcome for %s: %w", claimed.ID, err)
	}
	return nil
}

// Sweep is the scheduler safety net. It re-arms attempts whose worker died
// mid-flight, then nudges every delivery whose schedule has come due. Lost
// NATS messages, deferred quiet-hours sends and backoff retries all funnel
// through here.
func (d *Dispatcher) Sweep(ctx context.Context) error {
	reaped, err := d.deliveries.ReapStale(ctx, d.taskTimeout)
	if err != nil {
		return fmt.Errorf("reap stale deliveries: %w", err)
	}
	if reaped > 0 {
		slog.Warn("re-armed stale deliveries", "count", reaped)
	}

	due, err := d.deliveries.Due(ctx, d.sweepBatch)
	if err != nil {
		return fmt.Errorf("list due deliveries: %w", err)
	}
	for _, dl := range due {
		err := d.publish(ctx, queue.Task{
			DeliveryID:     dl.ID,
			NotificationID: dl.NotificationID,
			Channel:        string(dl.Channel),
		})
		if err != nil {
			slog.Warn("publish due delivery failed", "delivery_id", dl.ID, "err", err)
		}
	}
	if len(due) > 0 {
		slog.Debug("sweep dispatched deliveries", "count", len(due))
	}
	return nil
}

// Requeue reopens a delivery for more attempts on operator request and
// nudges a worker immediately.
func (d *Dispatcher) Requeue(ctx context.Context, deliveryID uuid.UUID, extraAttempts int) (*model.DeliveryLog, error) {
	dl, ok, err := d.deliveries.Requeue(ctx, deliveryID, extraAttempts)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, store.ErrNotFound
	}
	err = d.publish(ctx, queue.Task{
		DeliveryID:     dl.ID,
		NotificationID: dl.NotificationID,
		Channel:        string(dl.Channel),
	})
	if err != nil {
		slog.Warn("publish requeued delivery failed", "delivery_id", dl.ID, "err", err)
	}
	return dl, nil
}

// RequeueBatch reopens every eligible delivery in ids. Unknown ids and rows
// already sent are skipped rather than failing the batch; the returned count
// is how many were queued.
func (d *Dispatcher) RequeueBatch(ctx context.Context, ids []uuid.UUID, extraAttempts int) (int, error) {
	queued := 0
	for _, id := range ids {
		_, err := d.Requeue(ctx, id, extraAttempts)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return queued, err
		}
		queued++
	}
	return queued, nil
}

// Suppress permanently closes a delivery so it never retries again.
func (d *Dispatcher) Suppress(ctx context.Context, deliveryID uuid.UUID) error {
	return d.deliveries.Suppress(ctx, deliveryID)
}
