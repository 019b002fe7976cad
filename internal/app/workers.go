package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"

	"github.com/paneworks/glassdesk_backend/config"
	"github.com/paneworks/glassdesk_backend/internal/model"
	"github.com/paneworks/glassdesk_backend/internal/service/delivery"
	"github.com/paneworks/glassdesk_backend/pkg/observability"
	"github.com/paneworks/glassdesk_backend/pkg/queue"
)

// WorkerModule registers the delivery workers and scheduled jobs.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc         fx.Lifecycle
	Bus        *queue.Bus
	Dispatcher *delivery.Dispatcher
	Digest     *delivery.Digest
	Cfg        *config.Config

	// Telemetry is requested so the worker process also installs the
	// global tracer and meter providers. Nil when observability is off.
	Telemetry *observability.Provider
}

func RegisterWorkers(p WorkerParams) error {
	sweepEvery := time.Duration(p.Cfg.Delivery.Sweep.IntervalSeconds) * time.Second
	if sweepEvery <= 0 {
		sweepEvery = 30 * time.Second
	}
	digestCron := p.Cfg.Delivery.DigestCron
	if digestCron == "" {
		digestCron = "0 8 * * *"
	}

	loc, err := time.LoadLocation(p.Cfg.Server.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}
	c := cron.New(cron.WithLocation(loc))

	var subs []*nats.Subscription

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			for _, ch := range []model.Channel{model.ChannelEmail, model.ChannelSMS} {
				sub, err := p.Bus.SubscribeDelivery(string(ch), func(t queue.Task) {
					if err := p.Dispatcher.Execute(context.Background(), t.DeliveryID); err != nil {
						slog.Error("delivery task failed", "delivery_id", t.DeliveryID, "err", err)
					}
				})
				if err != nil {
					return err
				}
				subs = append(subs, sub)
			}

			if _, err := c.AddFunc(fmt.Sprintf("@every %s", sweepEvery), func() {
				if err := p.Dispatcher.Sweep(context.Background()); err != nil {
					slog.Error("delivery sweep failed", "err", err)
				}
			}); err != nil {
				return fmt.Errorf("schedule sweep: %w", err)
			}

			if _, err := c.AddFunc(digestCron, func() {
				if err := p.Digest.Run(context.Background()); err != nil {
					slog.Error("digest run failed", "err", err)
				}
			}); err != nil {
				return fmt.Errorf("schedule digest: %w", err)
			}

			c.Start()
			slog.Info("delivery workers started",
				"sweep_interval", sweepEvery, "digest_cron", digestCron)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			for _, sub := range subs {
				if err := sub.Unsubscribe(); err != nil {
					slog.Warn("unsubscribe failed", "err", err)
				}
			}
			stopCtx := c.Stop()
			select {
			case <-stopCtx.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return nil
}
