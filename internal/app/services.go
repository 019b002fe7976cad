package app

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/paneworks/glassdesk_backend/config"
	"github.com/paneworks/glassdesk_backend/internal/service/delivery"
	"github.com/paneworks/glassdesk_backend/internal/service/notification"
	"github.com/paneworks/glassdesk_backend/internal/store"
	"github.com/paneworks/glassdesk_backend/pkg/database"
	"github.com/paneworks/glassdesk_backend/pkg/email"
	"github.com/paneworks/glassdesk_backend/pkg/observability"
	"github.com/paneworks/glassdesk_backend/pkg/queue"
	"github.com/paneworks/glassdesk_backend/pkg/sms"
)

// ServiceModule provides stores and application services.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideStores,
		ProvideNotificationService,
		ProvideTriggers,
		ProvideDispatcher,
		ProvideDigest,
	),
)

// Stores bundles the persistence interfaces so providers stay short.
type Stores struct {
	fx.Out

	Notifications store.Notifications
	Deliveries    store.Deliveries
	Prefs         store.Preferences
	Recipients    store.Recipients
}

func ProvideStores(db *database.DB) Stores {
	return Stores{
		Notifications: store.NewNotificationStore(db),
		Deliveries:    store.NewDeliveryLogStore(db),
		Prefs:         store.NewPreferenceStore(db),
		Recipients:    store.NewRecipientStore(db),
	}
}

func ProvideNotificationService(
	db *database.DB,
	notifications store.Notifications,
	deliveries store.Deliveries,
	prefs store.Preferences,
	recipients store.Recipients,
	bus *queue.Bus,
	rdb *redis.Client,
	cfg *config.Config,
) (notification.Service, error) {
	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return nil, err
	}
	return notification.New(notification.Deps{
		DB:            db,
		Notifications: notifications,
		Deliveries:    deliveries,
		Prefs:         prefs,
		Recipients:    recipients,
		Bus:           bus,
		Redis:         rdb,
		Location:      loc,
		MaxAttempts:   cfg.Delivery.MaxAttempts,
	}), nil
}

func ProvideTriggers(svc notification.Service) *notification.Triggers {
	return notification.NewTriggers(svc)
}

func ProvideDispatcher(
	notifications store.Notifications,
	deliveries store.Deliveries,
	recipients store.Recipients,
	bus *queue.Bus,
	emailClient *email.Client,
	smsClient *sms.Client,
	cfg *config.Config,
) *delivery.Dispatcher {
	branding := email.BrandingFromCentral(cfg.Email.Branding)
	schedule := delivery.Schedule{
		Initial:    time.Duration(cfg.Delivery.Backoff.InitialSeconds) * time.Second,
		Multiplier: cfg.Delivery.Backoff.Multiplier,
		Max:        time.Duration(cfg.Delivery.Backoff.MaxSeconds) * time.Second,
	}
	return delivery.NewDispatcher(
		notifications,
		deliveries,
		bus,
		delivery.Config{
			Schedule:    schedule,
			TaskTimeout: time.Duration(cfg.Delivery.TaskTimeoutSeconds) * time.Second,
			SweepBatch:  cfg.Delivery.Sweep.BatchSize,
			Metrics:     observability.NewDeliveryMetrics(cfg.Observability.ServiceName),
		},
		delivery.NewEmailSender(emailClient, branding, recipients),
		delivery.NewSMSSender(smsClient, branding.AppName),
	)
}

func ProvideDigest(
	prefs store.Preferences,
	notifications store.Notifications,
	recipients store.Recipients,
	emailClient *email.Client,
	cfg *config.Config,
) *delivery.Digest {
	branding := email.BrandingFromCentral(cfg.Email.Branding)
	return delivery.NewDigest(prefs, notifications, recipients, emailClient, branding)
}
