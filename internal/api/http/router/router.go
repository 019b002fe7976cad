package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/paneworks/glassdesk_backend/config"
	"github.com/paneworks/glassdesk_backend/internal/api/http/handler"
	"github.com/paneworks/glassdesk_backend/internal/service/delivery"
	"github.com/paneworks/glassdesk_backend/internal/service/notification"
	"github.com/paneworks/glassdesk_backend/internal/store"
	"github.com/paneworks/glassdesk_backend/pkg/database"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Redis           *redis.Client
	DB              *database.DB
	NotificationSvc notification.Service
	Dispatcher      *delivery.Dispatcher
	Deliveries      store.Deliveries
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	r.registerSystemRoutes(app)

	notificationH := handler.NewNotificationHandler(r.p.NotificationSvc)
	adminH := handler.NewAdminHandler(r.p.Dispatcher, r.p.Deliveries)

	api := app.Group("/api/v1")

	r.registerNotificationRoutes(api, notificationH)
	r.registerAdminRoutes(api, adminH)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool { return r.p.DB.Ping() == nil },
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
