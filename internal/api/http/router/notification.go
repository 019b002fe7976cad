package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/paneworks/glassdesk_backend/internal/api/http/handler"
)

func (r *Router) registerNotificationRoutes(api fiber.Router, nh *handler.NotificationHandler) {
	notifs := api.Group("/notifications")
	notifs.Post("/", nh.Create)
	notifs.Patch("/:id/read", nh.MarkRead)
	notifs.Patch("/:id/unread", nh.MarkUnread)
	notifs.Get("/:id/deliveries", nh.Deliveries)

	// Per-recipient views, keyed by the polymorphic reference.
	recipient := api.Group("/recipients/:kind/:id")
	recipient.Get("/notifications", nh.List)
	recipient.Get("/notifications/stats", nh.Stats)
	recipient.Patch("/notifications/read-all", nh.MarkAllRead)
	recipient.Get("/notification-prefs", nh.GetPrefs)
	recipient.Put("/notification-prefs", nh.UpdatePrefs)
}
