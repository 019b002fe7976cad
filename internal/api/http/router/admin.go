package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/paneworks/glassdesk_backend/internal/api/http/handler"
)

func (r *Router) registerAdminRoutes(api fiber.Router, ah *handler.AdminHandler) {
	admin := api.Group("/admin/deliveries")
	admin.Get("/", ah.List)
	admin.Post("/retry", ah.RetryBatch)
	admin.Get("/:id", ah.Get)
	admin.Post("/:id/retry", ah.Retry)
	admin.Post("/:id/suppress", ah.Suppress)
}
