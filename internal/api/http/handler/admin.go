package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/paneworks/glassdesk_backend/internal/model"
	"github.com/paneworks/glassdesk_backend/internal/service/delivery"
	"github.com/paneworks/glassdesk_backend/internal/store"
)

// AdminHandler exposes the operator surface over delivery logs.
type AdminHandler struct {
	dispatcher *delivery.Dispatcher
	deliveries store.Deliveries
}

func NewAdminHandler(dispatcher *delivery.Dispatcher, deliveries store.Deliveries) *AdminHandler {
	return &AdminHandler{dispatcher: dispatcher, deliveries: deliveries}
}

// GET /admin/deliveries
func (h *AdminHandler) List(c fiber.Ctx) error {
	var q struct {
		Status  string `query:"status"`
		Channel string `query:"channel"`
		Page    int    `query:"page"`
		PerPage int    `query:"per_page"`
	}
	_ = c.Bind().Query(&q)

	logs, err := h.deliveries.ListAdmin(c.Context(), store.AdminFilter{
		Status:  model.DeliveryStatus(q.Status),
		Channel: model.Channel(q.Channel),
		Page:    q.Page,
		PerPage: q.PerPage,
	})
	if err != nil {
		return internalError(c)
	}
	return ok(c, logs)
}

// GET /admin/deliveries/:id
func (h *AdminHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid delivery id")
	}
	dl, err := h.deliveries.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(c, "delivery not found")
		}
		return internalError(c)
	}
	return ok(c, dl)
}

// POST /admin/deliveries/:id/retry
func (h *AdminHandler) Retry(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid delivery id")
	}

	var body struct {
		ExtraAttempts int `json:"extra_attempts"`
	}
	_ = c.Bind().JSON(&body)
	if body.ExtraAttempts <= 0 {
		body.ExtraAttempts = 3
	}

	dl, err := h.dispatcher.Requeue(c.Context(), id, body.ExtraAttempts)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(c, "delivery not found or already sent")
		}
		return internalError(c)
	}
	return ok(c, dl)
}

// POST /admin/deliveries/retry
func (h *AdminHandler) RetryBatch(c fiber.Ctx) error {
	var body struct {
		IDs           []uuid.UUID `json:"ids"`
		ExtraAttempts int         `json:"extra_attempts"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(body.IDs) == 0 {
		return badRequest(c, "ids is required")
	}
	if body.ExtraAttempts <= 0 {
		body.ExtraAttempts = 3
	}

	queued, err := h.dispatcher.RequeueBatch(c.Context(), body.IDs, body.ExtraAttempts)
	if err != nil {
		return internalError(c)
	}
	return ok(c, fiber.Map{"queued": queued})
}

// POST /admin/deliveries/:id/suppress
func (h *AdminHandler) Suppress(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid delivery id")
	}
	if err := h.dispatcher.Suppress(c.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound(c, "delivery not found or already sent")
		}
		return internalError(c)
	}
	return noContent(c)
}
