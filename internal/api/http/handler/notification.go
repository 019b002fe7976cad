package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/paneworks/glassdesk_backend/internal/model"
	"github.com/paneworks/glassdesk_backend/internal/service/notification"
)

type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func mapNotificationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, notification.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, notification.ErrRecipientNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, notification.ErrInvalidCategory),
		errors.Is(err, notification.ErrTemplateNotFound),
		errors.Is(err, notification.ErrInvalidQuietHours):
		return unprocessable(c, err.Error())
	default:
		return internalError(c)
	}
}

func recipientFromParams(c fiber.Ctx) (model.Recipient, error) {
	kind, err := model.ParseRecipientKind(c.Params("kind"))
	if err != nil {
		return model.Recipient{}, err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return model.Recipient{}, err
	}
	return model.Recipient{Kind: kind, ID: id}, nil
}

// POST /notifications
func (h *NotificationHandler) Create(c fiber.Ctx) error {
	var body struct {
		RecipientKind string         `json:"recipient_kind"`
		RecipientID   string         `json:"recipient_id"`
		Category      string         `json:"category"`
		Template      string         `json:"template"`
		Title         string         `json:"title"`
		Body          string         `json:"body"`
		Data          map[string]any `json:"data"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	kind, err := model.ParseRecipientKind(body.RecipientKind)
	if err != nil {
		return badRequest(c, "invalid recipient_kind")
	}
	rid, err := uuid.Parse(body.RecipientID)
	if err != nil {
		return badRequest(c, "invalid recipient_id")
	}
	recipient := model.Recipient{Kind: kind, ID: rid}

	var n *model.Notification
	if body.Template != "" {
		n, err = h.svc.CreateFromTemplate(c.Context(), notification.TemplateRequest{
			Recipient: recipient,
			Template:  body.Template,
			Data:      body.Data,
		})
	} else {
		if body.Title == "" {
			return badRequest(c, "title is required")
		}
		n, err = h.svc.Create(c.Context(), notification.CreateRequest{
			Recipient: recipient,
			Category:  model.Category(body.Category),
			Title:     body.Title,
			Body:      body.Body,
			Data:      body.Data,
		})
	}
	if err != nil {
		return mapNotificationError(c, err)
	}
	if n == nil {
		// Fully opted out: accepted, nothing delivered.
		return noContent(c)
	}
	return created(c, n)
}

// GET /recipients/:kind/:id/notifications
func (h *NotificationHandler) List(c fiber.Ctx) error {
	recipient, err := recipientFromParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var q struct {
		UnreadOnly bool `query:"unread_only"`
		Page       int  `query:"page"`
		PerPage    int  `query:"per_page"`
	}
	_ = c.Bind().Query(&q)

	notifs, err := h.svc.List(c.Context(), recipient, q.UnreadOnly, q.Page, q.PerPage)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, notifs)
}

// GET /recipients/:kind/:id/notifications/stats
func (h *NotificationHandler) Stats(c fiber.Ctx) error {
	recipient, err := recipientFromParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	stats, err := h.svc.Stats(c.Context(), recipient)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, stats)
}

// PATCH /recipients/:kind/:id/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c fiber.Ctx) error {
	recipient, err := recipientFromParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.svc.MarkAllRead(c.Context(), recipient); err != nil {
		return mapNotificationError(c, err)
	}
	return noContent(c)
}

// PATCH /notifications/:id/read
func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid notification id")
	}
	if err := h.svc.MarkRead(c.Context(), notifID); err != nil {
		return mapNotificationError(c, err)
	}
	return noContent(c)
}

// PATCH /notifications/:id/unread
func (h *NotificationHandler) MarkUnread(c fiber.Ctx) error {
	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid notification id")
	}
	if err := h.svc.MarkUnread(c.Context(), notifID); err != nil {
		return mapNotificationError(c, err)
	}
	return noContent(c)
}

// GET /notifications/:id/deliveries
func (h *NotificationHandler) Deliveries(c fiber.Ctx) error {
	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid notification id")
	}
	logs, err := h.svc.Deliveries(c.Context(), notifID)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, logs)
}

// GET /recipients/:kind/:id/notification-prefs
func (h *NotificationHandler) GetPrefs(c fiber.Ctx) error {
	recipient, err := recipientFromParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	prefs, err := h.svc.GetPrefs(c.Context(), recipient)
	if err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, prefs)
}

// PUT /recipients/:kind/:id/notification-prefs
func (h *NotificationHandler) UpdatePrefs(c fiber.Ctx) error {
	recipient, err := recipientFromParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var body struct {
		EmailEnabled      bool                    `json:"email_enabled"`
		SMSEnabled        bool                    `json:"sms_enabled"`
		InAppEnabled      bool                    `json:"in_app_enabled"`
		Categories        map[model.Category]bool `json:"categories"`
		QuietHoursEnabled bool                    `json:"quiet_hours_enabled"`
		QuietHoursStart   string                  `json:"quiet_hours_start"`
		QuietHoursEnd     string                  `json:"quiet_hours_end"`
		DailyDigest       bool                    `json:"daily_digest"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	prefs, err := h.svc.UpsertPrefs(c.Context(), recipient, notification.UpsertPrefsRequest{
		EmailEnabled:      body.EmailEnabled,
		SMSEnabled:        body.SMSEnabled,
		InAppEnabled:      body.InAppEnabled,
		Categories:        body.Categories,
		QuietHoursEnabled: body.QuietHoursEnabled,
		QuietHoursStart:   body.QuietHoursStart,
		QuietHoursEnd:     body.QuietHoursEnd,
		DailyDigest:       body.DailyDigest,
	})
	if err != nil {
		return mapNotificationError(c, err)
	}
	return ok(c, prefs)
}
