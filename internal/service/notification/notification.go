package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/paneworks/glassdesk_backend/internal/model"
	"github.com/paneworks/glassdesk_backend/internal/store"
	"github.com/paneworks/glassdesk_backend/pkg/database"
	"github.com/paneworks/glassdesk_backend/pkg/queue"
	"github.com/paneworks/glassdesk_backend/pkg/reqctx"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Recipient model.Recipient
	Category  model.Category
	Title     string
	Body      string
	Data      map[string]any
}

type TemplateRequest struct {
	Recipient model.Recipient
	Template  string
	Data      map[string]any
}

type UpsertPrefsRequest struct {
	EmailEnabled      bool
	SMSEnabled        bool
	InAppEnabled      bool
	Categories        map[model.Category]bool
	QuietHoursEnabled bool
	QuietHoursStart   string
	QuietHoursEnd     string
	DailyDigest       bool
}

// Stats is the per-recipient aggregate surface.
type Stats struct {
	Counts model.NotificationCounts            `json:"counts"`
	Rates  map[model.Channel]model.ChannelRate `json:"rates"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*model.Notification, error)
	CreateFromTemplate(ctx context.Context, req TemplateRequest) (*model.Notification, error)
	List(ctx context.Context, r model.Recipient, unreadOnly bool, page, perPage int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, notifID uuid.UUID) error
	MarkUnread(ctx context.Context, notifID uuid.UUID) error
	MarkAllRead(ctx context.Context, r model.Recipient) error
	Deliveries(ctx context.Context, notifID uuid.UUID) ([]*model.DeliveryLog, error)
	GetPrefs(ctx context.Context, r model.Recipient) (*model.NotificationPreference, error)
	UpsertPrefs(ctx context.Context, r model.Recipient, req UpsertPrefsRequest) (*model.NotificationPreference, error)
	Stats(ctx context.Context, r model.Recipient) (*Stats, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

// txRunner abstracts database.DB transaction scope.
type txRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type notificationService struct {
	db            txRunner
	notifications store.Notifications
	deliveries    store.Deliveries
	prefs         store.Preferences
	recipients    store.Recipients
	publish       func(ctx context.Context, t queue.Task) error
	rdb           *goredis.Client
	loc           *time.Location
	maxAttempts   int
	now           func() time.Time
}

type Deps struct {
	DB            *database.DB
	Notifications store.Notifications
	Deliveries    store.Deliveries
	Prefs         store.Preferences
	Recipients    store.Recipients
	Bus           *queue.Bus
	Redis         *goredis.Client
	Location      *time.Location
	MaxAttempts   int
}

func New(d Deps) Service {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.MaxAttempts < 1 {
		d.MaxAttempts = 3
	}
	var tx txRunner
	if d.DB != nil {
		tx = d.DB
	}
	return &notificationService{
		db:            tx,
		notifications: d.Notifications,
		deliveries:    d.Deliveries,
		prefs:         d.Prefs,
		recipients:    d.Recipients,
		publish:       publisher(d.Bus),
		rdb:           d.Redis,
		loc:           d.Location,
		maxAttempts:   d.MaxAttempts,
		now:           time.Now,
	}
}

// publisher adapts the bus to a plain function so tests can intercept it.
func publisher(b *queue.Bus) func(ctx context.Context, t queue.Task) error {
	if b == nil {
		return func(context.Context, queue.Task) error { return nil }
	}
	return b.PublishDelivery
}

// Create persists the notification and fans it out. The notification row and
// its delivery logs commit in one transaction; queue nudges go out only
// after the commit so workers never race an invisible row.
func (s *notificationService) Create(ctx context.Context, req CreateRequest) (*model.Notification, error) {
	if !model.ValidCategory(req.Category) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, req.Category)
	}

	contact, err := s.recipients.Contact(ctx, req.Recipient)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("resolve recipient: %w", err)
	}

	pref, err := s.loadPrefs(ctx, req.Recipient)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	priority := model.CategoryPriority(req.Category)
	res := resolveChannels(now, priority, req.Category, pref, contact)
	if !res.InApp && len(res.Plans) == 0 {
		// Recipient opted out everywhere. Nothing to record.
		slog.Debug("notification suppressed by preferences",
			"recipient", req.Recipient.String(), "category", req.Category,
			"request_id", reqctx.RequestID(ctx))
		return nil, nil
	}

	n := &model.Notification{
		ID:            model.NewID(),
		RecipientKind: req.Recipient.Kind,
		RecipientID:   req.Recipient.ID,
		Category:      req.Category,
		Priority:      priority,
		Title:         req.Title,
		Body:          req.Body,
		Data:          req.Data,
	}

	var logs []*model.DeliveryLog
	err = s.db.InTx(ctx, func(txCtx context.Context) error {
		if err := s.notifications.Create(txCtx, n); err != nil {
			return err
		}
		for _, plan := range res.Plans {
			if plan.Digest {
				// Digest emails are batched by the digest job; no
				// individual delivery task exists for them.
				continue
			}
			address := contact.Email
			if plan.Channel == model.ChannelSMS {
				address = contact.Phone
			}
			sendAt := plan.SendAt
			d := &model.DeliveryLog{
				ID:             model.NewID(),
				NotificationID: n.ID,
				Channel:        plan.Channel,
				Status:         model.DeliveryPending,
				Recipient:      address,
				AttemptCap:     s.maxAttempts,
				NextAttemptAt:  &sendAt,
			}
			if err := s.deliveries.Create(txCtx, d); err != nil {
				return err
			}
			logs = append(logs, d)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	AfterCommit(ctx, func() { s.publishDue(logs, now) })

	return n, nil
}

// CreateFromTemplate renders a registered template and creates the
// notification. The template fixes the category, so triggers cannot pick
// priorities ad hoc.
func (s *notificationService) CreateFromTemplate(ctx context.Context, req TemplateRequest) (*model.Notification, error) {
	category, title, body, err := renderTemplate(req.Template, req.Data)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, CreateRequest{
		Recipient: req.Recipient,
		Category:  category,
		Title:     title,
		Body:      body,
		Data:      req.Data,
	})
}

// publishDue nudges workers for deliveries whose schedule is already due.
// Deferred deliveries stay silent; the scheduler sweep finds them later.
func (s *notificationService) publishDue(logs []*model.DeliveryLog, now time.Time) {
	for _, d := range logs {
		if d.NextAttemptAt != nil && d.NextAttemptAt.After(now) {
			continue
		}
		err := s.publish(context.Background(), queue.Task{
			DeliveryID:     d.ID,
			NotificationID: d.NotificationID,
			Channel:        string(d.Channel),
		})
		if err != nil {
			// The sweep recovers unnudged tasks.
			slog.Warn("publish delivery task failed", "delivery_id", d.ID, "err", err)
		}
	}
}

func (s *notificationService) List(ctx context.Context, r model.Recipient, unreadOnly bool, page, perPage int) ([]*model.Notification, error) {
	notifs, err := s.notifications.List(ctx, r, unreadOnly, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifs, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notifID uuid.UUID) error {
	err := s.notifications.SetRead(ctx, notifID, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *notificationService) MarkUnread(ctx context.Context, notifID uuid.UUID) error {
	err := s.notifications.SetUnread(ctx, notifID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *notificationService) MarkAllRead(ctx context.Context, r model.Recipient) error {
	return s.notifications.MarkAllRead(ctx, r, s.now())
}

func (s *notificationService) Deliveries(ctx context.Context, notifID uuid.UUID) ([]*model.DeliveryLog, error) {
	if _, err := s.notifications.Get(ctx, notifID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.deliveries.History(ctx, notifID)
}

func (s *notificationService) GetPrefs(ctx context.Context, r model.Recipient) (*model.NotificationPreference, error) {
	return s.loadPrefs(ctx, r)
}

// loadPrefs returns the stored preference or in-memory defaults. Defaults
// are not persisted until the recipient saves something.
func (s *notificationService) loadPrefs(ctx context.Context, r model.Recipient) (*model.NotificationPreference, error) {
	pref, err := s.prefs.Get(ctx, r)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.DefaultPreference(r), nil
		}
		return nil, fmt.Errorf("get notification prefs: %w", err)
	}
	return pref, nil
}

func (s *notificationService) UpsertPrefs(ctx context.Context, r model.Recipient, req UpsertPrefsRequest) (*model.NotificationPreference, error) {
	if req.QuietHoursEnabled {
		if _, err := parseClock(req.QuietHoursStart); err != nil {
			return nil, err
		}
		if _, err := parseClock(req.QuietHoursEnd); err != nil {
			return nil, err
		}
	}
	if _, err := s.recipients.Contact(ctx, r); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("resolve recipient: %w", err)
	}

	pref := &model.NotificationPreference{
		ID:                model.NewID(),
		RecipientKind:     r.Kind,
		RecipientID:       r.ID,
		EmailEnabled:      req.EmailEnabled,
		SMSEnabled:        req.SMSEnabled,
		InAppEnabled:      req.InAppEnabled,
		Categories:        req.Categories,
		QuietHoursEnabled: req.QuietHoursEnabled,
		QuietHoursStart:   req.QuietHoursStart,
		QuietHoursEnd:     req.QuietHoursEnd,
		DailyDigest:       req.DailyDigest,
	}
	if err := s.prefs.Upsert(ctx, pref); err != nil {
		return nil, fmt.Errorf("upsert notification prefs: %w", err)
	}
	return pref, nil
}

const statsCacheTTL = 30 * time.Second

// Stats aggregates counts and per-channel delivery rates, cached briefly in
// Redis since dashboards poll it.
func (s *notificationService) Stats(ctx context.Context, r model.Recipient) (*Stats, error) {
	key := "glassdesk:notifstats:" + r.String()
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var cached Stats
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	counts, err := s.notifications.Counts(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("notification counts: %w", err)
	}
	rates, err := s.notifications.ChannelRates(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("channel rates: %w", err)
	}
	stats := &Stats{Counts: counts, Rates: rates}

	if s.rdb != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.rdb.Set(ctx, key, raw, statsCacheTTL).Err(); err != nil {
				slog.Debug("stats cache write failed", "err", err)
			}
		}
	}
	return stats, nil
}
