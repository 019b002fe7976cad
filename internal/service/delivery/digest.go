package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/paneworks/glassdesk_backend/internal/model"
	"github.com/paneworks/glassdesk_backend/internal/store"
	"github.com/paneworks/glassdesk_backend/pkg/email"
)

// Digest sends the daily summary email to recipients who batch their
// non-urgent mail. Urgent notifications never land here; they are delivered
// individually at creation time.
type Digest struct {
	prefs         store.Preferences
	notifications store.Notifications
	recipients    store.Recipients
	client        *email.Client
	branding      email.Branding
	window        time.Duration
	now           func() time.Time
}

func NewDigest(
	prefs store.Preferences,
	notifications store.Notifications,
	recipients store.Recipients,
	client *email.Client,
	branding email.Branding,
) *Digest {
	return &Digest{
		prefs:         prefs,
		notifications: notifications,
		recipients:    recipients,
		client:        client,
		branding:      branding,
		window:        24 * time.Hour,
		now:           time.Now,
	}
}

// Run sends one digest per enrolled recipient. A failure for one recipient
// never blocks the rest of the run.
func (g *Digest) Run(ctx context.Context) error {
	prefs, err := g.prefs.ListDigestEnabled(ctx)
	if err != nil {
		return fmt.Errorf("list digest recipients: %w", err)
	}

	since := g.now().Add(-g.window)
	var sent, failed int
	for _, p := range prefs {
		r := model.Recipient{Kind: p.RecipientKind, ID: p.RecipientID}
		if err := g.sendOne(ctx, r, since); err != nil {
			failed++
			slog.Warn("digest send failed", "recipient", r.String(), "err", err)
			continue
		}
		sent++
	}
	slog.Info("digest run finished", "recipients", len(prefs), "sent", sent, "failed", failed)
	return nil
}

func (g *Digest) sendOne(ctx context.Context, r model.Recipient, since time.Time) error {
	notifs, err := g.notifications.UnreadSince(ctx, r, since)
	if err != nil {
		return fmt.Errorf("collect digest items: %w", err)
	}
	if len(notifs) == 0 {
		return nil
	}

	contact, err := g.recipients.Contact(ctx, r)
	if err != nil {
		return fmt.Errorf("resolve contact: %w", err)
	}
	if contact.Email == "" {
		return nil
	}

	items := make([]email.DigestItem, 0, len(notifs))
	for _, n := range notifs {
		items = append(items, email.DigestItem{
			Title:     n.Title,
			Body:      n.Body,
			CreatedAt: n.CreatedAt,
		})
	}

	msg := email.BuildDailyDigestEmail(g.branding, contact.Email, contact.Name, items)
	if err := g.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	return nil
}
