package notification

import (
	"log/slog"
	"time"

	"github.com/paneworks/glassdesk_backend/internal/model"
)

// ChannelPlan is the resolver's verdict for one external channel.
type ChannelPlan struct {
	Channel model.Channel
	// SendAt is when the first attempt may run. Equal to now unless the
	// delivery is deferred by quiet hours or batched into the digest.
	SendAt time.Time
	// Digest marks an email that is folded into the daily digest instead of
	// being sent individually.
	Digest bool
}

// Resolution is the full fan-out decision for one notification.
type Resolution struct {
	// InApp is true when the in-app row counts as delivered. It is false
	// only when the recipient disabled the in-app channel or the category.
	InApp bool
	// Plans holds the external channels that get delivery log rows.
	Plans []ChannelPlan
}

// resolveChannels computes the channel fan-out for a notification. The base
// set comes from the priority; the preference then gates each channel and
// the category as a whole. Quiet hours defer external sends, all priorities
// included, to the end of the window; the digest folds non-urgent email into
// the daily summary. A malformed quiet-hours window fails open: the send
// proceeds immediately and the bad window is logged, never blocking delivery.
func resolveChannels(
	now time.Time,
	priority model.Priority,
	category model.Category,
	pref *model.NotificationPreference,
	contact *model.Contact,
) Resolution {
	res := Resolution{}

	if !pref.CategoryEnabled(category) {
		return res
	}

	urgent := priority == model.PriorityUrgent
	quiet := false
	var deferUntil time.Time
	if pref.QuietHoursEnabled {
		in, err := inQuietHours(now, pref.QuietHoursStart, pref.QuietHoursEnd)
		if err != nil {
			slog.Warn("malformed quiet hours, sending immediately",
				"recipient_kind", pref.RecipientKind, "recipient_id", pref.RecipientID,
				"start", pref.QuietHoursStart, "end", pref.QuietHoursEnd, "err", err)
		} else if in {
			end, err := quietHoursEnd(now, pref.QuietHoursEnd)
			if err == nil {
				quiet = true
				deferUntil = end
			}
		}
	}

	for _, ch := range model.PriorityChannels(priority) {
		if !pref.ChannelEnabled(ch) {
			continue
		}
		switch ch {
		case model.ChannelInApp:
			// Never deferred; the row itself is the delivery.
			res.InApp = true
		case model.ChannelEmail:
			if contact.Email == "" {
				continue
			}
			plan := ChannelPlan{Channel: ch, SendAt: now}
			if pref.DailyDigest && !urgent {
				plan.Digest = true
			} else if quiet {
				plan.SendAt = deferUntil
			}
			res.Plans = append(res.Plans, plan)
		case model.ChannelSMS:
			if contact.Phone == "" {
				continue
			}
			plan := ChannelPlan{Channel: ch, SendAt: now}
			if quiet {
				plan.SendAt = deferUntil
			}
			res.Plans = append(res.Plans, plan)
		}
	}
	return res
}
