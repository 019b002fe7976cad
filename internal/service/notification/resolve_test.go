package notification

import (
	"testing"
	"time"

	"github.com/paneworks/glassdesk_backend/internal/model"
)

func fullContact() *model.Contact {
	return &model.Contact{Name: "Dana", Email: "dana@example.com", Phone: "+15551234567"}
}

func openPref() *model.NotificationPreference {
	p := model.DefaultPreference(model.Recipient{Kind: model.RecipientTechnician, ID: model.NewID()})
	return p
}

func planChannels(r Resolution) map[model.Channel]ChannelPlan {
	out := make(map[model.Channel]ChannelPlan, len(r.Plans))
	for _, p := range r.Plans {
		out[p.Channel] = p
	}
	return out
}

func TestResolveChannelsByPriority(t *testing.T) {
	now := at(12, 0)
	tests := []struct {
		priority model.Priority
		external []model.Channel
	}{
		{model.PriorityUrgent, []model.Channel{model.ChannelEmail, model.ChannelSMS}},
		{model.PriorityHigh, []model.Channel{model.ChannelSMS}},
		{model.PriorityMedium, []model.Channel{model.ChannelEmail}},
		{model.PriorityLow, nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			res := resolveChannels(now, tt.priority, model.CategoryOther, openPref(), fullContact())
			if !res.InApp {
				t.Error("in-app should be enabled by default")
			}
			if len(res.Plans) != len(tt.external) {
				t.Fatalf("got %d plans, want %d", len(res.Plans), len(tt.external))
			}
			plans := planChannels(res)
			for _, ch := range tt.external {
				plan, ok := plans[ch]
				if !ok {
					t.Fatalf("missing %s plan", ch)
				}
				if !plan.SendAt.Equal(now) {
					t.Errorf("%s SendAt = %s, want now", ch, plan.SendAt)
				}
			}
		})
	}
}

func TestResolveChannelsPreferenceGating(t *testing.T) {
	now := at(12, 0)

	t.Run("category disabled drops everything", func(t *testing.T) {
		pref := openPref()
		pref.Categories = map[model.Category]bool{model.CategoryReward: false}
		res := resolveChannels(now, model.PriorityMedium, model.CategoryReward, pref, fullContact())
		if res.InApp || len(res.Plans) != 0 {
			t.Errorf("expected full suppression, got %+v", res)
		}
	})

	t.Run("sms disabled survives urgent", func(t *testing.T) {
		pref := openPref()
		pref.SMSEnabled = false
		res := resolveChannels(now, model.PriorityUrgent, model.CategoryApproval, pref, fullContact())
		plans := planChannels(res)
		if _, ok := plans[model.ChannelSMS]; ok {
			t.Error("sms plan should be gated out even for urgent")
		}
		if _, ok := plans[model.ChannelEmail]; !ok {
			t.Error("email plan should remain")
		}
	})

	t.Run("missing address drops channel", func(t *testing.T) {
		contact := &model.Contact{Name: "Nur"}
		res := resolveChannels(now, model.PriorityUrgent, model.CategoryApproval, openPref(), contact)
		if len(res.Plans) != 0 {
			t.Errorf("expected no external plans without addresses, got %+v", res.Plans)
		}
		if !res.InApp {
			t.Error("in-app should still deliver")
		}
	})
}

func TestResolveChannelsQuietHours(t *testing.T) {
	pref := openPref()
	pref.QuietHoursEnabled = true
	pref.QuietHoursStart = "22:00"
	pref.QuietHoursEnd = "06:00"

	windowEnd := time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC)

	t.Run("in window defers to window end", func(t *testing.T) {
		now := at(23, 0)
		res := resolveChannels(now, model.PriorityMedium, model.CategoryRepairStatus, pref, fullContact())
		plans := planChannels(res)
		email, ok := plans[model.ChannelEmail]
		if !ok {
			t.Fatal("missing email plan")
		}
		if !email.SendAt.Equal(windowEnd) {
			t.Errorf("email SendAt = %s, want %s", email.SendAt, windowEnd)
		}
	})

	t.Run("urgent defers too, in-app unaffected", func(t *testing.T) {
		now := at(23, 30)
		res := resolveChannels(now, model.PriorityUrgent, model.CategoryApproval, pref, fullContact())
		if !res.InApp {
			t.Error("in-app must not be deferred")
		}
		if len(res.Plans) != 2 {
			t.Fatalf("got %d plans, want 2", len(res.Plans))
		}
		for _, plan := range res.Plans {
			if !plan.SendAt.Equal(windowEnd) {
				t.Errorf("%s SendAt = %s, want %s", plan.Channel, plan.SendAt, windowEnd)
			}
		}
	})

	t.Run("outside window sends immediately", func(t *testing.T) {
		now := at(9, 0)
		res := resolveChannels(now, model.PriorityMedium, model.CategoryRepairStatus, pref, fullContact())
		plans := planChannels(res)
		if got := plans[model.ChannelEmail].SendAt; !got.Equal(now) {
			t.Errorf("email SendAt = %s, want now", got)
		}
	})

	t.Run("malformed window fails open", func(t *testing.T) {
		bad := openPref()
		bad.QuietHoursEnabled = true
		bad.QuietHoursStart = "22:00"
		bad.QuietHoursEnd = "late"
		now := at(23, 0)
		res := resolveChannels(now, model.PriorityMedium, model.CategoryRepairStatus, bad, fullContact())
		plans := planChannels(res)
		email, ok := plans[model.ChannelEmail]
		if !ok {
			t.Fatal("delivery must not be blocked by a malformed preference")
		}
		if !email.SendAt.Equal(now) {
			t.Errorf("email SendAt = %s, want immediate", email.SendAt)
		}
	})
}

func TestResolveChannelsDigest(t *testing.T) {
	pref := openPref()
	pref.DailyDigest = true
	now := at(12, 0)

	t.Run("medium email goes to digest", func(t *testing.T) {
		res := resolveChannels(now, model.PriorityMedium, model.CategoryRepairStatus, pref, fullContact())
		plans := planChannels(res)
		if !plans[model.ChannelEmail].Digest {
			t.Error("email plan should be marked for digest")
		}
	})

	t.Run("urgent email skips digest", func(t *testing.T) {
		res := resolveChannels(now, model.PriorityUrgent, model.CategoryApproval, pref, fullContact())
		plans := planChannels(res)
		if plans[model.ChannelEmail].Digest {
			t.Error("urgent email must not be batched")
		}
		if plans[model.ChannelSMS].Digest {
			t.Error("sms never batches")
		}
	})
}
