package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/paneworks/glassdesk_backend/internal/model"
	"github.com/paneworks/glassdesk_backend/internal/store"
	"github.com/paneworks/glassdesk_backend/pkg/queue"
)

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

type fakeTx struct{}

func (fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeNotifications struct {
	store.Notifications
	created []*model.Notification
	read    map[uuid.UUID]bool
	readAt  map[uuid.UUID]time.Time
	counts  model.NotificationCounts
	rates   map[model.Channel]model.ChannelRate
}

func (f *fakeNotifications) Create(_ context.Context, n *model.Notification) error {
	n.CreatedAt = time.Now()
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotifications) SetRead(_ context.Context, id uuid.UUID, at time.Time) error {
	if _, ok := f.read[id]; !ok {
		return store.ErrNotFound
	}
	f.read[id] = true
	// First read wins, mirroring the store's COALESCE(read_at, $2).
	if _, ok := f.readAt[id]; !ok {
		f.readAt[id] = at
	}
	return nil
}

func (f *fakeNotifications) Counts(context.Context, model.Recipient) (model.NotificationCounts, error) {
	return f.counts, nil
}

func (f *fakeNotifications) ChannelRates(context.Context, model.Recipient) (map[model.Channel]model.ChannelRate, error) {
	return f.rates, nil
}

type fakeDeliveries struct {
	store.Deliveries
	created []*model.DeliveryLog
}

func (f *fakeDeliveries) Create(_ context.Context, d *model.DeliveryLog) error {
	f.created = append(f.created, d)
	return nil
}

type fakePrefs struct {
	store.Preferences
	pref     *model.NotificationPreference
	upserted *model.NotificationPreference
}

func (f *fakePrefs) Get(context.Context, model.Recipient) (*model.NotificationPreference, error) {
	if f.pref == nil {
		return nil, store.ErrNotFound
	}
	return f.pref, nil
}

func (f *fakePrefs) Upsert(_ context.Context, p *model.NotificationPreference) error {
	f.upserted = p
	return nil
}

type fakeRecipients struct {
	store.Recipients
	contact *model.Contact
}

func (f *fakeRecipients) Contact(context.Context, model.Recipient) (*model.Contact, error) {
	if f.contact == nil {
		return nil, store.ErrNotFound
	}
	return f.contact, nil
}

type fixture struct {
	svc        *notificationService
	notifs     *fakeNotifications
	deliveries *fakeDeliveries
	prefs      *fakePrefs
	recipients *fakeRecipients
	published  []queue.Task
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		notifs:     &fakeNotifications{read: map[uuid.UUID]bool{}, readAt: map[uuid.UUID]time.Time{}},
		deliveries: &fakeDeliveries{},
		prefs:      &fakePrefs{},
		recipients: &fakeRecipients{contact: fullContact()},
	}
	f.svc = &notificationService{
		db:            fakeTx{},
		notifications: f.notifs,
		deliveries:    f.deliveries,
		prefs:         f.prefs,
		recipients:    f.recipients,
		publish: func(_ context.Context, t queue.Task) error {
			f.published = append(f.published, t)
			return nil
		},
		loc:         time.UTC,
		maxAttempts: 3,
		now:         func() time.Time { return now },
	}
	return f
}

func technician() model.Recipient {
	return model.Recipient{Kind: model.RecipientTechnician, ID: uuid.New()}
}

// ---------------------------------------------------------------------------
// tests
// ---------------------------------------------------------------------------

func TestCreateUrgentFansOutAllChannels(t *testing.T) {
	f := newFixture(at(12, 0))

	n, err := f.svc.Create(context.Background(), CreateRequest{
		Recipient: technician(),
		Category:  model.CategoryApproval,
		Title:     "Repair approved",
		Body:      "Repair R-1 was approved.",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.Priority != model.PriorityUrgent {
		t.Errorf("priority = %s, want urgent", n.Priority)
	}
	if len(f.notifs.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(f.notifs.created))
	}
	if len(f.deliveries.created) != 2 {
		t.Fatalf("created %d delivery logs, want 2 (email+sms)", len(f.deliveries.created))
	}
	for _, d := range f.deliveries.created {
		if d.Status != model.DeliveryPending {
			t.Errorf("%s status = %s, want pending", d.Channel, d.Status)
		}
		if d.AttemptNumber != 0 {
			t.Errorf("%s attempt_number = %d, want 0 before first claim", d.Channel, d.AttemptNumber)
		}
		if d.AttemptCap != 3 {
			t.Errorf("%s attempt_cap = %d, want 3", d.Channel, d.AttemptCap)
		}
	}
	if len(f.published) != 2 {
		t.Errorf("published %d tasks, want 2", len(f.published))
	}
}

func TestCreateQuietHoursDefersWithoutPublishing(t *testing.T) {
	f := newFixture(at(23, 0))
	r := technician()
	f.prefs.pref = model.DefaultPreference(r)
	f.prefs.pref.QuietHoursEnabled = true
	f.prefs.pref.QuietHoursStart = "22:00"
	f.prefs.pref.QuietHoursEnd = "06:00"

	_, err := f.svc.Create(context.Background(), CreateRequest{
		Recipient: r,
		Category:  model.CategoryRepairStatus,
		Title:     "Status",
		Body:      "Moved to ready.",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(f.deliveries.created) != 1 {
		t.Fatalf("created %d delivery logs, want 1 (email)", len(f.deliveries.created))
	}
	d := f.deliveries.created[0]
	want := time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC)
	if d.NextAttemptAt == nil || !d.NextAttemptAt.Equal(want) {
		t.Errorf("next_attempt_at = %v, want %s", d.NextAttemptAt, want)
	}
	if len(f.published) != 0 {
		t.Errorf("published %d tasks, want 0 for deferred delivery", len(f.published))
	}
}

func TestCreateFullOptOutPersistsNothing(t *testing.T) {
	f := newFixture(at(12, 0))
	r := technician()
	f.prefs.pref = model.DefaultPreference(r)
	f.prefs.pref.Categories = map[model.Category]bool{model.CategoryBatchOperation: false}

	n, err := f.svc.Create(context.Background(), CreateRequest{
		Recipient: r,
		Category:  model.CategoryBatchOperation,
		Title:     "Batch done",
		Body:      "All rows processed.",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n != nil {
		t.Error("opted-out category should produce no notification")
	}
	if len(f.notifs.created) != 0 || len(f.deliveries.created) != 0 {
		t.Error("nothing should be persisted for a full opt-out")
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(at(12, 0))

	_, err := f.svc.Create(context.Background(), CreateRequest{
		Recipient: technician(),
		Category:  "bogus",
	})
	if !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("err = %v, want ErrInvalidCategory", err)
	}

	f.recipients.contact = nil
	_, err = f.svc.Create(context.Background(), CreateRequest{
		Recipient: technician(),
		Category:  model.CategoryOther,
	})
	if !errors.Is(err, ErrRecipientNotFound) {
		t.Errorf("err = %v, want ErrRecipientNotFound", err)
	}
}

func TestCreateFromTemplate(t *testing.T) {
	f := newFixture(at(12, 0))

	n, err := f.svc.CreateFromTemplate(context.Background(), TemplateRequest{
		Recipient: technician(),
		Template:  "technician_assigned",
		Data:      map[string]any{"repair_ref": "R-9"},
	})
	if err != nil {
		t.Fatalf("CreateFromTemplate: %v", err)
	}
	if n.Category != model.CategoryAssignment {
		t.Errorf("category = %s, want assignment", n.Category)
	}
	if n.Title != "New job assigned" {
		t.Errorf("title = %q", n.Title)
	}

	_, err = f.svc.CreateFromTemplate(context.Background(), TemplateRequest{
		Recipient: technician(),
		Template:  "missing",
	})
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("err = %v, want ErrTemplateNotFound", err)
	}
}

func TestMarkReadNotFound(t *testing.T) {
	f := newFixture(at(12, 0))
	err := f.svc.MarkRead(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMarkReadTwiceKeepsFirstTimestamp(t *testing.T) {
	f := newFixture(at(12, 0))
	id := uuid.New()
	f.notifs.read[id] = false

	if err := f.svc.MarkRead(context.Background(), id); err != nil {
		t.Fatalf("first MarkRead: %v", err)
	}
	first := f.notifs.readAt[id]
	if !first.Equal(at(12, 0)) {
		t.Fatalf("read_at = %s, want %s", first, at(12, 0))
	}

	f.svc.now = func() time.Time { return at(13, 0) }
	if err := f.svc.MarkRead(context.Background(), id); err != nil {
		t.Fatalf("second MarkRead: %v", err)
	}
	if !f.notifs.read[id] {
		t.Error("notification should stay read")
	}
	if got := f.notifs.readAt[id]; !got.Equal(first) {
		t.Errorf("read_at advanced to %s on repeat mark-read, want %s", got, first)
	}
}

func TestGetPrefsDefaults(t *testing.T) {
	f := newFixture(at(12, 0))
	pref, err := f.svc.GetPrefs(context.Background(), technician())
	if err != nil {
		t.Fatalf("GetPrefs: %v", err)
	}
	if !pref.EmailEnabled || !pref.SMSEnabled || !pref.InAppEnabled {
		t.Error("defaults should enable every channel")
	}
	if f.prefs.upserted != nil {
		t.Error("defaults must not be persisted on read")
	}
}

func TestUpsertPrefsValidatesQuietHours(t *testing.T) {
	f := newFixture(at(12, 0))
	_, err := f.svc.UpsertPrefs(context.Background(), technician(), UpsertPrefsRequest{
		QuietHoursEnabled: true,
		QuietHoursStart:   "22:00",
		QuietHoursEnd:     "26:00",
	})
	if !errors.Is(err, ErrInvalidQuietHours) {
		t.Errorf("err = %v, want ErrInvalidQuietHours", err)
	}
}

func TestStatsWithoutCache(t *testing.T) {
	f := newFixture(at(12, 0))
	f.notifs.counts = model.NotificationCounts{Total: 5, Unread: 2}
	f.notifs.rates = map[model.Channel]model.ChannelRate{
		model.ChannelEmail: {Attempted: 4, Sent: 3},
	}

	stats, err := f.svc.Stats(context.Background(), technician())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Counts.Total != 5 || stats.Counts.Unread != 2 {
		t.Errorf("counts = %+v", stats.Counts)
	}
	if got := stats.Rates[model.ChannelEmail].Percent(); got != 75 {
		t.Errorf("email rate = %v, want 75", got)
	}
}
