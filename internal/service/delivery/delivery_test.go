package delivery

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

type outcomeRecord struct {
	status model.DeliveryStatus
	errMsg *string
	cost   *float64
	nextAt *time.Time
}

type fakeDeliveries struct {
	store.Deliveries
	row      *model.DeliveryLog
	claimOK  bool
	outcomes []outcomeRecord
	due      []*model.DeliveryLog
	reaped   int
}

func (f *fakeDeliveries) Claim(_ context.Context, id uuid.UUID) (*model.DeliveryLog, bool, error) {
	if !f.claimOK || f.row == nil || f.row.ID != id {
		return nil, false, nil
	}
	f.row.AttemptNumber++
	cp := *f.row
	return &cp, true, nil
}

func (f *fakeDeliveries) RecordOutcome(_ context.Context, _ uuid.UUID, status model.DeliveryStatus, errMsg *string, cost *float64, nextAt *time.Time) error {
	f.outcomes = append(f.outcomes, outcomeRecord{status: status, errMsg: errMsg, cost: cost, nextAt: nextAt})
	return nil
}

func (f *fakeDeliveries) Due(context.Context, int) ([]*model.DeliveryLog, error) {
	return f.due, nil
}

func (f *fakeDeliveries) ReapStale(context.Context, time.Duration) (int, error) {
	return f.reaped, nil
}

func (f *fakeDeliveries) Requeue(_ context.Context, id uuid.UUID, extra int) (*model.DeliveryLog, bool, error) {
	if f.row == nil || f.row.ID != id || f.row.Status == model.DeliverySent {
		return nil, false, nil
	}
	f.row.AttemptCap = f.row.AttemptNumber + extra
	cp := *f.row
	return &cp, true, nil
}

type fakeNotifications struct {
	store.Notifications
	notif       *model.Notification
	getErr      error
	channelSent []model.Channel
}

func (f *fakeNotifications) Get(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.notif == nil || f.notif.ID != id {
		return nil, store.ErrNotFound
	}
	return f.notif, nil
}

func (f *fakeNotifications) SetChannelSent(_ context.Context, _ uuid.UUID, ch model.Channel) error {
	f.channelSent = append(f.channelSent, ch)
	return nil
}

type stubSender struct {
	channel model.Channel
	result  Result
}

func (s *stubSender) Channel() model.Channel { return s.channel }
func (s *stubSender) Send(context.Context, *model.Notification, *model.DeliveryLog) Result {
	return s.result
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

type fixture struct {
	dispatcher *Dispatcher
	deliveries *fakeDeliveries
	notifs     *fakeNotifications
	sender     *stubSender
	published  []queue.Task
}

func newFixture(result Result) *fixture {
	notifID := uuid.New()
	f := &fixture{
		deliveries: &fakeDeliveries{
			claimOK: true,
			row: &model.DeliveryLog{
				ID:             uuid.New(),
				NotificationID: notifID,
				Channel:        model.ChannelSMS,
				Status:         model.DeliveryPending,
				Recipient:      "+15551234567",
				AttemptCap:     3,
			},
		},
		notifs: &fakeNotifications{
			notif: &model.Notification{ID: notifID, Title: "T", Body: "B"},
		},
		sender: &stubSender{channel: model.ChannelSMS, result: result},
	}
	f.dispatcher = NewDispatcher(f.notifs, f.deliveries, nil, Config{}, f.sender)
	f.dispatcher.now = fixedNow
	f.dispatcher.publish = func(_ context.Context, t queue.Task) error {
		f.published = append(f.published, t)
		return nil
	}
	return f
}

func (f *fixture) execute(t *testing.T) outcomeRecord {
	t.Helper()
	if err := f.dispatcher.Execute(context.Background(), f.deliveries.row.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(f.deliveries.outcomes) != 1 {
		t.Fatalf("recorded %d outcomes, want 1", len(f.deliveries.outcomes))
	}
	return f.deliveries.outcomes[0]
}

// ---------------------------------------------------------------------------
// tests
// ---------------------------------------------------------------------------

func TestExecuteSent(t *testing.T) {
	cost := 1.25
	f := newFixture(Result{Outcome: OutcomeSent, Cost: &cost})

	rec := f.execute(t)
	if rec.status != model.DeliverySent {
		t.Errorf("status = %s, want sent", rec.status)
	}
	if rec.cost == nil || *rec.cost != cost {
		t.Errorf("cost = %v, want %v", rec.cost, cost)
	}
	if len(f.notifs.channelSent) != 1 || f.notifs.channelSent[0] != model.ChannelSMS {
		t.Errorf("channelSent = %v", f.notifs.channelSent)
	}
}

func TestExecuteRetrySchedulesBackoff(t *testing.T) {
	f := newFixture(Result{Outcome: OutcomeRetryable, Err: errors.New("gateway 503")})

	rec := f.execute(t)
	if rec.status != model.DeliveryPendingRetry {
		t.Errorf("status = %s, want pending_retry", rec.status)
	}
	want := fixedNow().Add(5 * time.Second)
	if rec.nextAt == nil || !rec.nextAt.Equal(want) {
		t.Errorf("next_attempt_at = %v, want %s after first attempt", rec.nextAt, want)
	}
	if rec.errMsg == nil || *rec.errMsg != "gateway 503" {
		t.Errorf("last_error = %v", rec.errMsg)
	}
}

func TestExecuteExhaustedAttempts(t *testing.T) {
	f := newFixture(Result{Outcome: OutcomeRetryable, Err: errors.New("still down")})
	f.deliveries.row.AttemptNumber = 2 // claim makes it 3 of 3

	rec := f.execute(t)
	if rec.status != model.DeliveryFailedPermanent {
		t.Errorf("status = %s, want failed_permanent after final attempt", rec.status)
	}
	if !rec.status.IsTerminal() {
		t.Errorf("status %s must be terminal so the chain is closed", rec.status)
	}
	if rec.nextAt != nil {
		t.Error("exhausted delivery must not be rescheduled")
	}
}

func TestExecuteTransientLoadFailureKeepsClaim(t *testing.T) {
	f := newFixture(Result{Outcome: OutcomeSent})
	f.notifs.getErr = errors.New("connection refused")

	err := f.dispatcher.Execute(context.Background(), f.deliveries.row.ID)
	if err == nil {
		t.Fatal("Execute should surface the load failure")
	}
	if len(f.deliveries.outcomes) != 0 {
		t.Errorf("recorded %d outcomes, want none; the claim stays for the reaper", len(f.deliveries.outcomes))
	}
}

func TestExecuteMissingNotificationIsPermanent(t *testing.T) {
	f := newFixture(Result{Outcome: OutcomeSent})
	f.notifs.notif = nil

	rec := f.execute(t)
	if rec.status != model.DeliveryFailedPermanent {
		t.Errorf("status = %s, want failed_permanent for a missing notification", rec.status)
	}
}

func TestExecuteTerminalOutcomes(t *testing.T) {
	tests := []struct {
		outcome Outcome
		status  model.DeliveryStatus
	}{
		{OutcomePermanent, model.DeliveryFailedPermanent},
		{OutcomeBounced, model.DeliveryBounced},
		{OutcomeOptedOut, model.DeliveryOptedOut},
		{OutcomeSkipped, model.DeliverySkipped},
	}
	for _, tt := range tests {
		f := newFixture(Result{Outcome: tt.outcome, Err: errors.New("boom")})
		rec := f.execute(t)
		if rec.status != tt.status {
			t.Errorf("outcome %v: status = %s, want %s", tt.outcome, rec.status, tt.status)
		}
		if rec.nextAt != nil {
			t.Errorf("outcome %v: terminal statuses never reschedule", tt.outcome)
		}
	}
}

func TestExecuteUnclaimedIsNoop(t *testing.T) {
	f := newFixture(Result{Outcome: OutcomeSent})
	f.deliveries.claimOK = false

	if err := f.dispatcher.Execute(context.Background(), f.deliveries.row.ID); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(f.deliveries.outcomes) != 0 {
		t.Error("unclaimed task must record nothing")
	}
}

func TestRequeueBatchSkipsUnknownIDs(t *testing.T) {
	f := newFixture(Result{Outcome: OutcomeSent})
	f.deliveries.row.Status = model.DeliveryFailed
	f.deliveries.row.AttemptNumber = 3

	queued, err := f.dispatcher.RequeueBatch(context.Background(),
		[]uuid.UUID{f.deliveries.row.ID, uuid.New()}, 3)
	if err != nil {
		t.Fatalf("RequeueBatch: %v", err)
	}
	if queued != 1 {
		t.Errorf("queued = %d, want 1", queued)
	}
	if f.deliveries.row.AttemptCap != 6 {
		t.Errorf("attempt_cap = %d, want attempts+3", f.deliveries.row.AttemptCap)
	}
	if len(f.published) != 1 {
		t.Errorf("published %d nudges, want 1", len(f.published))
	}
}

func TestSweepPublishesDue(t *testing.T) {
	f := newFixture(Result{Outcome: OutcomeSent})
	f.deliveries.due = []*model.DeliveryLog{
		{ID: uuid.New(), NotificationID: uuid.New(), Channel: model.ChannelEmail},
		{ID: uuid.New(), NotificationID: uuid.New(), Channel: model.ChannelSMS},
	}

	if err := f.dispatcher.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(f.published) != 2 {
		t.Fatalf("published %d tasks, want 2", len(f.published))
	}
	if f.published[0].Channel != "email" || f.published[1].Channel != "sms" {
		t.Errorf("published = %+v", f.published)
	}
}
