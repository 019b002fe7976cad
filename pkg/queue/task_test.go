package queue

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestDeliverySubject(t *testing.T) {
	tests := []struct {
		channel string
		want    string
	}{
		{"email", "glassdesk.delivery.email"},
		{"sms", "glassdesk.delivery.sms"},
	}
	for _, tt := range tests {
		if got := DeliverySubject(tt.channel); got != tt.want {
			t.Errorf("DeliverySubject(%q) = %q, want %q", tt.channel, got, tt.want)
		}
	}
}

func TestTaskRoundTrip(t *testing.T) {
	task := Task{
		DeliveryID:     uuid.New(),
		NotificationID: uuid.New(),
		Channel:        "sms",
	}
	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Task
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != task {
		t.Errorf("round trip = %+v, want %+v", got, task)
	}
}

func TestDecodeTaskRejectsMalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"truncated json", []byte(`{"delivery_id":`)},
		{"not json at all", []byte("PING")},
		{"bad uuid", []byte(`{"delivery_id":"not-a-uuid"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeTask(tt.data); err == nil {
				t.Errorf("decodeTask(%q) accepted malformed payload", tt.data)
			}
		})
	}
}

func TestDecodeTaskValid(t *testing.T) {
	want := Task{
		DeliveryID:     uuid.New(),
		NotificationID: uuid.New(),
		Channel:        "email",
	}
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := decodeTask(data)
	if err != nil {
		t.Fatalf("decodeTask: %v", err)
	}
	if got != want {
		t.Errorf("decodeTask = %+v, want %+v", got, want)
	}
}
