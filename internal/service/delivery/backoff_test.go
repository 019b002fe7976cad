package delivery

import (
	"testing"
	"time"
)

func TestScheduleDelay(t *testing.T) {
	s := DefaultSchedule()
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 5 * time.Second},
		{2, 30 * time.Second},
		{3, 3 * time.Minute},
		{4, 5 * time.Minute},
		{10, 5 * time.Minute},
	}
	for _, tt := range tests {
		if got := s.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %s, want %s", tt.attempt, got, tt.want)
		}
	}
}

func TestScheduleDelayMonotonic(t *testing.T) {
	s := DefaultSchedule()
	prev := time.Duration(0)
	for attempt := 1; attempt <= 8; attempt++ {
		d := s.Delay(attempt)
		if d < prev {
			t.Fatalf("Delay(%d) = %s shrank below %s", attempt, d, prev)
		}
		prev = d
	}
}

func TestScheduleDelayClampsAttempt(t *testing.T) {
	s := DefaultSchedule()
	if got := s.Delay(0); got != 5*time.Second {
		t.Errorf("Delay(0) = %s, want initial interval", got)
	}
}
