package notification

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestInQuietHours(t *testing.T) {
	tests := []struct {
		name       string
		now        time.Time
		start, end string
		want       bool
	}{
		{"before same-day window", at(8, 0), "12:00", "14:00", false},
		{"inside same-day window", at(13, 0), "12:00", "14:00", true},
		{"at start is quiet", at(12, 0), "12:00", "14:00", true},
		{"at end is not quiet", at(14, 0), "12:00", "14:00", false},
		{"wrap evening side", at(23, 30), "22:00", "06:00", true},
		{"wrap morning side", at(5, 59), "22:00", "06:00", true},
		{"wrap end boundary", at(6, 0), "22:00", "06:00", false},
		{"wrap daytime", at(12, 0), "22:00", "06:00", false},
		{"wrap start boundary", at(22, 0), "22:00", "06:00", true},
		{"degenerate equal window", at(3, 0), "07:00", "07:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := inQuietHours(tt.now, tt.start, tt.end)
			if err != nil {
				t.Fatalf("inQuietHours: %v", err)
			}
			if got != tt.want {
				t.Errorf("inQuietHours(%s, %s, %s) = %v, want %v",
					tt.now.Format("15:04"), tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestInQuietHoursInvalid(t *testing.T) {
	if _, err := inQuietHours(at(12, 0), "25:00", "06:00"); err == nil {
		t.Error("expected error for invalid start")
	}
	if _, err := inQuietHours(at(12, 0), "22:00", "6pm"); err == nil {
		t.Error("expected error for invalid end")
	}
}

func TestQuietHoursEnd(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		end  string
		want time.Time
	}{
		{"later today", at(23, 30), "06:00", time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC)},
		{"early morning same day", at(3, 0), "06:00", at(6, 0)},
		{"exactly at end rolls over", at(6, 0), "06:00", time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := quietHoursEnd(tt.now, tt.end)
			if err != nil {
				t.Fatalf("quietHoursEnd: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("quietHoursEnd(%s, %s) = %s, want %s",
					tt.now, tt.end, got, tt.want)
			}
		})
	}
}
