package delivery

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildSMSText(t *testing.T) {
	got := BuildSMSText("GlassDesk", "Repair approved", "Repair R-1 was approved.")
	want := "[GlassDesk] Repair approved: Repair R-1 was approved."
	if got != want {
		t.Errorf("BuildSMSText = %q, want %q", got, want)
	}
}

func TestBuildSMSTextEmptyBody(t *testing.T) {
	got := BuildSMSText("GlassDesk", "Batch finished", "  ")
	if got != "[GlassDesk] Batch finished" {
		t.Errorf("BuildSMSText = %q", got)
	}
}

func TestBuildSMSTextTruncates(t *testing.T) {
	got := BuildSMSText("GlassDesk", "Status", strings.Repeat("x", 300))
	if n := utf8.RuneCountInString(got); n != smsMaxRunes {
		t.Errorf("length = %d runes, want %d", n, smsMaxRunes)
	}
	if !strings.HasSuffix(got, "…") {
		t.Error("truncated text should end with ellipsis")
	}
}
