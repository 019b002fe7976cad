package delivery

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// smsMaxRunes keeps messages inside a single GSM segment, brand prefix
// included.
const smsMaxRunes = 160

// BuildSMSText renders a notification as a single-segment text message.
func BuildSMSText(appName, title, body string) string {
	text := fmt.Sprintf("[%s] %s", appName, title)
	body = strings.TrimSpace(body)
	if body != "" {
		text += ": " + body
	}
	return truncate(text, smsMaxRunes)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
