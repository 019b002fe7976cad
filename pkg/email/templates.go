package email

import (
	"fmt"
	"strings"
	"time"
)

// NotificationEmailData contains the data needed to render a notification email.
type NotificationEmailData struct {
	RecipientName string
	Email         string
	Title         string
	Body          string
	ActionURL     string
}

// DigestItem is one entry in a daily digest email.
type DigestItem struct {
	Title     string
	Body      string
	CreatedAt time.Time
}

// BuildNotificationEmail renders a single notification as a branded HTML+text
// email message.
func BuildNotificationEmail(b Branding, data NotificationEmailData) Message {
	name := data.RecipientName
	if name == "" {
		name = "there"
	}

	subject := fmt.Sprintf("%s | %s", data.Title, b.AppName)

	actionText := ""
	actionHTML := ""
	if data.ActionURL != "" {
		actionText = fmt.Sprintf("\n\nView details:\n%s", data.ActionURL)
		actionHTML = fmt.Sprintf(`
    <p style="text-align: center; margin: 30px 0;">
        <a href="%s" style="background-color: %s; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Details</a>
    </p>`, data.ActionURL, b.PrimaryColor)
	}

	supportText := ""
	if b.SupportEmail != "" {
		supportText = fmt.Sprintf("\n\nQuestions? Reach us at %s.", b.SupportEmail)
	}

	textBody := fmt.Sprintf(`Hi %s,

%s

%s%s%s

Thanks,
The %s Team`,
		name, data.Title, data.Body, actionText, supportText, b.AppName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    %s
    <h2 style="color: %s;">Hi %s,</h2>
    <h3>%s</h3>
    <p>%s</p>%s
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		logoHTML(b), b.PrimaryColor, name, data.Title, data.Body, actionHTML, b.AppName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BuildDailyDigestEmail collapses a day's worth of notifications into one
// branded summary message.
func BuildDailyDigestEmail(b Branding, addr, name string, items []DigestItem) Message {
	if name == "" {
		name = "there"
	}

	subject := fmt.Sprintf("Your daily summary from %s (%d updates)", b.AppName, len(items))

	var textItems strings.Builder
	var htmlItems strings.Builder
	for _, it := range items {
		fmt.Fprintf(&textItems, "- [%s] %s\n  %s\n", it.CreatedAt.Format("15:04"), it.Title, it.Body)
		fmt.Fprintf(&htmlItems, `
    <div style="border-left: 3px solid %s; padding: 8px 12px; margin: 12px 0; background-color: #f9fafb;">
        <p style="margin: 0; color: #6b7280; font-size: 12px;">%s</p>
        <p style="margin: 4px 0 0 0;"><strong>%s</strong></p>
        <p style="margin: 4px 0 0 0;">%s</p>
    </div>`, b.PrimaryColor, it.CreatedAt.Format("Jan 2, 15:04"), it.Title, it.Body)
	}

	textBody := fmt.Sprintf(`Hi %s,

Here is what happened in the last day:

%s
Thanks,
The %s Team`, name, textItems.String(), b.AppName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    %s
    <h2 style="color: %s;">Hi %s,</h2>
    <p>Here is what happened in the last day:</p>
    %s
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`, logoHTML(b), b.PrimaryColor, name, htmlItems.String(), b.AppName)

	return Message{
		To:       []string{addr},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

func logoHTML(b Branding) string {
	if b.LogoURL == "" {
		return ""
	}
	return fmt.Sprintf(`<p style="text-align: center;"><img src="%s" alt="%s" style="max-height: 48px;"></p>`, b.LogoURL, b.AppName)
}
