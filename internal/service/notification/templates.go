package notification

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/paneworks/glassdesk_backend/internal/model"
)

// tmpl is one named notification template. Title and body render with
// text/template against the event data map.
type tmpl struct {
	category model.Category
	title    string
	body     string
}

// templates is the registry of business events that produce notifications.
// Callers reference templates by name; the category (and through it the
// priority) is fixed here, not chosen per call.
var templates = map[string]tmpl{
	"repair_approved": {
		category: model.CategoryApproval,
		title:    "Repair approved",
		body:     "Repair {{.repair_ref}} was approved{{if .approver}} by {{.approver}}{{end}}.",
	},
	"repair_denied": {
		category: model.CategoryApproval,
		title:    "Repair denied",
		body:     "Repair {{.repair_ref}} was denied{{if .reason}}: {{.reason}}{{end}}.",
	},
	"repair_status_changed": {
		category: model.CategoryRepairStatus,
		title:    "Repair status updated",
		body:     "Repair {{.repair_ref}} moved to {{.status}}.",
	},
	"technician_assigned": {
		category: model.CategoryAssignment,
		title:    "New job assigned",
		body:     "You were assigned repair {{.repair_ref}}{{if .scheduled_at}} scheduled for {{.scheduled_at}}{{end}}.",
	},
	"batch_completed": {
		category: model.CategoryBatchOperation,
		title:    "Batch operation finished",
		body:     "{{.operation}} finished: {{.succeeded}} succeeded, {{.failed}} failed.",
	},
	"reward_redeemed": {
		category: model.CategoryReward,
		title:    "Reward redeemed",
		body:     "{{.reward_name}} was redeemed for {{.points}} points.",
	},
}

// renderTemplate resolves a template name and renders it against data.
func renderTemplate(name string, data map[string]any) (category model.Category, title, body string, err error) {
	t, ok := templates[name]
	if !ok {
		return "", "", "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	body, err = render(name, t.body, data)
	if err != nil {
		return "", "", "", err
	}
	return t.category, t.title, body, nil
}

func render(name, text string, data map[string]any) (string, error) {
	t, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing template %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering template %q: %w", name, err)
	}
	return buf.String(), nil
}
