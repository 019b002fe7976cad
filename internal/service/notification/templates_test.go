package notification

import (
	"errors"
	"strings"
	"testing"

	"github.com/paneworks/glassdesk_backend/internal/model"
)

func TestRenderTemplate(t *testing.T) {
	category, title, body, err := renderTemplate("repair_approved", map[string]any{
		"repair_ref": "R-1042",
		"approver":   "Sam",
	})
	if err != nil {
		t.Fatalf("renderTemplate: %v", err)
	}
	if category != model.CategoryApproval {
		t.Errorf("category = %s, want approval", category)
	}
	if title != "Repair approved" {
		t.Errorf("title = %q", title)
	}
	if body != "Repair R-1042 was approved by Sam." {
		t.Errorf("body = %q", body)
	}
}

func TestRenderTemplateOptionalField(t *testing.T) {
	_, _, body, err := renderTemplate("repair_denied", map[string]any{
		"repair_ref": "R-7",
	})
	if err != nil {
		t.Fatalf("renderTemplate: %v", err)
	}
	if body != "Repair R-7 was denied." {
		t.Errorf("body = %q", body)
	}
}

func TestRenderTemplateUnknown(t *testing.T) {
	_, _, _, err := renderTemplate("nope", nil)
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("err = %v, want ErrTemplateNotFound", err)
	}
}

func TestTemplateCategoriesAreValid(t *testing.T) {
	for name, tm := range templates {
		if !model.ValidCategory(tm.category) {
			t.Errorf("template %q has invalid category %q", name, tm.category)
		}
		if strings.TrimSpace(tm.title) == "" {
			t.Errorf("template %q has empty title", name)
		}
	}
}
