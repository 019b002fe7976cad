package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"

	"github.com/paneworks/glassdesk_backend/pkg/reqctx"
)

func TestRequestIDArmsContext(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	var seen string
	app.Get("/", func(c fiber.Ctx) error {
		// The service layer only sees c.Context(), so the id must
		// survive the hop out of fiber locals.
		seen = reqctx.RequestID(c.Context())
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderRequestID, "incoming-id-42")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if seen != "incoming-id-42" {
		t.Errorf("context request id = %q, want %q", seen, "incoming-id-42")
	}
	if got := resp.Header.Get(HeaderRequestID); got != "incoming-id-42" {
		t.Errorf("response header = %q, want echoed id", got)
	}
}

func TestRequestIDGeneratesWhenAbsent(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	var seen string
	app.Get("/", func(c fiber.Ctx) error {
		seen = reqctx.RequestID(c.Context())
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if seen == "" {
		t.Error("expected a generated request id in the context")
	}
	if resp.Header.Get(HeaderRequestID) != seen {
		t.Errorf("header %q and context %q disagree", resp.Header.Get(HeaderRequestID), seen)
	}
}
