package exts

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestBindAndValidate(t *testing.T) {
	type payload struct {
		Title string `json:"title" validate:"required"`
	}

	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var data payload
		if err := BindAndValidate(c, &data); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	})

	cases := []struct {
		body string
		want int
	}{
		{`{"title": "hello"}`, fiber.StatusOK},
		{`{"title": ""}`, fiber.StatusBadRequest},
		{`{not json`, fiber.StatusBadRequest},
	}
	for _, c := range cases {
		req := httptest.NewRequest(fiber.MethodPost, "/", strings.NewReader(c.body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != c.want {
			t.Fatalf("body %q returned %d, want %d", c.body, resp.StatusCode, c.want)
		}
	}
}
