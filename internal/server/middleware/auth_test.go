package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"task-manager/backend/internal/apperror"
)

type stubVerifier struct {
	tokens map[string]string
}

func (s stubVerifier) Verify(token string) (string, error) {
	if id, ok := s.tokens[token]; ok {
		return id, nil
	}
	return "", apperror.Auth("Token is not valid")
}

func newTestApp(reached *bool) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/protected", RequireAuth(stubVerifier{tokens: map[string]string{"good": "user-1"}}), func(c *fiber.Ctx) error {
		*reached = true
		ctxID, _ := GetUserID(c.UserContext())
		return c.JSON(fiber.Map{"local": UserID(c), "ctx": ctxID})
	})
	return app
}

func decodeBody(t *testing.T, body io.Reader) map[string]string {
	t.Helper()
	var out map[string]string
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestRequireAuth(t *testing.T) {
	testCases := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{"missing header", "", fiber.StatusUnauthorized, MsgNoToken},
		{"wrong scheme", "Basic good", fiber.StatusUnauthorized, MsgNoToken},
		{"empty bearer", "Bearer   ", fiber.StatusUnauthorized, MsgNoToken},
		{"invalid token", "Bearer bad", fiber.StatusUnauthorized, "Token is not valid"},
		{"valid token", "Bearer good", fiber.StatusOK, ""},
		{"case-insensitive scheme", "bearer good", fiber.StatusOK, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reached := false
			app := newTestApp(&reached)
			req := httptest.NewRequest("GET", "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			body := decodeBody(t, resp.Body)
			if tc.wantStatus != fiber.StatusOK {
				if reached {
					t.Error("handler must not run without a valid token")
				}
				if body["message"] != tc.wantMsg {
					t.Errorf("message = %q, want %q", body["message"], tc.wantMsg)
				}
				return
			}
			if body["local"] != "user-1" || body["ctx"] != "user-1" {
				t.Errorf("user id not propagated: %v", body)
			}
		})
	}
}

func TestErrorHandler_StatusMapping(t *testing.T) {
	testCases := []struct {
		err        error
		wantStatus int
		wantMsg    string
	}{
		{apperror.Validation("title is required"), fiber.StatusBadRequest, "title is required"},
		{apperror.Auth("Invalid credentials"), fiber.StatusUnauthorized, "Invalid credentials"},
		{apperror.NotFound("Task not found"), fiber.StatusNotFound, "Task not found"},
		{apperror.Server("list tasks", errors.New("db down")), fiber.StatusInternalServerError, msgInternal},
		{errors.New("boom"), fiber.StatusInternalServerError, msgInternal},
		{fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed, fiber.ErrMethodNotAllowed.Message},
	}
	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
			app.Get("/", func(c *fiber.Ctx) error { return tc.err })
			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tc.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			if body := decodeBody(t, resp.Body); body["message"] != tc.wantMsg {
				t.Errorf("message = %q, want %q", body["message"], tc.wantMsg)
			}
		})
	}
}

func TestTelemetry_PreservesErrorStatus(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(Telemetry("/healthz"))
	app.Get("/missing", func(c *fiber.Ctx) error { return apperror.NotFound("Task not found") })
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if body := decodeBody(t, resp.Body); body["message"] != "Task not found" {
		t.Errorf("message = %q", body["message"])
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/healthz", nil))
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("skipped path status = %d", resp.StatusCode)
	}
}

func TestExtractBearer(t *testing.T) {
	testCases := map[string]string{
		"":                "",
		"Bearer":          "",
		"Bearer abc":      "abc",
		"BEARER  abc  ":   "abc",
		"Token abc":       "",
		"  Bearer xyz.1 ": "xyz.1",
	}
	for in, want := range testCases {
		if got := extractBearer(in); got != want {
			t.Errorf("extractBearer(%q) = %q, want %q", in, got, want)
		}
	}
}
