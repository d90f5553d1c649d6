package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/apperr"
	"tasktracker/internal/models"
)

type stubAuth struct{}

func (stubAuth) Authenticate(_ context.Context, token string) (models.User, error) {
	if token == "good" {
		return models.User{ID: 7, Name: "Alice"}, nil
	}
	return models.User{}, apperr.Unauthorized("Unauthenticated.")
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(RequestLogger())
	app.Get("/validation", func(c *fiber.Ctx) error { return apperr.Validation("title", "the title field is required") })
	app.Get("/missing", func(c *fiber.Ctx) error { return apperr.NotFound("Task") })
	app.Get("/conflict", func(c *fiber.Ctx) error { return &apperr.ConflictError{Message: "busy"} })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db down") })
	app.Get("/panic", func(c *fiber.Ctx) error { panic("unexpected") })
	app.Get("/me", UseToken(stubAuth{}), func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return errors.New("no user")
		}
		return c.JSON(user)
	})
	return app
}

func call(t *testing.T, app *fiber.App, path, token string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestErrorHandler(t *testing.T) {
	app := newApp()
	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/validation", http.StatusUnprocessableEntity, "The given data was invalid."},
		{"/missing", http.StatusNotFound, "Task not found"},
		{"/conflict", http.StatusConflict, "busy"},
		{"/boom", http.StatusInternalServerError, "Internal server error"},
		{"/panic", http.StatusInternalServerError, "Internal server error"},
		{"/nowhere", http.StatusNotFound, "Cannot GET /nowhere"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := call(t, app, tt.path, "")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, false, body["success"])
			assert.Equal(t, float64(tt.status), body["status"])
		})
	}

	_, body := call(t, app, "/validation", "")
	assert.Equal(t, map[string]interface{}{"title": "the title field is required"}, body["errors"])
}

func TestUseToken(t *testing.T) {
	app := newApp()

	status, body := call(t, app, "/me", "Bearer good")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Alice", body["name"])

	for _, header := range []string{"", "good", "Bearer ", "Basic good", "Bearer bad"} {
		status, body := call(t, app, "/me", header)
		assert.Equal(t, http.StatusUnauthorized, status, header)
		assert.Equal(t, "Unauthenticated.", body["message"], header)
	}
}
