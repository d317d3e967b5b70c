package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"conclusio/internal/model"
	"conclusio/internal/service"
	serviceMocks "conclusio/internal/service/mocks"
	"conclusio/internal/session"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		rid := c.Locals(RequestIDLocalKey)
		return c.SendString(rid.(string))
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, ridHeader, buf.String())
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		existingID := "test-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, existingID, resp.Header.Get(RequestIDHeader))

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, existingID, buf.String())
	})

	t.Run("should replace oversized request id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 500))

		resp, _ := app.Test(req)
		assert.Len(t, resp.Header.Get(RequestIDHeader), 36)
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	loc := time.UTC

	app.Use(RequestID())
	app.Use(LoggerWithWriter(&buf, loc))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var logData map[string]any
	err := json.Unmarshal(buf.Bytes(), &logData)
	assert.NoError(t, err)

	assert.NotEmpty(t, logData["request_id"])
	assert.Equal(t, "http_request", logData["msg"])
	assert.Equal(t, "GET", logData["method"])
	assert.Equal(t, "/test", logData["path"])
	assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
	assert.NotNil(t, logData["latency"])
	assert.NotEmpty(t, logData["ts"])
}

func TestLogger_RendersChainErrors(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusTeapot).SendString("handled")
		},
	})
	app.Use(LoggerWithWriter(&buf, time.UTC))
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/boom", nil))
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, float64(fiber.StatusTeapot), logData["status"])
}

func TestLogger_LogsInternalCause(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(LoggerWithWriter(&buf, time.UTC))
	app.Get("/fail", func(c *fiber.Ctx) error {
		c.Locals(ErrorLocalKey, errors.New("minio: connection reset"))
		return c.SendStatus(fiber.StatusInternalServerError)
	})

	_, _ = app.Test(httptest.NewRequest("GET", "/fail", nil))

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, "error", logData["level"])
	assert.Equal(t, "minio: connection reset", logData["error"])
}

func authTestApp(auth service.AuthService) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			switch {
			case errors.Is(err, service.ErrSessionExpired):
				return c.Status(fiber.StatusUnauthorized).SendString("SESSION_EXPIRED")
			case errors.Is(err, service.ErrUnauthenticated):
				return c.Status(fiber.StatusUnauthorized).SendString("UNAUTHENTICATED")
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Use(Auth(auth, "session_token"))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(UserIDFromCtx(c))
	})
	return app
}

func TestAuth(t *testing.T) {
	user := &model.User{ID: "u1"}
	claims := &session.Claims{}

	t.Run("cookie", func(t *testing.T) {
		mockAuth := new(serviceMocks.MockAuthService)
		mockAuth.On("Authenticate", mock.Anything, "tok-cookie").Return(user, claims, nil).Once()
		app := authTestApp(mockAuth)

		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Cookie", "session_token=tok-cookie")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, "u1", buf.String())
		mockAuth.AssertExpectations(t)
	})

	t.Run("bearer header", func(t *testing.T) {
		mockAuth := new(serviceMocks.MockAuthService)
		mockAuth.On("Authenticate", mock.Anything, "tok-header").Return(user, claims, nil).Once()
		app := authTestApp(mockAuth)

		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer tok-header")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		mockAuth.AssertExpectations(t)
	})

	t.Run("missing credential", func(t *testing.T) {
		mockAuth := new(serviceMocks.MockAuthService)
		app := authTestApp(mockAuth)

		resp, _ := app.Test(httptest.NewRequest("GET", "/me", nil))

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		mockAuth.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("expired", func(t *testing.T) {
		mockAuth := new(serviceMocks.MockAuthService)
		mockAuth.On("Authenticate", mock.Anything, "old").Return(nil, nil, service.ErrSessionExpired).Once()
		app := authTestApp(mockAuth)

		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer old")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, "SESSION_EXPIRED", buf.String())
	})
}

func TestSessionToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(SessionToken(c, "session_token"))
	})

	cases := []struct {
		name   string
		header map[string]string
		want   string
	}{
		{"cookie wins", map[string]string{"Cookie": "session_token=a", "Authorization": "Bearer b"}, "a"},
		{"lowercase scheme", map[string]string{"Authorization": "bearer c"}, "c"},
		{"other scheme", map[string]string{"Authorization": "Basic dXNlcg=="}, ""},
		{"nothing", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			resp, _ := app.Test(req)
			buf := new(bytes.Buffer)
			buf.ReadFrom(resp.Body)
			assert.Equal(t, tc.want, buf.String())
		})
	}
}
