package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

func newMetrics(t *testing.T) *PrometheusMiddleware {
	t.Helper()
	m, err := NewPrometheusMiddleware(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("failed to create middleware: %v", err)
	}
	return m
}

func TestPrometheusMiddleware(t *testing.T) {
	m := newMetrics(t)

	app := fiber.New()
	app.Use(m.Handler())
	app.Get("/api/conclusions", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Delete("/api/conclusions/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Put("/api/conclusions/:id/pieces/reorder", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "bad request")
	})

	cases := []struct {
		method, target, path, status string
	}{
		{"GET", "/api/conclusions", "/api/conclusions", "200"},
		{"DELETE", "/api/conclusions/c-1", "/api/conclusions/:id", "200"},
		{"PUT", "/api/conclusions/c-1/pieces/reorder", "/api/conclusions/:id/pieces/reorder", "400"},
	}
	for _, tc := range cases {
		app.Test(httptest.NewRequest(tc.method, tc.target, nil))

		if got := testutil.ToFloat64(m.requestCount.WithLabelValues(tc.method, tc.path, tc.status)); got != 1 {
			t.Errorf("%s %s: expected count 1 with status %s, got %f", tc.method, tc.target, tc.status, got)
		}
	}
}

// With the request logger inside, errors are already rendered when the metrics observe
// the response, so the recorded status is the one the client got.
func TestPrometheusMiddleware_SeesRenderedErrors(t *testing.T) {
	m := newMetrics(t)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).SendString("unauthenticated")
		},
	})
	app.Use(m.Handler())
	app.Use(Logger(zap.NewNop()))
	app.Get("/api/auth/me", func(c *fiber.Ctx) error {
		return fiber.ErrTeapot
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/auth/me", nil))
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if got := testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/api/auth/me", "401")); got != 1 {
		t.Errorf("expected the rendered 401 to be counted, got %f", got)
	}
}

func TestPrometheusMiddleware_ExcludeMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	promMiddleware, err := NewPrometheusMiddleware(reg)
	if err != nil {
		t.Fatalf("failed to create middleware: %v", err)
	}

	app := fiber.New()
	app.Use(promMiddleware.Handler())

	app.Get(MetricsPath, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", MetricsPath, nil)
	app.Test(req)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range mfs {
		if mf.GetName() == "http_requests_total" {
			if len(mf.GetMetric()) > 0 {
				t.Errorf("expected 0 metrics for http_requests_total, got %d", len(mf.GetMetric()))
			}
		}
	}
}

func TestPrometheusMiddleware_PathPattern(t *testing.T) {
	promMiddleware := newMetrics(t)

	app := fiber.New()
	app.Use(promMiddleware.Handler())

	app.Get("/api/pieces/:piece_id/download", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/pieces/123/download", nil)
	app.Test(req)

	// Label is the route pattern, not the raw path.
	count := testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/api/pieces/:piece_id/download", "200"))
	if count != 1 {
		t.Errorf("expected count 1 for pattern /api/pieces/:piece_id/download, got %f", count)
	}

	countDur := testutil.CollectAndCount(promMiddleware.requestDuration)
	if countDur == 0 {
		t.Error("expected histogram metrics to be collected, got 0")
	}
}

func TestNewPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusMiddleware(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPrometheusMiddleware(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}
