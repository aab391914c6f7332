package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerReportsStoreConnectivity(t *testing.T) {
	connected := false
	app := fiber.New()
	app.Get("/metrics", MetricsHandler(func() bool { return connected }))

	FeedbackSubmissions().WithLabelValues("accepted").Inc()

	body := scrape(t, app)
	require.Contains(t, body, "feedback_store_connected 0")
	require.Contains(t, body, `feedback_submissions_total{outcome="accepted"}`)

	connected = true
	require.Contains(t, scrape(t, app), "feedback_store_connected 1")
}

func scrape(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return string(data)
}
