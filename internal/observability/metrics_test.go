package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesReviewCollectors(t *testing.T) {
	ReviewAttempts().WithLabelValues("accepted").Inc()
	ReviewBatches().WithLabelValues("validated").Inc()

	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `review_attempts_total{outcome="accepted"}`)
	require.Contains(t, string(body), `review_batches_total{outcome="validated"}`)
}
