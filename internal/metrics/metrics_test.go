package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
)

func TestBarterTransitionCounter(t *testing.T) {
	before := testutil.ToFloat64(barterTransitions.WithLabelValues("Accepted"))
	BarterTransition("Accepted")
	assert.Equal(t, before+1, testutil.ToFloat64(barterTransitions.WithLabelValues("Accepted")))
}

func TestFeedbackSubmittedLabels(t *testing.T) {
	created := testutil.ToFloat64(feedbackSubmissions.WithLabelValues("created"))
	updated := testutil.ToFloat64(feedbackSubmissions.WithLabelValues("updated"))

	FeedbackSubmitted(true)
	FeedbackSubmitted(false)
	FeedbackSubmitted(false)

	assert.Equal(t, created+1, testutil.ToFloat64(feedbackSubmissions.WithLabelValues("created")))
	assert.Equal(t, updated+2, testutil.ToFloat64(feedbackSubmissions.WithLabelValues("updated")))
}

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.KindOf(err).HTTPStatus())
		},
	})
	app.Use(Middleware())
	app.Get("/api/barters/:id", func(c fiber.Ctx) error {
		return apperrors.ErrBarterNotFound
	})
	app.Get("/metrics", Handler())

	counter := httpRequests.WithLabelValues(fiber.MethodGet, "/api/barters/:id", "404")
	before := testutil.ToFloat64(counter)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/barters/123", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "skillzone_http_requests_total")
}
