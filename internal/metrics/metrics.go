package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
)

var (
	// Registry хранит метрики приложения
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skillzone",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skillzone",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	barterTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skillzone",
			Subsystem: "barter",
			Name:      "transitions_total",
			Help:      "Barter status transitions by target status.",
		},
		[]string{"status"},
	)

	feedbackSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skillzone",
			Subsystem: "feedback",
			Name:      "submissions_total",
			Help:      "Feedback submissions split by created or updated.",
		},
		[]string{"result"},
	)

	messagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "skillzone",
			Subsystem: "messages",
			Name:      "sent_total",
			Help:      "Total number of private messages sent.",
		},
	)

	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "skillzone",
			Subsystem: "websocket",
			Name:      "connections",
			Help:      "Current number of open websocket connections.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		barterTransitions,
		feedbackSubmissions,
		messagesSent,
		wsConnections,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler отдает метрики в формате Prometheus
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

// Middleware собирает метрики HTTP-запросов. Маршрут берется из шаблона, а не из URL
func Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		method := c.Method()
		httpRequests.WithLabelValues(method, route, strconv.Itoa(statusOf(c, err))).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// statusOf определяет код ответа до того, как ошибку обработает ErrorHandler
func statusOf(c fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	if kind := apperrors.KindOf(err); kind != 0 {
		return kind.HTTPStatus()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// BarterTransition учитывает переход обмена в новый статус
func BarterTransition(status string) {
	barterTransitions.WithLabelValues(status).Inc()
}

// FeedbackSubmitted учитывает сохраненный отзыв
func FeedbackSubmitted(created bool) {
	result := "updated"
	if created {
		result = "created"
	}
	feedbackSubmissions.WithLabelValues(result).Inc()
}

// MessageSent учитывает отправленное сообщение
func MessageSent() {
	messagesSent.Inc()
}

// WebsocketConnected и WebsocketDisconnected отслеживают открытые соединения
func WebsocketConnected() {
	wsConnections.Inc()
}

func WebsocketDisconnected() {
	wsConnections.Dec()
}
