package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricsNamespace = "ajolotes"

// login and registration outcomes
const (
	resultOK       = "ok"
	resultInvalid  = "invalid"
	resultRejected = "rejected"
	resultError    = "error"
)

type metrics struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	logins        *prometheus.CounterVec
	registrations *prometheus.CounterVec
}

// newMetrics uses its own registry so that several servers can live in one process.
func newMetrics(sessionBackend string) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "logins_total",
			Help:      "Login attempts by principal kind and result.",
		}, []string{"kind", "result"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "registrations_total",
			Help:      "Registration submissions by kind and result.",
		}, []string{"kind", "result"}),
	}
	backend := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        "session_backend_info",
		Help:        "Session backend in use.",
		ConstLabels: prometheus.Labels{"backend": sessionBackend},
	})
	backend.Set(1)

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.logins,
		m.registrations,
		backend,
	)
	return m
}

func (m *metrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if err := next(ctx); err != nil {
			ctx.Error(err)
		}
		route := ctx.Path()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, ctx.Request().Method, strconv.Itoa(ctx.Response().Status)).Inc()
		return nil
	}
}

func (m *metrics) login(kind, result string) {
	m.logins.WithLabelValues(kind, result).Inc()
}

func (m *metrics) registration(kind, result string) {
	m.registrations.WithLabelValues(kind, result).Inc()
}
