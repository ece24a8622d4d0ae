// Package metrics exposes Prometheus collectors for HTTP traffic and business events.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "colegio_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "colegio_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// DebtBlocks counts enrollments rejected by the debt gate.
	DebtBlocks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "colegio_enrollment_debt_blocks_total",
		Help: "Enrollments rejected because of overdue payments.",
	})

	// OverdueMarked counts payments moved to vencido by the nightly job.
	OverdueMarked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "colegio_payments_overdue_marked_total",
		Help: "Payments marked overdue by the scheduler.",
	})

	// MailFailures counts notification e-mails that could not be delivered.
	MailFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "colegio_mail_failures_total",
		Help: "Failed outbound e-mails by driver.",
	}, []string{"driver"})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, DebtBlocks, OverdueMarked, MailFailures)
}

// Middleware records one observation per request, labelled by route pattern.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves /metrics.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
