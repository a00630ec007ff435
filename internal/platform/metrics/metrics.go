// Package metrics exposes Prometheus collectors for the HTTP surface and the
// order workflow, served on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	Transitions     *prometheus.CounterVec
	OrdersComposed  prometheus.Counter
	ResultsSaved    prometheus.Counter
	ItemsVerified   *prometheus.CounterVec
	AuthzDenials    prometheus.Counter
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		reg: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lims_http_requests_total",
			Help: "HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lims_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lims_order_transitions_total",
			Help: "Order status transitions by target status and outcome.",
		}, []string{"to", "outcome"}),
		OrdersComposed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lims_orders_composed_total",
			Help: "Orders created through the composer.",
		}),
		ResultsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lims_results_saved_total",
			Help: "Line-item results saved.",
		}),
		ItemsVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lims_items_verified_total",
			Help: "Line-items verified or rejected.",
		}, []string{"action"}),
		AuthzDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lims_authorization_denials_total",
			Help: "Operations denied by department scoping or role checks.",
		}),
	}

	reg.MustRegister(
		r.HTTPRequests, r.HTTPDuration, r.Transitions,
		r.OrdersComposed, r.ResultsSaved, r.ItemsVerified, r.AuthzDenials,
	)
	return r
}

// Handler returns the /metrics endpoint handler.
func (r *Registry) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}))
}

// Middleware records request counts and latency per route.
func (r *Registry) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path() // route template, not raw URL, to bound cardinality
			if path == "" {
				path = "unmatched"
			}
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			r.HTTPRequests.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			r.HTTPDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
