// Package metrics berisi counter Prometheus aplikasi dan handler /metrics.
package metrics

import (
	"strconv"
	"time"

	"perangkat-desa-backend/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "perangkat",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Jumlah request HTTP per route dan status.",
	}, []string{"method", "route", "status"})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "perangkat",
		Subsystem: "http",
		Name:      "latency_seconds",
		Help:      "Durasi request HTTP.",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	}, []string{"method", "route"})

	ImportedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "perangkat",
		Subsystem: "import",
		Name:      "rows_total",
		Help:      "Jumlah baris hasil import Excel per desa.",
	}, []string{"desa"})

	ImportFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "perangkat",
		Subsystem: "import",
		Name:      "failures_total",
		Help:      "Jumlah import Excel yang gagal.",
	})

	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "perangkat",
		Subsystem: "export",
		Name:      "reports_total",
		Help:      "Jumlah laporan yang dibuat per format.",
	}, []string{"format"})

	LiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "perangkat",
		Subsystem: "live",
		Name:      "subscribers",
		Help:      "Jumlah subscriber live yang aktif.",
	})
)

// Middleware mencatat jumlah dan durasi request per route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		// Error belum dirender oleh ErrorHandler pada titik ini
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = apperror.HTTPStatus(err)
			}
		}
		HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		HTTPLatency.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler mengekspos registry default dalam format Prometheus.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
