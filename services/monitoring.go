package services

import (
	"runtime"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/lac-hong-legacy/portfolio_api/shared"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	MONITORING_SVC = "monitoring_svc"
	SERVICE_NAME   = "portfolio_api"
)

// HTTP Metrics
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	httpRequestsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_active",
			Help: "Number of active concurrent HTTP requests",
		},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Domain Metrics
var (
	visitsLoggedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_visits_logged_total",
			Help: "Visits logged, split by first-seen address",
		},
		[]string{"unique"},
	)

	failedLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_failed_logins_total",
			Help: "Failed admin logins recorded or rejected",
		},
		[]string{"outcome"},
	)

	rateLimitRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_rate_limit_rejections_total",
			Help: "Requests denied by a rate limit policy",
		},
		[]string{"policy"},
	)

	chatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_chat_requests_total",
			Help: "Chat requests by outcome",
		},
		[]string{"outcome"},
	)

	completionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portfolio_completion_duration_seconds",
			Help:    "Time spent waiting on the completion service",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
	)
)

// System Metrics
var (
	heapAllocBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "heap_alloc_bytes",
			Help: "Heap memory allocated in bytes",
		},
	)

	heapSysBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "heap_sys_bytes",
			Help: "Heap memory obtained from system in bytes",
		},
	)

	gcTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gc_total",
			Help: "Total number of garbage collections",
		},
	)
)

// MonitoringService owns the prometheus registry. A nil *MonitoringService is valid and
// records nothing, so domain services can call it unconditionally.
type MonitoringService struct {
	context.DefaultService

	enabled  bool
	register *prometheus.Registry

	closed      chan struct{}
	lastGCCount uint32
}

func (svc *MonitoringService) Id() string {
	return MONITORING_SVC
}

func (svc *MonitoringService) Configure(ctx *context.Context) error {
	svc.enabled = shared.GetEnvBool("METRICS_ENABLED", true)
	return svc.DefaultService.Configure(ctx)
}

func (svc *MonitoringService) Start() error {
	svc.closed = make(chan struct{}, 1)

	if !svc.enabled {
		log.Info().Msg("Metrics disabled")
		return nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequestsTotal,
		httpRequestsActive,
		httpRequestDurationSeconds,
		visitsLoggedTotal,
		failedLoginsTotal,
		rateLimitRejectionsTotal,
		chatRequestsTotal,
		completionDurationSeconds,
		heapAllocBytes,
		heapSysBytes,
		gcTotal,
	)
	svc.register = reg

	go svc.updateMemoryMetrics()

	log.Info().Msg("Metrics registry initialized")
	return nil
}

func (svc *MonitoringService) Shutdown() {
	if svc.closed != nil && svc.enabled {
		svc.closed <- struct{}{}
	}
}

func (svc *MonitoringService) Enabled() bool {
	return svc != nil && svc.register != nil
}

func (svc *MonitoringService) MetricsHandler() fiber.Handler {
	handler := promhttp.HandlerFor(svc.register, promhttp.HandlerOpts{})
	return adaptor.HTTPHandler(handler)
}

func (svc *MonitoringService) updateMemoryMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			heapAllocBytes.Set(float64(m.Alloc))
			heapSysBytes.Set(float64(m.Sys))

			if m.NumGC > svc.lastGCCount {
				gcTotal.Add(float64(m.NumGC - svc.lastGCCount))
				svc.lastGCCount = m.NumGC
			}

		case <-svc.closed:
			log.Info().Msg("Memory metrics updater stopped")
			return
		}
	}
}

func (svc *MonitoringService) RecordRequest(method, endpoint, status string, duration time.Duration) {
	if !svc.Enabled() {
		return
	}
	httpRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
	httpRequestDurationSeconds.WithLabelValues(endpoint, method, status).Observe(duration.Seconds())
}

func (svc *MonitoringService) RecordVisit(unique bool) {
	if !svc.Enabled() {
		return
	}
	visitsLoggedTotal.WithLabelValues(strconv.FormatBool(unique)).Inc()
}

func (svc *MonitoringService) RecordFailedLogin(outcome string) {
	if !svc.Enabled() {
		return
	}
	failedLoginsTotal.WithLabelValues(outcome).Inc()
}

func (svc *MonitoringService) RecordRateLimited(policy string) {
	if !svc.Enabled() {
		return
	}
	rateLimitRejectionsTotal.WithLabelValues(policy).Inc()
}

func (svc *MonitoringService) RecordChat(outcome string, completion time.Duration) {
	if !svc.Enabled() {
		return
	}
	chatRequestsTotal.WithLabelValues(outcome).Inc()
	if completion > 0 {
		completionDurationSeconds.Observe(completion.Seconds())
	}
}

// MonitoringMiddleware creates a Fiber middleware for monitoring HTTP requests
func MonitoringMiddleware(monitoringSvc *MonitoringService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !monitoringSvc.Enabled() || c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		method := c.Method()

		httpRequestsActive.Inc()
		defer httpRequestsActive.Dec()

		err := c.Next()

		// Route pattern, not the raw path, to keep label cardinality bounded.
		endpoint := c.Route().Path

		status := c.Response().StatusCode()
		if err != nil {
			if appErr, ok := shared.GetAppError(err); ok {
				status = appErr.StatusCode
			} else if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		monitoringSvc.RecordRequest(method, endpoint, strconv.Itoa(status), time.Since(start))
		return err
	}
}
