package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_requests_total",
			Help: "Total number of marketplace API requests.",
		},
		[]string{"marketplace", "method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_request_duration_seconds",
			Help:    "Histogram of marketplace API request durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"marketplace", "method", "endpoint", "status"},
	)
	batchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_batches_total",
			Help: "Update batches sent to marketplaces.",
		},
		[]string{"target", "kind", "result"},
	)
	itemsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_items_submitted_total",
			Help: "Stock and price updates accepted by marketplaces.",
		},
		[]string{"target", "kind"},
	)
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Sync runs by result and failed stage.",
		},
		[]string{"result", "stage"},
	)
	lastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp_seconds",
			Help: "Unix time of the last successful sync run.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(batchesTotal)
	prometheus.MustRegister(itemsSubmitted)
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(lastSuccess)
}

// RecordRequest записывает метрики для запроса к API маркетплейса.
func RecordRequest(marketplace, method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(marketplace, method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(marketplace, method, endpoint, status).Observe(duration.Seconds())
}

// RecordBatch учитывает один отправленный пакет обновлений.
func RecordBatch(target, kind string, size int, err error) {
	if err != nil {
		batchesTotal.WithLabelValues(target, kind, "error").Inc()
		return
	}
	batchesTotal.WithLabelValues(target, kind, "ok").Inc()
	itemsSubmitted.WithLabelValues(target, kind).Add(float64(size))
}

// RecordRun учитывает завершенный прогон; stage пустой при успехе.
func RecordRun(stage string, err error) {
	if err != nil {
		runsTotal.WithLabelValues("error", stage).Inc()
		return
	}
	runsTotal.WithLabelValues("ok", "").Inc()
	lastSuccess.SetToCurrentTime()
}

// classifyStatus классифицирует HTTP-статус код в строку.
func classifyStatus(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "2xx"
	} else if statusCode >= 300 && statusCode < 400 {
		return "3xx"
	} else if statusCode >= 400 && statusCode < 500 {
		if statusCode == http.StatusTooManyRequests {
			return "429"
		}
		return "4xx"
	} else if statusCode >= 500 && statusCode < 600 {
		return "5xx"
	} else if statusCode == 0 {
		return "error"
	}
	return "unknown"
}

// MetricsHandler возвращает HTTP-обработчик для экспорта метрик Prometheus.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
