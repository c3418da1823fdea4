package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellbeing_http_requests_total",
		Help: "HTTP requests served, by status code and method.",
	}, []string{"code", "method"})
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wellbeing_http_request_duration_seconds",
		Help:    "HTTP request latency, by status code and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"code", "method"})
)

// NewRouter wires the REST API, the alert feed socket, health and metrics endpoints.
func NewRouter(api *API, ws *WSHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /ws/alerts", ws.ServeWS)
	api.Register(mux)

	instrumented := promhttp.InstrumentHandlerDuration(httpDuration,
		promhttp.InstrumentHandlerCounter(httpRequests, mux))
	return logRequests(instrumented)
}

// logRequests logs each request except upgraded sockets, which log their own lifecycle.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws/alerts" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("http request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}
