package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codesync",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "codesync",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "codesync",
		Name:      "http_in_flight_requests",
		Help:      "Current number of in-flight HTTP requests",
	})

	// RoomsActive tracks the number of live rooms in the registry.
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "codesync",
		Name:      "rooms_active",
		Help:      "Current number of active rooms",
	})

	// SessionsConnected tracks open WebSocket sessions.
	SessionsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "codesync",
		Name:      "sessions_connected",
		Help:      "Current number of connected WebSocket sessions",
	})

	// SignalsRelayed counts forwarded handshake payloads.
	SignalsRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "codesync",
		Name:      "signals_relayed_total",
		Help:      "Total number of signaling payloads forwarded between peers",
	})

	// SignalsDropped counts payloads whose destination session was gone.
	SignalsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "codesync",
		Name:      "signals_dropped_total",
		Help:      "Total number of signaling payloads dropped because the destination vanished",
	})

	// ChatMessages counts globally broadcast chat messages.
	ChatMessages = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "codesync",
		Name:      "chat_messages_total",
		Help:      "Total number of chat messages broadcast",
	})
)

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("metrics: underlying ResponseWriter does not support hijacking")
}

// Middleware records request metrics with Prometheus labels.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		labels := prometheus.Labels{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": strconv.Itoa(rec.status),
		}
		httpRequests.With(labels).Inc()
		httpLatency.With(labels).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
