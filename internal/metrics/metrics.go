package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	acquireAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bms_bridge_acquire_attempts_total",
			Help: "Shared memory open attempts, by source and result.",
		},
		[]string{"source", "result"},
	)

	ticksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bms_bridge_ticks_total",
			Help: "Datagrams rendered, by output mode.",
		},
		[]string{"mode"},
	)

	sendErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bms_bridge_send_errors_total",
			Help: "Datagrams the UDP socket refused.",
		},
	)

	sourcesAcquiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bms_bridge_sources_acquired_total",
			Help: "Shared memory sources successfully mapped.",
		},
	)
)

func init() {
	prometheus.MustRegister(acquireAttemptsTotal)
	prometheus.MustRegister(ticksTotal)
	prometheus.MustRegister(sendErrorsTotal)
	prometheus.MustRegister(sourcesAcquiredTotal)
}

// AcquireAttempt records one open attempt for source.
func AcquireAttempt(source string, ok bool) {
	result := "unavailable"
	if ok {
		result = "ready"
		sourcesAcquiredTotal.Inc()
	}
	acquireAttemptsTotal.WithLabelValues(source, result).Inc()
}

// Tick records one rendered datagram.
func Tick(mode string) {
	ticksTotal.WithLabelValues(mode).Inc()
}

// SendError records one failed send.
func SendError() {
	sendErrorsTotal.Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve starts a /metrics listener on addr in the background.
// An empty addr disables it and returns nil.
func Serve(addr string, logger *zap.Logger) *http.Server {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Metrics listener stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()

	logger.Info("Metrics listener started", zap.String("addr", addr))
	return srv
}
