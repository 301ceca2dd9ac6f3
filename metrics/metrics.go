// Package metrics exposes the coordinator's Prometheus metrics and the
// health endpoint.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	registry = prometheus.NewRegistry()

	// BlockCount counts blocks the coordinator has processed.
	BlockCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "queryapi_coordinator_block_count",
		Help: "Number of processed blocks",
	})
	// LatestBlockHeight tracks the height of the last processed block.
	LatestBlockHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "queryapi_coordinator_latest_block_height",
		Help: "Height of the last processed block",
	})
)

func init() {
	registry.MustRegister(BlockCount, LatestBlockHeight)
}

// Serve starts the metrics/health HTTP server on the given port and
// returns it so the caller can manage shutdown.
func Serve(port uint16) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logrus.Infof("metrics server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("metrics server stopped")
		}
	}()
	return srv
}
