// Package http exposes the hub's REST API, health probes and Prometheus
// metrics.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleetrics-io/fleetrics/internal/fleet/assistant"
	"github.com/fleetrics-io/fleetrics/internal/fleet/core"
	"github.com/fleetrics-io/fleetrics/internal/fleet/core/service"
	"github.com/fleetrics-io/fleetrics/internal/fleet/params"
	"github.com/fleetrics-io/fleetrics/pkg/log"
	"github.com/fleetrics-io/fleetrics/pkg/options"
)

// Config wires the API onto the domain services. Archive may be nil when
// report archiving is not configured; Ready may be nil when there is no
// readiness dependency to check.
type Config struct {
	Session   *service.Session
	Assistant *assistant.Client
	Params    *params.Provider
	Archive   core.ReportArchive
	Ready     func() bool
}

type Server struct {
	server  *http.Server
	options *options.HttpOptions
	logger  log.Logger
}

func NewServer(opts *options.HttpOptions, cfg Config, logger log.Logger) *Server {
	logger = log.OrStd(logger).WithName("http")

	api := &api{
		session:   cfg.Session,
		assistant: cfg.Assistant,
		params:    cfg.Params,
		archive:   cfg.Archive,
		logger:    logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", probeOK).Methods(http.MethodGet)
	r.HandleFunc("/readyz", readyProbe(cfg.Ready)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/fleet", api.getFleet).Methods(http.MethodGet)
	v1.HandleFunc("/fleet/refresh", api.refreshFleet).Methods(http.MethodPost)
	v1.HandleFunc("/fleet/sort", api.sortFleet).Methods(http.MethodPost)
	v1.HandleFunc("/fleet/tier", api.setFleetTier).Methods(http.MethodPut)
	v1.HandleFunc("/fleet/report", api.getReport).Methods(http.MethodGet)
	v1.HandleFunc("/fleet/report/archive", api.archiveReport).Methods(http.MethodPost)
	v1.HandleFunc("/vehicles/{id}/tier", api.setVehicleTier).Methods(http.MethodPut)
	v1.HandleFunc("/assistant/ask", api.askAssistant).Methods(http.MethodPost)
	v1.HandleFunc("/params", api.getParams).Methods(http.MethodGet)
	v1.HandleFunc("/params/{tier}", api.setTierParams).Methods(http.MethodPut)

	return &Server{
		server: &http.Server{
			Addr:              opts.Addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		options: opts,
		logger:  logger,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", "addr", s.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

func probeOK(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func readyProbe(ready func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil && !ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
