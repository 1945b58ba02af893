// Package server owns the hub's runtime: the HTTP API, the MQTT connection
// and the periodic aggregation ticker run as parallel sub-servers under one
// errgroup.
package server

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core/service"
	"github.com/fleetrics-io/fleetrics/pkg/log"
	"github.com/fleetrics-io/fleetrics/pkg/mqtt"
)

// Server is one runnable sub-server. Start blocks until the context is
// cancelled or the server fails.
type Server interface {
	Start(ctx context.Context) error
}

// Manager manages the lifecycle of all sub-servers.
type Manager struct {
	servers []Server
	logger  log.Logger
}

func NewManager(logger log.Logger, servers ...Server) *Manager {
	logger = log.OrStd(logger)
	return &Manager{servers: servers, logger: logger}
}

// Start launches all servers in parallel and waits for termination. The
// first failure cancels the rest.
func (m *Manager) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, s := range m.servers {
		srv := s
		g.Go(func() error {
			return srv.Start(ctx)
		})
	}

	m.logger.Info("All servers starting", "count", len(m.servers))
	return g.Wait()
}

// MqttRunner keeps the shared MQTT connection alive for the lifetime of the
// process.
type MqttRunner struct {
	client mqtt.Client
	logger log.Logger
}

func NewMqttRunner(client mqtt.Client, logger log.Logger) *MqttRunner {
	logger = log.OrStd(logger)
	return &MqttRunner{client: client, logger: logger.WithName("mqtt")}
}

func (r *MqttRunner) Start(ctx context.Context) error {
	if err := r.client.Start(ctx); err != nil {
		return err
	}
	if err := r.client.AwaitConnection(ctx); err != nil {
		return err
	}
	r.logger.Info("MQTT connection established")

	<-ctx.Done()

	disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.client.Disconnect(disconnectCtx)
	return nil
}

// Refresher triggers an aggregation cycle on a fixed interval. Failures are
// logged and the ticker keeps going; the session keeps serving the previous
// registry in the meantime.
type Refresher struct {
	session  *service.Session
	interval time.Duration
	logger   log.Logger
}

func NewRefresher(session *service.Session, interval time.Duration, logger log.Logger) *Refresher {
	logger = log.OrStd(logger)
	return &Refresher{session: session, interval: interval, logger: logger.WithName("refresher")}
}

func (r *Refresher) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("Periodic refresh enabled", "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.session.Refresh(ctx, ""); err != nil {
				r.logger.Error(err, "Scheduled refresh failed")
			}
		}
	}
}
