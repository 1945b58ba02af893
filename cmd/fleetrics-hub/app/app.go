// Package app assembles the fleetrics-hub server from its option groups.
package app

import (
	"context"
	"fmt"

	"github.com/fleetrics-io/fleetrics/cmd/fleetrics-hub/app/options"
	"github.com/fleetrics-io/fleetrics/internal/fleet/archive"
	"github.com/fleetrics-io/fleetrics/internal/fleet/assistant"
	"github.com/fleetrics-io/fleetrics/internal/fleet/core"
	"github.com/fleetrics-io/fleetrics/internal/fleet/core/service"
	"github.com/fleetrics-io/fleetrics/internal/fleet/gateway"
	"github.com/fleetrics-io/fleetrics/internal/fleet/notifier"
	"github.com/fleetrics-io/fleetrics/internal/fleet/params"
	"github.com/fleetrics-io/fleetrics/internal/fleet/server"
	fleethttp "github.com/fleetrics-io/fleetrics/internal/fleet/server/http"
	"github.com/fleetrics-io/fleetrics/pkg/app"
	"github.com/fleetrics-io/fleetrics/pkg/log"
	"github.com/fleetrics-io/fleetrics/pkg/mqtt"
)

const commandDesc = `The Fleetrics hub aggregates fleet telemetry into per-vehicle total cost
of ownership. It periodically folds trips, idle durations and fuel counter
readings into a ranked fleet view, persists vehicle classifications through
the telemetry store, publishes cycle totals over MQTT, archives CSV reports
to object storage and answers natural-language questions through the fleet
assistant.`

func NewApp() *app.App {
	opts := options.NewHubOptions()
	return app.NewApp(
		"fleetrics-hub",
		"Launch the Fleetrics aggregation hub",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)
}

func run(opts *options.HubOptions) app.RunFunc {
	return func(ctx context.Context) error {
		log.Init(opts.Log)

		gw := gateway.New(opts.TelemetryOptions, log.Std())

		provider := params.NewProvider(log.Std())
		if file := opts.FleetOptions.ParamsFile; file != "" {
			if err := provider.Load(file); err != nil {
				return err
			}
			if err := provider.Watch(ctx, file); err != nil {
				return err
			}
		}

		var (
			servers    []server.Server
			cycles     core.CycleNotifier
			mqttClient mqtt.Client
		)
		if opts.MqttOptions.Enabled() {
			client, err := mqtt.NewClient(opts.MqttOptions.ToClientConfig())
			if err != nil {
				return fmt.Errorf("failed to create mqtt client: %w", err)
			}
			mqttClient = client
			cycles = notifier.NewMQTTNotifier(client, opts.MqttOptions.TopicRoot, log.Std())
			servers = append(servers, server.NewMqttRunner(client, log.Std()))
		}

		session := service.NewSession(gw, provider, cycles, service.Config{
			StoreID:          opts.TelemetryOptions.StoreID,
			FuelDiagnosticID: opts.TelemetryOptions.FuelDiagnosticID,
			ResultsLimit:     opts.TelemetryOptions.ResultsLimit,
			Window:           service.Window(opts.FleetOptions.Window),
		}, log.Std())

		var reports core.ReportArchive
		if opts.S3Options.Enabled() {
			a, err := archive.NewMinioArchive(opts.S3Options, log.Std())
			if err != nil {
				return err
			}
			if err := a.EnsureBucket(ctx); err != nil {
				return err
			}
			reports = a
		}

		assist := assistant.NewClient(gw, assistant.Config{}, log.Std())

		ready := func() bool {
			return mqttClient == nil || mqttClient.IsConnected()
		}
		servers = append(servers, fleethttp.NewServer(opts.HttpOptions, fleethttp.Config{
			Session:   session,
			Assistant: assist,
			Params:    provider,
			Archive:   reports,
			Ready:     ready,
		}, log.Std()))

		if interval := opts.FleetOptions.RefreshInterval; interval > 0 {
			servers = append(servers, server.NewRefresher(session, interval, log.Std()))
		}

		// Prime the registry so the API serves data right away. A failed
		// first cycle is not fatal; the refresher or an API call retries.
		if err := session.Refresh(ctx, ""); err != nil {
			log.Error(err, "Initial aggregation cycle failed")
		}

		return server.NewManager(log.Std(), servers...).Start(ctx)
	}
}
