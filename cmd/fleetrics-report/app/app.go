// Package app assembles the fleetrics-report one-shot CLI.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gosuri/uitable"

	"github.com/fleetrics-io/fleetrics/cmd/fleetrics-report/app/options"
	"github.com/fleetrics-io/fleetrics/internal/fleet/core/service"
	"github.com/fleetrics-io/fleetrics/internal/fleet/export"
	"github.com/fleetrics-io/fleetrics/internal/fleet/gateway"
	"github.com/fleetrics-io/fleetrics/internal/fleet/params"
	"github.com/fleetrics-io/fleetrics/pkg/app"
	"github.com/fleetrics-io/fleetrics/pkg/log"
)

const commandDesc = `fleetrics-report runs one aggregation cycle against the telemetry API and
prints the ranked fleet TCO table, or writes it as a CSV report.`

func NewApp() *app.App {
	opts := options.NewReportOptions()
	return app.NewApp(
		"fleetrics-report",
		"Print a one-shot fleet TCO report",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)
}

func run(opts *options.ReportOptions) app.RunFunc {
	return func(ctx context.Context) error {
		log.Init(opts.Log)

		provider := params.NewProvider(log.Std())
		if file := opts.FleetOptions.ParamsFile; file != "" {
			if err := provider.Load(file); err != nil {
				return err
			}
		}

		gw := gateway.New(opts.TelemetryOptions, log.Std())
		session := service.NewSession(gw, provider, nil, service.Config{
			StoreID:          opts.TelemetryOptions.StoreID,
			FuelDiagnosticID: opts.TelemetryOptions.FuelDiagnosticID,
			ResultsLimit:     opts.TelemetryOptions.ResultsLimit,
			Window:           service.Window(opts.FleetOptions.Window),
		}, log.Std())

		if err := session.Refresh(ctx, ""); err != nil {
			return fmt.Errorf("aggregation cycle failed: %w", err)
		}

		field, err := service.ParseSortField(opts.Sort)
		if err != nil {
			return err
		}
		session.SortBy(field)
		if opts.Descending {
			// Selecting the same field again toggles the direction.
			session.SortBy(field)
		}

		snap := session.Snapshot()
		if opts.CSVPath != "" {
			if err := os.WriteFile(opts.CSVPath, export.CSV(snap), 0o644); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			log.Info("Report written", "file", opts.CSVPath, "vehicles", len(snap.Vehicles))
			return nil
		}

		printTable(snap)
		return nil
	}
}

func printTable(snap *service.Snapshot) {
	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("VEHICLE", "YEAR/MAKE/MODEL", "CLASS", "MILES", "IDLE H", "FUEL GAL", "FIXED $", "FUEL $", "MAINT $", "WASTE $", "TOTAL $")

	for i := range snap.Vehicles {
		v := &snap.Vehicles[i]
		table.AddRow(
			v.Name,
			v.DescriptiveInfo,
			v.Tier.DisplayName(),
			fmt.Sprintf("%.0f", v.DistanceMiles),
			fmt.Sprintf("%.1f", v.IdleHours),
			fmt.Sprintf("%.1f", v.FuelGallons),
			fmt.Sprintf("%.2f", v.Cost.Fixed),
			fmt.Sprintf("%.2f", v.Cost.Fuel),
			fmt.Sprintf("%.2f", v.Cost.Maintenance),
			fmt.Sprintf("%.2f", v.Cost.Waste),
			fmt.Sprintf("%.2f", v.Cost.Total),
		)
	}
	fmt.Println(table)

	t := snap.Totals
	fmt.Printf("\n%d vehicles, %.0f miles, %.1f idle hours\n", t.Vehicles, t.Miles, t.IdleHours)
	fmt.Printf("fleet TCO $%.2f (waste $%.2f), efficiency %.1f%%\n", t.TotalCost, t.WasteCost, t.Efficiency*100)
}
