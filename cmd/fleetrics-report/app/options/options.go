package options

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core/service"
	"github.com/fleetrics-io/fleetrics/pkg/log"
	"github.com/fleetrics-io/fleetrics/pkg/options"
)

// ReportOptions bundles all option groups of the fleetrics-report binary.
type ReportOptions struct {
	FleetOptions     *options.FleetOptions     `json:"fleet" mapstructure:"fleet"`
	TelemetryOptions *options.TelemetryOptions `json:"telemetry" mapstructure:"telemetry"`
	Log              *log.Options              `json:"log" mapstructure:"log"`

	// Sort picks the ranking field for the printed table.
	Sort string `json:"sort" mapstructure:"sort"`

	// Descending reverses the ranking direction.
	Descending bool `json:"descending" mapstructure:"descending"`

	// CSVPath writes the report as CSV to a file instead of printing a table.
	CSVPath string `json:"csv" mapstructure:"csv"`
}

func NewReportOptions() *ReportOptions {
	return &ReportOptions{
		FleetOptions:     options.NewFleetOptions(),
		TelemetryOptions: options.NewTelemetryOptions(),
		Log:              log.NewOptions(),
		Sort:             string(service.SortByTotalCost),
		Descending:       true,
	}
}

func (o *ReportOptions) AddFlags(fs *pflag.FlagSet) {
	o.FleetOptions.AddFlags(fs)
	o.TelemetryOptions.AddFlags(fs)
	o.Log.AddFlags(fs)

	fs.StringVar(&o.Sort, "sort", o.Sort, "Ranking field: name, info, tier, miles, idleHours, fuelGallons or tco.")
	fs.BoolVar(&o.Descending, "descending", o.Descending, "Rank in descending order.")
	fs.StringVar(&o.CSVPath, "csv", o.CSVPath, "Write the report as CSV to this file instead of printing a table.")
}

func (o *ReportOptions) Complete() error {
	return nil
}

func (o *ReportOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.FleetOptions.Validate()...)
	errs = append(errs, o.TelemetryOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	if _, err := service.ParseSortField(o.Sort); err != nil {
		errs = append(errs, fmt.Errorf("invalid sort field: %w", err))
	}
	return errors.Join(errs...)
}
