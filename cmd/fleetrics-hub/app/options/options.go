package options

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/fleetrics-io/fleetrics/pkg/log"
	"github.com/fleetrics-io/fleetrics/pkg/options"
)

// HubOptions bundles all option groups of the fleetrics-hub binary.
type HubOptions struct {
	FleetOptions     *options.FleetOptions     `json:"fleet" mapstructure:"fleet"`
	TelemetryOptions *options.TelemetryOptions `json:"telemetry" mapstructure:"telemetry"`
	HttpOptions      *options.HttpOptions      `json:"http" mapstructure:"http"`
	MqttOptions      *options.MqttOptions      `json:"mqtt" mapstructure:"mqtt"`
	S3Options        *options.S3Options        `json:"s3" mapstructure:"s3"`
	Log              *log.Options              `json:"log" mapstructure:"log"`
}

func NewHubOptions() *HubOptions {
	return &HubOptions{
		FleetOptions:     options.NewFleetOptions(),
		TelemetryOptions: options.NewTelemetryOptions(),
		HttpOptions:      options.NewHttpOptions(),
		MqttOptions:      options.NewMqttOptions(),
		S3Options:        options.NewS3Options(),
		Log:              log.NewOptions(),
	}
}

func (o *HubOptions) AddFlags(fs *pflag.FlagSet) {
	o.FleetOptions.AddFlags(fs)
	o.TelemetryOptions.AddFlags(fs)
	o.HttpOptions.AddFlags(fs)
	o.MqttOptions.AddFlags(fs)
	o.S3Options.AddFlags(fs)
	o.Log.AddFlags(fs)
}

func (o *HubOptions) Complete() error {
	return nil
}

func (o *HubOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.FleetOptions.Validate()...)
	errs = append(errs, o.TelemetryOptions.Validate()...)
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.S3Options.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return errors.Join(errs...)
}
