package options

import (
	"errors"
	"net/url"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*TelemetryOptions)(nil)

// TelemetryOptions contains configuration for the remote telemetry API that
// serves the vehicle registry, trip records and diagnostic counter samples.
type TelemetryOptions struct {
	// Endpoint is the base URL of the telemetry API (JSON-RPC style).
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`

	// Database is the customer database name passed with every credentialed call.
	Database string `json:"database" mapstructure:"database"`

	// Username and SessionID authenticate requests.
	Username  string `json:"username" mapstructure:"username"`
	SessionID string `json:"session-id" mapstructure:"session-id"`

	// Timeout bounds a single HTTP round-trip, batch or not.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// ResultsLimit caps bulk reads (trips, counter samples) per fetch.
	ResultsLimit int `json:"results-limit" mapstructure:"results-limit"`

	// FuelDiagnosticID selects the cumulative fuel counter channel.
	FuelDiagnosticID string `json:"fuel-diagnostic-id" mapstructure:"fuel-diagnostic-id"`

	// StoreID is the stable key under which the classification blob is persisted.
	StoreID string `json:"store-id" mapstructure:"store-id"`
}

// NewTelemetryOptions creates a TelemetryOptions object with default parameters.
func NewTelemetryOptions() *TelemetryOptions {
	return &TelemetryOptions{
		Endpoint:         "https://telemetry.fleetrics.io/apiv1",
		Timeout:          60 * time.Second,
		ResultsLimit:     50000,
		FuelDiagnosticID: "DiagnosticDeviceTotalFuelId",
		StoreID:          "fleet_tco_calculator",
	}
}

// Validate is used to parse and validate the parameters entered by the user at
// the command line when the program starts.
func (o *TelemetryOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errs := []error{}

	if o.Endpoint == "" {
		errs = append(errs, errors.New("telemetry endpoint is required"))
	} else if _, err := url.Parse(o.Endpoint); err != nil {
		errs = append(errs, err)
	}

	if o.ResultsLimit <= 0 {
		errs = append(errs, errors.New("telemetry results-limit must be positive"))
	}

	if o.StoreID == "" {
		errs = append(errs, errors.New("telemetry store-id is required"))
	}

	return errs
}

// AddFlags adds flags for TelemetryOptions to the specified FlagSet.
func (o *TelemetryOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Endpoint, "telemetry.endpoint", o.Endpoint, "Base URL of the remote telemetry API.")
	fs.StringVar(&o.Database, "telemetry.database", o.Database, "Customer database name.")
	fs.StringVar(&o.Username, "telemetry.username", o.Username, "Username for telemetry API authentication.")
	fs.StringVar(&o.SessionID, "telemetry.session-id", o.SessionID, "Session ID for telemetry API authentication.")
	fs.DurationVar(&o.Timeout, "telemetry.timeout", o.Timeout, "Timeout for a single telemetry API round-trip.")
	fs.IntVar(&o.ResultsLimit, "telemetry.results-limit", o.ResultsLimit, "Maximum results per bulk read.")
	fs.StringVar(&o.FuelDiagnosticID, "telemetry.fuel-diagnostic-id", o.FuelDiagnosticID, "Diagnostic channel ID for the cumulative fuel counter.")
	fs.StringVar(&o.StoreID, "telemetry.store-id", o.StoreID, "Stable store key for the persisted classification blob.")
}
