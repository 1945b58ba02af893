package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*FleetOptions)(nil)

// FleetOptions contains configuration for the aggregation engine itself.
type FleetOptions struct {
	// Window is the initial reporting window ("30", "60", "90", "mtd", "ytd").
	Window string `json:"window" mapstructure:"window"`

	// RefreshInterval enables periodic aggregation cycles. Zero disables the
	// ticker; cycles then happen only on API request.
	RefreshInterval time.Duration `json:"refresh-interval" mapstructure:"refresh-interval"`

	// ParamsFile is an optional YAML file with tier cost parameters. When set
	// it is loaded at startup and watched for edits.
	ParamsFile string `json:"params-file" mapstructure:"params-file"`
}

// NewFleetOptions creates a new FleetOptions with default values.
func NewFleetOptions() *FleetOptions {
	return &FleetOptions{
		Window: "30",
	}
}

func (o *FleetOptions) Validate() []error {
	errors := []error{}

	switch o.Window {
	case "30", "60", "90", "mtd", "ytd":
	default:
		errors = append(errors, fmt.Errorf("invalid fleet window %q", o.Window))
	}
	if o.RefreshInterval < 0 {
		errors = append(errors, fmt.Errorf("refresh interval must not be negative"))
	}

	return errors
}

func (o *FleetOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Window, "fleet.window", o.Window, "Initial reporting window: 30, 60, 90, mtd or ytd.")
	fs.DurationVar(&o.RefreshInterval, "fleet.refresh-interval", o.RefreshInterval, "Interval between automatic aggregation cycles. Zero disables the ticker.")
	fs.StringVar(&o.ParamsFile, "fleet.params-file", o.ParamsFile, "YAML file with tier cost parameters, watched for changes.")
}
