// Package cost implements the total-cost-of-ownership model. Calc is a pure
// function: identical inputs always produce an identical breakdown.
package cost

import (
	"github.com/fleetrics-io/fleetrics/internal/fleet/core/model"
)

// fallbackGallonsPerMile estimates fuel burn at 10 MPG when no real counter
// data exists for the window.
const fallbackGallonsPerMile = 0.1

// Calc computes the cost breakdown for one vehicle under the given tier
// parameters.
//
//	fixed       = (purchase - residual) / max(life, 1) / 12   (monthly depreciation)
//	fuel        = gallons * fuel price
//	maintenance = miles * maintenance rate
//	waste       = idle hours * idle cost rate
//
// The fallback fuel estimate activates only when counter-derived fuel is
// exactly zero, i.e. when no samples landed in the window. It is a
// data-availability proxy, not a per-tier economic default.
func Calc(v *model.VehicleSummary, p model.TierParameters) model.CostBreakdown {
	life := p.UsefulLifeYears
	if life < 1 {
		life = 1
	}
	fixed := (p.PurchasePrice - p.ResidualValue) / life / 12

	gallons := v.FuelGallons
	if gallons <= 0 {
		gallons = v.DistanceMiles * fallbackGallonsPerMile
	}
	fuel := gallons * p.FuelPricePerGallon

	maintenance := v.DistanceMiles * p.MaintenanceRatePerMile
	waste := v.IdleHours * p.IdleCostPerHour

	return model.CostBreakdown{
		Fixed:       fixed,
		Fuel:        fuel,
		Maintenance: maintenance,
		Waste:       waste,
		Total:       fixed + fuel + maintenance + waste,
	}
}
