package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core/model"
)

func TestCalcBreakdown(t *testing.T) {
	v := &model.VehicleSummary{
		DistanceMiles: 1000,
		IdleHours:     10,
		FuelGallons:   100,
	}
	got := Calc(v, model.DefaultCostParameters().Light)

	assert.InDelta(t, 333.3333, got.Fixed, 0.001, "monthly depreciation")
	assert.InDelta(t, 400, got.Fuel, 0.001)
	assert.InDelta(t, 100, got.Maintenance, 0.001)
	assert.InDelta(t, 20, got.Waste, 0.001)
	assert.Equal(t, got.Fixed+got.Fuel+got.Maintenance+got.Waste, got.Total)
}

func TestCalcIsPure(t *testing.T) {
	v := &model.VehicleSummary{DistanceMiles: 512.5, IdleHours: 3.25, FuelGallons: 42}
	p := model.DefaultCostParameters().Heavy

	first := Calc(v, p)
	second := Calc(v, p)
	assert.Equal(t, first, second)
	assert.Equal(t, 512.5, v.DistanceMiles, "input must not be mutated")
}

func TestCalcFuelFallback(t *testing.T) {
	p := model.TierParameters{UsefulLifeYears: 5, FuelPricePerGallon: 4}

	// No counter data in the window: estimate 10 MPG from miles.
	noFuel := Calc(&model.VehicleSummary{DistanceMiles: 250}, p)
	assert.InDelta(t, 25*4, noFuel.Fuel, 0.001)

	// Real counter data, however small, wins over the estimate.
	withFuel := Calc(&model.VehicleSummary{DistanceMiles: 250, FuelGallons: 1}, p)
	assert.InDelta(t, 4, withFuel.Fuel, 0.001)
}

func TestCalcLifeClamp(t *testing.T) {
	p := model.TierParameters{PurchasePrice: 24000, ResidualValue: 12000}

	got := Calc(&model.VehicleSummary{}, p)
	assert.InDelta(t, 12000.0/1/12, got.Fixed, 0.001, "zero life clamps to one year")
}

func TestCalcResidualAbovePurchase(t *testing.T) {
	p := model.TierParameters{PurchasePrice: 10000, ResidualValue: 16000, UsefulLifeYears: 5}

	got := Calc(&model.VehicleSummary{}, p)
	assert.InDelta(t, -100, got.Fixed, 0.001, "negative depreciation is legal")
	assert.Equal(t, got.Fixed, got.Total)
}
