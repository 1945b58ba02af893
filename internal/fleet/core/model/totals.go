package model

// FleetTotals aggregates one cycle's figures across the whole fleet.
type FleetTotals struct {
	Vehicles        int     `json:"vehicles"`
	Miles           float64 `json:"miles"`
	IdleHours       float64 `json:"idleHours"`
	FuelCost        float64 `json:"fuelCost"`
	MaintenanceCost float64 `json:"maintenanceCost"`
	WasteCost       float64 `json:"wasteCost"`
	OperationalCost float64 `json:"operationalCost"`
	TotalCost       float64 `json:"totalCost"`

	// Efficiency is 1 - waste/total, clamped to [0,1]. A fleet with zero
	// idle waste scores 1. An empty or zero-cost fleet also scores 1.
	Efficiency float64 `json:"efficiency"`
}

// Accumulate folds one vehicle's figures into the totals.
func (t *FleetTotals) Accumulate(v *VehicleSummary) {
	t.Vehicles++
	t.Miles += v.DistanceMiles
	t.IdleHours += v.IdleHours
	t.FuelCost += v.Cost.Fuel
	t.MaintenanceCost += v.Cost.Maintenance
	t.WasteCost += v.Cost.Waste
	t.OperationalCost += v.Cost.Fuel + v.Cost.Maintenance
	t.TotalCost += v.Cost.Total
}

// Finalize computes the derived efficiency ratio.
func (t *FleetTotals) Finalize() {
	if t.TotalCost <= 0 {
		t.Efficiency = 1
		return
	}
	eff := 1 - t.WasteCost/t.TotalCost
	if eff < 0 {
		eff = 0
	}
	if eff > 1 {
		eff = 1
	}
	t.Efficiency = eff
}
