package service

import (
	"github.com/fleetrics-io/fleetrics/internal/fleet/core/model"
)

const (
	kmToMiles       = 0.621371
	litersPerGallon = 3.78541
)

// buildRegistry seeds one VehicleSummary per known vehicle with zeroed
// accumulators and the tier restored from the classification map. Map
// entries for vehicles that no longer exist are simply not represented.
func buildRegistry(devices []deviceRecord, classMap model.ClassificationMap) map[string]*model.VehicleSummary {
	registry := make(map[string]*model.VehicleSummary, len(devices))
	for _, d := range devices {
		rec := d.toModel()
		name := rec.Name
		if name == "" {
			name = rec.ID
		}
		registry[rec.ID] = &model.VehicleSummary{
			ID:              rec.ID,
			Name:            name,
			DescriptiveInfo: descriptiveInfo(rec),
			Tier:            classMap.TierFor(rec.ID),
		}
	}
	return registry
}

// foldTrips accumulates distance and idle time per vehicle. Distance arrives
// in kilometers; idling duration is parsed leniently and degrades to zero.
// Trips for vehicles absent from the registry are ignored. Addition is
// commutative, so the fold order never changes the totals.
func foldTrips(trips []tripRecord, registry map[string]*model.VehicleSummary) {
	for _, t := range trips {
		trip := t.toModel()
		v, ok := registry[trip.VehicleID]
		if !ok {
			continue
		}
		v.DistanceMiles += trip.DistanceKm * kmToMiles
		v.IdleHours += ParseDurationHours(trip.IdlingDuration)
	}
}

// foldFuel derives fuel consumption per vehicle from cumulative counter
// samples: max minus min over the window, clamped at zero so a counter
// reset reads as "no consumption" rather than a negative burn. Only the
// extremes matter, so sample order is irrelevant.
func foldFuel(samples []statusRecord, registry map[string]*model.VehicleSummary) {
	type extremes struct {
		min, max float64
	}

	perVehicle := make(map[string]*extremes)
	for _, s := range samples {
		sample := s.toModel()
		e, ok := perVehicle[sample.VehicleID]
		if !ok {
			e = &extremes{min: sample.Value, max: sample.Value}
			perVehicle[sample.VehicleID] = e
			continue
		}
		if sample.Value < e.min {
			e.min = sample.Value
		}
		if sample.Value > e.max {
			e.max = sample.Value
		}
	}

	for id, e := range perVehicle {
		v, ok := registry[id]
		if !ok {
			continue
		}
		liters := e.max - e.min
		if liters < 0 {
			liters = 0
		}
		v.FuelGallons = liters / litersPerGallon
	}
}
