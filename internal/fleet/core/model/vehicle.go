package model

// Tier is the cost-classification bucket assigned to a vehicle. It selects
// which TierParameters set drives the cost model.
type Tier string

const (
	TierLight  Tier = "L"
	TierMedium Tier = "M"
	TierHeavy  Tier = "H"
)

// ParseTier maps user input to a Tier, accepting both the short code and the
// display name. Unknown input falls back to TierLight.
func ParseTier(s string) Tier {
	switch s {
	case "L", "Light", "light":
		return TierLight
	case "M", "Medium", "medium":
		return TierMedium
	case "H", "Heavy", "heavy":
		return TierHeavy
	}
	return TierLight
}

// DisplayName returns the human-readable tier name.
func (t Tier) DisplayName() string {
	switch t {
	case TierMedium:
		return "Medium"
	case TierHeavy:
		return "Heavy"
	default:
		return "Light"
	}
}

// Valid reports whether t is one of the three known tiers.
func (t Tier) Valid() bool {
	return t == TierLight || t == TierMedium || t == TierHeavy
}

// VehicleSummary is the per-vehicle aggregate produced by one aggregation
// cycle. It is rebuilt from scratch every cycle; accumulators never carry
// over between cycles.
type VehicleSummary struct {
	// ID is the stable unique identifier of the vehicle.
	ID string `json:"id"`

	// Name is the display name; falls back to the ID when unset upstream.
	Name string `json:"name"`

	// DescriptiveInfo is the free-text "year make model" description.
	DescriptiveInfo string `json:"descriptiveInfo"`

	// Tier is the assigned classification, restored from the persisted map.
	Tier Tier `json:"tier"`

	// DistanceMiles accumulates trip distance, converted from kilometers.
	DistanceMiles float64 `json:"distanceMiles"`

	// IdleHours accumulates parsed trip idling durations.
	IdleHours float64 `json:"idleHours"`

	// FuelGallons is the counter-derived fuel consumption for the window.
	FuelGallons float64 `json:"fuelGallons"`

	// Cost is the derived breakdown under the current tier parameters.
	Cost CostBreakdown `json:"costBreakdown"`
}

// CostBreakdown is the output of the cost model. Total always equals the
// exact sum of the four components; no rounding happens before presentation.
type CostBreakdown struct {
	Fixed       float64 `json:"fixed"`
	Fuel        float64 `json:"fuel"`
	Maintenance float64 `json:"maintenance"`
	Waste       float64 `json:"waste"`
	Total       float64 `json:"total"`
}

// VehicleRecord is a registry entity as served by the telemetry API.
type VehicleRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Year  string `json:"year"`
	Make  string `json:"make"`
	Model string `json:"model"`
}

// TripRecord is one trip as served by the telemetry API. IdlingDuration is
// kept raw: it arrives in one of three encodings (HH:MM:SS, compact duration
// tokens, or plain seconds) and is parsed during folding.
type TripRecord struct {
	VehicleID      string
	DistanceKm     float64
	IdlingDuration string
}

// CounterSample is a timestamped reading of a cumulative diagnostic counter.
// Values are expected to be non-decreasing, but resets do happen.
type CounterSample struct {
	VehicleID string
	Value     float64
	Timestamp string
}
