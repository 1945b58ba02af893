package model

// TierParameters holds the user-editable cost model inputs for one tier.
// All values are expected to be non-negative; a residual value above the
// purchase price is unusual but legal and simply yields negative fixed cost.
type TierParameters struct {
	PurchasePrice          float64 `json:"purchase-price" mapstructure:"purchase-price"`
	ResidualValue          float64 `json:"residual-value" mapstructure:"residual-value"`
	UsefulLifeYears        float64 `json:"useful-life-years" mapstructure:"useful-life-years"`
	FuelPricePerGallon     float64 `json:"fuel-price-per-gallon" mapstructure:"fuel-price-per-gallon"`
	MaintenanceRatePerMile float64 `json:"maintenance-rate-per-mile" mapstructure:"maintenance-rate-per-mile"`
	IdleCostPerHour        float64 `json:"idle-cost-per-hour" mapstructure:"idle-cost-per-hour"`
}

// CostParameters holds the full parameter set, one TierParameters per tier.
type CostParameters struct {
	Light  TierParameters `json:"light" mapstructure:"light"`
	Medium TierParameters `json:"medium" mapstructure:"medium"`
	Heavy  TierParameters `json:"heavy" mapstructure:"heavy"`
}

// ForTier returns the parameter set for the given tier.
func (p CostParameters) ForTier(t Tier) TierParameters {
	switch t {
	case TierMedium:
		return p.Medium
	case TierHeavy:
		return p.Heavy
	default:
		return p.Light
	}
}

// DefaultCostParameters returns the stock parameter sets used until the
// operator provides a tier-parameters file.
func DefaultCostParameters() CostParameters {
	return CostParameters{
		Light: TierParameters{
			PurchasePrice:          30000,
			ResidualValue:          10000,
			UsefulLifeYears:        5,
			FuelPricePerGallon:     4,
			MaintenanceRatePerMile: 0.10,
			IdleCostPerHour:        2,
		},
		Medium: TierParameters{
			PurchasePrice:          45000,
			ResidualValue:          15000,
			UsefulLifeYears:        6,
			FuelPricePerGallon:     4,
			MaintenanceRatePerMile: 0.15,
			IdleCostPerHour:        2.5,
		},
		Heavy: TierParameters{
			PurchasePrice:          85000,
			ResidualValue:          25000,
			UsefulLifeYears:        8,
			FuelPricePerGallon:     4.2,
			MaintenanceRatePerMile: 0.22,
			IdleCostPerHour:        3.5,
		},
	}
}
