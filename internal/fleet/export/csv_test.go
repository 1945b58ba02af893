package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core/model"
	"github.com/fleetrics-io/fleetrics/internal/fleet/core/service"
)

func TestCSVColumnsAndRounding(t *testing.T) {
	snap := &service.Snapshot{
		Vehicles: []model.VehicleSummary{
			{
				Name:            "Truck 7",
				DescriptiveInfo: "2021 Ford F-150",
				Tier:            model.TierHeavy,
				DistanceMiles:   1234.56,
				IdleHours:       10.04,
				FuelGallons:     99.95,
				Cost: model.CostBreakdown{
					Fixed: 333.333, Fuel: 400, Maintenance: 100.006, Waste: 20.08, Total: 853.418,
				},
			},
		},
	}

	lines := strings.Split(string(CSV(snap)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"Vehicle,Year/Make/Model,Class,Miles,Idle Hours,Fuel (gal),Fixed $,Fuel $,Maint $,Idle Waste $,Total TCO $",
		lines[0])
	assert.Equal(t,
		"Truck 7,2021 Ford F-150,Heavy,1235,10.0,100.0,333.33,400.00,100.01,20.08,853.42",
		lines[1])
}

func TestCSVQuotesOnlyCommaFields(t *testing.T) {
	snap := &service.Snapshot{
		Vehicles: []model.VehicleSummary{
			{Name: "Box Truck, East", DescriptiveInfo: "2019 Isuzu NPR", Tier: model.TierMedium},
			{Name: "Van 3", DescriptiveInfo: "2020 Ram, ProMaster", Tier: model.TierLight},
		},
	}

	lines := strings.Split(string(CSV(snap)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], `"Box Truck, East",2019 Isuzu NPR,Medium,`))
	assert.True(t, strings.HasPrefix(lines[2], `Van 3,"2020 Ram, ProMaster",Light,`))
}
