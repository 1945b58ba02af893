package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core/model"
	"github.com/fleetrics-io/fleetrics/pkg/log"
)

func TestProviderDefaults(t *testing.T) {
	p := NewProvider(log.NewNopLogger())
	got := p.Current()
	assert.Equal(t, model.DefaultCostParameters(), got)
}

func TestSetTierReplacesOneTierOnly(t *testing.T) {
	p := NewProvider(log.NewNopLogger())
	heavy := model.TierParameters{
		PurchasePrice:          90000,
		ResidualValue:          30000,
		UsefulLifeYears:        10,
		FuelPricePerGallon:     5,
		MaintenanceRatePerMile: 0.3,
		IdleCostPerHour:        4,
	}
	require.NoError(t, p.SetTier(model.TierHeavy, heavy))

	got := p.Current()
	assert.Equal(t, heavy, got.Heavy)
	assert.Equal(t, model.DefaultCostParameters().Light, got.Light)
}

func TestSetRejectsInvalidWholesale(t *testing.T) {
	p := NewProvider(log.NewNopLogger())
	before := p.Current()

	bad := before
	bad.Medium.UsefulLifeYears = 0
	require.Error(t, p.Set(bad))
	assert.Equal(t, before, p.Current(), "rejected set must not partially apply")
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
light:
  purchase-price: 30000
  residual-value: 10000
  useful-life-years: 5
  fuel-price-per-gallon: 4.50
  maintenance-rate-per-mile: 0.12
  idle-cost-per-hour: 2
`), 0o600))

	p := NewProvider(log.NewNopLogger())
	require.NoError(t, p.Load(file))

	got := p.Current()
	assert.Equal(t, 4.50, got.Light.FuelPricePerGallon)
	assert.Equal(t, 0.12, got.Light.MaintenanceRatePerMile)
	// Tiers missing from the file keep their defaults.
	assert.Equal(t, model.DefaultCostParameters().Heavy, got.Heavy)
}

func TestLoadBadFileKeepsCurrent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(file, []byte("light:\n  useful-life-years: 0\n"), 0o600))

	p := NewProvider(log.NewNopLogger())
	before := p.Current()
	require.Error(t, p.Load(file))
	assert.Equal(t, before, p.Current())
}
