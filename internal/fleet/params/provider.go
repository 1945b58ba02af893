// Package params holds the editable cost model parameters. The provider is
// the single writer; readers always see a consistent parameter set and pick
// up edits on their next snapshot without re-fetching telemetry.
package params

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core/model"
	"github.com/fleetrics-io/fleetrics/pkg/log"
)

// Provider serves the current cost parameters. It starts from the built-in
// defaults and can be overlaid from a YAML file, edited via Set, or kept in
// sync with the file through Watch.
type Provider struct {
	logger log.Logger

	mu      sync.RWMutex
	current model.CostParameters
}

func NewProvider(logger log.Logger) *Provider {
	logger = log.OrStd(logger)
	return &Provider{
		logger:  logger.WithName("params"),
		current: model.DefaultCostParameters(),
	}
}

// Current returns the active parameter set by value, so callers can never
// mutate shared state.
func (p *Provider) Current() model.CostParameters {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Set replaces the active parameter set. Invalid values are rejected whole,
// leaving the previous set in place.
func (p *Provider) Set(next model.CostParameters) error {
	if err := validate(next); err != nil {
		return err
	}
	p.mu.Lock()
	p.current = next
	p.mu.Unlock()
	return nil
}

// SetTier replaces the parameters of one tier only.
func (p *Provider) SetTier(tier model.Tier, tp model.TierParameters) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.current
	switch tier {
	case model.TierLight:
		next.Light = tp
	case model.TierMedium:
		next.Medium = tp
	case model.TierHeavy:
		next.Heavy = tp
	default:
		return fmt.Errorf("params: unknown tier %q", tier)
	}
	if err := validate(next); err != nil {
		return err
	}
	p.current = next
	return nil
}

// Load overlays the defaults with a YAML parameters file.
func (p *Provider) Load(path string) error {
	next, err := readFile(path)
	if err != nil {
		return err
	}
	if err := p.Set(next); err != nil {
		return fmt.Errorf("params: %s: %w", path, err)
	}
	p.logger.Info("cost parameters loaded", "file", path)
	return nil
}

// Watch reloads the parameters file whenever it changes on disk, until the
// context is cancelled. A file that fails to parse is logged and skipped;
// the previous parameters stay active.
func (p *Provider) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("params: creating watcher: %w", err)
	}

	// Watch the directory rather than the file so editors that replace the
	// file on save keep triggering events.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("params: watching %s: %w", path, err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(path)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := p.Load(path); err != nil {
					p.logger.Warn("cost parameters reload skipped", "file", path, "err", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				p.logger.Warn("params watcher error", "err", err)
			}
		}
	}()
	return nil
}

func readFile(path string) (model.CostParameters, error) {
	v := viper.New()
	v.SetConfigFile(path)

	out := model.DefaultCostParameters()
	if err := v.ReadInConfig(); err != nil {
		return out, fmt.Errorf("params: reading %s: %w", path, err)
	}
	if err := v.Unmarshal(&out); err != nil {
		return out, fmt.Errorf("params: parsing %s: %w", path, err)
	}
	return out, nil
}

func validate(p model.CostParameters) error {
	for _, tier := range []struct {
		name string
		tp   model.TierParameters
	}{
		{"light", p.Light},
		{"medium", p.Medium},
		{"heavy", p.Heavy},
	} {
		if tier.tp.UsefulLifeYears <= 0 {
			return fmt.Errorf("%s: useful-life-years must be positive", tier.name)
		}
		if tier.tp.PurchasePrice < 0 || tier.tp.ResidualValue < 0 {
			return fmt.Errorf("%s: prices must not be negative", tier.name)
		}
		if tier.tp.FuelPricePerGallon < 0 || tier.tp.MaintenanceRatePerMile < 0 || tier.tp.IdleCostPerHour < 0 {
			return fmt.Errorf("%s: rates must not be negative", tier.name)
		}
	}
	return nil
}
