package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core/model"
)

// SortField names a sortable column of the fleet view.
type SortField string

const (
	SortByName        SortField = "name"
	SortByInfo        SortField = "info"
	SortByTier        SortField = "tier"
	SortByMiles       SortField = "miles"
	SortByIdleHours   SortField = "idleHours"
	SortByFuelGallons SortField = "fuelGallons"
	SortByTotalCost   SortField = "tco"
)

// ParseSortField validates user-supplied sort input.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(s); f {
	case SortByName, SortByInfo, SortByTier, SortByMiles, SortByIdleHours, SortByFuelGallons, SortByTotalCost:
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

// SortBy selects the active ranking. Selecting the field that is already
// active reverses the direction; a new field starts ascending. The derived
// total-cost key is not cached anywhere: it is recomputed from the current
// tier parameters whenever a snapshot is taken, so editing a cost parameter
// changes future rankings without an explicit re-sort.
func (s *Session) SortBy(field SortField) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sortField == field {
		s.sortAsc = !s.sortAsc
		return
	}
	s.sortField = field
	s.sortAsc = true
}

// rank orders vehicles in place. The sort is stable for equal keys. String
// fields compare case-insensitively; numeric fields numerically. Cost
// breakdowns are expected to be already derived on the slice elements.
func rank(vehicles []model.VehicleSummary, field SortField, asc bool) {
	less := func(a, b *model.VehicleSummary) bool {
		switch field {
		case SortByMiles:
			return a.DistanceMiles < b.DistanceMiles
		case SortByIdleHours:
			return a.IdleHours < b.IdleHours
		case SortByFuelGallons:
			return a.FuelGallons < b.FuelGallons
		case SortByTotalCost:
			return a.Cost.Total < b.Cost.Total
		case SortByInfo:
			return strings.ToLower(a.DescriptiveInfo) < strings.ToLower(b.DescriptiveInfo)
		case SortByTier:
			return strings.ToLower(string(a.Tier)) < strings.ToLower(string(b.Tier))
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}

	sort.SliceStable(vehicles, func(i, j int) bool {
		if asc {
			return less(&vehicles[i], &vehicles[j])
		}
		// Swapped arguments keep the ordering strict for equal keys, so the
		// stable sort still preserves input order among ties.
		return less(&vehicles[j], &vehicles[i])
	})
}
