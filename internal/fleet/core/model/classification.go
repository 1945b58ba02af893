package model

// ClassificationMap is the persisted vehicle-to-tier mapping, the single
// piece of durable state owned by this system. It is loaded at aggregation
// start and persisted as one whole blob (full replace, never per-key).
type ClassificationMap map[string]Tier

// TierFor returns the assigned tier for a vehicle, defaulting to Light.
func (m ClassificationMap) TierFor(vehicleID string) Tier {
	if t, ok := m[vehicleID]; ok && t.Valid() {
		return t
	}
	return TierLight
}
