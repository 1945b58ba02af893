package service

import (
	"context"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core"
	"github.com/fleetrics-io/fleetrics/internal/fleet/core/model"
	"github.com/fleetrics-io/fleetrics/internal/pkg/metrics"
)

type addInUpsert struct {
	TypeName string      `json:"typeName"`
	Entity   addInEntity `json:"entity"`
}

type addInEntity struct {
	AddInID string       `json:"addInId"`
	Details addInDetails `json:"details"`
}

type addInDetails struct {
	Map map[string]string `json:"map"`
}

// SetTier classifies one vehicle and persists the whole map.
func (s *Session) SetTier(ctx context.Context, vehicleID string, tier model.Tier) error {
	s.mu.Lock()
	s.classMap[vehicleID] = tier
	if v, ok := s.registry[vehicleID]; ok {
		v.Tier = tier
	}
	s.mu.Unlock()

	return s.persist(ctx)
}

// SetTiers classifies several vehicles at once and persists the whole map.
// An empty id list means every vehicle currently in the registry.
func (s *Session) SetTiers(ctx context.Context, vehicleIDs []string, tier model.Tier) error {
	s.mu.Lock()
	if len(vehicleIDs) == 0 {
		vehicleIDs = make([]string, 0, len(s.registry))
		for id := range s.registry {
			vehicleIDs = append(vehicleIDs, id)
		}
	}
	for _, id := range vehicleIDs {
		s.classMap[id] = tier
		if v, ok := s.registry[id]; ok {
			v.Tier = tier
		}
	}
	s.mu.Unlock()

	return s.persist(ctx)
}

// persist uploads the classification map as one replace-style write, then
// triggers a full aggregation re-run so the displayed state reconverges with
// durable state. On failure the error is surfaced but the in-memory map is
// deliberately NOT rolled back: the optimistic local value stays visible
// until the next successful reload.
func (s *Session) persist(ctx context.Context) error {
	s.mu.Lock()
	blob := make(map[string]string, len(s.classMap))
	for id, tier := range s.classMap {
		blob[id] = string(tier)
	}
	s.mu.Unlock()

	entity := addInUpsert{
		TypeName: "AddInData",
		Entity: addInEntity{
			AddInID: s.cfg.StoreID,
			Details: addInDetails{Map: blob},
		},
	}

	if err := s.gateway.Call(ctx, "Add", entity, nil); err != nil {
		metrics.ClassificationPersistTotal.WithLabelValues("error").Inc()
		s.logger.Error(err, "Classification persist failed; keeping optimistic local map")
		if core.IsTransport(err) {
			return err
		}
		return core.NewTransportError("Add/AddInData", err)
	}

	metrics.ClassificationPersistTotal.WithLabelValues("ok").Inc()
	return s.Refresh(ctx, "")
}
