// Package service implements the aggregation engine: an explicit session
// object that owns the vehicle registry, the classification map and the
// gateway handle. Nothing in here lives at package scope.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core"
	"github.com/fleetrics-io/fleetrics/internal/fleet/core/cost"
	"github.com/fleetrics-io/fleetrics/internal/fleet/core/model"
	"github.com/fleetrics-io/fleetrics/internal/pkg/metrics"
	"github.com/fleetrics-io/fleetrics/pkg/log"
)

// ParamsProvider hands out the current cost model parameters. The provider
// may change its answer between calls (live-edited tier parameters).
type ParamsProvider interface {
	Current() model.CostParameters
}

// Config carries the remote entity wiring for an aggregation session.
type Config struct {
	// StoreID keys the persisted classification blob.
	StoreID string

	// FuelDiagnosticID selects the cumulative fuel counter channel.
	FuelDiagnosticID string

	// ResultsLimit caps bulk reads per fetch.
	ResultsLimit int

	// Window is the initial reporting window.
	Window Window
}

// Session is one aggregation session over a fleet. All mutating operations
// are safe for concurrent use; remote fetches happen outside the lock.
type Session struct {
	gateway  core.Gateway
	params   ParamsProvider
	notifier core.CycleNotifier // optional
	cfg      Config
	logger   log.Logger
	now      func() time.Time

	// token tags each refresh; a batch result is applied only when its
	// token is still the latest issued one, so a slow superseded fetch can
	// never overwrite fresher data.
	token atomic.Uint64

	mu        sync.Mutex
	registry  map[string]*model.VehicleSummary
	classMap  model.ClassificationMap
	sortField SortField
	sortAsc   bool
	window    Window
	lastCycle time.Time
}

// NewSession creates an aggregation session. notifier may be nil.
func NewSession(gateway core.Gateway, params ParamsProvider, notifier core.CycleNotifier, cfg Config, logger log.Logger) *Session {
	logger = log.OrNop(logger)
	if cfg.Window == "" {
		cfg.Window = DefaultWindow
	}
	if cfg.ResultsLimit <= 0 {
		cfg.ResultsLimit = 50000
	}

	return &Session{
		gateway:   gateway,
		params:    params,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger.WithName("session"),
		now:       time.Now,
		registry:  make(map[string]*model.VehicleSummary),
		classMap:  make(model.ClassificationMap),
		sortField: SortByName,
		sortAsc:   true,
		window:    cfg.Window,
	}
}

type getParams struct {
	TypeName     string `json:"typeName"`
	Search       any    `json:"search,omitempty"`
	ResultsLimit int    `json:"resultsLimit,omitempty"`
}

type dateSearch struct {
	FromDate string `json:"fromDate"`
}

type diagnosticDateSearch struct {
	DiagnosticSearch entityID `json:"diagnosticSearch"`
	FromDate         string   `json:"fromDate"`
}

type storeSearch struct {
	AddInID string `json:"addInId"`
}

type entityID struct {
	ID string `json:"id"`
}

// Refresh runs one aggregation cycle over the given window. An empty window
// keeps the session's current one. On transport failure the previous
// registry stays visible and the error is returned. A result that arrives
// after a newer refresh has been issued is discarded silently.
func (s *Session) Refresh(ctx context.Context, w Window) error {
	s.mu.Lock()
	if w == "" {
		w = s.window
	}
	s.mu.Unlock()

	token := s.token.Add(1)
	fromDate := w.FromDate(s.now()).UTC().Format(time.RFC3339)

	requests := []core.BatchRequest{
		{Op: "Get", Params: getParams{TypeName: "Device"}},
		{Op: "Get", Params: getParams{
			TypeName:     "Trip",
			Search:       dateSearch{FromDate: fromDate},
			ResultsLimit: s.cfg.ResultsLimit,
		}},
		{Op: "Get", Params: getParams{
			TypeName: "StatusData",
			Search: diagnosticDateSearch{
				DiagnosticSearch: entityID{ID: s.cfg.FuelDiagnosticID},
				FromDate:         fromDate,
			},
			ResultsLimit: s.cfg.ResultsLimit,
		}},
		{Op: "Get", Params: getParams{
			TypeName: "AddInData",
			Search:   storeSearch{AddInID: s.cfg.StoreID},
		}},
	}

	start := s.now()
	results, err := s.gateway.BatchFetch(ctx, requests)
	metrics.BatchFetchDuration.Observe(s.now().Sub(start).Seconds())
	if err != nil {
		metrics.CycleTotal.WithLabelValues("error").Inc()
		s.logger.Error(err, "Aggregation fetch failed; keeping previous registry", "window", string(w))
		if core.IsTransport(err) {
			return err
		}
		return core.NewTransportError("multicall", err)
	}
	if len(results) != len(requests) {
		metrics.CycleTotal.WithLabelValues("error").Inc()
		return core.NewTransportError("multicall",
			fmt.Errorf("batch returned %d results for %d requests", len(results), len(requests)))
	}

	var (
		devices []deviceRecord
		trips   []tripRecord
		samples []statusRecord
		stored  []storedBlob
	)
	if err := json.Unmarshal(results[0], &devices); err != nil {
		return core.NewTransportError("Get/Device", err)
	}
	if err := json.Unmarshal(results[1], &trips); err != nil {
		return core.NewTransportError("Get/Trip", err)
	}
	if err := json.Unmarshal(results[2], &samples); err != nil {
		return core.NewTransportError("Get/StatusData", err)
	}
	if err := json.Unmarshal(results[3], &stored); err != nil {
		return core.NewTransportError("Get/AddInData", err)
	}

	s.mu.Lock()
	if token != s.token.Load() {
		s.mu.Unlock()
		metrics.CycleTotal.WithLabelValues("stale").Inc()
		s.logger.Info("Discarding superseded aggregation result", "token", token)
		return nil
	}

	// Restore the persisted classification before the registry is rebuilt,
	// so tiers are assigned from durable state.
	if len(stored) > 0 {
		s.classMap = parseStoredMap(stored[0])
	}

	s.registry = buildRegistry(devices, s.classMap)
	foldTrips(trips, s.registry)
	foldFuel(samples, s.registry)
	s.window = w
	s.lastCycle = s.now()
	s.mu.Unlock()

	metrics.CycleTotal.WithLabelValues("applied").Inc()
	s.logger.Info("Aggregation cycle applied",
		"window", string(w),
		"devices", len(devices),
		"trips", len(trips),
		"samples", len(samples))

	if s.notifier != nil {
		snap := s.Snapshot()
		if err := s.notifier.NotifyCycle(ctx, &snap.Totals); err != nil {
			s.logger.Warn("Cycle notification failed", "error", err.Error())
		}
	}

	return nil
}

// parseStoredMap converts the persisted blob into a ClassificationMap,
// keeping only recognizable tier codes.
func parseStoredMap(blob storedBlob) model.ClassificationMap {
	out := make(model.ClassificationMap, len(blob.Details.Map))
	for id, raw := range blob.Details.Map {
		if t := model.Tier(raw); t.Valid() {
			out[id] = t
		}
	}
	return out
}

// Snapshot returns the ranked view of the current registry. Cost breakdowns
// and totals are derived fresh against the current tier parameters, so a
// parameter edit is visible in the very next snapshot without a re-fetch.
func (s *Session) Snapshot() *Snapshot {
	params := s.params.Current()

	s.mu.Lock()
	defer s.mu.Unlock()

	vehicles := make([]model.VehicleSummary, 0, len(s.registry))
	var totals model.FleetTotals
	for _, v := range s.registry {
		out := *v
		out.Cost = cost.Calc(&out, params.ForTier(out.Tier))
		totals.Accumulate(&out)
		vehicles = append(vehicles, out)
	}
	totals.Finalize()

	rank(vehicles, s.sortField, s.sortAsc)

	return &Snapshot{
		Window:        s.window,
		GeneratedAt:   s.lastCycle,
		SortField:     s.sortField,
		SortAscending: s.sortAsc,
		Vehicles:      vehicles,
		Totals:        totals,
	}
}

// Window returns the session's current reporting window.
func (s *Session) Window() Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

// Snapshot is one consistent, ranked view of the aggregated fleet.
type Snapshot struct {
	Window        Window                 `json:"window"`
	GeneratedAt   time.Time              `json:"generatedAt"`
	SortField     SortField              `json:"sortField"`
	SortAscending bool                   `json:"sortAscending"`
	Vehicles      []model.VehicleSummary `json:"vehicles"`
	Totals        model.FleetTotals      `json:"totals"`
}
