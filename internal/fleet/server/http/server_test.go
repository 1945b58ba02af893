package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetrics-io/fleetrics/internal/fleet/assistant"
	"github.com/fleetrics-io/fleetrics/internal/fleet/core"
	"github.com/fleetrics-io/fleetrics/internal/fleet/core/service"
	"github.com/fleetrics-io/fleetrics/internal/fleet/params"
	"github.com/fleetrics-io/fleetrics/pkg/log"
	"github.com/fleetrics-io/fleetrics/pkg/options"
)

// stubGateway serves a fixed two-vehicle fleet for the read path and accepts
// classification writes.
type stubGateway struct{}

func (stubGateway) BatchFetch(_ context.Context, requests []core.BatchRequest) ([]json.RawMessage, error) {
	payloads := []any{
		[]map[string]any{
			{"id": "v1", "name": "Truck 1", "year": 2021, "make": "Ford", "model": "F-150"},
			{"id": "v2", "name": "Van 2", "year": 2020, "make": "Ram", "model": "ProMaster"},
		},
		[]map[string]any{
			{"device": map[string]any{"id": "v1"}, "distance": 160.9344, "idlingDuration": "01:00:00"},
		},
		[]map[string]any{},
		[]map[string]any{},
	}
	out := make([]json.RawMessage, len(requests))
	for i := range requests {
		raw, err := json.Marshal(payloads[i])
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return out, nil
}

func (stubGateway) Call(context.Context, string, any, any) error { return nil }

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	provider := params.NewProvider(log.NewNopLogger())
	session := service.NewSession(stubGateway{}, provider, nil, service.Config{
		StoreID: "fleet_tco_calculator",
	}, log.NewNopLogger())
	require.NoError(t, session.Refresh(context.Background(), ""))

	srv := NewServer(options.NewHttpOptions(), Config{
		Session:   session,
		Assistant: assistant.NewClient(stubGateway{}, assistant.Config{}, log.NewNopLogger()),
		Params:    provider,
		Ready:     func() bool { return true },
	}, log.NewNopLogger())
	return srv.Handler()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetFleet(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/fleet", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap service.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Len(t, snap.Vehicles, 2)
	assert.Equal(t, service.Window("30"), snap.Window)
	assert.Equal(t, 2, snap.Totals.Vehicles)
}

func TestSortFleet(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/fleet/sort", `{"field":"miles"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap service.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, service.SortByMiles, snap.SortField)
	assert.True(t, snap.SortAscending)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/fleet/sort", `{"field":"horsepower"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetVehicleTier(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPut, "/api/v1/vehicles/v1/tier", `{"tier":"H"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tier":"H"`)

	rec = doRequest(t, h, http.MethodPut, "/api/v1/vehicles/v1/tier", `{"tier":"XL"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkTier(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPut, "/api/v1/fleet/tier", `{"tier":"Medium"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap service.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	for _, v := range snap.Vehicles {
		assert.Equal(t, "M", string(v.Tier))
	}
}

func TestGetReport(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/fleet/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "fleet_tco_report.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Vehicle,Year/Make/Model,Class,"))
}

func TestArchiveReportNotConfigured(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/fleet/report/archive", "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestAskValidation(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/assistant/ask", `{"prompt":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParamsRoundTrip(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPut, "/api/v1/params/H", `{
		"purchase-price": 90000,
		"residual-value": 30000,
		"useful-life-years": 10,
		"fuel-price-per-gallon": 5,
		"maintenance-rate-per-mile": 0.3,
		"idle-cost-per-hour": 4
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/params", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"purchase-price":90000`)

	rec = doRequest(t, h, http.MethodPut, "/api/v1/params/H", `{"useful-life-years":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProbes(t *testing.T) {
	h := newTestHandler(t)

	assert.Equal(t, http.StatusOK, doRequest(t, h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(t, h, http.MethodGet, "/readyz", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(t, h, http.MethodGet, "/metrics", "").Code)
}
