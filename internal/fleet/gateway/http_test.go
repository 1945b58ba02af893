package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core"
	"github.com/fleetrics-io/fleetrics/pkg/log"
	"github.com/fleetrics-io/fleetrics/pkg/options"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *HTTPGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(&options.TelemetryOptions{
		Endpoint:  srv.URL,
		Database:  "acme",
		Username:  "ops@acme.test",
		SessionID: "sess-1",
		Timeout:   5 * time.Second,
	}, log.NewNopLogger())
}

func decodeRequest(t *testing.T, r *http.Request) rpcRequest {
	t.Helper()
	var req rpcRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

func writeResult(t *testing.T, w http.ResponseWriter, result any) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"result": result}))
}

func TestCallInjectsCredentials(t *testing.T) {
	var seen rpcRequest
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		seen = decodeRequest(t, r)
		writeResult(t, w, map[string]any{"ok": true})
	})

	var out map[string]bool
	err := g.Call(context.Background(), "Get", map[string]any{"typeName": "Device"}, &out)
	require.NoError(t, err)
	assert.True(t, out["ok"])

	assert.Equal(t, "Get", seen.Method)
	params, ok := seen.Params.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Device", params["typeName"])
	creds, ok := params["credentials"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "acme", creds["database"])
	assert.Equal(t, "sess-1", creds["sessionId"])
}

func TestCallRemoteError(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"name": "InvalidUserException", "message": "session expired"},
		})
	})

	err := g.Call(context.Background(), "Get", nil, nil)
	require.Error(t, err)
	assert.True(t, core.IsTransport(err))
	assert.Contains(t, err.Error(), "InvalidUserException")
}

func TestBatchFetchAligned(t *testing.T) {
	var seen rpcRequest
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		seen = decodeRequest(t, r)
		writeResult(t, w, []any{
			[]map[string]any{{"id": "v1"}},
			[]map[string]any{{"distance": 12.5}},
		})
	})

	results, err := g.BatchFetch(context.Background(), []core.BatchRequest{
		{Op: "Get", Params: map[string]any{"typeName": "Device"}},
		{Op: "Get", Params: map[string]any{"typeName": "Trip"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	var devices []map[string]string
	require.NoError(t, json.Unmarshal(results[0], &devices))
	assert.Equal(t, "v1", devices[0]["id"])

	assert.Equal(t, opMultiCall, seen.Method)
	params := seen.Params.(map[string]any)
	calls := params["calls"].([]any)
	assert.Len(t, calls, 2)
	// Credentials belong to the envelope, not the inner calls.
	inner := calls[0].(map[string]any)
	_, hasCreds := inner["params"].(map[string]any)["credentials"]
	assert.False(t, hasCreds)
}

func TestBatchFetchCountMismatch(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		writeResult(t, w, []any{[]any{}})
	})

	_, err := g.BatchFetch(context.Background(), []core.BatchRequest{
		{Op: "Get"}, {Op: "Get"},
	})
	require.Error(t, err)
	assert.True(t, core.IsTransport(err))
	assert.Contains(t, err.Error(), "1 results for 2 calls")
}

func TestBatchFetchWholeBatchFails(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "one inner call failed"},
		})
	})

	results, err := g.BatchFetch(context.Background(), []core.BatchRequest{
		{Op: "Get"}, {Op: "Get"}, {Op: "Get"},
	})
	require.Error(t, err)
	assert.Nil(t, results, "no partial results on batch failure")
}

func TestCallHTTPStatusError(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := g.Call(context.Background(), "Get", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}
