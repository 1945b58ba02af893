// Package gateway is the HTTP adapter for the remote telemetry API. Every
// operation is a JSON POST against a single endpoint; batches ride one
// ExecuteMultiCall request so the server answers all-or-nothing.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core"
	"github.com/fleetrics-io/fleetrics/pkg/log"
	"github.com/fleetrics-io/fleetrics/pkg/options"
)

const opMultiCall = "ExecuteMultiCall"

// credentials scope every call to one database session.
type credentials struct {
	Database  string `json:"database"`
	UserName  string `json:"userName"`
	SessionID string `json:"sessionId"`
}

type rpcRequest struct {
	Method string `json:"method"`
	Params any    `json:"params"`
}

type rpcError struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

func (e *rpcError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s", e.Name, e.Message)
	}
	return e.Message
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// HTTPGateway implements core.Gateway over the telemetry HTTP endpoint.
type HTTPGateway struct {
	endpoint string
	creds    credentials
	client   *http.Client
	logger   log.Logger
}

var _ core.Gateway = (*HTTPGateway)(nil)

func New(opts *options.TelemetryOptions, logger log.Logger) *HTTPGateway {
	logger = log.OrStd(logger)
	return &HTTPGateway{
		endpoint: opts.Endpoint,
		creds: credentials{
			Database:  opts.Database,
			UserName:  opts.Username,
			SessionID: opts.SessionID,
		},
		client: &http.Client{Timeout: opts.Timeout},
		logger: logger.WithName("gateway"),
	}
}

// Call executes one remote operation and unmarshals its result.
func (g *HTTPGateway) Call(ctx context.Context, op string, params any, result any) error {
	raw, err := g.post(ctx, op, g.withCredentials(params))
	if err != nil {
		return core.NewTransportError(op, err)
	}
	if result == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return core.NewTransportError(op, fmt.Errorf("decoding result: %w", err))
	}
	return nil
}

// BatchFetch sends the requests as one multi-call. The server evaluates the
// batch atomically, so a failure of any inner call surfaces as one error and
// no partial results are returned.
func (g *HTTPGateway) BatchFetch(ctx context.Context, requests []core.BatchRequest) ([]json.RawMessage, error) {
	calls := make([]rpcRequest, 0, len(requests))
	for _, req := range requests {
		calls = append(calls, rpcRequest{Method: req.Op, Params: req.Params})
	}

	started := time.Now()
	raw, err := g.post(ctx, opMultiCall, g.withCredentials(map[string]any{"calls": calls}))
	if err != nil {
		return nil, core.NewTransportError(opMultiCall, err)
	}

	var results []json.RawMessage
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, core.NewTransportError(opMultiCall, fmt.Errorf("decoding results: %w", err))
	}
	if len(results) != len(requests) {
		return nil, core.NewTransportError(opMultiCall,
			fmt.Errorf("got %d results for %d calls", len(results), len(requests)))
	}

	g.logger.Debug("batch fetch complete", "calls", len(requests), "elapsed", time.Since(started))
	return results, nil
}

// withCredentials injects the session credentials into the parameter object.
// Params of batch inner calls stay untouched; only the outer envelope is
// authenticated.
func (g *HTTPGateway) withCredentials(params any) map[string]any {
	merged := map[string]any{}
	if params != nil {
		// Round-trip through JSON so typed parameter structs and plain maps
		// are handled uniformly.
		raw, err := json.Marshal(params)
		if err == nil {
			_ = json.Unmarshal(raw, &merged)
		}
	}
	merged["credentials"] = g.creds
	return merged
}

func (g *HTTPGateway) post(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var rpc rpcResponse
	if err := json.Unmarshal(payload, &rpc); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if rpc.Error != nil {
		return nil, rpc.Error
	}
	return rpc.Result, nil
}
