package core

import (
	"context"
	"encoding/json"
)

// BatchRequest is one read operation inside an atomic batch.
type BatchRequest struct {
	// Op is the remote operation name.
	Op string

	// Params is the JSON-serializable parameter object for the operation.
	Params any
}

// Gateway is the remote telemetry API port. In Fleetrics it is implemented
// by the HTTP adapter; tests substitute fakes.
type Gateway interface {
	// BatchFetch executes the ordered requests as one atomic batch. On
	// success the returned slice is aligned by position with the requests.
	// There is no partial-success mode: any failure fails the whole batch.
	BatchFetch(ctx context.Context, requests []BatchRequest) ([]json.RawMessage, error)

	// Call executes one remote operation. When result is non-nil the raw
	// response is unmarshalled into it.
	Call(ctx context.Context, op string, params any, result any) error
}
