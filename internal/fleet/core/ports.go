package core

import (
	"context"
	"time"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core/model"
)

// CycleNotifier publishes the outcome of a completed aggregation cycle to
// downstream consumers. Implemented by the MQTT adapter.
type CycleNotifier interface {
	// NotifyCycle announces the totals of a freshly applied cycle.
	NotifyCycle(ctx context.Context, totals *model.FleetTotals) error
}

// ReportArchive stores generated CSV reports durably and hands out
// time-limited download links. Implemented by the MinIO adapter.
type ReportArchive interface {
	// EnsureBucket makes sure the backing bucket exists.
	EnsureBucket(ctx context.Context) error

	// StoreReport uploads a report under the given object key and returns a
	// presigned download URL valid for expiry.
	StoreReport(ctx context.Context, objectKey string, data []byte, expiry time.Duration) (string, error)
}
