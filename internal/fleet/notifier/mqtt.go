// Package notifier publishes aggregation cycle outcomes over MQTT so
// dashboards and downstream jobs can react without polling the hub.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core"
	"github.com/fleetrics-io/fleetrics/internal/fleet/core/model"
	"github.com/fleetrics-io/fleetrics/pkg/log"
	"github.com/fleetrics-io/fleetrics/pkg/mqtt"
)

// MQTTNotifier implements core.CycleNotifier on top of the shared MQTT
// client. Each cycle is published as one retained QoS 1 message so late
// subscribers immediately see the latest totals.
type MQTTNotifier struct {
	client    mqtt.Client
	topicRoot string
	logger    log.Logger
	now       func() time.Time
}

var _ core.CycleNotifier = (*MQTTNotifier)(nil)

func NewMQTTNotifier(client mqtt.Client, topicRoot string, logger log.Logger) *MQTTNotifier {
	logger = log.OrStd(logger)
	return &MQTTNotifier{
		client:    client,
		topicRoot: topicRoot,
		logger:    logger.WithName("notifier"),
		now:       time.Now,
	}
}

// cycleEvent is the published payload.
type cycleEvent struct {
	At     time.Time         `json:"at"`
	Totals model.FleetTotals `json:"totals"`
}

func (n *MQTTNotifier) NotifyCycle(ctx context.Context, totals *model.FleetTotals) error {
	payload, err := json.Marshal(cycleEvent{At: n.now().UTC(), Totals: *totals})
	if err != nil {
		return fmt.Errorf("notifier: encoding cycle event: %w", err)
	}

	topic := n.topicRoot + "/cycle"
	if err := n.client.Publish(ctx, topic, 1, true, payload); err != nil {
		return fmt.Errorf("notifier: publishing to %s: %w", topic, err)
	}
	n.logger.Debug("cycle published", "topic", topic, "vehicles", totals.Vehicles)
	return nil
}
