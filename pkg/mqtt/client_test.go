package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicsMatch(t *testing.T) {
	tests := []struct {
		filter string
		topic  string
		want   bool
	}{
		{"fleetrics/v1/cycle", "fleetrics/v1/cycle", true},
		{"fleetrics/v1/cycle", "fleetrics/v1/other", false},
		{"fleetrics/+/cycle", "fleetrics/v1/cycle", true},
		{"fleetrics/+/cycle", "fleetrics/v1/deep/cycle", false},
		{"fleetrics/#", "fleetrics/v1/cycle", true},
		{"fleetrics/#", "other/v1/cycle", false},
		{"+/+/cycle", "fleetrics/v1/cycle", true},
		{"fleetrics/v1/+", "fleetrics/v1", false},
		{"fleetrics/v1", "fleetrics/v1/cycle", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, topicsMatch(tt.filter, tt.topic), "filter=%q topic=%q", tt.filter, tt.topic)
	}
}

func TestClientConfigValidate(t *testing.T) {
	assert.Error(t, (&ClientConfig{}).Validate(), "broker URL is required")

	cfg := &ClientConfig{BrokerURL: "tcp://localhost:1883"}
	assert.NoError(t, cfg.Validate())
}
