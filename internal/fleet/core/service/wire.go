package service

import (
	"encoding/json"
	"strings"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core/model"
)

// Wire shapes for the four batched read operations. The telemetry API nests
// the owning vehicle under a "device" object on trips and counter samples.

type entityRef struct {
	ID string `json:"id"`
}

type deviceRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Year  any    `json:"year"`
	Make  string `json:"make"`
	Model string `json:"model"`
}

type tripRecord struct {
	Device         entityRef       `json:"device"`
	Distance       float64         `json:"distance"`
	IdlingDuration json.RawMessage `json:"idlingDuration"`
	Start          string          `json:"start"`
	Stop           string          `json:"stop"`
}

type statusRecord struct {
	Device   entityRef `json:"device"`
	Data     float64   `json:"data"`
	DateTime string    `json:"dateTime"`
}

type storedBlob struct {
	AddInID string `json:"addInId"`
	Details struct {
		Map map[string]string `json:"map"`
	} `json:"details"`
}

func (d deviceRecord) toModel() model.VehicleRecord {
	return model.VehicleRecord{
		ID:    d.ID,
		Name:  d.Name,
		Year:  anyToString(d.Year),
		Make:  d.Make,
		Model: d.Model,
	}
}

func (t tripRecord) toModel() model.TripRecord {
	return model.TripRecord{
		VehicleID:      t.Device.ID,
		DistanceKm:     t.Distance,
		IdlingDuration: rawToDurationString(t.IdlingDuration),
	}
}

func (s statusRecord) toModel() model.CounterSample {
	return model.CounterSample{
		VehicleID: s.Device.ID,
		Value:     s.Data,
		Timestamp: s.DateTime,
	}
}

// descriptiveInfo builds the "year make model" free-text description.
func descriptiveInfo(v model.VehicleRecord) string {
	return strings.TrimSpace(strings.Join(compactStrings(v.Year, v.Make, v.Model), " "))
}

func compactStrings(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// anyToString renders a JSON scalar (the API serves year both as a string
// and as a number) into its textual form.
func anyToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return jsonNumber(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return strings.Trim(string(b), `"`)
	}
}

func jsonNumber(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}

// rawToDurationString normalizes the raw idling duration value: JSON strings
// are unquoted, JSON numbers kept as their textual form, anything else
// (null, objects) becomes empty and later parses to zero.
func rawToDurationString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strings.TrimSpace(string(raw))
	}
	return ""
}
