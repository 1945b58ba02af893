package service

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	hoursToken   = regexp.MustCompile(`(\d+(?:\.\d+)?)H`)
	minutesToken = regexp.MustCompile(`(\d+(?:\.\d+)?)M`)
	secondsToken = regexp.MustCompile(`(\d+(?:\.\d+)?)S`)
)

// ParseDurationHours converts a raw idling duration into hours. Three
// encodings are accepted:
//
//	"01:30:00"  colon-delimited HH:MM:SS
//	"PT1H30M"   compact duration tokens, any subset of H/M/S present
//	"5400"      plain numeric seconds
//
// Absent or unparseable input yields 0; bad telemetry never becomes an error.
func ParseDurationHours(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	if strings.Contains(raw, ":") {
		parts := strings.Split(raw, ":")
		var h, m, s float64
		if len(parts) > 0 {
			h, _ = strconv.ParseFloat(parts[0], 64)
		}
		if len(parts) > 1 {
			m, _ = strconv.ParseFloat(parts[1], 64)
		}
		if len(parts) > 2 {
			s, _ = strconv.ParseFloat(parts[2], 64)
		}
		return h + m/60 + s/3600
	}

	if strings.HasPrefix(raw, "PT") || strings.HasPrefix(raw, "P") {
		var h, m, s float64
		if match := hoursToken.FindStringSubmatch(raw); match != nil {
			h, _ = strconv.ParseFloat(match[1], 64)
		}
		if match := minutesToken.FindStringSubmatch(raw); match != nil {
			m, _ = strconv.ParseFloat(match[1], 64)
		}
		if match := secondsToken.FindStringSubmatch(raw); match != nil {
			s, _ = strconv.ParseFloat(match[1], 64)
		}
		return h + m/60 + s/3600
	}

	// Plain number of seconds.
	if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
		return seconds / 3600
	}

	return 0
}
