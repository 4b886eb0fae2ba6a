package api

import (
	"strings"
	"time"
)

// HealthStatus is the status string reported by /api/health.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResult mirrors the payload returned by /api/health.
type HealthCheckResult struct {
	Status    HealthStatus `json:"status"`
	Timestamp string       `json:"timestamp,omitempty"`
}

// Healthy reports whether the backend declared itself healthy. Unknown
// status strings are not healthy.
func (r HealthCheckResult) Healthy() bool {
	return r.Status == HealthHealthy
}

// ParsedTimestamp returns the timestamp as time.Time when possible.
func (r HealthCheckResult) ParsedTimestamp() time.Time {
	return parseTime(r.Timestamp)
}

// PrinterState enumerates device states.
type PrinterState string

const (
	PrinterIdle     PrinterState = "idle"
	PrinterPrinting PrinterState = "printing"
	PrinterError    PrinterState = "error"
	PrinterOffline  PrinterState = "offline"
)

// Temperature carries hotend and bed readings in degrees Celsius.
type Temperature struct {
	Hotend float64 `json:"hotend"`
	Bed    float64 `json:"bed"`
}

// PrinterStatus describes a single physical device.
type PrinterStatus struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Status      PrinterState `json:"status"`
	Temperature *Temperature `json:"temperature,omitempty"`
}

// Normalized returns a copy with the temperature dropped for offline
// devices, whose readings cannot be current.
func (p PrinterStatus) Normalized() PrinterStatus {
	out := p
	if p.Temperature != nil {
		temp := *p.Temperature
		out.Temperature = &temp
	}
	if PrinterState(strings.ToLower(strings.TrimSpace(string(p.Status)))) == PrinterOffline {
		out.Temperature = nil
	}
	return out
}

// SystemStatus mirrors /api/system/status.
type SystemStatus struct {
	Version     string `json:"version"`
	Uptime      int64  `json:"uptime"`
	Database    string `json:"database"`
	StaticFiles bool   `json:"static_files"`
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
