package models

import "time"

// HostStats is a point-in-time sample of the host running the API.
type HostStats struct {
	CPUPercent    float64   `json:"cpuPercent"`
	MemoryPercent float64   `json:"memoryPercent"`
	UptimeSeconds uint64    `json:"uptimeSeconds"`
	SampledAt     time.Time `json:"sampledAt"`
}

// Status is the payload of the status endpoint.
type Status struct {
	Posts int64      `json:"posts"`
	Users int64      `json:"users"`
	Host  *HostStats `json:"host,omitempty"`
}
