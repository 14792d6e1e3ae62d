package models

import "time"

// Run event types
const (
	EventChartBuilt   = "chart_built"
	EventChartSkipped = "chart_skipped"
	EventRunCompleted = "run_completed"
)

// RunEvent reports pipeline progress to listeners of a session
type RunEvent struct {
	SessionID string         `json:"session_id"`
	RunID     string         `json:"run_id"`
	EventType string         `json:"event_type"`
	Progress  float64        `json:"progress"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
