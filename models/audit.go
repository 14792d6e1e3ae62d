package models

import "time"

// ChartAuditRecord is the sanitized chart sent to the logging service
type ChartAuditRecord struct {
	RunID       string         `json:"run_id"`
	ChartType   string         `json:"chart_type"`
	Question    string         `json:"question"`
	DatabaseTag string         `json:"database_tag,omitempty"`
	Chart       map[string]any `json:"chart"`
	CreatedAt   time.Time      `json:"created_at"`
}

// LLMCallRecord traces one completion call
type LLMCallRecord struct {
	ChartID      string    `json:"chart_id"`
	ModuleID     string    `json:"module_id,omitempty"`
	Module       string    `json:"module"`
	Model        string    `json:"model"`
	PromptHash   string    `json:"prompt_hash"`
	Prompt       string    `json:"prompt"`
	Response     string    `json:"response"`
	Attempt      int       `json:"attempt"`
	LatencyMs    int64     `json:"latency_ms"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
