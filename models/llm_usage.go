package models

import (
	"time"

	"github.com/google/uuid"
)

// LLMUsage represents a single LLM API call's token usage
type LLMUsage struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           string    `json:"user_id" db:"user_id"`
	SessionID        string    `json:"session_id,omitempty" db:"session_id"`
	RunID            string    `json:"run_id,omitempty" db:"run_id"`
	Provider         string    `json:"provider" db:"provider"`
	Model            string    `json:"model" db:"model"`
	OperationType    string    `json:"operation_type" db:"operation_type"` // 'axis_resolution', 'category_ordering'
	PromptTokens     int       `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens" db:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens" db:"total_tokens"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// UserUsageSummary provides aggregated usage statistics for a user
type UserUsageSummary struct {
	UserID                string             `json:"user_id" db:"-"`
	PeriodStart           time.Time          `json:"period_start" db:"-"`
	PeriodEnd             time.Time          `json:"period_end" db:"-"`
	TotalTokens           int                `json:"total_tokens" db:"total_tokens"`
	TotalPromptTokens     int                `json:"total_prompt_tokens" db:"total_prompt_tokens"`
	TotalCompletionTokens int                `json:"total_completion_tokens" db:"total_completion_tokens"`
	RequestCount          int                `json:"request_count" db:"request_count"`
	ByOperation           map[string]OpUsage `json:"by_operation" db:"-"`
}

// OpUsage represents usage aggregated by operation type
type OpUsage struct {
	OperationType string `json:"operation_type" db:"operation_type"`
	TotalTokens   int    `json:"total_tokens" db:"total_tokens"`
	RequestCount  int    `json:"request_count" db:"request_count"`
}

// Operation types for categorization
const (
	OpAxisResolution   = "axis_resolution"
	OpCategoryOrdering = "category_ordering"
)
