package core

import (
	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// Domain-specific ID types
type (
	ChartID ID
	RunID   ID
)

func (id ChartID) String() string { return ID(id).String() }
func (id RunID) String() string   { return ID(id).String() }

// NewChartID returns a fresh chart identifier
func NewChartID() ChartID { return ChartID(NewID()) }

// NewRunID returns a fresh pipeline run identifier
func NewRunID() RunID { return RunID(NewID()) }

