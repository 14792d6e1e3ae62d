package core

import (
	"context"
	"errors"
	"testing"
)

func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 5000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id == "" {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestPromptHashStable(t *testing.T) {
	a := ComputePromptHash("system", "user")
	b := ComputePromptHash("system", "user")
	c := ComputePromptHash("systemuser")
	if a != b {
		t.Errorf("expected identical hashes, got %s and %s", a, b)
	}
	if a == c {
		t.Error("expected message boundaries to change the hash")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	err := NewAxisNotFoundError("xAxis")
	if !errors.Is(err, ErrAxisNotFound) || !IsChartError(err) {
		t.Errorf("axis not found error should be a chart error: %v", err)
	}
	if IsModelOutputError(err) {
		t.Error("axis not found error is not a model output error")
	}
	if !IsModelOutputError(NewMalformedOutputError("keys", "missing xAxis_title")) {
		t.Error("expected malformed output error")
	}
	resolution := NewAxisResolutionError("bar_chart", 3, NewMalformedOutputError("parse", "not json"))
	if !errors.Is(resolution, ErrAxisResolution) || !IsModelOutputError(resolution) {
		t.Errorf("resolution error should keep its cause in the chain: %v", resolution)
	}
	if !errors.Is(NewAxisResolutionError("bar_chart", 1, context.DeadlineExceeded), context.DeadlineExceeded) {
		t.Error("resolution error should expose a context deadline")
	}
	if !IsSkippableResult(ErrAllZeroAxis) {
		t.Error("all-zero result should be skippable")
	}
}
