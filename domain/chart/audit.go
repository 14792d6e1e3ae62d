package chart

import (
	"encoding/json"
	"fmt"
)

// SanitizeForAudit returns a copy of the payload as a generic map with user
// and session identifiers, raw row data and the aggregated table's own
// identifier removed.
func SanitizeForAudit(p Payload) (map[string]any, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	delete(out, "User_Id")
	delete(out, "Session_Id")
	delete(out, "Rows")
	if table, ok := out["Aggregated_Table"].(map[string]any); ok {
		delete(table, "Chart_Id")
		delete(table, "Rows")
	}
	return out, nil
}
