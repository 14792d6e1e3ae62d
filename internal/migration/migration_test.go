package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatementsAreIdempotent(t *testing.T) {
	r := NewRunner()
	assert.Equal(t, "1.0.0", r.Version())

	stmts := r.Statements()
	assert.Len(t, stmts, 4)
	for _, s := range stmts {
		upper := strings.ToUpper(s)
		if strings.Contains(upper, "CREATE TABLE") || strings.Contains(upper, "CREATE INDEX") {
			assert.Contains(t, upper, "IF NOT EXISTS")
		}
	}
	assert.Contains(t, stmts[0], "axis_binding JSONB")
}
