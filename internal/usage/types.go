package usage

import (
	"context"
	"sync"
)

type ctxKey int

const (
	tallyKey ctxKey = iota
	attributionKey
	operationKey
)

// Attribution identifies who a completion call is billed to
type Attribution struct {
	UserID    string
	SessionID string
	RunID     string
}

// Tally accumulates token usage across one pipeline run
type Tally struct {
	mu     sync.Mutex
	input  int
	output int
	calls  int
}

// Add records one call's token counts
func (t *Tally) Add(input, output int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.input += input
	t.output += output
	t.calls++
}

// Totals returns input tokens, output tokens and call count
func (t *Tally) Totals() (input, output, calls int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.input, t.output, t.calls
}

// WithTally attaches a fresh tally to ctx and returns both
func WithTally(ctx context.Context) (context.Context, *Tally) {
	t := &Tally{}
	return context.WithValue(ctx, tallyKey, t), t
}

// TallyFrom returns the tally on ctx, or nil
func TallyFrom(ctx context.Context) *Tally {
	t, _ := ctx.Value(tallyKey).(*Tally)
	return t
}

func WithAttribution(ctx context.Context, a Attribution) context.Context {
	return context.WithValue(ctx, attributionKey, a)
}

func AttributionFrom(ctx context.Context) Attribution {
	a, _ := ctx.Value(attributionKey).(Attribution)
	return a
}

// WithOperation labels completion calls made under ctx
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

func OperationFrom(ctx context.Context) string {
	op, _ := ctx.Value(operationKey).(string)
	return op
}
