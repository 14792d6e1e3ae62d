package usage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gochart/models"
	"gochart/ports"
)

type fakeRepo struct {
	mu       sync.Mutex
	failures int
	records  []*models.LLMUsage
}

func (r *fakeRepo) RecordUsage(ctx context.Context, u *models.LLMUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return errors.New("db down")
	}
	r.records = append(r.records, u)
	return nil
}

func (r *fakeRepo) GetUserUsage(context.Context, string, time.Time, time.Time) ([]*models.LLMUsage, error) {
	return r.records, nil
}

func (r *fakeRepo) GetUserUsageSummary(context.Context, string, time.Time, time.Time) (*models.UserUsageSummary, error) {
	return &models.UserUsageSummary{}, nil
}

type fixedClient struct{ usage *ports.UsageData }

func (c fixedClient) Complete(context.Context, ports.CompletionRequest) (*ports.CompletionResponse, error) {
	return &ports.CompletionResponse{Content: "{}", Usage: c.usage}, nil
}

func TestTrackingClientTalliesAndPersists(t *testing.T) {
	repo := &fakeRepo{failures: 1}
	svc := NewService(repo, nil)
	client := NewTrackingClient(fixedClient{usage: &ports.UsageData{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120, Model: "m"}}, svc)

	ctx, tally := WithTally(context.Background())
	ctx = WithAttribution(ctx, Attribution{UserID: "u1", SessionID: "s1", RunID: "r1"})
	ctx = WithOperation(ctx, models.OpAxisResolution)

	for i := 0; i < 2; i++ {
		_, err := client.Complete(ctx, ports.CompletionRequest{})
		require.NoError(t, err)
	}
	svc.Wait()

	in, out, calls := tally.Totals()
	assert.Equal(t, 200, in)
	assert.Equal(t, 40, out)
	assert.Equal(t, 2, calls)

	require.Len(t, repo.records, 2)
	assert.Equal(t, "u1", repo.records[0].UserID)
	assert.Equal(t, "r1", repo.records[0].RunID)
	assert.Equal(t, models.OpAxisResolution, repo.records[0].OperationType)
}

func TestTrackingClientWithoutTallyOrRepo(t *testing.T) {
	client := NewTrackingClient(fixedClient{usage: &ports.UsageData{PromptTokens: 1}}, NewService(nil, nil))
	resp, err := client.Complete(context.Background(), ports.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "{}", resp.Content)
	assert.Nil(t, TallyFrom(context.Background()))
}

func TestRecordUsageRejectsNegativeCounts(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil)
	require.NoError(t, svc.RecordUsage(context.Background(), "op", &ports.UsageData{PromptTokens: -1}))
	require.NoError(t, svc.RecordUsage(context.Background(), "op", nil))
	svc.Wait()
	assert.Empty(t, repo.records)
}

func TestUsageQueries(t *testing.T) {
	repo := &fakeRepo{records: []*models.LLMUsage{{UserID: "u1", TotalTokens: 12}}}
	svc := NewService(repo, nil)
	end := time.Now()

	records, err := svc.GetUserUsage(context.Background(), "u1", end.Add(-time.Hour), end)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 12, records[0].TotalTokens)

	summary, err := svc.GetUserUsageSummary(context.Background(), "u1", end.Add(-time.Hour), end)
	require.NoError(t, err)
	assert.NotNil(t, summary)

	_, err = NewService(nil, nil).GetUserUsageSummary(context.Background(), "u1", end.Add(-time.Hour), end)
	assert.ErrorIs(t, err, ErrNoRepository)
	_, err = NewService(nil, nil).GetUserUsage(context.Background(), "u1", end.Add(-time.Hour), end)
	assert.ErrorIs(t, err, ErrNoRepository)
}
