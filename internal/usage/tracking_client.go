package usage

import (
	"context"

	"gochart/ports"
)

// TrackingClient counts tokens of every successful completion into the
// run's tally and hands them to the usage service.
type TrackingClient struct {
	next    ports.CompletionClient
	service *Service
}

func NewTrackingClient(next ports.CompletionClient, service *Service) *TrackingClient {
	return &TrackingClient{next: next, service: service}
}

func (c *TrackingClient) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	resp, err := c.next.Complete(ctx, req)
	if err != nil || resp == nil || resp.Usage == nil {
		return resp, err
	}
	if t := TallyFrom(ctx); t != nil {
		t.Add(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}
	if c.service != nil {
		_ = c.service.RecordUsage(ctx, OperationFrom(ctx), resp.Usage)
	}
	return resp, nil
}
