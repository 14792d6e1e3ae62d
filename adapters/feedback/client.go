package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"gochart/models"
)

// HTTPClient talks to the chart logging service. It implements
// ports.FeedbackStore and ports.AuditLogger.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the service rooted at baseURL
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// RegisterChart posts a sanitized chart and returns the service's id for it
func (c *HTTPClient) RegisterChart(ctx context.Context, record *models.ChartAuditRecord) (string, error) {
	body, err := c.do(ctx, http.MethodPost, c.baseURL+"chart", record)
	if err != nil {
		return "", err
	}
	for _, path := range []string{"id", "chart_id", "data.id"} {
		if v := gjson.GetBytes(body, path); v.Exists() && v.String() != "" {
			return v.String(), nil
		}
	}
	return "", fmt.Errorf("register chart: response carries no id")
}

// RecordLLMCall stores one completion call trace
func (c *HTTPClient) RecordLLMCall(ctx context.Context, call *models.LLMCallRecord) error {
	_, err := c.do(ctx, http.MethodPut, c.baseURL+"chart-llm-calls", call)
	return err
}

// FetchFeedback returns feedback records where field equals value
func (c *HTTPClient) FetchFeedback(ctx context.Context, field, value string) ([]models.FeedbackRecord, error) {
	q := url.Values{}
	q.Set("field", field)
	q.Set("value", value)
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"feedback?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	// Accept either a bare array or an envelope with a data/items array
	raw := gjson.ParseBytes(body)
	if !raw.IsArray() {
		for _, path := range []string{"data", "items", "feedback"} {
			if v := raw.Get(path); v.IsArray() {
				raw = v
				break
			}
		}
	}
	if !raw.IsArray() {
		return nil, fmt.Errorf("fetch feedback: unexpected response shape")
	}

	var records []models.FeedbackRecord
	if err := json.Unmarshal([]byte(raw.Raw), &records); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	return records, nil
}

func (c *HTTPClient) do(ctx context.Context, method, target string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", method, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("logging service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("logging service %s %s: http %d", method, req.URL.Path, resp.StatusCode)
	}
	return body, nil
}
