package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gochart/internal/config"
	"gochart/ports"
)

const defaultBaseURL = "https://api.openai.com/v1"

// OpenAIClient implements ports.CompletionClient against any
// OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewOpenAIClient creates a client from LLM configuration
func NewOpenAIClient(cfg config.LLMConfig) *OpenAIClient {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &OpenAIClient{
		APIKey:     cfg.APIKey,
		BaseURL:    baseURL,
		Timeout:    cfg.Timeout,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model       string          `json:"model"`
	Messages    []ports.Message `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	GuidedJSON  map[string]any  `json:"guided_json,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete sends one chat completion request
func (c *OpenAIClient) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	if strings.TrimSpace(req.Model) == "" {
		return nil, &PermanentError{Err: fmt.Errorf("missing model")}
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = 1024
	}

	raw, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		GuidedJSON:  req.GuidedJSON,
	})
	if err != nil {
		return nil, &PermanentError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, &PermanentError{Err: fmt.Errorf("build request: %w", err)}
	}
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: c.Timeout}
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	latency := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("completion http %d: %s", resp.StatusCode, truncate(string(respRaw), 512))
		if isPermanentStatus(resp.StatusCode) {
			return nil, &PermanentError{Err: statusErr}
		}
		return nil, statusErr
	}

	var decoded chatResponse
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("completion response missing choices")
	}

	out := &ports.CompletionResponse{
		Content: decoded.Choices[0].Message.Content,
		Latency: latency,
	}
	if decoded.Usage != nil {
		model := decoded.Model
		if model == "" {
			model = req.Model
		}
		out.Usage = &ports.UsageData{
			PromptTokens:     decoded.Usage.PromptTokens,
			CompletionTokens: decoded.Usage.CompletionTokens,
			TotalTokens:      decoded.Usage.TotalTokens,
			Model:            model,
			Provider:         "openai",
		}
	}
	return out, nil
}

// 429 and 5xx are worth retrying, other 4xx are not
func isPermanentStatus(code int) bool {
	return code >= 400 && code < 500 && code != http.StatusTooManyRequests && code != http.StatusRequestTimeout
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
