package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gochart/internal"
	"gochart/internal/config"
	"gochart/ports"
)

func TestOpenAIClientComplete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"m1","choices":[{"message":{"content":"{\"a\":1}"}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(config.LLMConfig{APIKey: "secret", BaseURL: srv.URL, Timeout: time.Second})
	resp, err := c.Complete(context.Background(), ports.CompletionRequest{
		Model:      "m1",
		Messages:   []ports.Message{{Role: "user", Content: "hi"}},
		GuidedJSON: map[string]any{"type": "object"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, resp.Content)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	assert.Equal(t, map[string]any{"type": "object"}, got["guided_json"])
}

func TestOpenAIClientStatusClassification(t *testing.T) {
	status := http.StatusBadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c := NewOpenAIClient(config.LLMConfig{BaseURL: srv.URL, Timeout: time.Second})
	req := ports.CompletionRequest{Model: "m"}

	_, err := c.Complete(context.Background(), req)
	assert.True(t, IsPermanent(err))

	status = http.StatusTooManyRequests
	_, err = c.Complete(context.Background(), req)
	require.Error(t, err)
	assert.False(t, IsPermanent(err))
}

func TestRetryingClient(t *testing.T) {
	noSleep := func(context.Context, time.Duration) error { return nil }

	t.Run("recovers after transient errors", func(t *testing.T) {
		mock := &MockLLMClient{Responses: []string{"", "", "ok"}, Errors: []error{errors.New("reset"), errors.New("reset")}}
		r := NewRetryingClient(mock, 2, time.Millisecond, nil)
		r.sleep = noSleep
		resp, err := r.Complete(context.Background(), ports.CompletionRequest{})
		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Content)
		assert.Equal(t, 3, mock.CallCount())
	})

	t.Run("gives up after retries", func(t *testing.T) {
		boom := errors.New("reset")
		mock := &MockLLMClient{Responses: []string{"ok"}, Errors: []error{boom, boom, boom, boom}}
		r := NewRetryingClient(mock, 2, time.Millisecond, nil)
		r.sleep = noSleep
		_, err := r.Complete(context.Background(), ports.CompletionRequest{})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, mock.CallCount())
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		mock := &MockLLMClient{Responses: []string{"ok"}, Errors: []error{&PermanentError{Err: errors.New("bad request")}}}
		r := NewRetryingClient(mock, 2, time.Millisecond, nil)
		r.sleep = noSleep
		_, err := r.Complete(context.Background(), ports.CompletionRequest{})
		assert.True(t, IsPermanent(err))
		assert.Equal(t, 1, mock.CallCount())
	})

	t.Run("retry warnings follow the log level", func(t *testing.T) {
		var buf bytes.Buffer
		log.SetOutput(&buf)
		defer log.SetOutput(os.Stderr)

		mock := &MockLLMClient{Responses: []string{"", "ok"}, Errors: []error{errors.New("reset")}}
		r := NewRetryingClient(mock, 2, time.Millisecond, internal.NewLogger(internal.LogLevelError))
		r.sleep = noSleep
		_, err := r.Complete(context.Background(), ports.CompletionRequest{})
		require.NoError(t, err)
		assert.Empty(t, buf.String())

		mock = &MockLLMClient{Responses: []string{"", "ok"}, Errors: []error{errors.New("reset")}}
		r = NewRetryingClient(mock, 2, time.Millisecond, internal.NewLogger(internal.LogLevelWarn))
		r.sleep = noSleep
		_, err = r.Complete(context.Background(), ports.CompletionRequest{})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "[WARN] [RetryingClient] transient completion error (attempt 1/3): reset")
	})
}
